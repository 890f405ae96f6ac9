// Package scale implements linear value scales for one chart axis.
//
// A [Linear] scale maps a data [Domain] onto a pixel [Range]. Scales are
// immutable values: zooming or panning never mutates a scale, it derives a
// new one (see pkg/zoom). The Y axis conventionally uses an inverted range
// so that larger values sit higher on screen:
//
//	x, _ := scale.New(scale.Domain{Lo: 0, Hi: 100}, scale.Range{Lo: 30, Hi: 470})
//	y, _ := scale.New(scale.Domain{Lo: -1, Hi: 1}, scale.Range{Lo: 370, Hi: 30})
//
//	px := x.Map(50)      // 250
//	v := x.Invert(px)    // 50
//
// # Errors
//
// [New] refuses to build a scale over a degenerate domain (Lo == Hi) and
// returns an error with code DEGENERATE_DOMAIN instead of producing NaN
// geometry. A reversed domain (Hi < Lo) fails with INVALID_DOMAIN.
//
// # Ticks
//
// [Linear.Ticks] returns "nice" tick values whose step is 1, 2 or 5 times a
// power of ten, and [Linear.TickFormat] a matching label formatter. The
// axis renderer in pkg/axis is the main consumer.
package scale
