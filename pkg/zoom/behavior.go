package zoom

import (
	"fmt"
	"math"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"github.com/matzehuels/panzoom/pkg/errors"
)

// Axis selects which translation component a Behavior owns.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

func (a Axis) String() string {
	if a == AxisY {
		return "y"
	}
	return "x"
}

// ScaleExtent bounds the scale factor of a Behavior.
type ScaleExtent struct {
	Min float64 `json:"min" toml:"min" yaml:"min"`
	Max float64 `json:"max" toml:"max" yaml:"max"`
}

// DefaultScaleExtent allows zooming in up to ten times and never out past
// the full domain.
var DefaultScaleExtent = ScaleExtent{Min: 1, Max: 10}

// Validate requires 0 < Min <= Max with finite bounds.
func (e ScaleExtent) Validate() error {
	if !(e.Min > 0) || math.IsInf(e.Min, 0) || math.IsNaN(e.Max) || math.IsInf(e.Max, 0) {
		return errors.New(errors.ErrCodeInvalidConfig, "scale extent %s must have finite positive bounds", e)
	}
	if e.Max < e.Min {
		return errors.New(errors.ErrCodeInvalidConfig, "scale extent %s is reversed", e)
	}
	return nil
}

// Clamp restricts k to the extent.
func (e ScaleExtent) Clamp(k float64) float64 {
	return math.Max(e.Min, math.Min(e.Max, k))
}

func (e ScaleExtent) String() string { return fmt.Sprintf("[%g, %g]", e.Min, e.Max) }

// Behavior is the independent one-dimensional zoom state of one axis.
//
// Behavior values are immutable; every transition returns a new Behavior.
// Only the component named by the axis is ever changed: an X behavior
// keeps Y == 0 and vice versa.
type Behavior struct {
	axis            Axis
	t               Transform
	scaleExtent     ScaleExtent
	extent          rect.Rect
	translateExtent rect.Rect
}

// NewBehavior returns a behavior at the identity transform. Both the
// viewport extent and the translate extent are set to extent, so the
// rescaled domain can never leave the configured domain.
func NewBehavior(axis Axis, extent rect.Rect, se ScaleExtent) Behavior {
	return Behavior{
		axis:            axis,
		t:               Identity,
		scaleExtent:     se,
		extent:          extent,
		translateExtent: extent,
	}
}

// Axis returns the axis this behavior controls.
func (b Behavior) Axis() Axis { return b.axis }

// Transform returns the current transform.
func (b Behavior) Transform() Transform { return b.t }

// ScaleExtent returns the configured scale bounds.
func (b Behavior) ScaleExtent() ScaleExtent { return b.scaleExtent }

// Extent returns the viewport extent in pixels.
func (b Behavior) Extent() rect.Rect { return b.extent }

// TranslateExtent returns the translate bounds in untransformed pixels.
func (b Behavior) TranslateExtent() rect.Rect { return b.translateExtent }

// WithTranslateExtent returns a copy with different translate bounds; the
// current transform is re-constrained.
func (b Behavior) WithTranslateExtent(r rect.Rect) Behavior {
	b.translateExtent = r
	b.t = b.constrain(b.t)
	return b
}

// ScaleBy multiplies the scale factor by k around focal. The new factor is
// clamped to the scale extent, the untransformed point under focal is kept
// in place, and the translation is then constrained.
func (b Behavior) ScaleBy(k float64, focal vec.Vec2) Behavior {
	return b.ScaleTo(b.t.K*k, focal)
}

// ScaleTo sets the scale factor to k around focal.
func (b Behavior) ScaleTo(k float64, focal vec.Vec2) Behavior {
	t0 := b.t
	p1 := t0.Invert(focal)
	k1 := b.scaleExtent.Clamp(k)
	t1 := Transform{K: k1, X: focal.X - p1.X*k1, Y: focal.Y - p1.Y*k1}
	b.t = b.project(b.constrain(t1))
	return b
}

// TranslateBy pans by (dx, dy) in untransformed pixels, then constrains.
func (b Behavior) TranslateBy(dx, dy float64) Behavior {
	b.t = b.project(b.constrain(b.t.Translate(dx, dy)))
	return b
}

// WithTransform replaces the transform. The scale factor is clamped and
// the translation constrained like any other transition.
func (b Behavior) WithTransform(t Transform) Behavior {
	t.K = b.scaleExtent.Clamp(t.K)
	b.t = b.project(b.constrain(t))
	return b
}

// project keeps only the component this behavior owns.
func (b Behavior) project(t Transform) Transform {
	if b.axis == AxisX {
		t.Y = 0
	} else {
		t.X = 0
	}
	return t
}

// constrain shifts t so the inverse image of the viewport extent stays
// inside the translate extent. When the viewport is larger than the
// translate extent the content is centred.
func (b Behavior) constrain(t Transform) Transform {
	e, te := b.extent, b.translateExtent
	dx0 := t.InvertX(e.LLx) - te.LLx
	dx1 := t.InvertX(e.URx) - te.URx
	dy0 := t.InvertY(e.LLy) - te.LLy
	dy1 := t.InvertY(e.URy) - te.URy
	return t.Translate(shift(dx0, dx1), shift(dy0, dy1))
}

func shift(d0, d1 float64) float64 {
	if d1 > d0 {
		return (d0 + d1) / 2
	}
	if s := math.Min(0, d0); s != 0 {
		return s
	}
	return math.Max(0, d1)
}

func (b Behavior) String() string {
	return fmt.Sprintf("%s-behavior %s", b.axis, b.t)
}
