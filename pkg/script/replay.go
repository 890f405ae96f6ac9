package script

import (
	"seehuhn.de/go/geom/vec"

	"github.com/matzehuels/panzoom/pkg/errors"
	"github.com/matzehuels/panzoom/pkg/scale"
	"github.com/matzehuels/panzoom/pkg/viewport"
)

// Notification is one domain-change callback observed during a replay.
type Notification struct {
	Step   int          `json:"step"`
	Axis   string       `json:"axis"`
	Domain scale.Domain `json:"domain"`
	User   bool         `json:"user"`
}

// StepResult is what one step produced.
type StepResult struct {
	Index         int                 `json:"index"`
	Kind          string              `json:"kind"`
	Notifications []Notification      `json:"notifications,omitempty"`
	Point         *viewport.DataPoint `json:"point,omitempty"`
}

// Recorder collects domain-change notifications. Attach it to a viewport
// configuration before the viewport is built.
type Recorder struct {
	step   int
	events []Notification
}

// Attach wraps the domain callbacks of cfg so the recorder sees them
// first. Existing callbacks still run.
func (r *Recorder) Attach(cfg viewport.Config) viewport.Config {
	cfg.OnXDomainModified = r.wrap("x", cfg.OnXDomainModified)
	cfg.OnYDomainModified = r.wrap("y", cfg.OnYDomainModified)
	return cfg
}

func (r *Recorder) wrap(axis string, next viewport.DomainFunc) viewport.DomainFunc {
	return func(d scale.Domain, user bool) {
		r.events = append(r.events, Notification{Step: r.step, Axis: axis, Domain: d, User: user})
		if next != nil {
			next(d, user)
		}
	}
}

// Notifications returns everything recorded so far.
func (r *Recorder) Notifications() []Notification { return r.events }

// Take returns everything recorded since the last Take and clears it.
func (r *Recorder) Take() []Notification {
	out := r.events
	r.events = nil
	return out
}

// Replay runs every step of s against v in order. v must have been built
// from a configuration passed through rec.Attach. Replay stops at the first
// failing step and returns the results of the steps before it.
func Replay(v *viewport.Viewport, rec *Recorder, s *Script) ([]StepResult, error) {
	rec.Take()
	results := make([]StepResult, 0, len(s.Steps))
	for i, st := range s.Steps {
		rec.step = i
		res := StepResult{Index: i, Kind: st.Kind}
		p, err := run(v, st)
		if err != nil {
			return results, errors.Wrap(errors.GetCode(err), err, "step %d (%s)", i, st.Kind)
		}
		res.Point = p
		res.Notifications = rec.Take()
		results = append(results, res)
	}
	return results, nil
}

func run(v *viewport.Viewport, st Step) (*viewport.DataPoint, error) {
	switch st.Kind {
	case KindDrag:
		return nil, drag(v, point(st.From), point(st.To), st.Moves)

	case KindPinch:
		return nil, pinch(v, point(st.From), point(st.To), st.Scale)

	case KindWheel:
		mode, err := ParseWheelMode(st.Mode)
		if err != nil {
			return nil, err
		}
		return nil, v.Wheel(point(st.At), st.Delta, mode, st.Ctrl)

	case KindDblClick:
		return nil, v.DoubleClick(point(st.At), st.Shift)

	case KindZoomX:
		return nil, v.ZoomToX(*st.Domain)

	case KindZoomY:
		return nil, v.ZoomToY(*st.Domain)

	case KindResize:
		return nil, v.Resize(st.Width, st.Height)

	case KindDomains:
		return nil, v.SetDomains(*st.XDomain, *st.YDomain)

	case KindRedraw:
		return nil, v.Redraw(st.User)

	case KindReset:
		return nil, v.Reset()

	case KindHover, KindClick:
		var (
			p   viewport.DataPoint
			err error
		)
		at := point(st.At)
		if st.Kind == KindHover {
			p, err = v.Hover(at.X, at.Y, vec.Vec2{})
		} else {
			p, err = v.Click(at.X, at.Y, vec.Vec2{})
		}
		if err != nil {
			return nil, err
		}
		return &p, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown step kind %q", st.Kind)
}

// drag presses at from, moves to to in n equal moves and releases.
func drag(v *viewport.Viewport, from, to vec.Vec2, n int) error {
	if n < 1 {
		n = 1
	}
	if err := v.PointerDown(0, from); err != nil {
		return err
	}
	d := to.Sub(from)
	for i := 1; i <= n; i++ {
		if err := v.PointerMove(0, from.Add(d.Mul(float64(i)/float64(n)))); err != nil {
			return err
		}
	}
	return v.PointerUp(0)
}

// pinch spreads two pointers away from their midpoint by k.
func pinch(v *viewport.Viewport, a, b vec.Vec2, k float64) error {
	mid := a.Add(b).Mul(0.5)
	if err := v.PointerDown(0, a); err != nil {
		return err
	}
	if err := v.PointerDown(1, b); err != nil {
		return err
	}
	if err := v.PointerMove(0, mid.Add(a.Sub(mid).Mul(k))); err != nil {
		return err
	}
	if err := v.PointerMove(1, mid.Add(b.Sub(mid).Mul(k))); err != nil {
		return err
	}
	if err := v.PointerUp(1); err != nil {
		return err
	}
	return v.PointerUp(0)
}
