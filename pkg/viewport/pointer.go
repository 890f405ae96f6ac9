package viewport

import (
	"seehuhn.de/go/geom/vec"

	"github.com/matzehuels/panzoom/pkg/errors"
	"github.com/matzehuels/panzoom/pkg/gesture"
	"github.com/matzehuels/panzoom/pkg/zoom"
)

// TranslatePointer converts a client position into data coordinates
// through the visible scales. origin is the client position of the
// viewport's top-left corner.
func (v *Viewport) TranslatePointer(clientX, clientY float64, origin vec.Vec2) (DataPoint, error) {
	if !v.ready || !v.drawn {
		return DataPoint{}, errors.New(errors.ErrCodeNotReady, "viewport has not been drawn")
	}
	return DataPoint{
		X: v.xr.Invert(clientX - origin.X),
		Y: v.yr.Invert(clientY - origin.Y),
	}, nil
}

// Hover reports a pointer hover to the pointer hook.
func (v *Viewport) Hover(clientX, clientY float64, origin vec.Vec2) (DataPoint, error) {
	return v.pointer(PointerHover, clientX, clientY, origin)
}

// Click reports a pointer click to the pointer hook.
func (v *Viewport) Click(clientX, clientY float64, origin vec.Vec2) (DataPoint, error) {
	return v.pointer(PointerClick, clientX, clientY, origin)
}

func (v *Viewport) pointer(kind PointerKind, clientX, clientY float64, origin vec.Vec2) (DataPoint, error) {
	p, err := v.TranslatePointer(clientX, clientY, origin)
	if err != nil {
		return DataPoint{}, err
	}
	if v.cfg.OnPointer != nil {
		v.cfg.OnPointer(kind, p)
	}
	return p, nil
}

// PointerDown starts a drag or pinch at pixel position p.
func (v *Viewport) PointerDown(id int, p vec.Vec2) error {
	return v.deliver(func(c *gesture.Controller) error { return c.PointerDown(id, p) })
}

// PointerMove moves a tracked pointer.
func (v *Viewport) PointerMove(id int, p vec.Vec2) error {
	return v.deliver(func(c *gesture.Controller) error { return c.PointerMove(id, p) })
}

// PointerUp releases a pointer.
func (v *Viewport) PointerUp(id int) error {
	return v.deliver(func(c *gesture.Controller) error { return c.PointerUp(id) })
}

// Wheel zooms about p.
func (v *Viewport) Wheel(p vec.Vec2, deltaY float64, mode gesture.WheelMode, ctrl bool) error {
	return v.deliver(func(c *gesture.Controller) error { return c.Wheel(p, deltaY, mode, ctrl) })
}

// DoubleClick zooms in about p, or out with shift.
func (v *Viewport) DoubleClick(p vec.Vec2, shift bool) error {
	return v.deliver(func(c *gesture.Controller) error { return c.DoubleClick(p, shift) })
}

// ApplyTransform delivers a synthetic composite transform focused on the
// plot centre.
func (v *Viewport) ApplyTransform(t zoom.Transform) error {
	return v.deliver(func(c *gesture.Controller) error { return c.Apply(t) })
}

// Reset returns both axes to the full domain, as a resize would.
func (v *Viewport) Reset() error {
	if !v.ready {
		return errors.New(errors.ErrCodeNotReady, "viewport has no usable size")
	}
	return v.rebuild("reset")
}

// deliver runs one gesture handler and surfaces a redraw error raised from
// inside its tick.
func (v *Viewport) deliver(fn func(*gesture.Controller) error) error {
	if !v.ready {
		return errors.New(errors.ErrCodeNotReady, "viewport has no usable size")
	}
	v.tickErr = nil
	if err := fn(v.ctl); err != nil {
		return err
	}
	err := v.tickErr
	v.tickErr = nil
	return err
}
