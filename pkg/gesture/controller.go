// Package gesture reconciles pointer gestures into two independently
// constrained one-dimensional zoom behaviors.
//
// Host events (drag, pinch, wheel, double-click) drive one unconstrained
// composite transform, the same way a surface-level zoom behavior would.
// Every change of that composite is a tick: the controller compares it with
// the composite remembered from the previous tick, decides which axes the
// gesture targets from the focal point, and applies either a pan or a zoom
// to each targeted axis behavior. Each axis clamps on its own, so a wheel
// zoom can saturate the X axis at its maximum scale while the Y axis keeps
// zooming.
//
// The controller is single-threaded. Delivering a gesture event from inside
// the tick listener of the same controller fails with REENTRANT_GESTURE;
// SetAxis and Reset are host commands and are allowed there.
package gesture

import (
	"fmt"
	"math"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"github.com/matzehuels/panzoom/pkg/errors"
	"github.com/matzehuels/panzoom/pkg/scale"
	"github.com/matzehuels/panzoom/pkg/zoom"
)

// Phase is the gesture state machine position.
type Phase int

const (
	Idle Phase = iota
	Gesturing
)

func (p Phase) String() string {
	if p == Gesturing {
		return "gesturing"
	}
	return "idle"
}

// Source names the host event that produced a tick.
type Source int

const (
	SourceDrag Source = iota
	SourcePinch
	SourceWheel
	SourceDoubleClick
	SourceApply
)

var sourceNames = [...]string{"drag", "pinch", "wheel", "dblclick", "apply"}

func (s Source) String() string {
	if int(s) < len(sourceNames) {
		return sourceNames[s]
	}
	return fmt.Sprintf("source(%d)", int(s))
}

// WheelMode is the unit of a wheel delta.
type WheelMode int

const (
	WheelPixel WheelMode = iota
	WheelLine
	WheelPage
)

// Bounds is the viewport geometry a controller is built for.
type Bounds struct {
	// XRange and YRange are the pixel ranges of the base scales. YRange is
	// inverted: Lo is the bottom edge of the plot.
	XRange scale.Range
	YRange scale.Range
	// Plot is the plotting rectangle, used as both the viewport extent and
	// the translate extent of each axis behavior.
	Plot        rect.Rect
	ScaleExtent zoom.ScaleExtent
}

// Centre returns the geometric centre of the plotting rectangle.
func (b Bounds) Centre() vec.Vec2 {
	return vec.Vec2{X: (b.Plot.LLx + b.Plot.URx) / 2, Y: (b.Plot.LLy + b.Plot.URy) / 2}
}

// Targets reports which axes a gesture focused at p affects. X is targeted
// right of the Y-axis strip, Y above the X-axis strip.
func (b Bounds) Targets(p vec.Vec2) (x, y bool) {
	return p.X > b.XRange.Lo, p.Y < b.YRange.Lo
}

// State is the controller state. It is replaced wholesale on every tick.
type State struct {
	X     zoom.Behavior
	Y     zoom.Behavior
	Z     zoom.Transform
	Phase Phase
}

// Event describes one tick.
type Event struct {
	Source  Source
	Focal   vec.Vec2
	K       float64
	TargetX bool
	TargetY bool
}

// Listener is invoked after every tick with the new state.
type Listener func(State, Event)

type pointer struct {
	id int
	p  vec.Vec2 // current position
	l  vec.Vec2 // untransformed position grabbed at pointer-down
}

// Controller owns the two axis behaviors of one viewport.
type Controller struct {
	bounds   Bounds
	state    State
	pointers []pointer
	onTick   Listener
	handling bool
}

// NewController builds a controller at the identity transform.
func NewController(b Bounds, onTick Listener) (*Controller, error) {
	c := &Controller{onTick: onTick}
	if err := c.reset(b); err != nil {
		return nil, err
	}
	return c, nil
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Bounds returns the geometry the controller was last built for.
func (c *Controller) Bounds() Bounds { return c.bounds }

// Reset discards the remembered composite, drops active pointers and
// rebuilds both behaviors for new bounds. It may be called from the tick
// listener.
func (c *Controller) Reset(b Bounds) error {
	return c.reset(b)
}

func (c *Controller) reset(b Bounds) error {
	if err := b.ScaleExtent.Validate(); err != nil {
		return err
	}
	if !(b.Plot.URx > b.Plot.LLx) || !(b.Plot.URy > b.Plot.LLy) {
		return errors.New(errors.ErrCodeZeroSizeViewport, "plot rectangle %v is empty", b.Plot)
	}
	c.bounds = b
	c.pointers = nil
	c.state = State{
		X:     zoom.NewBehavior(zoom.AxisX, b.Plot, b.ScaleExtent),
		Y:     zoom.NewBehavior(zoom.AxisY, b.Plot, b.ScaleExtent),
		Z:     zoom.Identity,
		Phase: Idle,
	}
	return nil
}

func (c *Controller) enter() error {
	if c.handling {
		return errors.New(errors.ErrCodeReentrant, "gesture delivered while another gesture is being handled")
	}
	c.handling = true
	return nil
}

func (c *Controller) leave() { c.handling = false }

// PointerDown starts or extends a gesture. Only the first two pointers are
// tracked; further ones are ignored.
func (c *Controller) PointerDown(id int, p vec.Vec2) error {
	if err := c.enter(); err != nil {
		return err
	}
	defer c.leave()

	if c.find(id) >= 0 || len(c.pointers) >= 2 {
		return nil
	}
	z := c.state.Z
	c.pointers = append(c.pointers, pointer{id: id, p: p, l: z.Invert(p)})
	for i := range c.pointers {
		c.pointers[i].l = z.Invert(c.pointers[i].p)
	}
	next := c.state
	next.Phase = Gesturing
	c.state = next
	return nil
}

// PointerMove advances the gesture. One pointer pans the composite so the
// grabbed point follows it; two pointers pinch about their midpoint. Moves
// of untracked pointers are ignored.
func (c *Controller) PointerMove(id int, p vec.Vec2) error {
	if err := c.enter(); err != nil {
		return err
	}
	defer c.leave()

	i := c.find(id)
	if i < 0 {
		return nil
	}
	c.pointers[i].p = p
	t := c.state.Z

	if len(c.pointers) == 1 {
		a := c.pointers[0]
		c.tick(anchor(t, a.p, a.l), p, SourceDrag)
		return nil
	}

	a, b := c.pointers[0], c.pointers[1]
	if dl := dist2(a.l, b.l); dl > 0 {
		t.K = math.Sqrt(dist2(a.p, b.p) / dl)
	}
	mid := a.p.Add(b.p).Mul(0.5)
	lmid := a.l.Add(b.l).Mul(0.5)
	c.tick(anchor(t, mid, lmid), mid, SourcePinch)
	return nil
}

// PointerUp releases a pointer. When one pointer remains it is re-anchored
// so the gesture continues as a pan; when none remain the controller
// returns to Idle.
func (c *Controller) PointerUp(id int) error {
	if err := c.enter(); err != nil {
		return err
	}
	defer c.leave()

	i := c.find(id)
	if i < 0 {
		return nil
	}
	c.pointers = append(c.pointers[:i:i], c.pointers[i+1:]...)
	for j := range c.pointers {
		c.pointers[j].l = c.state.Z.Invert(c.pointers[j].p)
	}
	if len(c.pointers) == 0 {
		next := c.state
		next.Phase = Idle
		c.state = next
	}
	return nil
}

// Wheel zooms about p by 2^(-deltaY*f), where f depends on the delta mode
// and is ten times larger with ctrl held.
func (c *Controller) Wheel(p vec.Vec2, deltaY float64, mode WheelMode, ctrl bool) error {
	if err := c.enter(); err != nil {
		return err
	}
	defer c.leave()

	f := 0.002
	switch mode {
	case WheelLine:
		f = 0.05
	case WheelPage:
		f = 1
	}
	if ctrl {
		f *= 10
	}
	k := math.Pow(2, -deltaY*f)
	c.tick(zoom.ScaleBy(c.state.Z, k, p), p, SourceWheel)
	return nil
}

// DoubleClick zooms in by two about p, or out by two with shift held.
func (c *Controller) DoubleClick(p vec.Vec2, shift bool) error {
	if err := c.enter(); err != nil {
		return err
	}
	defer c.leave()

	k := 2.0
	if shift {
		k = 0.5
	}
	c.tick(zoom.ScaleBy(c.state.Z, k, p), p, SourceDoubleClick)
	return nil
}

// Apply delivers a synthetic composite transform. Without a pointer the
// focal point is the centre of the plot, so both axes are targeted.
func (c *Controller) Apply(t zoom.Transform) error {
	if !t.Valid() {
		return errors.New(errors.ErrCodeInvalidTransform, "cannot apply %s", t)
	}
	if err := c.enter(); err != nil {
		return err
	}
	defer c.leave()

	c.tick(t, c.bounds.Centre(), SourceApply)
	return nil
}

// SetAxis replaces the transform of one axis behavior without a tick. The
// remembered composite is left alone, so later gestures stay incremental.
// The listener is not invoked. Unlike gesture delivery, SetAxis may be
// called from the tick listener.
func (c *Controller) SetAxis(axis zoom.Axis, t zoom.Transform) error {
	if !t.Valid() {
		return errors.New(errors.ErrCodeInvalidTransform, "cannot set %s axis to %s", axis, t)
	}

	next := c.state
	if axis == zoom.AxisX {
		next.X = next.X.WithTransform(t)
	} else {
		next.Y = next.Y.WithTransform(t)
	}
	c.state = next
	return nil
}

// tick decomposes the step from the remembered composite to t into per-axis
// pan or zoom, stores t, and notifies the listener.
func (c *Controller) tick(t zoom.Transform, focal vec.Vec2, src Source) {
	prev := c.state
	z := prev.Z
	k := t.K / z.K
	doX, doY := c.bounds.Targets(focal)

	next := prev
	if k == 1 {
		if doX {
			next.X = prev.X.TranslateBy((t.X-z.X)/prev.X.Transform().K, 0)
		}
		if doY {
			next.Y = prev.Y.TranslateBy(0, (t.Y-z.Y)/prev.Y.Transform().K)
		}
	} else {
		if doX {
			next.X = prev.X.ScaleBy(k, focal)
		}
		if doY {
			next.Y = prev.Y.ScaleBy(k, focal)
		}
	}
	next.Z = t
	c.state = next

	if c.onTick != nil {
		c.onTick(next, Event{Source: src, Focal: focal, K: k, TargetX: doX, TargetY: doY})
	}
}

func (c *Controller) find(id int) int {
	for i, p := range c.pointers {
		if p.id == id {
			return i
		}
	}
	return -1
}

// anchor translates t so the untransformed point l lands on pixel p.
func anchor(t zoom.Transform, p, l vec.Vec2) zoom.Transform {
	return zoom.Transform{K: t.K, X: p.X - l.X*t.K, Y: p.Y - l.Y*t.K}
}

func dist2(a, b vec.Vec2) float64 {
	d := a.Sub(b)
	return d.X*d.X + d.Y*d.Y
}
