// Package viewport is a two-dimensional chart viewport with independently
// pannable and zoomable X and Y axes.
//
// A Viewport owns two base linear scales built from the configured domains
// and the current pixel size, and a gesture controller holding one zoom
// behavior per axis. Every redraw rescales both base scales through their
// behavior's transform, draws the axis ticks, runs the caller's draw
// function with the rescaled scales, and notifies the caller when the
// visible domain of an axis changed since the previous redraw.
//
// A Viewport is not safe for concurrent use. Hosts that share one across
// goroutines must serialize access.
//
// # Lifecycle
//
// New validates the configuration but builds nothing: scales need a size.
// The first Resize with a positive width and height builds the scales and
// the controller and redraws. Later resizes and domain changes rebuild
// from scratch and reset the zoom.
//
//	v, err := viewport.New(viewport.Config{
//	    XDomain: scale.Domain{Lo: 0, Hi: 100},
//	    YDomain: scale.Domain{Lo: 0, Hi: 10},
//	    OnXDomainModified: func(d scale.Domain, user bool) { ... },
//	    Draw: func(dc viewport.DrawContext) mark.Node { ... },
//	})
//	err = v.Resize(500, 400)
//	err = v.ZoomToX(scale.Domain{Lo: 30, Hi: 50})
package viewport

import (
	"math"
	"time"

	"github.com/charmbracelet/log"
	"seehuhn.de/go/geom/rect"

	"github.com/matzehuels/panzoom/pkg/axis"
	"github.com/matzehuels/panzoom/pkg/errors"
	"github.com/matzehuels/panzoom/pkg/gesture"
	"github.com/matzehuels/panzoom/pkg/mark"
	"github.com/matzehuels/panzoom/pkg/observability"
	"github.com/matzehuels/panzoom/pkg/scale"
	"github.com/matzehuels/panzoom/pkg/zoom"
)

// Size is a viewport size in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// State is the rebuilt geometry of a viewport: the base scales for the
// current size and the gesture state. It is replaced wholesale on every
// transition; rescaled scales are a pure function of it.
type State struct {
	Size    Size
	X       scale.Linear
	Y       scale.Linear
	Gesture gesture.State
}

// Rescaled returns the visible scales: each base scale rescaled by its
// axis transform.
func (s State) Rescaled() (x, y scale.Linear, err error) {
	if x, err = s.Gesture.X.Transform().RescaleX(s.X); err != nil {
		return scale.Linear{}, scale.Linear{}, err
	}
	if y, err = s.Gesture.Y.Transform().RescaleY(s.Y); err != nil {
		return scale.Linear{}, scale.Linear{}, err
	}
	return x, y, nil
}

// Viewport is a chart viewport.
type Viewport struct {
	cfg    Config
	logger *log.Logger
	hooks  observability.ViewportHooks

	size  Size
	ready bool
	state State
	ctl   *gesture.Controller
	axes  *axis.Renderer

	// results of the last successful redraw
	drawn   bool
	gen     uint64
	xr, yr  scale.Linear
	xa, ya  axis.Axis
	marks   mark.Node
	tickErr error
}

// New validates cfg and returns a viewport waiting for its first size.
func New(cfg Config) (*Viewport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	v := &Viewport{
		cfg:    cfg,
		logger: cfg.Logger,
		hooks:  cfg.Hooks,
	}
	if cfg.Surface != nil {
		v.axes = axis.NewRenderer(cfg.Surface)
	}
	return v, nil
}

// Resize sets the pixel size and rebuilds. A width or height that is not
// positive defers construction until a usable size arrives; it is not an
// error.
func (v *Viewport) Resize(width, height float64) error {
	v.size = Size{Width: width, Height: height}
	if !(width > 0) || !(height > 0) {
		v.ready = false
		v.logger.Debug("deferring build", "width", width, "height", height)
		return nil
	}
	return v.rebuild("resize")
}

// SetDomains changes the configured domains and rebuilds. Unchanged domains
// are a no-op.
func (v *Viewport) SetDomains(x, y scale.Domain) error {
	if err := x.Validate(); err != nil {
		return errors.Wrap(errors.GetCode(err), err, "x domain")
	}
	if err := y.Validate(); err != nil {
		return errors.Wrap(errors.GetCode(err), err, "y domain")
	}
	if x.Equal(v.cfg.XDomain) && y.Equal(v.cfg.YDomain) {
		return nil
	}
	v.cfg.XDomain, v.cfg.YDomain = x, y
	if !(v.size.Width > 0) || !(v.size.Height > 0) {
		return nil
	}
	return v.rebuild("domains")
}

// Domains returns the configured domains.
func (v *Viewport) Domains() (x, y scale.Domain) { return v.cfg.XDomain, v.cfg.YDomain }

func (v *Viewport) rebuild(reason string) error {
	w, h := v.size.Width, v.size.Height
	m := *v.cfg.Margins
	xs, err := scale.New(v.cfg.XDomain, scale.Range{Lo: m.Left, Hi: w - m.Right})
	if err != nil {
		return err
	}
	ys, err := scale.New(v.cfg.YDomain, scale.Range{Lo: h - m.Bottom, Hi: m.Top})
	if err != nil {
		return err
	}
	plot := rect.Rect{LLx: m.Left, LLy: m.Top, URx: w - m.Right, URy: h - m.Bottom}
	if !(plot.URx > plot.LLx) || !(plot.URy > plot.LLy) {
		v.ready = false
		v.logger.Debug("deferring build, margins exceed size", "width", w, "height", h)
		return nil
	}

	bounds := gesture.Bounds{
		XRange:      xs.Range(),
		YRange:      ys.Range(),
		Plot:        plot,
		ScaleExtent: v.cfg.ScaleExtent,
	}
	if v.ctl == nil {
		ctl, err := gesture.NewController(bounds, v.onTick)
		if err != nil {
			return err
		}
		v.ctl = ctl
	} else if err := v.ctl.Reset(bounds); err != nil {
		return err
	}

	v.state = State{Size: v.size, X: xs, Y: ys, Gesture: v.ctl.State()}
	v.ready = true
	v.hooks.OnRebuild(reason, w, h)
	v.logger.Debug("rebuilt viewport", "reason", reason, "width", w, "height", h, "x", xs, "y", ys)
	return v.Redraw(true)
}

// onTick is the gesture listener: it adopts the new controller state and
// redraws as a user-initiated change.
func (v *Viewport) onTick(gs gesture.State, ev gesture.Event) {
	s := v.state
	s.Gesture = gs
	v.state = s

	v.hooks.OnGesture(ev.Source.String(), ev.K, ev.TargetX, ev.TargetY)
	v.logger.Debug("gesture", "source", ev.Source, "k", ev.K, "x", ev.TargetX, "y", ev.TargetY)
	if err := v.Redraw(true); err != nil {
		v.tickErr = err
	}
}

// Redraw rescales both axes, draws ticks and marks, and notifies each axis
// whose visible domain differs from the previous redraw's. A scale that
// cannot be rescaled refuses to render and nothing is drawn.
func (v *Viewport) Redraw(userInitiated bool) (err error) {
	if !v.ready {
		return errors.New(errors.ErrCodeNotReady, "viewport has no usable size")
	}
	start := time.Now()
	defer func() { v.hooks.OnRedraw(userInitiated, time.Since(start), err) }()

	s := v.state
	xr, yr, err := s.Rescaled()
	if err != nil {
		v.logger.Warn("refusing to render", "err", err)
		return err
	}

	var xa, ya axis.Axis
	if v.axes != nil {
		xa, ya = v.axes.Draw(s.X, s.Y, xr, yr)
	} else {
		xa, ya = axis.Layout(s.X, s.Y, xr, yr)
	}

	marks := v.marks
	if v.cfg.Draw != nil {
		next := v.cfg.Draw(v.contextFor(xr, yr)).Prune()
		if v.cfg.Surface != nil {
			if err := mark.Apply(v.cfg.Surface, mark.Diff(v.marks, next)); err != nil {
				v.marks = v.resync(next)
				return err
			}
		}
		marks = next
	}

	prevX, prevY := s.X, s.Y
	if v.drawn {
		prevX, prevY = v.xr, v.yr
	}
	v.drawn = true
	v.gen++
	gen := v.gen
	v.xr, v.yr = xr, yr
	v.xa, v.ya = xa, ya
	v.marks = marks

	v.logger.Debug("redraw", "x", xr.Domain(), "y", yr.Domain(), "user", userInitiated)
	if !prevX.Domain().Equal(xr.Domain()) {
		v.notify("x", v.cfg.OnXDomainModified, xr.Domain(), userInitiated)
	}
	// A hook that zoomed, resized or reset redrew already and reported
	// against this redraw's domains; what is left here is stale.
	if v.gen != gen {
		return nil
	}
	if !prevY.Domain().Equal(yr.Domain()) {
		v.notify("y", v.cfg.OnYDomainModified, yr.Domain(), userInitiated)
	}
	return nil
}

// resync replaces the surface's mark tree after a patch failed partway and
// returns the tree the surface now holds.
func (v *Viewport) resync(next mark.Node) mark.Node {
	surf := v.cfg.Surface
	if err := surf.RemoveNode(nil); err != nil {
		v.logger.Warn("clearing marks after failed patch", "err", err)
		return mark.Node{}
	}
	if next.IsZero() {
		return next
	}
	if err := surf.InsertNode(nil, next); err != nil {
		v.logger.Warn("reinserting marks after failed patch", "err", err)
		return mark.Node{}
	}
	return next
}

func (v *Viewport) notify(name string, fn DomainFunc, d scale.Domain, userInitiated bool) {
	v.hooks.OnDomainChange(name, d.Lo, d.Hi, userInitiated)
	if fn != nil {
		fn(d, userInitiated)
	}
}

// ZoomToX zooms the X axis so that d fills the plot width.
func (v *Viewport) ZoomToX(d scale.Domain) error { return v.zoomToRange(zoom.AxisX, d) }

// ZoomToY zooms the Y axis so that d fills the plot height.
func (v *Viewport) ZoomToY(d scale.Domain) error { return v.zoomToRange(zoom.AxisY, d) }

// zoomToRange replaces one axis transform so the requested domain, clamped
// to the configured one, spans the plot. Reversed requests are ignored. A
// request narrower than the scale extent allows is centred at maximum zoom.
// The change applies completely or not at all.
func (v *Viewport) zoomToRange(ax zoom.Axis, d scale.Domain) error {
	if !v.ready {
		return errors.New(errors.ErrCodeNotReady, "viewport has no usable size")
	}
	if math.IsNaN(d.Lo) || math.IsNaN(d.Hi) || d.Hi < d.Lo {
		v.logger.Debug("ignoring zoom request", "axis", ax, "domain", d)
		return nil
	}

	base, bounds := v.state.X, v.cfg.XDomain
	if ax == zoom.AxisY {
		base, bounds = v.state.Y, v.cfg.YDomain
	}
	c := d.Clamp(bounds)
	if c.Hi < c.Lo {
		v.logger.Debug("ignoring zoom request outside domain", "axis", ax, "domain", d)
		return nil
	}

	p0, p1 := base.Map(c.Lo), base.Map(c.Hi)
	r := base.Range()
	k := r.Len() / math.Abs(p1-p0)
	kc := v.cfg.ScaleExtent.Clamp(k)
	var offset float64
	if kc == k {
		offset = r.Min() - k*math.Min(p0, p1)
	} else {
		offset = (r.Min()+r.Max())/2 - kc*(p0+p1)/2
	}
	t := zoom.Transform{K: kc, X: offset}
	if ax == zoom.AxisY {
		t = zoom.Transform{K: kc, Y: offset}
	}

	prev := v.state
	if err := v.ctl.SetAxis(ax, t); err != nil {
		return err
	}
	s := v.state
	s.Gesture = v.ctl.State()
	v.state = s
	if err := v.Redraw(false); err != nil {
		restore := prev.Gesture.X.Transform()
		if ax == zoom.AxisY {
			restore = prev.Gesture.Y.Transform()
		}
		if rerr := v.ctl.SetAxis(ax, restore); rerr != nil {
			v.logger.Warn("rolling back zoom", "axis", ax, "err", rerr)
		}
		v.state = prev
		return err
	}
	return nil
}

// Ready reports whether the viewport has been built for a usable size.
func (v *Viewport) Ready() bool { return v.ready }

// State returns the current state.
func (v *Viewport) State() State { return v.state }

// Size returns the last requested size.
func (v *Viewport) Size() Size { return v.size }

// Margins returns the effective margins.
func (v *Viewport) Margins() Margins { return *v.cfg.Margins }

// ClipID returns the clip region id.
func (v *Viewport) ClipID() string { return v.cfg.ClipID }

// ScaleExtent returns the effective scale extent.
func (v *Viewport) ScaleExtent() zoom.ScaleExtent { return v.cfg.ScaleExtent }

// XScale returns the visible X scale of the last redraw.
func (v *Viewport) XScale() scale.Linear { return v.xr }

// YScale returns the visible Y scale of the last redraw.
func (v *Viewport) YScale() scale.Linear { return v.yr }

// Axes returns the axis geometry of the last redraw.
func (v *Viewport) Axes() (x, y axis.Axis) { return v.xa, v.ya }

// Marks returns the mark tree of the last redraw.
func (v *Viewport) Marks() mark.Node { return v.marks }

// PlotRect returns the plotting rectangle in pixels.
func (v *Viewport) PlotRect() rect.Rect {
	m := *v.cfg.Margins
	return rect.Rect{LLx: m.Left, LLy: m.Top, URx: v.size.Width - m.Right, URy: v.size.Height - m.Bottom}
}
