// Package axis builds tick geometry for the two viewport axes and hands it
// to a rendering surface.
//
// A surface implements [Surface]: it creates one mount per orientation and
// redraws the ticks of a mount whenever the viewport redraws. The geometry
// follows the usual bottom and left axis layout: ticks point away from the
// plot with an inner size of 6 pixels and labels sit 3 pixels beyond them.
package axis

import (
	"fmt"

	"seehuhn.de/go/geom/vec"

	"github.com/matzehuels/panzoom/pkg/scale"
)

const (
	// TickSize is the length of a tick line in pixels.
	TickSize = 6.0
	// TickPadding is the gap between a tick line and its label.
	TickPadding = 3.0
)

// Orientation selects where an axis is drawn relative to the plot.
type Orientation int

const (
	Bottom Orientation = iota
	Left
)

func (o Orientation) String() string {
	if o == Left {
		return "left"
	}
	return "bottom"
}

// Vertical reports whether the axis runs along y.
func (o Orientation) Vertical() bool { return o == Left }

// Handle is an opaque mount returned by a surface.
type Handle any

// Surface is the capability a rendering collaborator provides for axes.
type Surface interface {
	CreateAxisMount(o Orientation) Handle
	DrawTicks(h Handle, a Axis)
}

// Tick is one labelled tick. Pos is the pixel position along the axis.
type Tick struct {
	Value float64 `json:"value"`
	Pos   float64 `json:"pos"`
	Label string  `json:"label"`
}

// Axis is the complete geometry of one axis for a single redraw.
type Axis struct {
	Orientation Orientation `json:"orientation"`
	// Offset is the translation of the axis group: (0, bottom) for the X
	// axis and (left, 0) for the Y axis.
	Offset   vec.Vec2    `json:"offset"`
	Range    scale.Range `json:"range"`
	Ticks    []Tick      `json:"ticks"`
	TickSize float64     `json:"tick_size"`
	Padding  float64     `json:"padding"`
}

// Build computes the ticks of s for the given orientation.
func Build(o Orientation, s scale.Linear, offset vec.Vec2, count int) Axis {
	values := s.Ticks(count)
	format := s.TickFormat(count)
	ticks := make([]Tick, len(values))
	for i, v := range values {
		ticks[i] = Tick{Value: v, Pos: s.Map(v), Label: format(v)}
	}
	return Axis{
		Orientation: o,
		Offset:      offset,
		Range:       s.Range(),
		Ticks:       ticks,
		TickSize:    TickSize,
		Padding:     TickPadding,
	}
}

// Point returns the absolute pixel position of a tick on the axis line.
func (a Axis) Point(t Tick) vec.Vec2 {
	if a.Orientation.Vertical() {
		return vec.Vec2{X: a.Offset.X, Y: a.Offset.Y + t.Pos}
	}
	return vec.Vec2{X: a.Offset.X + t.Pos, Y: a.Offset.Y}
}

// Direction is the unit vector a tick points along, away from the plot.
func (a Axis) Direction() vec.Vec2 {
	if a.Orientation.Vertical() {
		return vec.Vec2{X: -1}
	}
	return vec.Vec2{Y: 1}
}

func (a Axis) String() string {
	return fmt.Sprintf("%s axis %s, %d ticks", a.Orientation, a.Range, len(a.Ticks))
}

// Renderer owns the two axis mounts of one viewport.
type Renderer struct {
	surface Surface
	x, y    Handle
}

// NewRenderer creates both mounts on s.
func NewRenderer(s Surface) *Renderer {
	return &Renderer{
		surface: s,
		x:       s.CreateAxisMount(Bottom),
		y:       s.CreateAxisMount(Left),
	}
}

// Layout computes both axes. base scales fix where the axes sit, the
// rescaled ones supply the ticks.
func Layout(baseX, baseY, x, y scale.Linear) (xa, ya Axis) {
	xa = Build(Bottom, x, vec.Vec2{Y: baseY.Map(baseY.Domain().Lo)}, scale.DefaultTickCount)
	ya = Build(Left, y, vec.Vec2{X: baseX.Map(baseX.Domain().Lo)}, scale.DefaultTickCount)
	return xa, ya
}

// Draw lays out and draws both axes and returns what was drawn.
func (r *Renderer) Draw(baseX, baseY, x, y scale.Linear) (xa, ya Axis) {
	xa, ya = Layout(baseX, baseY, x, y)
	r.surface.DrawTicks(r.x, xa)
	r.surface.DrawTicks(r.y, ya)
	return xa, ya
}
