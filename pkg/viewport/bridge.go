package viewport

import (
	"seehuhn.de/go/geom/rect"

	"github.com/matzehuels/panzoom/pkg/mark"
	"github.com/matzehuels/panzoom/pkg/scale"
)

// DrawContext is what a draw function receives on every redraw: the
// visible scales after the latest gesture or resize, and the geometry
// needed to clip marks to the plot.
type DrawContext struct {
	XScale  scale.Linear
	YScale  scale.Linear
	Size    Size
	Margins Margins
	ClipID  string
}

// DrawFunc builds marks for the current scales.
type DrawFunc func(DrawContext) mark.Node

// Plot returns the plotting rectangle.
func (dc DrawContext) Plot() rect.Rect {
	return rect.Rect{
		LLx: dc.Margins.Left,
		LLy: dc.Margins.Top,
		URx: dc.Size.Width - dc.Margins.Right,
		URy: dc.Size.Height - dc.Margins.Bottom,
	}
}

// Clip wraps children in a group clipped to the plot.
func (dc DrawContext) Clip(children ...mark.Node) mark.Node {
	return mark.Clip(dc.ClipID, children...)
}

// Context returns the draw context of the last redraw.
func (v *Viewport) Context() DrawContext {
	return v.contextFor(v.xr, v.yr)
}

func (v *Viewport) contextFor(x, y scale.Linear) DrawContext {
	return DrawContext{
		XScale:  x,
		YScale:  y,
		Size:    v.state.Size,
		Margins: *v.cfg.Margins,
		ClipID:  v.cfg.ClipID,
	}
}
