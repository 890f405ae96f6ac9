package server

import (
	"seehuhn.de/go/geom/vec"

	"github.com/matzehuels/panzoom/pkg/config"
	"github.com/matzehuels/panzoom/pkg/errors"
	"github.com/matzehuels/panzoom/pkg/scale"
	"github.com/matzehuels/panzoom/pkg/script"
	"github.com/matzehuels/panzoom/pkg/viewport"
)

// Event types.
const (
	EventPointerDown = "pointerdown"
	EventPointerMove = "pointermove"
	EventPointerUp   = "pointerup"
	EventWheel       = "wheel"
	EventDblClick    = "dblclick"
	EventHover       = "hover"
	EventClick       = "click"
	EventZoom        = "zoom"
	EventResize      = "resize"
	EventReset       = "reset"
	EventRedraw      = "redraw"
)

// Event is one client interaction. X and Y are pixel positions relative to
// the viewport's top-left corner; which other fields apply depends on Type.
type Event struct {
	Type string  `json:"type"`
	ID   int     `json:"id,omitempty"`
	X    float64 `json:"x,omitempty"`
	Y    float64 `json:"y,omitempty"`

	DeltaY float64 `json:"delta_y,omitempty"`
	Mode   string  `json:"mode,omitempty"`
	Ctrl   bool    `json:"ctrl,omitempty"`
	Shift  bool    `json:"shift,omitempty"`

	Axis   string        `json:"axis,omitempty"`
	Domain *scale.Domain `json:"domain,omitempty"`

	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	User bool `json:"user,omitempty"`
}

// Apply delivers e to v. Hover and click return the data point under the
// pointer.
func (e Event) Apply(v *viewport.Viewport) (*viewport.DataPoint, error) {
	p := vec.Vec2{X: e.X, Y: e.Y}
	switch e.Type {
	case EventPointerDown:
		return nil, v.PointerDown(e.ID, p)
	case EventPointerMove:
		return nil, v.PointerMove(e.ID, p)
	case EventPointerUp:
		return nil, v.PointerUp(e.ID)
	case EventWheel:
		mode, err := script.ParseWheelMode(e.Mode)
		if err != nil {
			return nil, err
		}
		return nil, v.Wheel(p, e.DeltaY, mode, e.Ctrl)
	case EventDblClick:
		return nil, v.DoubleClick(p, e.Shift)
	case EventZoom:
		return nil, zoom(v, e.Axis, e.Domain)
	case EventResize:
		if err := config.ValidateSize(e.Width, e.Height); err != nil {
			return nil, err
		}
		return nil, v.Resize(e.Width, e.Height)
	case EventReset:
		return nil, v.Reset()
	case EventRedraw:
		return nil, v.Redraw(e.User)
	case EventHover, EventClick:
		var (
			dp  viewport.DataPoint
			err error
		)
		if e.Type == EventHover {
			dp, err = v.Hover(e.X, e.Y, vec.Vec2{})
		} else {
			dp, err = v.Click(e.X, e.Y, vec.Vec2{})
		}
		if err != nil {
			return nil, err
		}
		return &dp, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown event type %q", e.Type)
}

func zoom(v *viewport.Viewport, axis string, d *scale.Domain) error {
	if d == nil {
		return errors.New(errors.ErrCodeInvalidInput, "zoom needs a domain")
	}
	switch axis {
	case "x":
		return v.ZoomToX(*d)
	case "y":
		return v.ZoomToY(*d)
	}
	return errors.New(errors.ErrCodeInvalidInput, "unknown axis %q (want x or y)", axis)
}
