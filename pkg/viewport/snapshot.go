package viewport

import (
	"github.com/matzehuels/panzoom/pkg/axis"
	"github.com/matzehuels/panzoom/pkg/scale"
	"github.com/matzehuels/panzoom/pkg/zoom"
)

// Snapshot is a serializable view of a viewport after its last redraw.
type Snapshot struct {
	Ready      bool           `json:"ready"`
	Size       Size           `json:"size"`
	Margins    Margins        `json:"margins"`
	ClipID     string         `json:"clip_id"`
	XBounds    scale.Domain   `json:"x_bounds"`
	YBounds    scale.Domain   `json:"y_bounds"`
	XDomain    scale.Domain   `json:"x_domain"`
	YDomain    scale.Domain   `json:"y_domain"`
	XTransform zoom.Transform `json:"x_transform"`
	YTransform zoom.Transform `json:"y_transform"`
	Composite  zoom.Transform `json:"composite"`
	Phase      string         `json:"phase"`
	XAxis      *axis.Axis     `json:"x_axis,omitempty"`
	YAxis      *axis.Axis     `json:"y_axis,omitempty"`
}

// Snapshot captures the current state.
func (v *Viewport) Snapshot() Snapshot {
	s := Snapshot{
		Ready:   v.ready,
		Size:    v.size,
		Margins: *v.cfg.Margins,
		ClipID:  v.cfg.ClipID,
		XBounds: v.cfg.XDomain,
		YBounds: v.cfg.YDomain,
	}
	if !v.ready || !v.drawn {
		return s
	}
	gs := v.state.Gesture
	xa, ya := v.xa, v.ya
	s.XDomain = v.xr.Domain()
	s.YDomain = v.yr.Domain()
	s.XTransform = gs.X.Transform()
	s.YTransform = gs.Y.Transform()
	s.Composite = gs.Z
	s.Phase = gs.Phase.String()
	s.XAxis = &xa
	s.YAxis = &ya
	return s
}
