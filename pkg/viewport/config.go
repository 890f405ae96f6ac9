package viewport

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/panzoom/pkg/axis"
	"github.com/matzehuels/panzoom/pkg/errors"
	"github.com/matzehuels/panzoom/pkg/mark"
	"github.com/matzehuels/panzoom/pkg/observability"
	"github.com/matzehuels/panzoom/pkg/scale"
	"github.com/matzehuels/panzoom/pkg/zoom"
)

// DefaultMargin is the margin applied on every side when none is configured.
const DefaultMargin = 30.0

// Margins reserve space around the plot for the axis strips.
type Margins struct {
	Left   float64 `json:"left" toml:"left" yaml:"left"`
	Right  float64 `json:"right" toml:"right" yaml:"right"`
	Top    float64 `json:"top" toml:"top" yaml:"top"`
	Bottom float64 `json:"bottom" toml:"bottom" yaml:"bottom"`
}

// DefaultMargins returns 30px on every side.
func DefaultMargins() Margins {
	return Margins{Left: DefaultMargin, Right: DefaultMargin, Top: DefaultMargin, Bottom: DefaultMargin}
}

// Validate requires finite, non-negative margins.
func (m Margins) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{{"left margin", m.Left}, {"right margin", m.Right}, {"top margin", m.Top}, {"bottom margin", m.Bottom}} {
		if err := errors.ValidateNonNegative(f.name, f.v); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid margins")
		}
	}
	return nil
}

// PointerKind distinguishes hover from click in pointer notifications.
type PointerKind int

const (
	PointerHover PointerKind = iota
	PointerClick
)

func (k PointerKind) String() string {
	if k == PointerClick {
		return "click"
	}
	return "hover"
}

// DataPoint is a position in data coordinates.
type DataPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DomainFunc receives a visible-domain change. userInitiated is false only
// for changes caused by ZoomToX and ZoomToY.
type DomainFunc func(d scale.Domain, userInitiated bool)

// PointerFunc receives hover and click positions in data coordinates.
type PointerFunc func(kind PointerKind, p DataPoint)

// Surface is a rendering collaborator for both axes and marks.
type Surface interface {
	axis.Surface
	mark.Applier
}

// Config configures a Viewport. XDomain and YDomain are required; every
// other field has a default.
type Config struct {
	XDomain scale.Domain
	YDomain scale.Domain

	// Margins defaults to 30px on every side when nil.
	Margins *Margins

	// ScaleExtent bounds the zoom factor of each axis. The zero value
	// means [1, 10].
	ScaleExtent zoom.ScaleExtent

	OnXDomainModified DomainFunc
	OnYDomainModified DomainFunc
	OnPointer         PointerFunc

	// Draw builds the marks for the current scales on every redraw.
	Draw DrawFunc

	// Surface receives axis ticks and mark patches. It may be nil.
	Surface Surface

	// ClipID names the clip region of the plot. When empty a process-wide
	// counter supplies "clip-path-<n>".
	ClipID string

	Logger *log.Logger
	Hooks  observability.ViewportHooks
}

// Validate checks domains, margins and scale extent.
func (c Config) Validate() error {
	if err := c.XDomain.Validate(); err != nil {
		return errors.Wrap(errors.GetCode(err), err, "x domain")
	}
	if err := c.YDomain.Validate(); err != nil {
		return errors.Wrap(errors.GetCode(err), err, "y domain")
	}
	if c.Margins != nil {
		if err := c.Margins.Validate(); err != nil {
			return err
		}
	}
	if c.ScaleExtent != (zoom.ScaleExtent{}) {
		if err := c.ScaleExtent.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// withDefaults fills unset optional fields.
func (c Config) withDefaults() Config {
	if c.Margins == nil {
		m := DefaultMargins()
		c.Margins = &m
	} else {
		m := *c.Margins
		c.Margins = &m
	}
	if c.ScaleExtent == (zoom.ScaleExtent{}) {
		c.ScaleExtent = zoom.DefaultScaleExtent
	}
	if c.ClipID == "" {
		c.ClipID = nextClipID()
	}
	if c.Logger == nil {
		c.Logger = log.New(io.Discard)
	}
	if c.Hooks == nil {
		c.Hooks = observability.Viewport()
	}
	return c
}

var clipSeq atomic.Uint64

func nextClipID() string {
	return fmt.Sprintf("clip-path-%d", clipSeq.Add(1))
}
