// Package script describes scripted interaction with a viewport and
// replays it, recording every domain-change notification per step.
//
// Scripts use the same file formats as charts:
//
//	name: zoom then pan
//	steps:
//	  - kind: dblclick
//	    at: [250, 200]
//	  - kind: drag
//	    from: [250, 200]
//	    to: [300, 200]
//	    moves: 5
//	  - kind: zoom_y
//	    domain: {lo: 2, hi: 4}
package script

import (
	"os"
	"strings"

	"seehuhn.de/go/geom/vec"

	"github.com/matzehuels/panzoom/pkg/config"
	"github.com/matzehuels/panzoom/pkg/errors"
	"github.com/matzehuels/panzoom/pkg/gesture"
	"github.com/matzehuels/panzoom/pkg/scale"
)

// Step kinds.
const (
	KindDrag     = "drag"
	KindWheel    = "wheel"
	KindDblClick = "dblclick"
	KindPinch    = "pinch"
	KindZoomX    = "zoom_x"
	KindZoomY    = "zoom_y"
	KindResize   = "resize"
	KindDomains  = "domains"
	KindRedraw   = "redraw"
	KindReset    = "reset"
	KindHover    = "hover"
	KindClick    = "click"
)

var kinds = map[string]bool{
	KindDrag: true, KindWheel: true, KindDblClick: true, KindPinch: true,
	KindZoomX: true, KindZoomY: true, KindResize: true, KindDomains: true,
	KindRedraw: true, KindReset: true, KindHover: true, KindClick: true,
}

// Step is one scripted interaction. Which fields apply depends on Kind.
type Step struct {
	Kind string `json:"kind" toml:"kind" yaml:"kind"`

	// At is the pixel position for wheel, dblclick, hover and click.
	At []float64 `json:"at,omitempty" toml:"at" yaml:"at,omitempty"`
	// From and To bound a drag. A pinch uses them as its two pointers.
	From  []float64 `json:"from,omitempty" toml:"from" yaml:"from,omitempty"`
	To    []float64 `json:"to,omitempty" toml:"to" yaml:"to,omitempty"`
	Moves int       `json:"moves,omitempty" toml:"moves" yaml:"moves,omitempty"`

	// Delta and Mode describe a wheel event.
	Delta float64 `json:"delta,omitempty" toml:"delta" yaml:"delta,omitempty"`
	Mode  string  `json:"mode,omitempty" toml:"mode" yaml:"mode,omitempty"`
	Ctrl  bool    `json:"ctrl,omitempty" toml:"ctrl" yaml:"ctrl,omitempty"`
	Shift bool    `json:"shift,omitempty" toml:"shift" yaml:"shift,omitempty"`

	// Scale is the spread factor of a pinch.
	Scale float64 `json:"scale,omitempty" toml:"scale" yaml:"scale,omitempty"`

	Domain  *scale.Domain `json:"domain,omitempty" toml:"domain" yaml:"domain,omitempty"`
	XDomain *scale.Domain `json:"x_domain,omitempty" toml:"x_domain" yaml:"x_domain,omitempty"`
	YDomain *scale.Domain `json:"y_domain,omitempty" toml:"y_domain" yaml:"y_domain,omitempty"`

	Width  float64 `json:"width,omitempty" toml:"width" yaml:"width,omitempty"`
	Height float64 `json:"height,omitempty" toml:"height" yaml:"height,omitempty"`

	// User is the userInitiated flag of a redraw step.
	User bool `json:"user,omitempty" toml:"user" yaml:"user,omitempty"`
}

// Script is a named list of steps.
type Script struct {
	Name  string `json:"name,omitempty" toml:"name" yaml:"name,omitempty"`
	Steps []Step `json:"steps" toml:"steps" yaml:"steps"`
}

// Parse decodes and validates a script.
func Parse(data []byte, f config.Format) (*Script, error) {
	var s Script
	if err := config.Decode(data, f, &s); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads the script file at path.
func Load(path string) (*Script, error) {
	f, err := config.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "read script %s", path)
	}
	s, err := Parse(data, f)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "script %s", path)
	}
	return s, nil
}

// Validate checks that every step carries the fields its kind needs.
func (s *Script) Validate() error {
	for i, st := range s.Steps {
		if err := st.validate(); err != nil {
			return errors.Wrap(errors.GetCode(err), err, "step %d", i)
		}
	}
	return nil
}

func (st Step) validate() error {
	if !kinds[st.Kind] {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown step kind %q", st.Kind)
	}
	need := func(name string, p []float64) error {
		if len(p) != 2 {
			return errors.New(errors.ErrCodeInvalidConfig, "%s: %s needs [x, y]", st.Kind, name)
		}
		return nil
	}
	switch st.Kind {
	case KindDrag, KindPinch:
		if err := need("from", st.From); err != nil {
			return err
		}
		if err := need("to", st.To); err != nil {
			return err
		}
		if st.Kind == KindPinch {
			return errors.ValidatePositive("pinch scale", st.Scale)
		}
	case KindWheel, KindDblClick, KindHover, KindClick:
		if err := need("at", st.At); err != nil {
			return err
		}
		if st.Kind == KindWheel {
			_, err := ParseWheelMode(st.Mode)
			return err
		}
	case KindZoomX, KindZoomY:
		if st.Domain == nil {
			return errors.New(errors.ErrCodeInvalidConfig, "%s needs a domain", st.Kind)
		}
	case KindResize:
		return config.ValidateSize(st.Width, st.Height)
	case KindDomains:
		if st.XDomain == nil || st.YDomain == nil {
			return errors.New(errors.ErrCodeInvalidConfig, "domains needs x_domain and y_domain")
		}
	}
	return nil
}

// ParseWheelMode maps "pixel", "line" and "page" to a wheel mode. The
// empty string is pixel mode.
func ParseWheelMode(s string) (gesture.WheelMode, error) {
	switch strings.ToLower(s) {
	case "", "pixel":
		return gesture.WheelPixel, nil
	case "line":
		return gesture.WheelLine, nil
	case "page":
		return gesture.WheelPage, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidConfig, "unknown wheel mode %q", s)
}

func point(p []float64) vec.Vec2 { return vec.Vec2{X: p[0], Y: p[1]} }
