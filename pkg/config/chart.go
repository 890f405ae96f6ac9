// Package config loads chart files: the domains, size and data series a
// viewport is built from.
//
// Chart files may be TOML, YAML or JSON; the format is chosen from the file
// extension. A minimal TOML chart:
//
//	title    = "latency"
//	width    = 800.0
//	height   = 500.0
//	x_domain = { lo = 0.0, hi = 100.0 }
//	y_domain = { lo = 0.0, hi = 10.0 }
//
//	[[series]]
//	name   = "p50"
//	color  = "#4682b4"
//	points = [[0, 1.5], [10, 2.0], [20, 2.4]]
//
// [Chart.ViewportConfig] turns a chart into a viewport.Config whose draw
// function plots every series through the visible scales.
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/panzoom/pkg/errors"
	"github.com/matzehuels/panzoom/pkg/scale"
	"github.com/matzehuels/panzoom/pkg/viewport"
	"github.com/matzehuels/panzoom/pkg/zoom"
)

// Format is a chart or script file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Default chart size in pixels.
const (
	DefaultWidth  = 800.0
	DefaultHeight = 500.0
)

// MaxSize bounds the width and height of a chart in pixels. Raster output
// allocates one pixel per unit of area.
const MaxSize = 8192.0

// ValidateSize rejects a width or height above MaxSize. Sizes that are not
// positive pass: a viewport waits for a usable size instead.
func ValidateSize(width, height float64) error {
	if width > MaxSize || height > MaxSize {
		return errors.New(errors.ErrCodeInvalidInput, "size %gx%g exceeds %g pixels", width, height, MaxSize)
	}
	return nil
}

// Series kinds.
const (
	KindLine   = "line"
	KindPoints = "points"
	KindBars   = "bars"
)

// Series is one named sequence of (x, y) points.
type Series struct {
	Name   string      `json:"name" toml:"name" yaml:"name"`
	Color  string      `json:"color,omitempty" toml:"color" yaml:"color,omitempty"`
	Kind   string      `json:"kind,omitempty" toml:"kind" yaml:"kind,omitempty"`
	Points [][]float64 `json:"points" toml:"points" yaml:"points"`
}

// Chart describes a viewport and the data plotted in it.
type Chart struct {
	Title       string            `json:"title,omitempty" toml:"title" yaml:"title,omitempty"`
	Width       float64           `json:"width,omitempty" toml:"width" yaml:"width,omitempty"`
	Height      float64           `json:"height,omitempty" toml:"height" yaml:"height,omitempty"`
	XDomain     scale.Domain      `json:"x_domain" toml:"x_domain" yaml:"x_domain"`
	YDomain     scale.Domain      `json:"y_domain" toml:"y_domain" yaml:"y_domain"`
	Margins     *viewport.Margins `json:"margins,omitempty" toml:"margins" yaml:"margins,omitempty"`
	ScaleExtent *zoom.ScaleExtent `json:"scale_extent,omitempty" toml:"scale_extent" yaml:"scale_extent,omitempty"`
	ClipID      string            `json:"clip_id,omitempty" toml:"clip_id" yaml:"clip_id,omitempty"`
	Series      []Series          `json:"series,omitempty" toml:"series" yaml:"series,omitempty"`
}

// FormatFromPath picks a format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown file type %q (want .toml, .yaml, .yml or .json)", filepath.Ext(path))
}

// Decode unmarshals data in the given format into v.
func Decode(data []byte, f Format, v any) error {
	var err error
	switch f {
	case FormatTOML:
		_, err = toml.Decode(string(data), v)
	case FormatYAML:
		err = yaml.Unmarshal(data, v)
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(v)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", f)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", f)
	}
	return nil
}

// Parse decodes and validates a chart, applying defaults.
func Parse(data []byte, f Format) (*Chart, error) {
	var c Chart
	if err := Decode(data, f, &c); err != nil {
		return nil, err
	}
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads the chart file at path.
func Load(path string) (*Chart, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "read chart %s", path)
	}
	c, err := Parse(data, f)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "chart %s", path)
	}
	return c, nil
}

// SetDefaults fills the size, series kinds and series colors left unset.
// Parse and Load call it; charts built in code should too.
func (c *Chart) SetDefaults() {
	if c.Width == 0 {
		c.Width = DefaultWidth
	}
	if c.Height == 0 {
		c.Height = DefaultHeight
	}
	for i := range c.Series {
		if c.Series[i].Kind == "" {
			c.Series[i].Kind = KindLine
		}
		if c.Series[i].Color == "" {
			c.Series[i].Color = Palette[i%len(Palette)]
		}
	}
}

// Validate checks the chart for values a viewport would reject.
func (c *Chart) Validate() error {
	if err := c.viewportConfig(nil).Validate(); err != nil {
		return err
	}
	if err := errors.ValidatePositive("width", c.Width); err != nil {
		return err
	}
	if err := errors.ValidatePositive("height", c.Height); err != nil {
		return err
	}
	if err := ValidateSize(c.Width, c.Height); err != nil {
		return err
	}
	for _, s := range c.Series {
		if err := s.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (s Series) validate() error {
	switch s.Kind {
	case "", KindLine, KindPoints, KindBars:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "series %q: unknown kind %q", s.Name, s.Kind)
	}
	if err := errors.ValidateColor(s.Color); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "series %q", s.Name)
	}
	for i, p := range s.Points {
		if len(p) != 2 {
			return errors.New(errors.ErrCodeInvalidConfig, "series %q: point %d has %d values, want 2", s.Name, i, len(p))
		}
		if err := errors.ValidateFinite("x", p[0]); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "series %q point %d", s.Name, i)
		}
		if err := errors.ValidateFinite("y", p[1]); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "series %q point %d", s.Name, i)
		}
	}
	return nil
}

// ViewportConfig returns a viewport configuration for the chart. base
// supplies callbacks, surface, logger and hooks. The chart's domains and
// draw function always win; margins, extent and clip id only when set.
func (c *Chart) ViewportConfig(base viewport.Config) viewport.Config {
	return c.viewportConfig(&base)
}

func (c *Chart) viewportConfig(base *viewport.Config) viewport.Config {
	var cfg viewport.Config
	if base != nil {
		cfg = *base
	}
	cfg.XDomain = c.XDomain
	cfg.YDomain = c.YDomain
	if c.Margins != nil {
		m := *c.Margins
		cfg.Margins = &m
	}
	if c.ScaleExtent != nil {
		cfg.ScaleExtent = *c.ScaleExtent
	}
	if c.ClipID != "" {
		cfg.ClipID = c.ClipID
	}
	cfg.Draw = c.Draw
	return cfg
}
