package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/matzehuels/panzoom/pkg/errors"
	"github.com/matzehuels/panzoom/pkg/mark"
	"github.com/matzehuels/panzoom/pkg/scale"
	"github.com/matzehuels/panzoom/pkg/viewport"
	"github.com/matzehuels/panzoom/pkg/zoom"
)

const chartTOML = `
title    = "latency"
width    = 500.0
height   = 400.0
x_domain = { lo = 0.0, hi = 100.0 }
y_domain = { lo = 0.0, hi = 10.0 }
scale_extent = { min = 1.0, max = 20.0 }

[margins]
left = 40.0
right = 10.0
top = 10.0
bottom = 30.0

[[series]]
name   = "p50"
points = [[0.0, 1.0], [50.0, 5.0], [100.0, 9.0]]

[[series]]
name   = "errors"
kind   = "points"
color  = "#ff0000"
points = [[25.0, 2.0]]
`

const chartYAML = `
title: latency
width: 500
height: 400
x_domain: {lo: 0, hi: 100}
y_domain: {lo: 0, hi: 10}
scale_extent: {min: 1, max: 20}
margins: {left: 40, right: 10, top: 10, bottom: 30}
series:
  - name: p50
    points: [[0, 1], [50, 5], [100, 9]]
  - name: errors
    kind: points
    color: "#ff0000"
    points: [[25, 2]]
`

const chartJSON = `{
  "title": "latency",
  "width": 500,
  "height": 400,
  "x_domain": {"lo": 0, "hi": 100},
  "y_domain": {"lo": 0, "hi": 10},
  "scale_extent": {"min": 1, "max": 20},
  "margins": {"left": 40, "right": 10, "top": 10, "bottom": 30},
  "series": [
    {"name": "p50", "points": [[0, 1], [50, 5], [100, 9]]},
    {"name": "errors", "kind": "points", "color": "#ff0000", "points": [[25, 2]]}
  ]
}`

func wantChart() *Chart {
	return &Chart{
		Title:       "latency",
		Width:       500,
		Height:      400,
		XDomain:     scale.Domain{Lo: 0, Hi: 100},
		YDomain:     scale.Domain{Lo: 0, Hi: 10},
		Margins:     &viewport.Margins{Left: 40, Right: 10, Top: 10, Bottom: 30},
		ScaleExtent: &zoom.ScaleExtent{Min: 1, Max: 20},
		Series: []Series{
			{Name: "p50", Kind: KindLine, Color: Palette[0], Points: [][]float64{{0, 1}, {50, 5}, {100, 9}}},
			{Name: "errors", Kind: KindPoints, Color: "#ff0000", Points: [][]float64{{25, 2}}},
		},
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		data   string
	}{
		{"toml", FormatTOML, chartTOML},
		{"yaml", FormatYAML, chartYAML},
		{"json", FormatJSON, chartJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.data), tt.format)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if want := wantChart(); !reflect.DeepEqual(got, want) {
				t.Errorf("Parse() = %+v, want %+v", got, want)
			}
		})
	}
}

func TestParseDefaults(t *testing.T) {
	c, err := Parse([]byte(`{"x_domain": {"lo": 0, "hi": 1}, "y_domain": {"lo": 0, "hi": 1}}`), FormatJSON)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if c.Width != DefaultWidth || c.Height != DefaultHeight {
		t.Errorf("size = %vx%v, want %vx%v", c.Width, c.Height, DefaultWidth, DefaultHeight)
	}
	if c.Margins != nil || c.ScaleExtent != nil {
		t.Error("unset margins and extent should stay nil")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		code errors.Code
	}{
		{"malformed", `{"x_domain":`, errors.ErrCodeInvalidConfig},
		{"unknown field", `{"x_domain": {"lo": 0, "hi": 1}, "y_domain": {"lo": 0, "hi": 1}, "zoom": 2}`, errors.ErrCodeInvalidConfig},
		{"missing domain", `{"x_domain": {"lo": 0, "hi": 1}}`, errors.ErrCodeDegenerateDomain},
		{"reversed domain", `{"x_domain": {"lo": 5, "hi": 1}, "y_domain": {"lo": 0, "hi": 1}}`, errors.ErrCodeInvalidDomain},
		{"bad extent", `{"x_domain": {"lo": 0, "hi": 1}, "y_domain": {"lo": 0, "hi": 1}, "scale_extent": {"min": 5, "max": 2}}`, errors.ErrCodeInvalidConfig},
		{"negative margin", `{"x_domain": {"lo": 0, "hi": 1}, "y_domain": {"lo": 0, "hi": 1}, "margins": {"left": -1}}`, errors.ErrCodeInvalidConfig},
		{"negative width", `{"width": -5, "x_domain": {"lo": 0, "hi": 1}, "y_domain": {"lo": 0, "hi": 1}}`, errors.ErrCodeInvalidInput},
		{"oversized", `{"width": 1e6, "height": 1e6, "x_domain": {"lo": 0, "hi": 1}, "y_domain": {"lo": 0, "hi": 1}}`, errors.ErrCodeInvalidInput},
		{"bad kind", `{"x_domain": {"lo": 0, "hi": 1}, "y_domain": {"lo": 0, "hi": 1}, "series": [{"name": "a", "kind": "pie"}]}`, errors.ErrCodeInvalidConfig},
		{"bad color", `{"x_domain": {"lo": 0, "hi": 1}, "y_domain": {"lo": 0, "hi": 1}, "series": [{"name": "a", "color": "red"}]}`, errors.ErrCodeInvalidConfig},
		{"short point", `{"x_domain": {"lo": 0, "hi": 1}, "y_domain": {"lo": 0, "hi": 1}, "series": [{"name": "a", "points": [[1]]}]}`, errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), FormatJSON)
			if !errors.Is(err, tt.code) {
				t.Errorf("Parse() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"chart.toml", FormatTOML, false},
		{"chart.YAML", FormatYAML, false},
		{"chart.yml", FormatYAML, false},
		{"dir/chart.json", FormatJSON, false},
		{"chart.csv", "", true},
		{"chart", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FormatFromPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("FormatFromPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chart.toml")
	if err := os.WriteFile(path, []byte(chartTOML), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Title != "latency" || len(c.Series) != 2 {
		t.Errorf("Load() = %+v", c)
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Load(missing) error = %v, want NOT_FOUND", err)
	}
}

func TestViewportConfigDraws(t *testing.T) {
	c := wantChart()
	var notified []scale.Domain
	cfg := c.ViewportConfig(viewport.Config{
		OnXDomainModified: func(d scale.Domain, _ bool) { notified = append(notified, d) },
	})
	if cfg.ScaleExtent != (zoom.ScaleExtent{Min: 1, Max: 20}) {
		t.Errorf("ScaleExtent = %v, want [1, 20]", cfg.ScaleExtent)
	}
	v, err := viewport.New(cfg)
	if err != nil {
		t.Fatalf("viewport.New() error = %v", err)
	}
	if err := v.Resize(c.Width, c.Height); err != nil {
		t.Fatalf("Resize() error = %v", err)
	}

	// Plot spans x [40,490] and y [10,370].
	root := v.Marks()
	if got := mark.Count(root, mark.KindPolyline); got != 1 {
		t.Errorf("polylines = %d, want 1", got)
	}
	if got := mark.Count(root, mark.KindCircle); got != 1 {
		t.Errorf("circles = %d, want 1", got)
	}
	line := root.Children[0].Children[0]
	if got, _ := line.Attr("points"); got != "40,334 265,190 490,46" {
		t.Errorf("points = %q, want 40,334 265,190 490,46", got)
	}
	if got, _ := line.Attr("stroke"); got != Palette[0] {
		t.Errorf("stroke = %q, want %q", got, Palette[0])
	}
	if root.Children[1].Key != "errors" {
		t.Errorf("series key = %q, want errors", root.Children[1].Key)
	}

	if err := v.ZoomToX(scale.Domain{Lo: 0, Hi: 50}); err != nil {
		t.Fatalf("ZoomToX() error = %v", err)
	}
	if len(notified) != 1 || !notified[0].ApproxEqual(scale.Domain{Lo: 0, Hi: 50}, 1e-9) {
		t.Errorf("notified = %v, want [[0, 50]]", notified)
	}
	line = v.Marks().Children[0].Children[0]
	if got, _ := line.Attr("points"); got != "40,334 490,190 940,46" {
		t.Errorf("zoomed points = %q", got)
	}
}

func TestBars(t *testing.T) {
	c := &Chart{
		XDomain: scale.Domain{Lo: 0, Hi: 10},
		YDomain: scale.Domain{Lo: 0, Hi: 10},
		Series:  []Series{{Name: "b", Kind: KindBars, Points: [][]float64{{2, 5}, {4, 10}}}},
	}
	c.SetDefaults()
	v, err := viewport.New(c.ViewportConfig(viewport.Config{Margins: &viewport.Margins{}}))
	if err != nil {
		t.Fatalf("viewport.New() error = %v", err)
	}
	if err := v.Resize(100, 100); err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	bar := v.Marks().Children[0].Children[0]
	want := map[string]string{"x": "12", "y": "50", "width": "16", "height": "50"}
	for k, w := range want {
		if got, _ := bar.Attr(k); got != w {
			t.Errorf("bar %s = %q, want %q", k, got, w)
		}
	}
}
