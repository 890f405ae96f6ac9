package render

import (
	"bytes"
	"encoding/json"
	"image/png"
	"strings"
	"testing"

	"github.com/matzehuels/panzoom/pkg/errors"
	"github.com/matzehuels/panzoom/pkg/mark"
	"github.com/matzehuels/panzoom/pkg/scale"
	"github.com/matzehuels/panzoom/pkg/viewport"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"txt", false},
		{"json", false},
		{"pdf", false},
		{"gif", true},
		{"", true},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			err := ValidateFormat(tt.format)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("ValidateFormat(%q) code = %s, want INVALID_FORMAT", tt.format, errors.GetCode(err))
			}
		})
	}
}

func newMultiViewport(t *testing.T, st Style) (*Multi, *viewport.Viewport) {
	t.Helper()
	m, err := NewMulti(st)
	if err != nil {
		t.Fatalf("NewMulti() error = %v", err)
	}
	v, err := viewport.New(viewport.Config{
		XDomain: scale.Domain{Lo: 0, Hi: 100},
		YDomain: scale.Domain{Lo: 0, Hi: 10},
		ClipID:  "plot",
		Surface: m,
		Draw: func(dc viewport.DrawContext) mark.Node {
			return dc.Clip(mark.Circle(dc.XScale.Map(50), dc.YScale.Map(5), 4, mark.Attrs{"fill": "#ff0000"}))
		},
	})
	if err != nil {
		t.Fatalf("viewport.New() error = %v", err)
	}
	return m, v
}

func TestMultiRender(t *testing.T) {
	m, v := newMultiViewport(t, Style{Title: "demo", Background: "#ffffff"})

	if _, err := m.Render(v, FormatSVG); !errors.Is(err, errors.ErrCodeNotReady) {
		t.Errorf("Render() before resize error = %v, want NOT_READY", err)
	}
	if err := v.Resize(200, 100); err != nil {
		t.Fatalf("Resize() error = %v", err)
	}

	doc, err := m.Render(v, FormatSVG)
	if err != nil {
		t.Fatalf("Render(svg) error = %v", err)
	}
	for _, want := range []string{"<title>demo</title>", `fill="#ffffff"`, `clip-path="url(#plot)"`, "<circle"} {
		if !bytes.Contains(doc, []byte(want)) {
			t.Errorf("svg missing %q", want)
		}
	}

	img, err := m.Render(v, FormatPNG)
	if err != nil {
		t.Fatalf("Render(png) error = %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(img))
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 200 || b.Dy() != 100 {
		t.Errorf("png size = %dx%d, want 200x100", b.Dx(), b.Dy())
	}

	grid, err := m.Render(v, FormatText)
	if err != nil {
		t.Fatalf("Render(txt) error = %v", err)
	}
	if !strings.ContainsRune(string(grid), '•') {
		t.Errorf("text grid has no point:\n%s", grid)
	}

	snap, err := m.Render(v, FormatJSON)
	if err != nil {
		t.Fatalf("Render(json) error = %v", err)
	}
	var s viewport.Snapshot
	if err := json.Unmarshal(snap, &s); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if !s.Ready || s.ClipID != "plot" || s.XDomain != (scale.Domain{Lo: 0, Hi: 100}) {
		t.Errorf("snapshot = %+v", s)
	}

	if _, err := m.Render(v, "gif"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Render(gif) error = %v, want INVALID_FORMAT", err)
	}
}

func TestMultiTracksPatches(t *testing.T) {
	m, v := newMultiViewport(t, Style{})
	if err := v.Resize(200, 100); err != nil {
		t.Fatal(err)
	}
	if err := v.ZoomToX(scale.Domain{Lo: 0, Hi: 50}); err != nil {
		t.Fatal(err)
	}
	want := v.Marks()
	for name, got := range map[string]mark.Node{
		"svg":    m.SVG.Root(),
		"raster": m.Raster.Root(),
		"text":   m.Text.Root(),
	} {
		if !got.Equal(want) {
			t.Errorf("%s tree differs from viewport marks", name)
		}
	}
}

func TestNewMultiBadBackground(t *testing.T) {
	if _, err := NewMulti(Style{Background: "tomato"}); err == nil {
		t.Error("NewMulti() with a named background should fail")
	}
}
