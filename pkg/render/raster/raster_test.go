package raster

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"github.com/matzehuels/panzoom/pkg/errors"
	"github.com/matzehuels/panzoom/pkg/mark"
	"github.com/matzehuels/panzoom/pkg/scale"
	"github.com/matzehuels/panzoom/pkg/viewport"
)

func render(t *testing.T, draw viewport.DrawFunc) (*Surface, *viewport.Viewport) {
	t.Helper()
	s := New()
	v, err := viewport.New(viewport.Config{
		XDomain: scale.Domain{Lo: 0, Hi: 100},
		YDomain: scale.Domain{Lo: 0, Hi: 10},
		Surface: s,
		Draw:    draw,
	})
	if err != nil {
		t.Fatalf("viewport.New() error = %v", err)
	}
	if err := v.Resize(500, 400); err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	return s, v
}

func rgba(c color.Color) (r, g, b uint8) {
	r32, g32, b32, _ := c.RGBA()
	return uint8(r32 >> 8), uint8(g32 >> 8), uint8(b32 >> 8)
}

func TestRenderFillsAndClips(t *testing.T) {
	s, v := render(t, func(dc viewport.DrawContext) mark.Node {
		// A large circle centred on the left plot edge; the half outside
		// the plot must be clipped.
		return dc.Clip(mark.Circle(dc.XScale.Map(0), dc.YScale.Map(5), 60, mark.Attrs{"fill": "#ff0000"}))
	})
	img, err := s.Render(v.Context())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 500 || b.Dy() != 400 {
		t.Fatalf("bounds = %v, want 500x400", b)
	}

	if r, g, b := rgba(img.At(60, 200)); r != 255 || g != 0 || b != 0 {
		t.Errorf("inside plot = (%d,%d,%d), want red", r, g, b)
	}
	if r, g, b := rgba(img.At(10, 200)); r != 255 || g != 255 || b != 255 {
		t.Errorf("outside plot = (%d,%d,%d), want white background", r, g, b)
	}
	if r, g, b := rgba(img.At(250, 100)); r != 255 || g != 255 || b != 255 {
		t.Errorf("empty plot area = (%d,%d,%d), want white", r, g, b)
	}
}

func TestRenderStrokesAndAxes(t *testing.T) {
	s, v := render(t, func(dc viewport.DrawContext) mark.Node {
		return dc.Clip(mark.Line(dc.XScale.Map(0), 200, dc.XScale.Map(100), 200, mark.Attrs{"stroke": "#0000ff", "stroke-width": "4"}))
	})
	img, err := s.Render(v.Context())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if r, g, b := rgba(img.At(250, 199)); r != 0 || g != 0 || b != 255 {
		t.Errorf("line pixel = (%d,%d,%d), want blue", r, g, b)
	}
	// Bottom axis line sits at y=370 and is one pixel wide.
	if r, _, _ := rgba(img.At(250, 370)); r > 200 {
		t.Errorf("axis pixel red = %d, want dark", r)
	}
}

func TestEncode(t *testing.T) {
	s, v := render(t, nil)
	var buf bytes.Buffer
	if err := s.Encode(&buf, v.Context()); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 500 || b.Dy() != 400 {
		t.Errorf("decoded bounds = %v, want 500x400", b)
	}
}

func TestRenderZeroSize(t *testing.T) {
	_, err := New().Render(viewport.DrawContext{})
	if !errors.Is(err, errors.ErrCodeZeroSizeViewport) {
		t.Errorf("Render() error = %v, want ZERO_SIZE_VIEWPORT", err)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in     string
		want   color.RGBA
		wantOK bool
	}{
		{"#ff8000", color.RGBA{255, 128, 0, 255}, true},
		{"#f80", color.RGBA{255, 136, 0, 255}, true},
		{"SteelBlue", color.RGBA{70, 130, 180, 255}, true},
		{"none", color.RGBA{}, false},
		{"#12345", color.RGBA{}, false},
		{"#gggggg", color.RGBA{}, false},
		{"", color.RGBA{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseColor(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ParseColor(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
