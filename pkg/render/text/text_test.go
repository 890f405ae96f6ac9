package text

import (
	"strings"
	"testing"

	"seehuhn.de/go/geom/vec"

	"github.com/matzehuels/panzoom/pkg/mark"
	"github.com/matzehuels/panzoom/pkg/scale"
	"github.com/matzehuels/panzoom/pkg/viewport"
)

// newViewport builds a 100x40 px viewport, which is a 100x20 grid with the
// default cell. The plot spans x [10,98] and y [2,36].
func newViewport(t *testing.T, s *Surface, draw viewport.DrawFunc) *viewport.Viewport {
	t.Helper()
	v, err := viewport.New(viewport.Config{
		XDomain: scale.Domain{Lo: 0, Hi: 100},
		YDomain: scale.Domain{Lo: 0, Hi: 10},
		Margins: &viewport.Margins{Left: 10, Right: 2, Top: 2, Bottom: 4},
		Surface: s,
		Draw:    draw,
	})
	if err != nil {
		t.Fatalf("viewport.New() error = %v", err)
	}
	if err := v.Resize(100, 40); err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	return v
}

func points(dc viewport.DrawContext) mark.Node {
	return dc.Clip(
		mark.Circle(dc.XScale.Map(50), dc.YScale.Map(5), 1, nil),
		mark.Circle(dc.XScale.Map(75), dc.YScale.Map(5), 1, nil),
		mark.Circle(dc.XScale.Map(-5), dc.YScale.Map(5), 1, nil),
	)
}

func TestRenderLayout(t *testing.T) {
	s := New()
	v := newViewport(t, s, points)
	g := s.Render(v.Context())

	if g.Cols() != 100 || g.Rows() != 20 {
		t.Fatalf("grid = %dx%d, want 100x20", g.Cols(), g.Rows())
	}
	tests := []struct {
		name string
		c, r int
		want rune
	}{
		{"point", 54, 9, GlyphPoint},
		{"clipped point", 5, 9, ' '},
		{"origin", 10, 18, GlyphOrig},
		{"x axis", 20, 18, GlyphAxisH},
		{"y axis", 10, 3, GlyphAxisV},
		{"x label", 10, 19, '0'},
		{"y label", 8, 9, '5'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.At(tt.c, tt.r); got != tt.want {
				t.Errorf("At(%d, %d) = %q, want %q\n%s", tt.c, tt.r, got, tt.want, g)
			}
		})
	}
}

func TestRenderTracksZoom(t *testing.T) {
	s := New()
	v := newViewport(t, s, points)
	if n := strings.Count(s.Render(v.Context()).String(), string(GlyphPoint)); n != 2 {
		t.Fatalf("points before zoom = %d, want 2", n)
	}
	if err := v.ZoomToX(scale.Domain{Lo: 0, Hi: 50}); err != nil {
		t.Fatalf("ZoomToX() error = %v", err)
	}
	g := s.Render(v.Context())
	if n := strings.Count(g.String(), string(GlyphPoint)); n != 1 {
		t.Errorf("points after zoom = %d, want 1\n%s", n, g)
	}
	if got := g.At(98, 9); got != GlyphPoint {
		t.Errorf("At(98, 9) = %q, want point at the right plot edge", got)
	}
}

func TestLine(t *testing.T) {
	s := New()
	v := newViewport(t, s, func(dc viewport.DrawContext) mark.Node {
		return mark.Polyline([]vec.Vec2{{X: 20, Y: 10}, {X: 40, Y: 10}, {X: 40, Y: 30}}, nil)
	})
	g := s.Render(v.Context())
	for _, cell := range [][2]int{{20, 5}, {30, 5}, {40, 5}, {40, 10}, {40, 15}} {
		if got := g.At(cell[0], cell[1]); got != GlyphLine {
			t.Errorf("At(%d, %d) = %q, want %q", cell[0], cell[1], got, GlyphLine)
		}
	}
}

func TestTextAndRect(t *testing.T) {
	s := New(WithCell(2, 2))
	v := newViewport(t, s, func(dc viewport.DrawContext) mark.Node {
		return mark.Group(nil,
			mark.Rect(40, 10, 4, 4, nil),
			mark.Text(60, 10, "hi", nil),
		)
	})
	g := s.Render(v.Context())
	if g.Cols() != 50 {
		t.Fatalf("Cols() = %d, want 50", g.Cols())
	}
	if got := g.At(21, 6); got != GlyphRect {
		t.Errorf("rect cell = %q, want %q", got, GlyphRect)
	}
	if got := string([]rune{g.At(30, 5), g.At(31, 5)}); got != "hi" {
		t.Errorf("text = %q, want hi", got)
	}
}

func TestStringTrims(t *testing.T) {
	g := New().Render(viewport.DrawContext{Size: viewport.Size{Width: 4, Height: 4}})
	if got := g.String(); got != "\n" {
		t.Errorf("String() = %q, want two empty rows", got)
	}
}
