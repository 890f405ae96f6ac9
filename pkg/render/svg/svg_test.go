package svg

import (
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/matzehuels/panzoom/pkg/mark"
	"github.com/matzehuels/panzoom/pkg/scale"
	"github.com/matzehuels/panzoom/pkg/viewport"
)

func newViewport(t *testing.T, s *Surface) *viewport.Viewport {
	t.Helper()
	v, err := viewport.New(viewport.Config{
		XDomain: scale.Domain{Lo: 0, Hi: 100},
		YDomain: scale.Domain{Lo: 0, Hi: 10},
		ClipID:  "plot",
		Surface: s,
		Draw: func(dc viewport.DrawContext) mark.Node {
			return dc.Clip(
				mark.Circle(dc.XScale.Map(40), dc.YScale.Map(5), 3, mark.Attrs{"fill": "steelblue"}),
				mark.Text(dc.XScale.Map(40), dc.YScale.Map(5), "a<b", nil),
			)
		},
	})
	if err != nil {
		t.Fatalf("viewport.New() error = %v", err)
	}
	if err := v.Resize(500, 400); err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	return v
}

func TestRenderWellFormed(t *testing.T) {
	s := New(WithTitle("Q&A"), WithBackground("white"))
	v := newViewport(t, s)
	out := s.Render(v.Context())

	dec := xml.NewDecoder(strings.NewReader(string(out)))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("output is not well-formed XML: %v\n%s", err, out)
		}
	}

	doc := string(out)
	for _, want := range []string{
		`viewBox="0 0 500 400"`,
		`<clipPath id="plot"><rect x="30" y="30" width="440" height="340"/></clipPath>`,
		`<title>Q&amp;A</title>`,
		`fill="white"`,
		`clip-path="url(#plot)"`,
		`<circle cx="206" cy="200" fill="steelblue" r="3"/>`,
		`>a&lt;b</text>`,
		`class="axis axis-x" transform="translate(0,370)"`,
		`class="axis axis-y" transform="translate(30,0)"`,
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("Render() missing %q", want)
		}
	}
}

func TestRenderTracksZoom(t *testing.T) {
	s := New()
	v := newViewport(t, s)
	if err := v.ZoomToX(scale.Domain{Lo: 30, Hi: 50}); err != nil {
		t.Fatalf("ZoomToX() error = %v", err)
	}
	doc := string(s.Render(v.Context()))

	if !strings.Contains(doc, `<circle cx="250"`) {
		t.Errorf("circle not moved after zoom:\n%s", doc)
	}
	if !strings.Contains(doc, ">40</text>") {
		t.Error("zoomed x axis missing label 40")
	}
	if strings.Contains(doc, ">60</text>") {
		t.Error("zoomed x axis still has label 60")
	}
	if n := strings.Count(doc, "<circle"); n != 1 {
		t.Errorf("circle count = %d, want 1", n)
	}
}

func TestOptions(t *testing.T) {
	s := New(WithFont("monospace", 12), WithAxisColor("#333"))
	if s.font != "monospace" || s.fontSize != 12 {
		t.Errorf("font = %q %v, want monospace 12", s.font, s.fontSize)
	}
	if s.axisColor != "#333" {
		t.Errorf("axisColor = %q, want #333", s.axisColor)
	}
	s = New(WithFont("serif", 0))
	if s.fontSize != defaultFontSize {
		t.Errorf("fontSize = %v, want default %v", s.fontSize, defaultFontSize)
	}
}

func TestRenderEmpty(t *testing.T) {
	s := New()
	doc := string(s.Render(viewport.DrawContext{Size: viewport.Size{Width: 100, Height: 50}, ClipID: "c"}))
	if !strings.Contains(doc, `<g class="marks">`+"\n  </g>") {
		t.Errorf("empty surface should render an empty marks group:\n%s", doc)
	}
	if strings.Contains(doc, "axis-x") {
		t.Error("empty surface should not render axes")
	}
}
