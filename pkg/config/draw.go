package config

import (
	"math"
	"sort"

	"seehuhn.de/go/geom/vec"

	"github.com/matzehuels/panzoom/pkg/mark"
	"github.com/matzehuels/panzoom/pkg/viewport"
)

// Palette colors series that do not name one.
var Palette = []string{"#4682b4", "#e45756", "#54a24b", "#f58518", "#b279a2", "#9d755d"}

const (
	pointRadius  = 3.0
	lineWidth    = "1.5"
	barFraction  = 0.8
	defaultBarPx = 6.0
)

// Draw plots every series through the scales in dc, clipped to the plot.
func (c *Chart) Draw(dc viewport.DrawContext) mark.Node {
	children := make([]mark.Node, 0, len(c.Series))
	for _, s := range c.Series {
		children = append(children, s.draw(dc).WithKey(s.Name))
	}
	return dc.Clip(children...)
}

func (s Series) draw(dc viewport.DrawContext) mark.Node {
	switch s.Kind {
	case KindPoints:
		dots := make([]mark.Node, 0, len(s.Points))
		for _, p := range s.Points {
			dots = append(dots, mark.Circle(dc.XScale.Map(p[0]), dc.YScale.Map(p[1]), pointRadius, nil))
		}
		return mark.Group(mark.Attrs{"class": "series", "fill": s.Color}, dots...)

	case KindBars:
		w := barWidth(dc, s.Points)
		base := dc.YScale.Map(math.Max(dc.YScale.Domain().Lo, math.Min(0, dc.YScale.Domain().Hi)))
		bars := make([]mark.Node, 0, len(s.Points))
		for _, p := range s.Points {
			x, y := dc.XScale.Map(p[0]), dc.YScale.Map(p[1])
			bars = append(bars, mark.Rect(x-w/2, y, w, base-y, nil))
		}
		return mark.Group(mark.Attrs{"class": "series", "fill": s.Color}, bars...)

	default:
		pts := make([]vec.Vec2, len(s.Points))
		for i, p := range s.Points {
			pts[i] = vec.Vec2{X: dc.XScale.Map(p[0]), Y: dc.YScale.Map(p[1])}
		}
		return mark.Group(mark.Attrs{"class": "series"},
			mark.Polyline(pts, mark.Attrs{"fill": "none", "stroke": s.Color, "stroke-width": lineWidth}))
	}
}

// barWidth is a fraction of the smallest gap between neighbouring x values.
func barWidth(dc viewport.DrawContext, points [][]float64) float64 {
	xs := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p[0]
	}
	sort.Float64s(xs)
	gap := math.Inf(1)
	for i := 1; i < len(xs); i++ {
		if d := xs[i] - xs[i-1]; d > 0 && d < gap {
			gap = d
		}
	}
	if math.IsInf(gap, 1) {
		return defaultBarPx
	}
	return barFraction * math.Abs(dc.XScale.Map(xs[0]+gap)-dc.XScale.Map(xs[0]))
}
