// Package text renders a viewport onto a character grid for terminals.
//
// Each cell covers CellWidth x CellHeight pixels of viewport space, so a
// viewport sized to (cols*CellWidth, rows*CellHeight) fills a cols x rows
// terminal area.
package text

import (
	"math"
	"strings"

	"seehuhn.de/go/geom/vec"

	"github.com/matzehuels/panzoom/pkg/axis"
	"github.com/matzehuels/panzoom/pkg/mark"
	"github.com/matzehuels/panzoom/pkg/viewport"
)

// Default cell geometry. Terminal cells are about twice as tall as wide.
const (
	CellWidth  = 1.0
	CellHeight = 2.0
)

// Glyphs used for marks and axes.
const (
	GlyphPoint = '•'
	GlyphLine  = '·'
	GlyphRect  = '▒'
	GlyphAxisH = '─'
	GlyphAxisV = '│'
	GlyphTickH = '┬'
	GlyphTickV = '┤'
	GlyphOrig  = '└'
)

// Option configures a Surface.
type Option func(*Surface)

// WithCell sets the pixel size of one character cell.
func WithCell(w, h float64) Option {
	return func(s *Surface) {
		if w > 0 && h > 0 {
			s.cellW, s.cellH = w, h
		}
	}
}

// Surface is a viewport.Surface that renders to a rune grid.
type Surface struct {
	*mark.Tree
	axes map[axis.Orientation]axis.Axis

	cellW, cellH float64
}

// New returns an empty surface.
func New(opts ...Option) *Surface {
	s := &Surface{
		Tree:  mark.NewTree(mark.Node{}),
		axes:  map[axis.Orientation]axis.Axis{},
		cellW: CellWidth,
		cellH: CellHeight,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateAxisMount implements axis.Surface.
func (s *Surface) CreateAxisMount(o axis.Orientation) axis.Handle { return o }

// DrawTicks implements axis.Surface.
func (s *Surface) DrawTicks(h axis.Handle, a axis.Axis) {
	if o, ok := h.(axis.Orientation); ok {
		s.axes[o] = a
	}
}

// Grid is a rectangle of runes with an active clip window.
type Grid struct {
	cells      [][]rune
	cellW      float64
	cellH      float64
	clipColumn [2]int
	clipRow    [2]int
}

// Cols returns the grid width.
func (g *Grid) Cols() int {
	if len(g.cells) == 0 {
		return 0
	}
	return len(g.cells[0])
}

// Rows returns the grid height.
func (g *Grid) Rows() int { return len(g.cells) }

// At returns the rune at column c, row r, or a space when out of range.
func (g *Grid) At(c, r int) rune {
	if r < 0 || r >= len(g.cells) || c < 0 || c >= len(g.cells[r]) {
		return ' '
	}
	return g.cells[r][c]
}

// String returns the grid with trailing spaces trimmed from each row.
func (g *Grid) String() string {
	var b strings.Builder
	for i, row := range g.cells {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.TrimRight(string(row), " "))
	}
	return b.String()
}

func (g *Grid) cell(p vec.Vec2) (c, r int) {
	return int(math.Floor(p.X / g.cellW)), int(math.Floor(p.Y / g.cellH))
}

func (g *Grid) set(c, r int, ch rune) {
	if c < g.clipColumn[0] || c >= g.clipColumn[1] || r < g.clipRow[0] || r >= g.clipRow[1] {
		return
	}
	if r < 0 || r >= len(g.cells) || c < 0 || c >= len(g.cells[r]) {
		return
	}
	g.cells[r][c] = ch
}

func (g *Grid) plot(p vec.Vec2, ch rune) {
	c, r := g.cell(p)
	g.set(c, r, ch)
}

// line walks the cells between a and b with Bresenham's algorithm.
func (g *Grid) line(a, b vec.Vec2, ch rune) {
	c0, r0 := g.cell(a)
	c1, r1 := g.cell(b)
	dc, dr := abs(c1-c0), -abs(r1-r0)
	sc, sr := sign(c1-c0), sign(r1-r0)
	e := dc + dr
	for {
		g.set(c0, r0, ch)
		if c0 == c1 && r0 == r1 {
			return
		}
		e2 := 2 * e
		if e2 >= dr {
			e += dr
			c0 += sc
		}
		if e2 <= dc {
			e += dc
			r0 += sr
		}
	}
}

func (g *Grid) write(c, r int, s string) {
	for i, ch := range []rune(s) {
		g.set(c+i, r, ch)
	}
}

// Render draws the surface for the geometry in dc.
func (s *Surface) Render(dc viewport.DrawContext) *Grid {
	cols := int(math.Ceil(dc.Size.Width / s.cellW))
	rows := int(math.Ceil(dc.Size.Height / s.cellH))
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	g := &Grid{cellW: s.cellW, cellH: s.cellH}
	g.cells = make([][]rune, rows)
	for i := range g.cells {
		g.cells[i] = []rune(strings.Repeat(" ", cols))
	}
	full := func() {
		g.clipColumn = [2]int{0, cols}
		g.clipRow = [2]int{0, rows}
	}
	full()

	if a, ok := s.axes[axis.Bottom]; ok {
		g.bottomAxis(a)
	}
	if a, ok := s.axes[axis.Left]; ok {
		g.leftAxis(a)
	}
	if _, okX := s.axes[axis.Bottom]; okX {
		if a, okY := s.axes[axis.Left]; okY {
			g.plot(vec.Vec2{X: a.Offset.X, Y: s.axes[axis.Bottom].Offset.Y}, GlyphOrig)
		}
	}

	plot := dc.Plot()
	c0, r0 := g.cell(vec.Vec2{X: plot.LLx, Y: plot.LLy})
	c1, r1 := g.cell(vec.Vec2{X: plot.URx, Y: plot.URy})
	clip := func() {
		g.clipColumn = [2]int{c0, c1 + 1}
		g.clipRow = [2]int{r0, r1 + 1}
	}
	if root := s.Tree.Root(); !root.IsZero() {
		g.node(root, dc.ClipID, clip)
	}
	full()
	return g
}

func (g *Grid) bottomAxis(a axis.Axis) {
	y := a.Offset.Y
	g.line(vec.Vec2{X: a.Offset.X + a.Range.Min(), Y: y}, vec.Vec2{X: a.Offset.X + a.Range.Max(), Y: y}, GlyphAxisH)
	_, row := g.cell(vec.Vec2{Y: y})
	next := math.MinInt
	for _, t := range a.Ticks {
		p := a.Point(t)
		g.plot(p, GlyphTickH)
		c, _ := g.cell(p)
		start := c - len([]rune(t.Label))/2
		if start <= next {
			continue
		}
		g.write(start, row+1, t.Label)
		next = start + len([]rune(t.Label))
	}
}

func (g *Grid) leftAxis(a axis.Axis) {
	x := a.Offset.X
	g.line(vec.Vec2{X: x, Y: a.Offset.Y + a.Range.Min()}, vec.Vec2{X: x, Y: a.Offset.Y + a.Range.Max()}, GlyphAxisV)
	col, _ := g.cell(vec.Vec2{X: x})
	used := map[int]bool{}
	for _, t := range a.Ticks {
		p := a.Point(t)
		g.plot(p, GlyphTickV)
		_, r := g.cell(p)
		if used[r] {
			continue
		}
		used[r] = true
		g.write(col-1-len([]rune(t.Label)), r, t.Label)
	}
}

func (g *Grid) node(n mark.Node, clipID string, clip func()) {
	switch n.Kind {
	case mark.KindGroup:
		if ref, ok := n.Attr("clip-path"); ok && ref == "url(#"+clipID+")" {
			saveC, saveR := g.clipColumn, g.clipRow
			clip()
			defer func() { g.clipColumn, g.clipRow = saveC, saveR }()
		}
		for _, c := range n.Children {
			g.node(c, clipID, clip)
		}

	case mark.KindLine:
		x1, _ := n.Float("x1")
		y1, _ := n.Float("y1")
		x2, _ := n.Float("x2")
		y2, _ := n.Float("y2")
		g.line(vec.Vec2{X: x1, Y: y1}, vec.Vec2{X: x2, Y: y2}, GlyphLine)

	case mark.KindPolyline:
		pts := n.Points()
		for i := 1; i < len(pts); i++ {
			g.line(pts[i-1], pts[i], GlyphLine)
		}

	case mark.KindRect:
		x, _ := n.Float("x")
		y, _ := n.Float("y")
		w, _ := n.Float("width")
		h, _ := n.Float("height")
		ca, ra := g.cell(vec.Vec2{X: x, Y: y})
		cb, rb := g.cell(vec.Vec2{X: x + w, Y: y + h})
		for r := ra; r <= rb; r++ {
			for c := ca; c <= cb; c++ {
				g.set(c, r, GlyphRect)
			}
		}

	case mark.KindCircle:
		cx, _ := n.Float("cx")
		cy, _ := n.Float("cy")
		g.plot(vec.Vec2{X: cx, Y: cy}, GlyphPoint)

	case mark.KindText:
		x, _ := n.Float("x")
		y, _ := n.Float("y")
		c, r := g.cell(vec.Vec2{X: x, Y: y})
		g.write(c, r, n.Text)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
