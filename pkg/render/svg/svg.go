// Package svg renders a viewport as a standalone SVG document.
package svg

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/matzehuels/panzoom/pkg/axis"
	"github.com/matzehuels/panzoom/pkg/mark"
	"github.com/matzehuels/panzoom/pkg/viewport"
)

const (
	defaultFont     = "sans-serif"
	defaultFontSize = 10.0
)

// Option configures a Surface.
type Option func(*Surface)

// WithBackground fills the whole document with color before drawing.
func WithBackground(color string) Option { return func(s *Surface) { s.background = color } }

// WithTitle adds a title element and a heading above the plot.
func WithTitle(title string) Option { return func(s *Surface) { s.title = title } }

// WithFont sets the font family and size used for tick labels.
func WithFont(family string, size float64) Option {
	return func(s *Surface) {
		s.font = family
		if size > 0 {
			s.fontSize = size
		}
	}
}

// WithAxisColor sets the stroke and label color of both axes.
func WithAxisColor(color string) Option { return func(s *Surface) { s.axisColor = color } }

// Surface is a viewport.Surface that serializes to SVG. Marks are kept in a
// retained tree patched by the viewport; axes are replaced on every redraw.
type Surface struct {
	*mark.Tree
	axes map[axis.Orientation]axis.Axis

	background string
	title      string
	font       string
	fontSize   float64
	axisColor  string
}

// New returns an empty surface.
func New(opts ...Option) *Surface {
	s := &Surface{
		Tree:      mark.NewTree(mark.Node{}),
		axes:      map[axis.Orientation]axis.Axis{},
		font:      defaultFont,
		fontSize:  defaultFontSize,
		axisColor: "currentColor",
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

// Render serializes the surface for the geometry in dc.
func (s *Surface) Render(dc viewport.DrawContext) []byte {
	w, h := dc.Size.Width, dc.Size.Height
	plot := dc.Plot()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%s" height="%s">`+"\n",
		mark.Num(w), mark.Num(h), mark.Num(w), mark.Num(h))
	if s.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escape(s.title))
	}
	if s.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", escape(s.background))
	}
	fmt.Fprintf(&buf, `  <defs><clipPath id="%s"><rect x="%s" y="%s" width="%s" height="%s"/></clipPath></defs>`+"\n",
		escape(dc.ClipID), mark.Num(plot.LLx), mark.Num(plot.LLy), mark.Num(plot.URx-plot.LLx), mark.Num(plot.URy-plot.LLy))
	if s.title != "" {
		fmt.Fprintf(&buf, `  <text x="%s" y="%s" text-anchor="middle" font-family="%s" font-size="%s" font-weight="bold">%s</text>`+"\n",
			mark.Num(w/2), mark.Num(plot.LLy/2+s.fontSize/2), escape(s.font), mark.Num(s.fontSize*1.2), escape(s.title))
	}

	if a, ok := s.axes[axis.Bottom]; ok {
		s.writeAxis(&buf, a)
	}
	if a, ok := s.axes[axis.Left]; ok {
		s.writeAxis(&buf, a)
	}

	buf.WriteString(`  <g class="marks">` + "\n")
	if root := s.Tree.Root(); !root.IsZero() {
		writeNode(&buf, root, 2)
	}
	buf.WriteString("  </g>\n</svg>\n")
	return buf.Bytes()
}

// writeAxis follows the bottom/left axis layout: a domain path with outer
// ticks, then one group per tick holding its line and label.
func (s *Surface) writeAxis(buf *bytes.Buffer, a axis.Axis) {
	size, pad := a.TickSize, a.Padding
	lo, hi := a.Range.Lo, a.Range.Hi
	anchor, class := "middle", "axis axis-x"
	if a.Orientation.Vertical() {
		anchor, class = "end", "axis axis-y"
	}
	fmt.Fprintf(buf, `  <g class="%s" transform="translate(%s,%s)" fill="none" font-family="%s" font-size="%s" text-anchor="%s">`+"\n",
		class, mark.Num(a.Offset.X), mark.Num(a.Offset.Y), escape(s.font), mark.Num(s.fontSize), anchor)

	if a.Orientation.Vertical() {
		fmt.Fprintf(buf, `    <path class="domain" stroke="%s" d="M%s,%sH0V%sH%s"/>`+"\n",
			s.axisColor, mark.Num(-size), mark.Num(lo), mark.Num(hi), mark.Num(-size))
	} else {
		fmt.Fprintf(buf, `    <path class="domain" stroke="%s" d="M%s,%sV0H%sV%s"/>`+"\n",
			s.axisColor, mark.Num(lo), mark.Num(size), mark.Num(hi), mark.Num(size))
	}

	for _, t := range a.Ticks {
		if a.Orientation.Vertical() {
			fmt.Fprintf(buf, `    <g class="tick" transform="translate(0,%s)"><line stroke="%s" x2="%s"/><text fill="%s" x="%s" dy="0.32em">%s</text></g>`+"\n",
				mark.Num(t.Pos), s.axisColor, mark.Num(-size), s.axisColor, mark.Num(-(size + pad)), escape(t.Label))
		} else {
			fmt.Fprintf(buf, `    <g class="tick" transform="translate(%s,0)"><line stroke="%s" y2="%s"/><text fill="%s" y="%s" dy="0.71em">%s</text></g>`+"\n",
				mark.Num(t.Pos), s.axisColor, mark.Num(size), s.axisColor, mark.Num(size+pad), escape(t.Label))
		}
	}
	buf.WriteString("  </g>\n")
}

func writeNode(buf *bytes.Buffer, n mark.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	buf.WriteString(indent)
	buf.WriteByte('<')
	buf.WriteString(n.Kind.String())
	for _, k := range n.Attrs.Keys() {
		fmt.Fprintf(buf, ` %s="%s"`, k, escape(n.Attrs[k]))
	}

	switch {
	case n.Kind == mark.KindText:
		fmt.Fprintf(buf, ">%s</text>\n", escape(n.Text))
	case len(n.Children) == 0:
		buf.WriteString("/>\n")
	default:
		buf.WriteString(">\n")
		for _, c := range n.Children {
			writeNode(buf, c, depth+1)
		}
		fmt.Fprintf(buf, "%s</%s>\n", indent, n.Kind)
	}
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
