// Package raster renders a viewport to an anti-aliased RGBA image.
//
// Fills are rasterized with golang.org/x/image/vector. Strokes are drawn as
// one quad per segment, so joins are not mitred. Text uses the Go Regular
// font at the configured size.
package raster

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
	"seehuhn.de/go/geom/vec"

	"github.com/matzehuels/panzoom/pkg/axis"
	"github.com/matzehuels/panzoom/pkg/errors"
	"github.com/matzehuels/panzoom/pkg/mark"
	"github.com/matzehuels/panzoom/pkg/viewport"
)

const (
	defaultFontSize    = 10.0
	defaultStrokeWidth = 1.0
	bezierCircle       = 0.5522847498
)

// Option configures a Surface.
type Option func(*Surface)

// WithBackground fills the image with c before drawing. The default is white.
func WithBackground(c color.Color) Option { return func(s *Surface) { s.background = c } }

// WithFontSize sets the label font size in pixels.
func WithFontSize(size float64) Option {
	return func(s *Surface) {
		if size > 0 {
			s.fontSize = size
		}
	}
}

// WithAxisColor sets the color of axis lines and labels.
func WithAxisColor(c color.Color) Option { return func(s *Surface) { s.axisColor = c } }

// Surface is a viewport.Surface that paints into an image on demand.
type Surface struct {
	*mark.Tree
	axes map[axis.Orientation]axis.Axis

	background color.Color
	axisColor  color.Color
	fontSize   float64
}

// New returns an empty surface.
func New(opts ...Option) *Surface {
	s := &Surface{
		Tree:       mark.NewTree(mark.Node{}),
		axes:       map[axis.Orientation]axis.Axis{},
		background: color.White,
		axisColor:  color.Black,
		fontSize:   defaultFontSize,
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

// painter holds per-render state.
type painter struct {
	dst  *image.RGBA
	mask *image.Alpha
	z    *vector.Rasterizer
	face font.Face
	clip map[string]image.Rectangle
}

// Render paints the surface for the geometry in dc.
func (s *Surface) Render(dc viewport.DrawContext) (*image.RGBA, error) {
	w, h := int(math.Ceil(dc.Size.Width)), int(math.Ceil(dc.Size.Height))
	if w <= 0 || h <= 0 {
		return nil, errors.New(errors.ErrCodeZeroSizeViewport, "cannot render %dx%d image", w, h)
	}
	face, err := newFace(s.fontSize)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	plot := dc.Plot()
	p := &painter{
		dst:  image.NewRGBA(image.Rect(0, 0, w, h)),
		mask: image.NewAlpha(image.Rect(0, 0, w, h)),
		z:    vector.NewRasterizer(w, h),
		face: face,
		clip: map[string]image.Rectangle{
			dc.ClipID: image.Rect(int(math.Floor(plot.LLx)), int(math.Floor(plot.LLy)), int(math.Ceil(plot.URx)), int(math.Ceil(plot.URy))),
		},
	}
	draw.Draw(p.dst, p.dst.Bounds(), image.NewUniform(s.background), image.Point{}, draw.Src)

	for _, o := range []axis.Orientation{axis.Bottom, axis.Left} {
		if a, ok := s.axes[o]; ok {
			p.axis(a, s.axisColor)
		}
	}
	if root := s.Tree.Root(); !root.IsZero() {
		p.node(root, mark.Attrs{}, p.dst.Bounds())
	}
	return p.dst, nil
}

// Encode renders the surface and writes it as PNG.
func (s *Surface) Encode(w io.Writer, dc viewport.DrawContext) error {
	img, err := s.Render(dc)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return nil
}

func newFace(size float64) (font.Face, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse font")
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create font face")
	}
	return face, nil
}

func (p *painter) axis(a axis.Axis, c color.Color) {
	bounds := p.dst.Bounds()
	at := func(along, across float64) vec.Vec2 {
		if a.Orientation.Vertical() {
			return a.Offset.Add(vec.Vec2{X: across, Y: along})
		}
		return a.Offset.Add(vec.Vec2{X: along, Y: across})
	}
	p.segment(at(a.Range.Lo, 0), at(a.Range.Hi, 0), defaultStrokeWidth, c, bounds)

	anchor := "middle"
	if a.Orientation.Vertical() {
		anchor = "end"
	}
	for _, t := range a.Ticks {
		base := a.Point(t)
		tip := base.Add(a.Direction().Mul(a.TickSize))
		p.segment(base, tip, defaultStrokeWidth, c, bounds)

		label := base.Add(a.Direction().Mul(a.TickSize + a.Padding))
		if a.Orientation.Vertical() {
			label.Y += p.ascent() / 2
		} else {
			label.Y += p.ascent()
		}
		p.text(label, t.Label, anchor, c)
	}
}

func (p *painter) node(n mark.Node, inherited mark.Attrs, clip image.Rectangle) {
	style := inherit(inherited, n.Attrs)

	switch n.Kind {
	case mark.KindGroup:
		if ref, ok := n.Attr("clip-path"); ok {
			if r, ok := p.clip[clipRef(ref)]; ok {
				clip = clip.Intersect(r)
			}
		}
		for _, c := range n.Children {
			p.node(c, style, clip)
		}

	case mark.KindLine:
		x1, _ := n.Float("x1")
		y1, _ := n.Float("y1")
		x2, _ := n.Float("x2")
		y2, _ := n.Float("y2")
		if c, ok := stroke(style); ok {
			p.segment(vec.Vec2{X: x1, Y: y1}, vec.Vec2{X: x2, Y: y2}, strokeWidth(style), c, clip)
		}

	case mark.KindPolyline:
		pts := n.Points()
		if c, ok := stroke(style); ok {
			for i := 1; i < len(pts); i++ {
				p.segment(pts[i-1], pts[i], strokeWidth(style), c, clip)
			}
		}

	case mark.KindRect:
		x, _ := n.Float("x")
		y, _ := n.Float("y")
		w, _ := n.Float("width")
		h, _ := n.Float("height")
		corners := []vec.Vec2{{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h}}
		if c, ok := fill(style); ok {
			p.begin()
			p.polygon(corners)
			p.paint(c, clip)
		}
		if c, ok := stroke(style); ok {
			for i := range corners {
				p.segment(corners[i], corners[(i+1)%len(corners)], strokeWidth(style), c, clip)
			}
		}

	case mark.KindCircle:
		cx, _ := n.Float("cx")
		cy, _ := n.Float("cy")
		r, _ := n.Float("r")
		if c, ok := fill(style); ok && r > 0 {
			p.begin()
			p.circle(float32(cx), float32(cy), float32(r))
			p.paint(c, clip)
		}

	case mark.KindText:
		x, _ := n.Float("x")
		y, _ := n.Float("y")
		c, ok := fill(style)
		if !ok {
			c = color.Black
		}
		anchor := style["text-anchor"]
		p.textClipped(vec.Vec2{X: x, Y: y}, n.Text, anchor, c, clip)
	}
}

func (p *painter) begin() {
	b := p.dst.Bounds()
	p.z.Reset(b.Dx(), b.Dy())
	for i := range p.mask.Pix {
		p.mask.Pix[i] = 0
	}
}

func (p *painter) paint(c color.Color, clip image.Rectangle) {
	p.z.Draw(p.mask, p.mask.Bounds(), image.Opaque, image.Point{})
	draw.DrawMask(p.dst, clip, image.NewUniform(c), image.Point{}, p.mask, clip.Min, draw.Over)
}

func (p *painter) polygon(pts []vec.Vec2) {
	p.z.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, q := range pts[1:] {
		p.z.LineTo(float32(q.X), float32(q.Y))
	}
	p.z.ClosePath()
}

func (p *painter) circle(cx, cy, r float32) {
	k := float32(bezierCircle) * r
	p.z.MoveTo(cx, cy-r)
	p.z.CubeTo(cx+k, cy-r, cx+r, cy-k, cx+r, cy)
	p.z.CubeTo(cx+r, cy+k, cx+k, cy+r, cx, cy+r)
	p.z.CubeTo(cx-k, cy+r, cx-r, cy+k, cx-r, cy)
	p.z.CubeTo(cx-r, cy-k, cx-k, cy-r, cx, cy-r)
	p.z.ClosePath()
}

// segment strokes a-b as a quad of the given width.
func (p *painter) segment(a, b vec.Vec2, width float64, c color.Color, clip image.Rectangle) {
	d := b.Sub(a)
	l := math.Hypot(d.X, d.Y)
	if l == 0 || width <= 0 {
		return
	}
	n := vec.Vec2{X: -d.Y / l, Y: d.X / l}.Mul(width / 2)
	p.begin()
	p.polygon([]vec.Vec2{a.Add(n), b.Add(n), b.Sub(n), a.Sub(n)})
	p.paint(c, clip)
}

func (p *painter) ascent() float64 {
	return float64(p.face.Metrics().Ascent.Ceil()) * 0.7
}

func (p *painter) text(at vec.Vec2, s, anchor string, c color.Color) {
	p.textClipped(at, s, anchor, c, p.dst.Bounds())
}

func (p *painter) textClipped(at vec.Vec2, s, anchor string, c color.Color, clip image.Rectangle) {
	if s == "" {
		return
	}
	width := float64(font.MeasureString(p.face, s).Ceil())
	switch anchor {
	case "middle":
		at.X -= width / 2
	case "end":
		at.X -= width
	}
	dst := p.dst.SubImage(clip).(*image.RGBA)
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: p.face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(at.X * 64), Y: fixed.Int26_6(at.Y * 64)},
	}
	d.DrawString(s)
}

func inherit(parent, own mark.Attrs) mark.Attrs {
	out := make(mark.Attrs, len(parent)+len(own))
	for k, v := range parent {
		out[k] = v
	}
	for _, k := range []string{"fill", "stroke", "stroke-width", "text-anchor"} {
		if v, ok := own[k]; ok {
			out[k] = v
		}
	}
	return out
}

func clipRef(ref string) string {
	return strings.TrimSuffix(strings.TrimPrefix(ref, "url(#"), ")")
}

func fill(style mark.Attrs) (color.Color, bool) {
	v, ok := style["fill"]
	if !ok {
		return color.Black, true
	}
	return ParseColor(v)
}

func stroke(style mark.Attrs) (color.Color, bool) {
	v, ok := style["stroke"]
	if !ok {
		return nil, false
	}
	return ParseColor(v)
}

func strokeWidth(style mark.Attrs) float64 {
	if v, ok := style["stroke-width"]; ok {
		if w, err := strconv.ParseFloat(v, 64); err == nil {
			return w
		}
	}
	return defaultStrokeWidth
}

var named = map[string]color.RGBA{
	"black":     {0, 0, 0, 255},
	"white":     {255, 255, 255, 255},
	"gray":      {128, 128, 128, 255},
	"grey":      {128, 128, 128, 255},
	"red":       {255, 0, 0, 255},
	"green":     {0, 128, 0, 255},
	"blue":      {0, 0, 255, 255},
	"orange":    {255, 165, 0, 255},
	"steelblue": {70, 130, 180, 255},
}

// ParseColor parses #rgb, #rrggbb or a basic color name. "none" and
// unparseable values report false.
func ParseColor(s string) (color.Color, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if c, ok := named[s]; ok {
		return c, true
	}
	if s == "" || s == "none" || s[0] != '#' {
		return nil, false
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return nil, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
}
