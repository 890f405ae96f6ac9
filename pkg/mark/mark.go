// Package mark defines the declarative mark tree that draw functions return.
//
// A draw function builds an immutable [Node] tree from the current scales on
// every redraw. The viewport diffs it against the previous tree with [Diff],
// which is pure, and hands the resulting patches to a rendering surface
// through [Apply]. Surfaces that keep their own retained copy can embed a
// [Tree], which implements [Applier].
package mark

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"seehuhn.de/go/geom/vec"
)

// Kind is the type of a mark node.
type Kind int

const (
	KindNone Kind = iota
	KindGroup
	KindLine
	KindPolyline
	KindRect
	KindCircle
	KindText
)

var kindNames = [...]string{"none", "g", "line", "polyline", "rect", "circle", "text"}

// String returns the SVG element name of the kind.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Attrs holds presentation and geometry attributes. Geometry values are
// stored in their formatted form.
type Attrs map[string]string

// Keys returns the attribute names in sorted order.
func (a Attrs) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (a Attrs) clone() Attrs {
	if a == nil {
		return nil
	}
	out := make(Attrs, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Node is one element of a mark tree. The zero Node is the empty tree.
type Node struct {
	Kind     Kind
	Key      string
	Attrs    Attrs
	Children []Node
	Text     string
}

// IsZero reports whether n is the empty tree.
func (n Node) IsZero() bool { return n.Kind == KindNone }

// Attr returns the value of an attribute.
func (n Node) Attr(name string) (string, bool) {
	v, ok := n.Attrs[name]
	return v, ok
}

// Float parses a numeric attribute.
func (n Node) Float(name string) (float64, bool) {
	v, ok := n.Attrs[name]
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	return f, err == nil
}

// Points parses the points attribute of a polyline.
func (n Node) Points() []vec.Vec2 {
	fields := strings.Fields(n.Attrs["points"])
	pts := make([]vec.Vec2, 0, len(fields))
	for _, f := range fields {
		xs, ys, ok := strings.Cut(f, ",")
		if !ok {
			continue
		}
		x, err1 := strconv.ParseFloat(xs, 64)
		y, err2 := strconv.ParseFloat(ys, 64)
		if err1 != nil || err2 != nil {
			continue
		}
		pts = append(pts, vec.Vec2{X: x, Y: y})
	}
	return pts
}

// With returns a copy of n with one attribute set.
func (n Node) With(name, value string) Node {
	n.Attrs = n.Attrs.clone()
	if n.Attrs == nil {
		n.Attrs = Attrs{}
	}
	n.Attrs[name] = value
	return n
}

// WithKey returns a copy of n with a reconciliation key.
func (n Node) WithKey(key string) Node {
	n.Key = key
	return n
}

// Clone returns a deep copy of n.
func (n Node) Clone() Node {
	out := n
	out.Attrs = n.Attrs.clone()
	if n.Children != nil {
		out.Children = make([]Node, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// Prune returns a deep copy of n without empty children, at every depth.
// Draw functions may leave a zero Node where a conditional mark is absent;
// surfaces only ever hold the pruned tree.
func (n Node) Prune() Node {
	out := n
	out.Attrs = n.Attrs.clone()
	if n.Children != nil {
		out.Children = make([]Node, 0, len(n.Children))
		for _, c := range n.Children {
			if !c.IsZero() {
				out.Children = append(out.Children, c.Prune())
			}
		}
	}
	return out
}

// Equal reports deep equality.
func (n Node) Equal(o Node) bool {
	if n.Kind != o.Kind || n.Key != o.Key || n.Text != o.Text ||
		len(n.Attrs) != len(o.Attrs) || len(n.Children) != len(o.Children) {
		return false
	}
	for k, v := range n.Attrs {
		if w, ok := o.Attrs[k]; !ok || w != v {
			return false
		}
	}
	for i := range n.Children {
		if !n.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// Num formats a coordinate the way mark attributes store it.
func Num(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}

func merge(geom, style Attrs) Attrs {
	out := make(Attrs, len(geom)+len(style))
	for k, v := range style {
		out[k] = v
	}
	for k, v := range geom {
		out[k] = v
	}
	return out
}

// Group collects children under shared attributes.
func Group(attrs Attrs, children ...Node) Node {
	return Node{Kind: KindGroup, Attrs: attrs.clone(), Children: children}
}

// Clip groups children under the clip region id.
func Clip(id string, children ...Node) Node {
	return Group(Attrs{"clip-path": "url(#" + id + ")"}, children...)
}

// Line is a straight segment from (x1, y1) to (x2, y2).
func Line(x1, y1, x2, y2 float64, style Attrs) Node {
	return Node{Kind: KindLine, Attrs: merge(Attrs{
		"x1": Num(x1), "y1": Num(y1), "x2": Num(x2), "y2": Num(y2),
	}, style)}
}

// Polyline connects pts in order.
func Polyline(pts []vec.Vec2, style Attrs) Node {
	var b strings.Builder
	for i, p := range pts {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(Num(p.X))
		b.WriteByte(',')
		b.WriteString(Num(p.Y))
	}
	return Node{Kind: KindPolyline, Attrs: merge(Attrs{"points": b.String()}, style)}
}

// Rect is an axis-aligned rectangle. Negative sizes are normalized.
func Rect(x, y, w, h float64, style Attrs) Node {
	if w < 0 {
		x, w = x+w, -w
	}
	if h < 0 {
		y, h = y+h, -h
	}
	return Node{Kind: KindRect, Attrs: merge(Attrs{
		"x": Num(x), "y": Num(y), "width": Num(w), "height": Num(h),
	}, style)}
}

// Circle is a circle of radius r centred at (cx, cy).
func Circle(cx, cy, r float64, style Attrs) Node {
	return Node{Kind: KindCircle, Attrs: merge(Attrs{
		"cx": Num(cx), "cy": Num(cy), "r": Num(math.Abs(r)),
	}, style)}
}

// Text is a label anchored at (x, y).
func Text(x, y float64, s string, style Attrs) Node {
	return Node{Kind: KindText, Text: s, Attrs: merge(Attrs{"x": Num(x), "y": Num(y)}, style)}
}
