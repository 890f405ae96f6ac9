package mark

import (
	"testing"

	"seehuhn.de/go/geom/vec"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		node Node
		attr string
		want string
	}{
		{"line end", Line(0, 0, 10.5, 3, nil), "x2", "10.5"},
		{"rect normalized x", Rect(10, 10, -4, 5, nil), "x", "6"},
		{"rect normalized width", Rect(10, 10, -4, 5, nil), "width", "4"},
		{"circle radius", Circle(1, 2, -3, nil), "r", "3"},
		{"rounded", Line(1.23456, 0, 0, 0, nil), "x1", "1.235"},
		{"style kept", Circle(0, 0, 1, Attrs{"fill": "#fff"}), "fill", "#fff"},
		{"geometry wins", Circle(0, 0, 1, Attrs{"r": "99"}), "r", "1"},
		{"clip", Clip("clip-path-3"), "clip-path", "url(#clip-path-3)"},
		{"polyline", Polyline([]vec.Vec2{{X: 1, Y: 2}, {X: 3, Y: 4}}, nil), "points", "1,2 3,4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, _ := tt.node.Attr(tt.attr); got != tt.want {
				t.Errorf("Attr(%q) = %q, want %q", tt.attr, got, tt.want)
			}
		})
	}
}

func TestPoints(t *testing.T) {
	in := []vec.Vec2{{X: 0, Y: 1}, {X: -2.5, Y: 3}}
	got := Polyline(in, nil).Points()
	if len(got) != 2 || got[0] != in[0] || got[1] != in[1] {
		t.Errorf("Points() = %v, want %v", got, in)
	}
}

func TestWithDoesNotAlias(t *testing.T) {
	a := Circle(0, 0, 1, Attrs{"fill": "red"})
	b := a.With("fill", "blue")
	if v, _ := a.Attr("fill"); v != "red" {
		t.Errorf("original fill = %q, want red", v)
	}
	if v, _ := b.Attr("fill"); v != "blue" {
		t.Errorf("copy fill = %q, want blue", v)
	}
}

func TestWalkOrderAndSkip(t *testing.T) {
	tree := Group(nil,
		Group(Attrs{"id": "a"}, Circle(0, 0, 1, nil)),
		Line(0, 0, 1, 1, nil),
	)

	var kinds []Kind
	var paths []string
	Walk(tree, VisitorFunc(func(p Path, n Node) bool {
		kinds = append(kinds, n.Kind)
		paths = append(paths, pathString(p))
		return n.Attrs["id"] != "a"
	}))

	want := []Kind{KindGroup, KindGroup, KindLine}
	if len(kinds) != len(want) {
		t.Fatalf("visited %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("kinds[%d] = %v, want %v", i, kinds[i], want[i])
		}
	}
	if paths[2] != "1" {
		t.Errorf("line path = %q, want %q", paths[2], "1")
	}

	if got := Count(tree, KindNone); got != 4 {
		t.Errorf("Count(all) = %d, want 4", got)
	}
	if got := Count(Node{}, KindNone); got != 0 {
		t.Errorf("Count(empty) = %d, want 0", got)
	}
}

func pathString(p Path) string {
	s := ""
	for i, v := range p {
		if i > 0 {
			s += "."
		}
		s += string(rune('0' + v))
	}
	return s
}
