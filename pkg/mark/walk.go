package mark

// Path addresses a node by child indices from the root. The empty path is
// the root itself.
type Path []int

// Child returns the path of child i.
func (p Path) Child(i int) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = i
	return out
}

// Visitor is called for each node by Walk. If Visit returns nil the
// children of n are skipped; otherwise the returned visitor walks them.
type Visitor interface {
	Visit(path Path, n Node) Visitor
}

// VisitorFunc adapts a function to Visitor. Returning false skips the
// children.
type VisitorFunc func(path Path, n Node) bool

func (f VisitorFunc) Visit(path Path, n Node) Visitor {
	if f(path, n) {
		return f
	}
	return nil
}

// Walk traverses n depth-first in document order. The empty tree is not
// visited.
func Walk(n Node, v Visitor) {
	if n.IsZero() {
		return
	}
	walk(nil, n, v)
}

func walk(path Path, n Node, v Visitor) {
	w := v.Visit(path, n)
	if w == nil {
		return
	}
	for i, c := range n.Children {
		walk(path.Child(i), c, w)
	}
}

// Count returns the number of nodes of kind k in n; KindNone counts all.
func Count(n Node, k Kind) int {
	count := 0
	Walk(n, VisitorFunc(func(_ Path, c Node) bool {
		if k == KindNone || c.Kind == k {
			count++
		}
		return true
	}))
	return count
}
