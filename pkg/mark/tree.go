package mark

import (
	"github.com/matzehuels/panzoom/pkg/errors"
)

// Tree is a retained, mutable copy of a mark tree that applies patches.
// Surfaces embed it to track what is currently on screen.
type Tree struct {
	root Node
}

// NewTree returns a retained tree holding a copy of n.
func NewTree(n Node) *Tree {
	return &Tree{root: n.Clone()}
}

// Root returns a copy of the current tree.
func (t *Tree) Root() Node { return t.root.Clone() }

// Walk visits the retained tree without copying it.
func (t *Tree) Walk(v Visitor) { Walk(t.root, v) }

// InsertNode implements Applier. The empty path replaces the root.
func (t *Tree) InsertNode(path Path, n Node) error {
	if len(path) == 0 {
		if !t.root.IsZero() {
			return errors.New(errors.ErrCodeInvalidInput, "insert at root of non-empty tree")
		}
		t.root = n.Clone()
		return nil
	}
	parent, err := t.lookup(path[:len(path)-1])
	if err != nil {
		return err
	}
	i := path[len(path)-1]
	if i < 0 || i > len(parent.Children) {
		return errors.New(errors.ErrCodeInvalidInput, "insert index %d out of range at %v", i, path)
	}
	parent.Children = append(parent.Children, Node{})
	copy(parent.Children[i+1:], parent.Children[i:])
	parent.Children[i] = n.Clone()
	return nil
}

// RemoveNode implements Applier.
func (t *Tree) RemoveNode(path Path) error {
	if len(path) == 0 {
		t.root = Node{}
		return nil
	}
	parent, err := t.lookup(path[:len(path)-1])
	if err != nil {
		return err
	}
	i := path[len(path)-1]
	if i < 0 || i >= len(parent.Children) {
		return errors.New(errors.ErrCodeInvalidInput, "remove index %d out of range at %v", i, path)
	}
	parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
	return nil
}

// SetAttr implements Applier.
func (t *Tree) SetAttr(path Path, key, value string) error {
	n, err := t.lookup(path)
	if err != nil {
		return err
	}
	if n.Attrs == nil {
		n.Attrs = Attrs{}
	}
	n.Attrs[key] = value
	return nil
}

// RemoveAttr implements Applier.
func (t *Tree) RemoveAttr(path Path, key string) error {
	n, err := t.lookup(path)
	if err != nil {
		return err
	}
	delete(n.Attrs, key)
	return nil
}

// SetText implements Applier.
func (t *Tree) SetText(path Path, text string) error {
	n, err := t.lookup(path)
	if err != nil {
		return err
	}
	n.Text = text
	return nil
}

func (t *Tree) lookup(path Path) (*Node, error) {
	if t.root.IsZero() {
		return nil, errors.New(errors.ErrCodeNotFound, "no node at %v in empty tree", path)
	}
	n := &t.root
	for depth, i := range path {
		if i < 0 || i >= len(n.Children) {
			return nil, errors.New(errors.ErrCodeNotFound, "no node at %v", path[:depth+1])
		}
		n = &n.Children[i]
	}
	return n, nil
}
