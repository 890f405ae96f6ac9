package mark

import (
	"fmt"

	"github.com/matzehuels/panzoom/pkg/errors"
)

// Op is a patch operation.
type Op uint8

const (
	OpInsert Op = iota + 1
	OpRemove
	OpSetAttr
	OpRemoveAttr
	OpSetText
)

// Patch is a single mutation of a retained mark tree. Paths are resolved
// against the tree as left by the preceding patches.
type Patch struct {
	Op    Op
	Path  Path
	Key   string // attribute name
	Value string // attribute value or text
	Node  Node   // inserted subtree
}

func (p Patch) String() string {
	switch p.Op {
	case OpInsert:
		return fmt.Sprintf("Insert(%v, %s)", p.Path, p.Node.Kind)
	case OpRemove:
		return fmt.Sprintf("Remove(%v)", p.Path)
	case OpSetAttr:
		return fmt.Sprintf("SetAttr(%v, %s=%q)", p.Path, p.Key, p.Value)
	case OpRemoveAttr:
		return fmt.Sprintf("RemoveAttr(%v, %s)", p.Path, p.Key)
	case OpSetText:
		return fmt.Sprintf("SetText(%v, %q)", p.Path, p.Value)
	default:
		return fmt.Sprintf("Unknown(op=%d)", p.Op)
	}
}

// Diff computes the patches that turn prev into next. It does not modify
// either tree. Empty children are pruned from both trees first, so paths
// address the pruned tree a surface holds.
func Diff(prev, next Node) []Patch {
	var patches []Patch
	diffNode(&patches, nil, prev.Prune(), next.Prune())
	return patches
}

func diffNode(out *[]Patch, path Path, prev, next Node) {
	switch {
	case prev.IsZero() && next.IsZero():
		return
	case next.IsZero():
		*out = append(*out, Patch{Op: OpRemove, Path: path})
		return
	case prev.IsZero():
		*out = append(*out, Patch{Op: OpInsert, Path: path, Node: next.Clone()})
		return
	case prev.Kind != next.Kind || prev.Key != next.Key:
		*out = append(*out,
			Patch{Op: OpRemove, Path: path},
			Patch{Op: OpInsert, Path: path, Node: next.Clone()})
		return
	}

	diffAttrs(out, path, prev.Attrs, next.Attrs)
	if prev.Text != next.Text {
		*out = append(*out, Patch{Op: OpSetText, Path: path, Value: next.Text})
	}
	diffChildren(out, path, prev.Children, next.Children)
}

func diffAttrs(out *[]Patch, path Path, prev, next Attrs) {
	for _, k := range prev.Keys() {
		if _, ok := next[k]; !ok {
			*out = append(*out, Patch{Op: OpRemoveAttr, Path: path, Key: k})
		}
	}
	for _, k := range next.Keys() {
		if v, ok := prev[k]; !ok || v != next[k] {
			*out = append(*out, Patch{Op: OpSetAttr, Path: path, Key: k, Value: next[k]})
		}
	}
}

// diffChildren matches children by position. Surplus old children are
// removed from the end so earlier indices stay valid.
func diffChildren(out *[]Patch, path Path, prev, next []Node) {
	common := min(len(prev), len(next))
	for i := 0; i < common; i++ {
		diffNode(out, path.Child(i), prev[i], next[i])
	}
	for i := len(prev) - 1; i >= common; i-- {
		*out = append(*out, Patch{Op: OpRemove, Path: path.Child(i)})
	}
	for i := common; i < len(next); i++ {
		*out = append(*out, Patch{Op: OpInsert, Path: path.Child(i), Node: next[i].Clone()})
	}
}

// Applier is a rendering surface that accepts patches.
type Applier interface {
	InsertNode(path Path, n Node) error
	RemoveNode(path Path) error
	SetAttr(path Path, key, value string) error
	RemoveAttr(path Path, key string) error
	SetText(path Path, text string) error
}

// Apply applies patches in order and stops at the first error.
func Apply(a Applier, patches []Patch) error {
	for _, p := range patches {
		var err error
		switch p.Op {
		case OpInsert:
			err = a.InsertNode(p.Path, p.Node)
		case OpRemove:
			err = a.RemoveNode(p.Path)
		case OpSetAttr:
			err = a.SetAttr(p.Path, p.Key, p.Value)
		case OpRemoveAttr:
			err = a.RemoveAttr(p.Path, p.Key)
		case OpSetText:
			err = a.SetText(p.Path, p.Value)
		default:
			err = errors.New(errors.ErrCodeInvalidInput, "unknown patch op %d", p.Op)
		}
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "apply %s", p)
		}
	}
	return nil
}
