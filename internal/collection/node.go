// Package collection holds the tree of image sets being browsed and the
// row packing layout that places them on a virtual canvas.
package collection

import (
	"errors"
	"fmt"

	"github.com/justyntemme/liv/internal/attr"
	"github.com/justyntemme/liv/internal/record"
)

// Kind tells leaves from the different kinds of set.
type Kind int

const (
	// KindLeaf wraps one record.
	KindLeaf Kind = iota
	// KindFile is a set loaded from a collection file.
	KindFile
	// KindDirectory is a set filled by scanning a directory.
	KindDirectory
	// KindSet is a plain named grouping.
	KindSet
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	case KindSet:
		return "set"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

var (
	ErrAlreadyOwned = errors.New("collection: node already has a parent")
	ErrCycle        = errors.New("collection: node is an ancestor of the target")
	ErrNotSet       = errors.New("collection: leaves cannot have children")
	ErrIndex        = errors.New("collection: child index out of range")
)

// Notes are the annotations a set or directory entry carries in a
// collection file. Leaves keep theirs on the record.
type Notes struct {
	Tags        []string
	Title       string
	Description string
	Meta        *attr.Attribute
}

// Node is a leaf around a record or a set of child nodes.
//
// Geometry is in the parent's canvas space. For sets, KidsWidth and
// KidsHeight are the packed size of the children and ScaleToKids maps that
// canvas into the node's own box.
type Node struct {
	Kind   Kind
	Name   string // set name or directory path
	Record *record.Record
	Notes  Notes

	// Recursive marks directory sets scanned with subdirectories.
	Recursive bool

	X, Y, Width, Height   float32
	KidsWidth, KidsHeight float32
	ScaleToKids           float32
	Gap                   float32

	// FixedWidth and FixedHeight, when both positive, replace the content
	// size used when this node is packed into its parent.
	FixedWidth, FixedHeight float32

	mode     LayoutMode
	parent   *Node
	children []*Node
}

// NewSet returns an empty set of the given kind.
func NewSet(kind Kind, name string) *Node {
	return &Node{Kind: kind, Name: name, ScaleToKids: 1}
}

// NewLeaf wraps r and takes a reference on it.
func NewLeaf(r *record.Record) *Node {
	r.Retain()
	return &Node{Kind: KindLeaf, Record: r}
}

// IsLeaf reports whether n wraps a record.
func (n *Node) IsLeaf() bool { return n.Kind == KindLeaf }

// Parent returns the owning set, or nil.
func (n *Node) Parent() *Node { return n.parent }

// Len returns the number of children.
func (n *Node) Len() int { return len(n.children) }

// Child returns child i, or nil when i is out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// Children returns the child list. Callers must not modify it.
func (n *Node) Children() []*Node { return n.children }

// Index returns the position of child, or -1.
func (n *Node) Index(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

// IndexOfRecord returns the first leaf child wrapping r, or -1.
func (n *Node) IndexOfRecord(r *record.Record) int {
	for i, c := range n.children {
		if c.Record == r {
			return i
		}
	}
	return -1
}

// AddChild inserts child at pos, or appends when pos is out of range.
// On failure the tree is unchanged.
func (n *Node) AddChild(child *Node, pos int) error {
	if n.IsLeaf() {
		return ErrNotSet
	}
	for a := n; a != nil; a = a.parent {
		if a == child {
			return ErrCycle
		}
	}
	if child.parent != nil {
		return ErrAlreadyOwned
	}
	if pos < 0 || pos > len(n.children) {
		pos = len(n.children)
	}
	n.children = append(n.children, nil)
	copy(n.children[pos+1:], n.children[pos:])
	n.children[pos] = child
	child.parent = n
	return nil
}

// AddLeaf wraps r in a new leaf and inserts it at pos.
func (n *Node) AddLeaf(r *record.Record, pos int) (*Node, error) {
	if n.IsLeaf() {
		return nil, ErrNotSet
	}
	leaf := NewLeaf(r)
	if err := n.AddChild(leaf, pos); err != nil {
		leaf.Release()
		return nil, err
	}
	return leaf, nil
}

// RemoveChild detaches child i and returns it. The removed subtree keeps
// its record references until the caller releases it.
func (n *Node) RemoveChild(i int) (*Node, error) {
	if i < 0 || i >= len(n.children) {
		return nil, ErrIndex
	}
	child := n.children[i]
	n.children = append(n.children[:i], n.children[i+1:]...)
	child.parent = nil
	return child, nil
}

// TakeChildren detaches and returns all children.
func (n *Node) TakeChildren() []*Node {
	kids := n.children
	n.children = nil
	for _, c := range kids {
		c.parent = nil
	}
	return kids
}

// Clear removes and releases every child.
func (n *Node) Clear() {
	for _, c := range n.TakeChildren() {
		c.Release()
	}
}

// Release drops the record references held by n and its subtree. n must
// already be detached.
func (n *Node) Release() {
	if n.Record != nil {
		n.Record.Release()
		n.Record = nil
	}
	for _, c := range n.children {
		c.Release()
	}
}

// Walk calls fn for n and every descendant, depth first, stopping early
// when fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Records returns the records of the leaf children, in order.
func (n *Node) Records() []*record.Record {
	var out []*record.Record
	for _, c := range n.children {
		if c.Record != nil {
			out = append(out, c.Record)
		}
	}
	return out
}
