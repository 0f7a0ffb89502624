package tree

import (
	"fmt"

	"github.com/leapstack-labs/symtree/pkg/core"
	"github.com/leapstack-labs/symtree/pkg/pareto"
	"github.com/leapstack-labs/symtree/pkg/variant"
)

// Node is one vertex of an expression tree.
//
// Fitness and Scaling belong to the caller: the search engine writes them
// and nothing in this package reads them except Dominates.
type Node struct {
	kind     variant.Kind
	arity    int
	children []*Node
	parent   *Node

	feature  int  // Feature leaves
	constant *erc // Constant leaves

	Fitness core.Fitness
	Scaling core.LinearScaling
}

// New returns an operator node of the given kind with no children.
// Leaf kinds need their own constructors.
func New(kind variant.Kind) (*Node, error) {
	v, err := variant.Lookup(kind)
	if err != nil {
		return nil, err
	}
	if v.Arity == 0 {
		return nil, fmt.Errorf("%s is a leaf kind, use NewFeature or NewConstant: %w", kind, core.ErrUnimplementedVariant)
	}
	return newNode(kind, v.Arity), nil
}

// MustNew is like New but panics on error.
func MustNew(kind variant.Kind) *Node {
	n, err := New(kind)
	if err != nil {
		panic(err)
	}
	return n
}

// NewFeature returns a leaf reading column index of the dataset.
// The index is checked against the dataset at evaluation time.
func NewFeature(index int) *Node {
	n := newNode(variant.Feature, 0)
	n.feature = index
	return n
}

// NewConstant returns an unfrozen ephemeral constant. Its value is drawn from
// src on first read. A nil src draws from the global generator.
func NewConstant(src Source) *Node {
	n := newNode(variant.Constant, 0)
	n.constant = newERC(src)
	return n
}

// NewConstantValue returns a constant already frozen at v.
func NewConstantValue(v float64) *Node {
	n := newNode(variant.Constant, 0)
	n.constant = frozenERC(v)
	return n
}

func newNode(kind variant.Kind, arity int) *Node {
	return &Node{
		kind:    kind,
		arity:   arity,
		Scaling: core.IdentityScaling(),
	}
}

// Kind returns the node's variant.
func (n *Node) Kind() variant.Kind { return n.kind }

// Arity returns the declared number of children.
func (n *Node) Arity() int { return n.arity }

// NonArithmetic reports whether the node's kind is flagged non-arithmetic.
func (n *Node) NonArithmetic() bool {
	v, err := variant.Lookup(n.kind)
	return err == nil && v.NonArithmetic
}

// Children returns a copy of the ordered child list.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Child returns the i-th child, or nil when i is out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// NumChildren returns the current child count.
func (n *Node) NumChildren() int { return len(n.children) }

// Parent returns the direct container, or nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// IsRoot reports whether n has no parent.
func (n *Node) IsRoot() bool { return n.parent == nil }

// IsLeaf reports whether n has arity zero.
func (n *Node) IsLeaf() bool { return n.arity == 0 }

// IsComplete reports whether n has exactly as many children as its arity.
func (n *Node) IsComplete() bool { return len(n.children) == n.arity }

// Root follows parent links to the top of the tree.
func (n *Node) Root() *Node {
	r := n
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Feature returns the column index of a Feature leaf.
func (n *Node) Feature() (int, bool) {
	if n.kind != variant.Feature {
		return 0, false
	}
	return n.feature, true
}

// Value returns a Constant's value, drawing and freezing it on first read.
// It reports false for other kinds.
func (n *Node) Value() (float64, bool) {
	if n.kind != variant.Constant || n.constant == nil {
		return 0, false
	}
	return n.constant.get(), true
}

// Frozen reports whether a Constant already holds its value. Non-constants
// report true.
func (n *Node) Frozen() bool {
	if n.kind != variant.Constant || n.constant == nil {
		return true
	}
	return n.constant.isFrozen()
}

// Dominates reports whether n Pareto-dominates other on their stored
// objectives. It panics when the vectors differ in length.
func (n *Node) Dominates(other *Node) bool {
	return pareto.Dominates(n.Fitness.Objectives, other.Fitness.Objectives)
}
