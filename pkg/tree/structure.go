package tree

import (
	"fmt"
	"slices"

	"github.com/leapstack-labs/symtree/pkg/core"
	"github.com/leapstack-labs/symtree/pkg/variant"
)

// AppendChild attaches child as the last child of n.
func (n *Node) AppendChild(child *Node) error {
	if err := n.checkAttach(child); err != nil {
		return err
	}
	n.children = append(n.children, child)
	child.parent = n
	return nil
}

// InsertChildAtPosition attaches child at index i, shifting later children
// right. i must lie in [0, NumChildren()].
func (n *Node) InsertChildAtPosition(i int, child *Node) error {
	if i < 0 || i > len(n.children) {
		return fmt.Errorf("insert at %d into %s with %d children: %w", i, n.kind, len(n.children), core.ErrStructuralPrecondition)
	}
	if err := n.checkAttach(child); err != nil {
		return err
	}
	n.children = slices.Insert(n.children, i, child)
	child.parent = n
	return nil
}

// DetachChild removes child, matched by identity, and clears its parent link.
// It returns the index the child occupied. n may be left with fewer children
// than its arity until the caller fills the slot again.
func (n *Node) DetachChild(child *Node) (int, error) {
	i := slices.Index(n.children, child)
	if i < 0 {
		return -1, fmt.Errorf("detach from %s: node is not a direct child: %w", n.kind, core.ErrStructuralPrecondition)
	}
	n.children = slices.Delete(n.children, i, i+1)
	child.parent = nil
	return i, nil
}

// Replace swaps old, a direct child of n, for repl at the same position.
func (n *Node) Replace(old, repl *Node) error {
	if err := n.checkLinkable(repl); err != nil {
		return err
	}
	i := slices.Index(n.children, old)
	if i < 0 {
		return fmt.Errorf("replace in %s: node is not a direct child: %w", n.kind, core.ErrStructuralPrecondition)
	}
	n.children[i] = repl
	old.parent = nil
	repl.parent = n
	return nil
}

// checkAttach validates attaching child to n without mutating anything.
func (n *Node) checkAttach(child *Node) error {
	if len(n.children) >= n.arity {
		return fmt.Errorf("attach to %s: already has %d of %d children: %w", n.kind, len(n.children), n.arity, core.ErrArityMismatch)
	}
	return n.checkLinkable(child)
}

func (n *Node) checkLinkable(child *Node) error {
	if child == nil {
		return fmt.Errorf("attach nil child to %s: %w", n.kind, core.ErrStructuralPrecondition)
	}
	if child.parent != nil {
		return fmt.Errorf("attach %s to %s: node already has a parent: %w", child.kind, n.kind, core.ErrStructuralPrecondition)
	}
	for a := n; a != nil; a = a.parent {
		if a == child {
			return fmt.Errorf("attach %s to %s: would create a cycle: %w", child.kind, n.kind, core.ErrStructuralPrecondition)
		}
	}
	return nil
}

// Subtree returns n and all its descendants in pre-order: a node first, then
// each child's subtree left to right. The slice is fully materialized, so
// later mutation of the tree does not affect it.
func (n *Node) Subtree() []*Node {
	var out []*Node
	stack := []*Node{n}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, top)
		for i := len(top.children) - 1; i >= 0; i-- {
			stack = append(stack, top.children[i])
		}
	}
	return out
}

// Walk visits the subtree in pre-order. Returning false from fn stops the walk.
func (n *Node) Walk(fn func(*Node) bool) {
	stack := []*Node{n}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(top) {
			return
		}
		for i := len(top.children) - 1; i >= 0; i-- {
			stack = append(stack, top.children[i])
		}
	}
}

// Size returns the number of nodes in the subtree rooted at n.
func (n *Node) Size() int {
	size := 0
	n.Walk(func(*Node) bool {
		size++
		return true
	})
	return size
}

// Depth returns the number of parent edges between n and its root.
func (n *Node) Depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// Height returns the greatest depth, relative to n, of any arity-zero node in
// the subtree rooted at n. A leaf has height 0, as does a subtree that has no
// leaves yet.
func (n *Node) Height() int {
	return max(n.leafHeight(), 0)
}

// leafHeight returns -1 when the subtree has no arity-zero node.
func (n *Node) leafHeight() int {
	if n.arity == 0 {
		return 0
	}
	best := -1
	for _, c := range n.children {
		if h := c.leafHeight(); h >= 0 {
			best = max(best, h+1)
		}
	}
	return best
}

// NonArithmeticDepth returns the greatest number of non-arithmetic nodes on
// any root-to-leaf path of the subtree. A flagged node counts 1 plus the
// largest value among its children; other nodes pass the largest child value
// through. Leaves count 0.
func (n *Node) NonArithmeticDepth() int {
	best := 0
	for _, c := range n.children {
		best = max(best, c.NonArithmeticDepth())
	}
	if n.NonArithmetic() {
		best++
	}
	return best
}

// Constants returns the Constant leaves of the subtree in pre-order.
func (n *Node) Constants() []*Node {
	var out []*Node
	n.Walk(func(m *Node) bool {
		if m.kind == variant.Constant {
			out = append(out, m)
		}
		return true
	})
	return out
}

// Freeze draws every unfrozen constant in the subtree. Call it from a single
// goroutine before sharing evaluation of the tree.
func (n *Node) Freeze() {
	for _, c := range n.Constants() {
		c.Value()
	}
}

// Clone returns a deep copy of the subtree as a new root. Frozen constants
// keep their value; unfrozen ones stay unfrozen and draw from the same source.
// Fitness and Scaling are copied.
func (n *Node) Clone() *Node {
	c := &Node{
		kind:    n.kind,
		arity:   n.arity,
		feature: n.feature,
		Fitness: core.Fitness{
			Objectives:       slices.Clone(n.Fitness.Objectives),
			Rank:             n.Fitness.Rank,
			CrowdingDistance: n.Fitness.CrowdingDistance,
		},
		Scaling: n.Scaling,
	}
	if n.constant != nil {
		n.constant.mu.Lock()
		c.constant = &erc{src: n.constant.src, value: n.constant.value, frozen: n.constant.frozen}
		n.constant.mu.Unlock()
	}
	if len(n.children) > 0 {
		c.children = make([]*Node, len(n.children))
		for i, child := range n.children {
			cc := child.Clone()
			cc.parent = c
			c.children[i] = cc
		}
	}
	return c
}

// Validate checks the whole subtree: every kind is concrete, every node holds
// exactly its arity in children, and every child links back to its container.
func (n *Node) Validate() error {
	var err error
	n.Walk(func(m *Node) bool {
		if !m.kind.Valid() {
			err = fmt.Errorf("validate: %w", &variant.UnknownVariantError{Kind: m.kind})
			return false
		}
		if len(m.children) != m.arity {
			err = fmt.Errorf("validate: %s has %d children, arity %d: %w", m.kind, len(m.children), m.arity, core.ErrArityMismatch)
			return false
		}
		for _, c := range m.children {
			if c.parent != m {
				err = fmt.Errorf("validate: child of %s has a stale parent link: %w", m.kind, core.ErrStructuralPrecondition)
				return false
			}
		}
		return true
	})
	return err
}
