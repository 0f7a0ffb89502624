package tree

import (
	"fmt"

	"github.com/leapstack-labs/symtree/pkg/core"
	"github.com/leapstack-labs/symtree/pkg/variant"
)

// Render returns the human-readable infix form of the subtree. Rendering an
// unfrozen constant freezes it. Nodes whose child count differs from their
// arity fail with core.ErrArityMismatch.
func (n *Node) Render() (string, error) {
	switch n.kind {
	case variant.Feature:
		return variant.FormatFeature(n.feature), nil
	case variant.Constant:
		v, _ := n.Value()
		return variant.FormatConstant(v), nil
	}

	v, err := variant.Lookup(n.kind)
	if err != nil {
		return "", err
	}
	if len(n.children) != v.Arity {
		return "", fmt.Errorf("render %s: %d of %d children: %w", n.kind, len(n.children), v.Arity, core.ErrArityMismatch)
	}

	args := make([]string, len(n.children))
	for i, c := range n.children {
		if args[i], err = c.Render(); err != nil {
			return "", err
		}
	}
	return v.Render(args), nil
}

// String implements fmt.Stringer. Incomplete trees render as a marker
// carrying the error instead of failing.
func (n *Node) String() string {
	s, err := n.Render()
	if err != nil {
		return fmt.Sprintf("<invalid expression: %v>", err)
	}
	return s
}
