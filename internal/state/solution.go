package state

import (
	"slices"

	"github.com/leapstack-labs/symtree/pkg/core"
	"github.com/leapstack-labs/symtree/pkg/format"
	"github.com/leapstack-labs/symtree/pkg/tree"
)

// NewSolution captures n's rendering, fitness, scaling and structural
// metrics. Rendering freezes any unfrozen constant. Call keeps both operands
// of Pow, which the canonical rendering drops.
func NewSolution(n *tree.Node) (*Solution, error) {
	expr, err := n.Render()
	if err != nil {
		return nil, err
	}
	call, err := format.Call(n)
	if err != nil {
		return nil, err
	}
	return &Solution{
		Expression: expr,
		Call:       call,
		Fitness: core.Fitness{
			Objectives:       slices.Clone(n.Fitness.Objectives),
			Rank:             n.Fitness.Rank,
			CrowdingDistance: n.Fitness.CrowdingDistance,
		},
		Scaling:    n.Scaling,
		Size:       n.Size(),
		Height:     n.Height(),
		Complexity: n.NonArithmeticDepth(),
	}, nil
}
