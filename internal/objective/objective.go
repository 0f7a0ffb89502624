// Package objective computes objective vectors for evaluated expressions.
//
// A Policy maps predictions, targets and structural facts about a tree to a
// vector of minimised objectives. Default is mean squared error paired with
// non-arithmetic depth. Script runs a user supplied starlark function.
package objective

import (
	"context"
	"math"

	"github.com/leapstack-labs/symtree/pkg/eval"
	"github.com/leapstack-labs/symtree/pkg/tree"
)

// Info describes the tree whose predictions are being scored.
type Info struct {
	Expression string
	Size       int
	Height     int
	Complexity int
	Rows       int
}

// InfoFor collects Info for n evaluated over rows samples.
// Rendering freezes any unfrozen constant.
func InfoFor(n *tree.Node, rows int) (Info, error) {
	expr, err := n.Render()
	if err != nil {
		return Info{}, err
	}
	return Info{
		Expression: expr,
		Size:       n.Size(),
		Height:     n.Height(),
		Complexity: n.NonArithmeticDepth(),
		Rows:       rows,
	}, nil
}

// Policy scores one prediction vector. Names has one entry per objective.
type Policy interface {
	Names() []string
	Evaluate(ctx context.Context, pred, target []float64, info Info) ([]float64, error)
}

// Default scores by mean squared error and non-arithmetic depth.
type Default struct{}

// Names implements Policy.
func (Default) Names() []string { return []string{"mse", "complexity"} }

// Evaluate implements Policy.
func (Default) Evaluate(ctx context.Context, pred, target []float64, info Info) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mse, err := eval.MSE(pred, target)
	if err != nil {
		return nil, err
	}
	return Sanitize([]float64{mse, float64(info.Complexity)}), nil
}

// Sanitize replaces NaN and infinite objectives with +Inf in place so an
// invalid solution is dominated by every valid one.
func Sanitize(v []float64) []float64 {
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			v[i] = math.Inf(1)
		}
	}
	return v
}

var _ Policy = Default{}
