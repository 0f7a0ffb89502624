// Package eval computes the vectorized output of expression trees over a
// dataset.
package eval

import (
	"fmt"
	"math"
	"slices"

	"github.com/leapstack-labs/symtree/pkg/core"
	"github.com/leapstack-labs/symtree/pkg/tree"
	"github.com/leapstack-labs/symtree/pkg/variant"
)

// Output evaluates n over every row of X and returns one value per row.
//
// Children are evaluated against the same X and combined elementwise by the
// node's rule. NaN and Inf propagate and never abort the evaluation.
// Structural faults (incomplete nodes, invalid kinds, feature indices outside
// X) fail before any result is returned. Unfrozen constants are frozen on the
// way; once frozen, repeated calls are bit-identical.
func Output(n *tree.Node, X *core.Dataset) ([]float64, error) {
	if X == nil {
		return nil, fmt.Errorf("evaluate %s: nil dataset: %w", n.Kind(), core.ErrShapeMismatch)
	}

	switch n.Kind() {
	case variant.Feature:
		i, _ := n.Feature()
		col, err := X.Column(i)
		if err != nil {
			return nil, fmt.Errorf("evaluate x%d: %w", i, err)
		}
		return col, nil

	case variant.Constant:
		v, _ := n.Value()
		out := make([]float64, X.Rows())
		for i := range out {
			out[i] = v
		}
		return out, nil
	}

	v, err := variant.Lookup(n.Kind())
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	if n.NumChildren() != v.Arity {
		return nil, fmt.Errorf("evaluate %s: %d of %d children: %w", n.Kind(), n.NumChildren(), v.Arity, core.ErrArityMismatch)
	}

	args := make([][]float64, v.Arity)
	for i := range args {
		if args[i], err = Output(n.Child(i), X); err != nil {
			return nil, err
		}
	}
	return v.Apply(args), nil
}

// Scale returns m*out + a for the given coefficients without modifying out.
func Scale(out []float64, s core.LinearScaling) []float64 {
	if s.IsIdentity() {
		return slices.Clone(out)
	}
	scaled := make([]float64, len(out))
	for i, y := range out {
		scaled[i] = s.Multiplicative*y + s.Additive
	}
	return scaled
}

// Finite reports whether out holds no NaN or infinite value.
func Finite(out []float64) bool {
	for _, y := range out {
		if math.IsNaN(y) || math.IsInf(y, 0) {
			return false
		}
	}
	return true
}

// MSE returns the mean squared error between pred and target.
func MSE(pred, target []float64) (float64, error) {
	if len(pred) != len(target) {
		return 0, fmt.Errorf("mse: %d predictions for %d targets: %w", len(pred), len(target), core.ErrShapeMismatch)
	}
	if len(pred) == 0 {
		return 0, nil
	}
	var sum float64
	for i := range pred {
		d := pred[i] - target[i]
		sum += d * d
	}
	return sum / float64(len(pred)), nil
}
