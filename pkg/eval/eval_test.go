package eval_test

import (
	"context"
	"math"
	"testing"

	"github.com/leapstack-labs/symtree/internal/testutil"
	"github.com/leapstack-labs/symtree/pkg/core"
	"github.com/leapstack-labs/symtree/pkg/eval"
	"github.com/leapstack-labs/symtree/pkg/tree"
	"github.com/leapstack-labs/symtree/pkg/variant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, kind variant.Kind, children ...*tree.Node) *tree.Node {
	t.Helper()
	n := tree.MustNew(kind)
	for _, c := range children {
		require.NoError(t, n.AppendChild(c))
	}
	return n
}

func dataset(t *testing.T, rows ...[]float64) *core.Dataset {
	t.Helper()
	d, err := core.NewDataset(rows)
	require.NoError(t, err)
	return d
}

func TestOutput(t *testing.T) {
	X := dataset(t, []float64{1, 2}, []float64{3, 4}, []float64{-1, 0})

	tests := []struct {
		name string
		node func(t *testing.T) *tree.Node
		want []float64
	}{
		{"feature", func(*testing.T) *tree.Node { return tree.NewFeature(1) }, []float64{2, 4, 0}},
		{"constant broadcast", func(*testing.T) *tree.Node { return tree.NewConstantValue(2.5) }, []float64{2.5, 2.5, 2.5}},
		{"add", func(t *testing.T) *tree.Node {
			return build(t, variant.Add, tree.NewFeature(0), tree.NewConstantValue(2.5))
		}, []float64{3.5, 5.5, 1.5}},
		{"sub", func(t *testing.T) *tree.Node {
			return build(t, variant.Sub, tree.NewFeature(0), tree.NewFeature(1))
		}, []float64{-1, -1, -1}},
		{"mul", func(t *testing.T) *tree.Node {
			return build(t, variant.Mul, tree.NewFeature(0), tree.NewFeature(1))
		}, []float64{2, 12, 0}},
		{"protected div by zero", func(t *testing.T) *tree.Node {
			return build(t, variant.Div, tree.NewFeature(0), tree.NewFeature(1))
		}, []float64{1 / (1e-6 + 2), 3 / (1e-6 + 4), -1 / 1e-6}},
		{"protected log", func(t *testing.T) *tree.Node {
			return build(t, variant.Log, tree.NewFeature(1))
		}, []float64{math.Log(2 + 1e-6), math.Log(4 + 1e-6), math.Log(1e-6)}},
		{"nested", func(t *testing.T) *tree.Node {
			return build(t, variant.Cos, build(t, variant.Mul, tree.NewConstantValue(0), tree.NewFeature(0)))
		}, []float64{1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eval.Output(tt.node(t), X)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOutputNumericAnomaliesPropagate(t *testing.T) {
	X := dataset(t, []float64{-8}, []float64{1000})

	// negative base with fractional exponent is NaN; large exp overflows
	pow := build(t, variant.Pow, tree.NewFeature(0), tree.NewConstantValue(0.5))
	out, err := eval.Output(pow, X)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(out[0]))
	assert.False(t, eval.Finite(out))

	exp := build(t, variant.Exp, tree.NewFeature(0))
	out, err = eval.Output(exp, X)
	require.NoError(t, err)
	assert.True(t, math.IsInf(out[1], 1))
	assert.False(t, eval.Finite(out))
}

func TestOutputStructuralErrors(t *testing.T) {
	X := dataset(t, []float64{1, 2})

	_, err := eval.Output(tree.NewFeature(2), X)
	assert.ErrorIs(t, err, core.ErrFeatureIndex)

	incomplete := build(t, variant.Add, tree.NewFeature(0))
	_, err = eval.Output(incomplete, X)
	assert.ErrorIs(t, err, core.ErrArityMismatch)

	nested := build(t, variant.Sin, build(t, variant.Add, tree.NewFeature(0), tree.NewFeature(9)))
	_, err = eval.Output(nested, X)
	assert.ErrorIs(t, err, core.ErrFeatureIndex)

	_, err = eval.Output(tree.NewFeature(0), nil)
	assert.ErrorIs(t, err, core.ErrShapeMismatch)
}

func TestOutputIsRepeatable(t *testing.T) {
	X := dataset(t, []float64{1}, []float64{2}, []float64{3})
	root := build(t, variant.Mul, tree.NewFeature(0), tree.NewConstant(tree.NewSource(9)))

	first, err := eval.Output(root, X)
	require.NoError(t, err)
	for range 5 {
		again, err := eval.Output(root, X)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestOutputDoesNotMutateDataset(t *testing.T) {
	X := dataset(t, []float64{1}, []float64{2})
	out, err := eval.Output(tree.NewFeature(0), X)
	require.NoError(t, err)
	out[0] = 42
	assert.Equal(t, 1.0, X.At(0, 0))
}

func TestScale(t *testing.T) {
	out := []float64{1, 2, 3}
	assert.Equal(t, []float64{1, 2, 3}, eval.Scale(out, core.IdentityScaling()))
	assert.Equal(t, []float64{2.5, 4.5, 6.5}, eval.Scale(out, core.LinearScaling{Additive: 0.5, Multiplicative: 2}))
	assert.Equal(t, []float64{1, 2, 3}, out)
}

func TestMSE(t *testing.T) {
	mse, err := eval.MSE([]float64{1, 2, 3}, []float64{1, 4, 0})
	require.NoError(t, err)
	assert.InDelta(t, 13.0/3.0, mse, 1e-12)

	_, err = eval.MSE([]float64{1}, []float64{1, 2})
	assert.ErrorIs(t, err, core.ErrShapeMismatch)
}

func TestEvaluateAll(t *testing.T) {
	X := dataset(t, []float64{1, 2}, []float64{3, 4})
	src := tree.NewSource(5)

	roots := make([]*tree.Node, 32)
	for i := range roots {
		roots[i] = build(t, variant.Add, tree.NewFeature(i%2), tree.NewConstant(src))
	}

	e := eval.NewEvaluator(4, testutil.NewTestLogger(t))
	results, err := e.EvaluateAll(context.Background(), roots, X)
	require.NoError(t, err)
	require.Len(t, results, len(roots))

	for i, r := range roots {
		assert.True(t, r.Constants()[0].Frozen())
		want, err := eval.Output(r, X)
		require.NoError(t, err)
		assert.Equal(t, want, results[i])
	}
}

func TestEvaluateAllError(t *testing.T) {
	X := dataset(t, []float64{1})
	roots := []*tree.Node{
		tree.NewFeature(0),
		build(t, variant.Sin, tree.NewFeature(3)),
	}

	_, err := (&eval.Evaluator{}).EvaluateAll(context.Background(), roots, X)
	assert.ErrorIs(t, err, core.ErrFeatureIndex)
}

func TestEvaluateAllCanceled(t *testing.T) {
	X := dataset(t, []float64{1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eval.NewEvaluator(1, nil).EvaluateAll(ctx, []*tree.Node{tree.NewFeature(0)}, X)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOutputProtectedDivisionByZero(t *testing.T) {
	X := dataset(t, []float64{4, 0})
	root := build(t, variant.Div, tree.NewFeature(0), tree.NewFeature(1))

	out, err := eval.Output(root, X)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.InDelta(t, 4e6, out[0], 1e-3)
}
