package pareto_test

import (
	"errors"
	"math"
	"testing"

	"github.com/leapstack-labs/symtree/pkg/core"
	"github.com/leapstack-labs/symtree/pkg/pareto"
	"github.com/stretchr/testify/assert"
)

func TestDominates(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want bool
	}{
		{"better on both", []float64{1, 2}, []float64{2, 3}, true},
		{"better on one equal on other", []float64{1, 3}, []float64{2, 3}, true},
		{"equal vectors", []float64{1, 2}, []float64{1, 2}, false},
		{"trade-off", []float64{1, 3}, []float64{2, 2}, false},
		{"worse", []float64{2, 3}, []float64{1, 2}, false},
		{"worse first then better", []float64{3, 0}, []float64{2, 5}, false},
		{"empty vectors", []float64{}, []float64{}, false},
		{"single objective", []float64{0.5}, []float64{0.7}, true},
		{"infinite loses", []float64{math.Inf(1), 1}, []float64{1, 1}, false},
		{"nan never dominates", []float64{math.NaN(), 1}, []float64{2, 2}, false},
		{"nan is never dominated", []float64{1, 1}, []float64{math.NaN(), 2}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pareto.Dominates(tt.a, tt.b))
		})
	}
}

func TestDominatesIrreflexiveAndAsymmetric(t *testing.T) {
	vectors := [][]float64{
		{0, 0}, {1, 0}, {0, 1}, {1, 1}, {2, 0.5}, {0.5, 2},
	}
	for _, a := range vectors {
		assert.False(t, pareto.Dominates(a, a), "%v dominates itself", a)
		for _, b := range vectors {
			if pareto.Dominates(a, b) {
				assert.False(t, pareto.Dominates(b, a), "%v and %v dominate each other", a, b)
			}
		}
	}
}

func TestDominatesLengthMismatchPanics(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		if assert.True(t, ok, "panic value should be an error") {
			assert.True(t, errors.Is(err, core.ErrObjectiveLength))
		}
	}()
	pareto.Dominates([]float64{1, 2}, []float64{1})
}

func TestCompare(t *testing.T) {
	assert.Equal(t, pareto.DominatesOther, pareto.Compare([]float64{1, 1}, []float64{2, 2}))
	assert.Equal(t, pareto.DominatedBy, pareto.Compare([]float64{2, 2}, []float64{1, 1}))
	assert.Equal(t, pareto.Equal, pareto.Compare([]float64{1, 2}, []float64{1, 2}))
	assert.Equal(t, pareto.Incomparable, pareto.Compare([]float64{1, 3}, []float64{3, 1}))
	assert.Equal(t, "dominates", pareto.DominatesOther.String())
	assert.Equal(t, "incomparable", pareto.Incomparable.String())
}

func TestNonDominated(t *testing.T) {
	objs := [][]float64{
		{1, 5}, // front
		{2, 2}, // front
		{3, 3}, // dominated by {2,2}
		{5, 1}, // front
		{2, 2}, // duplicate, not strictly dominated
		{6, 6}, // dominated
	}
	assert.Equal(t, []int{0, 1, 3, 4}, pareto.NonDominated(objs))
	assert.Nil(t, pareto.NonDominated(nil))
}
