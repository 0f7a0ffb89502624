// Package pareto compares objective vectors under Pareto dominance.
// Every objective is minimized.
package pareto

import (
	"fmt"

	"github.com/leapstack-labs/symtree/pkg/core"
)

// Relation is the outcome of comparing two objective vectors.
type Relation int

const (
	// Incomparable means neither vector dominates the other and they differ.
	Incomparable Relation = iota
	// DominatesOther means the first vector dominates the second.
	DominatesOther
	// DominatedBy means the second vector dominates the first.
	DominatedBy
	// Equal means the vectors are identical on every objective.
	Equal
)

// String returns the relation name.
func (r Relation) String() string {
	switch r {
	case DominatesOther:
		return "dominates"
	case DominatedBy:
		return "dominated"
	case Equal:
		return "equal"
	default:
		return "incomparable"
	}
}

// Dominates reports whether a is no worse than b on every objective and
// strictly better on at least one. It stops at the first objective where a
// is worse or either value is NaN. Vectors of different length are a
// programming error and panic with an error wrapping core.ErrObjectiveLength.
func Dominates(a, b []float64) bool {
	mustMatch(a, b)

	dominates := false
	for i := range a {
		// NaN fails this comparison either way round.
		if !(a[i] <= b[i]) {
			return false
		}
		if a[i] < b[i] {
			dominates = true
		}
	}
	return dominates
}

// Compare classifies the relation between a and b.
func Compare(a, b []float64) Relation {
	switch {
	case Dominates(a, b):
		return DominatesOther
	case Dominates(b, a):
		return DominatedBy
	case equal(a, b):
		return Equal
	default:
		return Incomparable
	}
}

// NonDominated returns the indices, in input order, of the vectors no other
// vector dominates. Ranks and crowding distances are left to the caller.
func NonDominated(objectives [][]float64) []int {
	var front []int
	for i, a := range objectives {
		dominated := false
		for j, b := range objectives {
			if i != j && Dominates(b, a) {
				dominated = true
				break
			}
		}
		if !dominated {
			front = append(front, i)
		}
	}
	return front
}

func mustMatch(a, b []float64) {
	if len(a) != len(b) {
		panic(fmt.Errorf("compare %d objectives with %d: %w", len(a), len(b), core.ErrObjectiveLength))
	}
}

func equal(a, b []float64) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
