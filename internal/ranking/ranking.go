// Package ranking assigns front indices and crowding distances to a scored
// population. It is the caller-side bookkeeping the comparator leaves out:
// the only dominance test used is pareto.Dominates.
package ranking

import (
	"math"
	"sort"

	"github.com/leapstack-labs/symtree/pkg/core"
	"github.com/leapstack-labs/symtree/pkg/pareto"
)

// Fronts sorts objectives into non-dominated fronts. Fronts[0] holds the
// indices no vector dominates; each later front is non-dominated once the
// earlier ones are removed. All vectors must have equal length.
func Fronts(objectives [][]float64) [][]int {
	n := len(objectives)
	dominatedBy := make([]int, n)
	dominates := make([][]int, n)
	for i := range n {
		for j := i + 1; j < n; j++ {
			switch {
			case pareto.Dominates(objectives[i], objectives[j]):
				dominates[i] = append(dominates[i], j)
				dominatedBy[j]++
			case pareto.Dominates(objectives[j], objectives[i]):
				dominates[j] = append(dominates[j], i)
				dominatedBy[i]++
			}
		}
	}

	var fronts [][]int
	var current []int
	for i := range n {
		if dominatedBy[i] == 0 {
			current = append(current, i)
		}
	}
	for len(current) > 0 {
		fronts = append(fronts, current)
		var next []int
		for _, i := range current {
			for _, j := range dominates[i] {
				dominatedBy[j]--
				if dominatedBy[j] == 0 {
					next = append(next, j)
				}
			}
		}
		sort.Ints(next)
		current = next
	}
	return fronts
}

// Crowding returns the crowding distance of each member of front. Boundary
// members of every objective get +Inf.
func Crowding(objectives [][]float64, front []int) []float64 {
	dist := make([]float64, len(front))
	if len(front) == 0 {
		return dist
	}
	if len(front) <= 2 {
		for i := range dist {
			dist[i] = math.Inf(1)
		}
		return dist
	}

	order := make([]int, len(front))
	for m := range objectives[front[0]] {
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return objectives[front[order[a]]][m] < objectives[front[order[b]]][m]
		})

		lo := objectives[front[order[0]]][m]
		hi := objectives[front[order[len(order)-1]]][m]
		dist[order[0]] = math.Inf(1)
		dist[order[len(order)-1]] = math.Inf(1)
		span := hi - lo
		if span == 0 || math.IsInf(span, 0) || math.IsNaN(span) {
			continue
		}
		for k := 1; k < len(order)-1; k++ {
			prev := objectives[front[order[k-1]]][m]
			next := objectives[front[order[k+1]]][m]
			dist[order[k]] += (next - prev) / span
		}
	}
	return dist
}

// Assign computes fronts and crowding distances and writes them into the
// matching Fitness values. fitness[i].Objectives must all have equal length.
func Assign(fitness []*core.Fitness) {
	objectives := make([][]float64, len(fitness))
	for i, f := range fitness {
		objectives[i] = f.Objectives
	}
	for rank, front := range Fronts(objectives) {
		dist := Crowding(objectives, front)
		for k, i := range front {
			fitness[i].Rank = rank
			fitness[i].CrowdingDistance = dist[k]
		}
	}
}
