package core

// Fitness is the ranking bookkeeping a search engine stores on a solution.
// Lower is better on every objective axis. Rank and CrowdingDistance are
// written by the caller's non-dominated sorting and crowding procedures;
// nothing in symtree computes them.
type Fitness struct {
	Objectives       []float64 `json:"objectives" yaml:"objectives"`
	Rank             int       `json:"rank" yaml:"rank"`
	CrowdingDistance float64   `json:"crowding_distance" yaml:"crowding_distance"`
}

// LinearScaling holds externally fitted coefficients. When used they apply
// as Multiplicative*raw + Additive. Evaluation never applies them implicitly.
type LinearScaling struct {
	Additive       float64 `json:"additive" yaml:"additive"`
	Multiplicative float64 `json:"multiplicative" yaml:"multiplicative"`
}

// IdentityScaling returns the coefficients that leave raw output unchanged.
func IdentityScaling() LinearScaling {
	return LinearScaling{Additive: 0, Multiplicative: 1}
}

// IsIdentity reports whether applying s would be a no-op.
func (s LinearScaling) IsIdentity() bool {
	return s.Additive == 0 && s.Multiplicative == 1
}
