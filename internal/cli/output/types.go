package output

import (
	"math"
	"strconv"
)

// Float is a float64 that survives JSON encoding when non-finite. NaN and
// the infinities are written as the strings "NaN", "+Inf" and "-Inf".
type Float float64

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte(strconv.Quote(strconv.FormatFloat(v, 'g', -1, 64))), nil
	}
	return []byte(strconv.FormatFloat(v, 'g', -1, 64)), nil
}

// String formats f in the shortest form that reads back exactly.
func (f Float) String() string {
	return strconv.FormatFloat(float64(f), 'g', -1, 64)
}

// Floats converts a slice for structured output.
func Floats(v []float64) []Float {
	if v == nil {
		return nil
	}
	out := make([]Float, len(v))
	for i, x := range v {
		out[i] = Float(x)
	}
	return out
}

// SummaryOutput holds structural metrics of an expression.
type SummaryOutput struct {
	Size       int `json:"size" yaml:"size"`
	Height     int `json:"height" yaml:"height"`
	Complexity int `json:"complexity" yaml:"complexity"`
	Constants  int `json:"constants" yaml:"constants"`
	Features   int `json:"features" yaml:"features"`
}

// RenderOutput is the structured result of the render command.
type RenderOutput struct {
	Input      string        `json:"input" yaml:"input"`
	Expression string        `json:"expression" yaml:"expression"`
	Format     string        `json:"format" yaml:"format"`
	Formatted  string        `json:"formatted" yaml:"formatted"`
	Summary    SummaryOutput `json:"summary" yaml:"summary"`
}

// ScalingOutput holds linear scaling coefficients.
type ScalingOutput struct {
	Additive       Float `json:"additive" yaml:"additive"`
	Multiplicative Float `json:"multiplicative" yaml:"multiplicative"`
}

// EvalResult is one scored expression.
type EvalResult struct {
	Expression  string        `json:"expression" yaml:"expression"`
	Objectives  []Float       `json:"objectives" yaml:"objectives"`
	Rank        int           `json:"rank" yaml:"rank"`
	Crowding    Float         `json:"crowding_distance" yaml:"crowding_distance"`
	Scaling     ScalingOutput `json:"scaling" yaml:"scaling"`
	Summary     SummaryOutput `json:"summary" yaml:"summary"`
	Predictions []Float       `json:"predictions,omitempty" yaml:"predictions,omitempty"`
}

// EvalOutput is the structured result of the eval command.
type EvalOutput struct {
	Dataset    string       `json:"dataset" yaml:"dataset"`
	Rows       int          `json:"rows" yaml:"rows"`
	Target     string       `json:"target" yaml:"target"`
	Objectives []string     `json:"objective_names" yaml:"objective_names"`
	Results    []EvalResult `json:"results" yaml:"results"`
	RunID      string       `json:"run_id,omitempty" yaml:"run_id,omitempty"`
}

// DominatesOutput is the structured result of the dominates command.
type DominatesOutput struct {
	A         []Float `json:"a" yaml:"a"`
	B         []Float `json:"b" yaml:"b"`
	Dominates bool    `json:"dominates" yaml:"dominates"`
	Relation  string  `json:"relation" yaml:"relation"`
}

// VariantInfo describes one registry entry.
type VariantInfo struct {
	Name          string `json:"name" yaml:"name"`
	Symbol        string `json:"symbol" yaml:"symbol"`
	Arity         int    `json:"arity" yaml:"arity"`
	NonArithmetic bool   `json:"non_arithmetic" yaml:"non_arithmetic"`
}

// SolutionInfo is an archived solution.
type SolutionInfo struct {
	ID         string  `json:"id" yaml:"id"`
	Expression string  `json:"expression" yaml:"expression"`
	Call       string  `json:"call,omitempty" yaml:"call,omitempty"`
	Objectives []Float `json:"objectives" yaml:"objectives"`
	Rank       int     `json:"rank" yaml:"rank"`
	Crowding   Float   `json:"crowding_distance" yaml:"crowding_distance"`
	Size       int     `json:"size" yaml:"size"`
	Height     int     `json:"height" yaml:"height"`
	Complexity int     `json:"complexity" yaml:"complexity"`
}

// FrontOutput is the structured result of the front command.
type FrontOutput struct {
	RunID      string         `json:"run_id" yaml:"run_id"`
	Dataset    string         `json:"dataset" yaml:"dataset"`
	Objectives []string       `json:"objective_names" yaml:"objective_names"`
	Solutions  []SolutionInfo `json:"solutions" yaml:"solutions"`
}

// RunInfo is an archived run.
type RunInfo struct {
	ID         string   `json:"id" yaml:"id"`
	Dataset    string   `json:"dataset" yaml:"dataset"`
	Rows       int      `json:"rows" yaml:"rows"`
	Objectives []string `json:"objective_names" yaml:"objective_names"`
	Seed       uint64   `json:"seed" yaml:"seed"`
	CreatedAt  string   `json:"created_at" yaml:"created_at"`
}
