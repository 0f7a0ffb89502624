package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/symtree/internal/cli/output"
	"github.com/leapstack-labs/symtree/pkg/core"
	"github.com/leapstack-labs/symtree/pkg/pareto"
)

// NewDominatesCommand creates the dominates command.
func NewDominatesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dominates <a> <b>",
		Short: "Check whether one objective vector Pareto-dominates another",
		Long: `Compare two comma-separated objective vectors, lower is better on every
axis. a dominates b when it is no worse on every objective and strictly
better on at least one.`,
		Example: `  symtree dominates 0.5,3 0.7,3
  symtree dominates 1,inf 2,1 -o json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDominates(NewCommandContext(cmd), args[0], args[1])
		},
	}
}

func runDominates(c *CommandContext, rawA, rawB string) error {
	a, err := parseVector(rawA)
	if err != nil {
		return fmt.Errorf("vector a: %w", err)
	}
	b, err := parseVector(rawB)
	if err != nil {
		return fmt.Errorf("vector b: %w", err)
	}
	if len(a) != len(b) {
		return fmt.Errorf("a has %d objectives, b has %d: %w", len(a), len(b), core.ErrObjectiveLength)
	}

	out := output.DominatesOutput{
		A:         output.Floats(a),
		B:         output.Floats(b),
		Dominates: pareto.Dominates(a, b),
		Relation:  pareto.Compare(a, b).String(),
	}

	r := c.Renderer
	if r.Structured() {
		return r.Data(out)
	}
	r.KeyValue("a dominates b", strconv.FormatBool(out.Dominates))
	r.KeyValue("Relation", out.Relation)
	return nil
}

// parseVector reads comma-separated floats. inf, nan and their signed forms
// are accepted.
func parseVector(s string) ([]float64, error) {
	fields := strings.Split(s, ",")
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			return nil, fmt.Errorf("empty objective in %q", s)
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid objective %q", f)
		}
		out = append(out, v)
	}
	return out, nil
}
