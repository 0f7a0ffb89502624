package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/symtree/internal/cli/output"
	"github.com/leapstack-labs/symtree/internal/objective"
	"github.com/leapstack-labs/symtree/internal/ranking"
	"github.com/leapstack-labs/symtree/internal/state"
	"github.com/leapstack-labs/symtree/pkg/core"
	"github.com/leapstack-labs/symtree/pkg/eval"
	"github.com/leapstack-labs/symtree/pkg/tree"
)

// EvalOptions holds options for the eval command.
type EvalOptions struct {
	Postfix        bool
	Additive       float64
	Multiplicative float64
	Limit          int
	Save           bool
}

// NewEvalCommand creates the eval command.
func NewEvalCommand() *cobra.Command {
	opts := &EvalOptions{}

	cmd := &cobra.Command{
		Use:   "eval <expression>...",
		Short: "Evaluate expressions against the configured dataset",
		Long: `Evaluate one or more expressions over every row of the configured dataset,
score them with the objective policy and rank them into Pareto fronts.

Each argument is one expression. Column names of the dataset may be used in
place of x0, x1, ... The target column is excluded from the features.

Objectives default to mean squared error and non-arithmetic depth. Set
objectives.script (or --objectives) to a starlark file to change them.`,
		Example: `  # Score two candidates on a CSV file
  symtree eval --csv points.csv "sin(x0)" "x0 * x1"

  # Apply linear scaling and archive the results
  symtree eval --csv points.csv --multiplicative 2 --additive 0.5 --save "x0"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd.Context(), NewCommandContext(cmd), args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Postfix, "postfix", false, "Read expressions in reverse Polish notation")
	cmd.Flags().Float64Var(&opts.Additive, "additive", 0, "Additive scaling coefficient")
	cmd.Flags().Float64Var(&opts.Multiplicative, "multiplicative", 1, "Multiplicative scaling coefficient")
	cmd.Flags().IntVar(&opts.Limit, "limit", 5, "Predictions to print per expression (0 for none)")
	cmd.Flags().BoolVar(&opts.Save, "save", false, "Archive the scored expressions as a new run")

	return cmd
}

// scored is one evaluated expression.
type scored struct {
	node        *tree.Node
	predictions []float64
}

func runEval(ctx context.Context, c *CommandContext, inputs []string, opts *EvalOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	ws, err := c.loadWorkspace(ctx)
	if err != nil {
		return err
	}
	policy, err := c.loadPolicy()
	if err != nil {
		return err
	}

	src := c.constantSource()
	columns := ws.Features.Names()
	scaling := core.LinearScaling{Additive: opts.Additive, Multiplicative: opts.Multiplicative}

	roots := make([]*tree.Node, len(inputs))
	for i, in := range inputs {
		n, err := c.parseExpression(in, opts.Postfix, columns, src)
		if err != nil {
			return fmt.Errorf("expression %d: %w", i+1, err)
		}
		n.Scaling = scaling
		roots[i] = n
	}

	evaluator := eval.NewEvaluator(c.Cfg.Workers, c.Logger)
	raw, err := evaluator.EvaluateAll(ctx, roots, ws.Features)
	if err != nil {
		return err
	}

	results := make([]scored, len(roots))
	for i, n := range roots {
		results[i] = scored{node: n, predictions: eval.Scale(raw[i], n.Scaling)}
	}

	if err := scoreAll(ctx, policy, results, ws, c.Cfg.Workers); err != nil {
		return err
	}

	fitness := make([]*core.Fitness, len(roots))
	for i, n := range roots {
		fitness[i] = &n.Fitness
	}
	ranking.Assign(fitness)

	var runID string
	if opts.Save {
		runID, err = saveRun(c, ws, policy.Names(), roots)
		if err != nil {
			return err
		}
	}

	out := output.EvalOutput{
		Dataset:    ws.Name,
		Rows:       ws.Features.Rows(),
		Target:     ws.TargetName,
		Objectives: policy.Names(),
		RunID:      runID,
	}
	for _, s := range results {
		expr, err := s.node.Render()
		if err != nil {
			return err
		}
		preds := s.predictions
		if opts.Limit >= 0 && opts.Limit < len(preds) {
			preds = preds[:opts.Limit]
		}
		out.Results = append(out.Results, output.EvalResult{
			Expression: expr,
			Objectives: output.Floats(s.node.Fitness.Objectives),
			Rank:       s.node.Fitness.Rank,
			Crowding:   output.Float(s.node.Fitness.CrowdingDistance),
			Scaling: output.ScalingOutput{
				Additive:       output.Float(s.node.Scaling.Additive),
				Multiplicative: output.Float(s.node.Scaling.Multiplicative),
			},
			Summary:     summaryOutput(s.node),
			Predictions: output.Floats(preds),
		})
	}

	return renderEval(c.Renderer, out, ws)
}

// scoreAll computes objectives for every result and stores them on its tree.
func scoreAll(ctx context.Context, policy objective.Policy, results []scored, ws *Workspace, workers int) error {
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i := range results {
		g.Go(func() error {
			n := results[i].node
			info, err := objective.InfoFor(n, ws.Features.Rows())
			if err != nil {
				return err
			}
			values, err := policy.Evaluate(gctx, results[i].predictions, ws.Target, info)
			if err != nil {
				return err
			}
			n.Fitness.Objectives = values
			return nil
		})
	}
	return g.Wait()
}

func saveRun(c *CommandContext, ws *Workspace, names []string, roots []*tree.Node) (string, error) {
	store, err := c.openArchive()
	if err != nil {
		return "", err
	}
	defer func() { _ = store.Close() }()

	run, err := store.CreateRun(ws.Name, ws.Features.Rows(), names, c.Cfg.Seed)
	if err != nil {
		return "", err
	}

	solutions := make([]*state.Solution, len(roots))
	for i, n := range roots {
		if solutions[i], err = state.NewSolution(n); err != nil {
			return "", err
		}
	}
	if err := store.SaveSolutions(run.ID, solutions); err != nil {
		return "", err
	}

	c.Logger.Info("archived run", slog.String("run", run.ID), slog.Int("solutions", len(solutions)))
	return run.ID, nil
}

func renderEval(r *output.Renderer, out output.EvalOutput, ws *Workspace) error {
	if r.Structured() {
		return r.Data(out)
	}

	r.Header(1, fmt.Sprintf("Evaluated %d expression(s) on %s", len(out.Results), out.Dataset))
	r.KeyValue("Rows", strconv.Itoa(out.Rows))
	r.KeyValue("Target", out.Target)
	r.Println("")

	header := []string{"Rank", "Expression"}
	header = append(header, out.Objectives...)
	header = append(header, "Crowding")
	rows := make([][]string, len(out.Results))
	for i, res := range out.Results {
		row := []string{strconv.Itoa(res.Rank), res.Expression}
		for _, v := range res.Objectives {
			row = append(row, v.String())
		}
		rows[i] = append(row, res.Crowding.String())
	}
	r.Table(header, rows)

	for _, res := range out.Results {
		if len(res.Predictions) == 0 {
			continue
		}
		r.Println("")
		r.Header(2, res.Expression)
		head := ws.Features.Head(len(res.Predictions))
		predHeader := append([]string{"Row"}, head.Names()...)
		predHeader = append(predHeader, ws.TargetName, "Prediction")
		predRows := make([][]string, len(res.Predictions))
		for i, p := range res.Predictions {
			row := []string{strconv.Itoa(i)}
			for _, v := range head.Row(i) {
				row = append(row, output.Float(v).String())
			}
			predRows[i] = append(row, output.Float(ws.Target[i]).String(), p.String())
		}
		r.Table(predHeader, predRows)
	}

	if out.RunID != "" {
		r.Println("")
		r.Success(fmt.Sprintf("Saved %d solution(s) to run %s", len(out.Results), out.RunID))
	}
	return nil
}
