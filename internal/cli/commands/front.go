package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/symtree/internal/cli/output"
	"github.com/leapstack-labs/symtree/internal/state"
)

// FrontOptions holds options for the front command.
type FrontOptions struct {
	RunID string
	All   bool
}

// NewFrontCommand creates the front command.
func NewFrontCommand() *cobra.Command {
	opts := &FrontOptions{}

	cmd := &cobra.Command{
		Use:   "front",
		Short: "Show the Pareto front of an archived run",
		Long: `Show the non-dominated solutions of the most recent archived run, or of
the run named by --run. Runs are archived by "symtree eval --save".`,
		Example: `  symtree front
  symtree front --run 3f2c... --all -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFront(NewCommandContext(cmd), opts)
		},
	}

	cmd.Flags().StringVar(&opts.RunID, "run", "", "Run ID (default: latest run)")
	cmd.Flags().BoolVar(&opts.All, "all", false, "Show every archived solution, not only the front")
	return cmd
}

func runFront(c *CommandContext, opts *FrontOptions) error {
	store, err := c.openArchive()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	var run *state.Run
	if opts.RunID != "" {
		run, err = store.GetRun(opts.RunID)
	} else {
		run, err = store.LatestRun()
	}
	if err != nil {
		return err
	}

	var solutions []*state.Solution
	if opts.All {
		solutions, err = store.ListSolutions(run.ID)
	} else {
		solutions, err = store.Front(run.ID)
	}
	if err != nil {
		return err
	}

	out := output.FrontOutput{
		RunID:      run.ID,
		Dataset:    run.Dataset,
		Objectives: run.ObjectiveNames,
	}
	for _, s := range solutions {
		out.Solutions = append(out.Solutions, output.SolutionInfo{
			ID:         s.ID,
			Expression: s.Expression,
			Call:       s.Call,
			Objectives: output.Floats(s.Fitness.Objectives),
			Rank:       s.Fitness.Rank,
			Crowding:   output.Float(s.Fitness.CrowdingDistance),
			Size:       s.Size,
			Height:     s.Height,
			Complexity: s.Complexity,
		})
	}

	r := c.Renderer
	if r.Structured() {
		return r.Data(out)
	}

	title := "Pareto Front"
	if opts.All {
		title = "Archived Solutions"
	}
	r.Header(1, fmt.Sprintf("%s (%d)", title, len(out.Solutions)))
	r.KeyValue("Run", run.ID)
	r.KeyValue("Dataset", run.Dataset)
	r.KeyValue("Created", run.CreatedAt.Local().Format(time.DateTime))
	r.Println("")

	header := []string{"Rank", "Expression"}
	header = append(header, out.Objectives...)
	header = append(header, "Size")
	rows := make([][]string, len(out.Solutions))
	for i, s := range out.Solutions {
		row := []string{strconv.Itoa(s.Rank), s.Expression}
		for _, v := range s.Objectives {
			row = append(row, v.String())
		}
		rows[i] = append(row, strconv.Itoa(s.Size))
	}
	r.Table(header, rows)
	return nil
}

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List archived runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRuns(NewCommandContext(cmd), limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to list (0 for all)")
	return cmd
}

func runRuns(c *CommandContext, limit int) error {
	store, err := c.openArchive()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runs, err := store.ListRuns(limit)
	if err != nil {
		return err
	}

	infos := make([]output.RunInfo, len(runs))
	for i, run := range runs {
		infos[i] = output.RunInfo{
			ID:         run.ID,
			Dataset:    run.Dataset,
			Rows:       run.Rows,
			Objectives: run.ObjectiveNames,
			Seed:       run.Seed,
			CreatedAt:  run.CreatedAt.UTC().Format(time.RFC3339),
		}
	}

	r := c.Renderer
	if r.Structured() {
		return r.Data(infos)
	}
	if len(infos) == 0 {
		r.Muted("No archived runs")
		return nil
	}

	rows := make([][]string, len(infos))
	for i, info := range infos {
		rows[i] = []string{info.ID, info.Dataset, strconv.Itoa(info.Rows), fmt.Sprint(info.Objectives), info.CreatedAt}
	}
	r.Header(1, "Runs")
	r.Table([]string{"ID", "Dataset", "Rows", "Objectives", "Created"}, rows)
	return nil
}
