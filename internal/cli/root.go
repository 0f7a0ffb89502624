// Package cli provides the command-line interface for symtree.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/symtree/internal/cli/commands"
	"github.com/leapstack-labs/symtree/internal/cli/config"
	"github.com/leapstack-labs/symtree/internal/cli/output"
	"github.com/leapstack-labs/symtree/pkg/adapter"

	// Register dataset sources
	_ "github.com/leapstack-labs/symtree/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/symtree/pkg/adapters/postgres"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "symtree",
		Short: "symtree - symbolic expression trees",
		Long: `symtree parses, renders and evaluates symbolic regression expression trees.

Expressions are scored against a dataset with a multi-objective policy
(mean squared error and non-arithmetic depth by default) and ranked into
Pareto fronts. Scored runs can be archived and inspected later.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			level := slog.LevelWarn
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			cmd.SetContext(config.WithLogger(cmd.Context(), logger))

			if configFile := config.GetConfigFileUsed(); configFile != "" {
				logger.Debug("using config file", slog.String("path", configFile))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Symbolic expression trees for multi-objective regression
`)

	// Global persistent flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./symtree.yaml)")
	pf.Uint64("seed", 0, "Seed for ephemeral random constants (0 for a random seed)")
	pf.Int("workers", 0, "Parallel evaluation workers (default: number of CPUs)")
	pf.String("state", "", "Path to the solution archive")
	pf.StringP("output", "o", "", "Output format (auto|text|markdown|json|yaml)")
	pf.BoolP("verbose", "v", false, "Verbose output")
	pf.String("csv", "", "Dataset file to load (CSV or Parquet)")
	pf.String("source", "", "Dataset source type (duckdb|postgres)")
	pf.String("table", "", "Table holding the dataset")
	pf.StringSlice("columns", nil, "Feature columns to load (default: all)")
	pf.String("target", "", "Target column (default: y)")
	pf.String("database", "", "Database to read the table from")
	pf.String("objectives", "", "Starlark script defining the objectives")
	pf.Uint64("max-steps", 0, "Execution step limit for objective scripts (0 for none)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return output.Modes(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("source", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return adapter.ListSources(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.MarkPersistentFlagFilename("csv", "csv", "parquet")
	_ = rootCmd.MarkPersistentFlagFilename("objectives", "star")

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewVariantsCommand())
	rootCmd.AddCommand(commands.NewRenderCommand())
	rootCmd.AddCommand(commands.NewEvalCommand())
	rootCmd.AddCommand(commands.NewDominatesCommand())
	rootCmd.AddCommand(commands.NewFrontCommand())
	rootCmd.AddCommand(commands.NewRunsCommand())
	rootCmd.AddCommand(commands.NewREPLCommand())
	rootCmd.AddCommand(commands.NewDoctorCommand())
	rootCmd.AddCommand(commands.NewInitCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for symtree.

To load completions:

Bash:
  $ source <(symtree completion bash)

Zsh:
  $ symtree completion zsh > "${fpath[1]}/_symtree"

Fish:
  $ symtree completion fish | source

PowerShell:
  PS> symtree completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(w)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}
			return nil
		},
	}
}
