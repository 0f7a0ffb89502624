package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/symtree/internal/cli/output"
	intconfig "github.com/leapstack-labs/symtree/internal/config"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new symtree project",
		Long: `Initialize a new symtree project with a default configuration.

This creates:
  - symtree.yaml configuration file
  - .gitignore excluding the solution archive

Use --example to also create a small dataset and a starlark objective
script, ready for "symtree eval".`,
		Example: `  # Initialize in current directory
  symtree init

  # Initialize a working example in a new directory
  symtree init my-project --example

  # Force overwrite existing config
  symtree init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			cfg := getConfig()
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))

			template := "minimal"
			if example {
				template = "example"
			}
			return runInit(r, dir, template, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	cmd.Flags().BoolVar(&example, "example", false, "Include a sample dataset and objective script")

	return cmd
}

func runInit(r *output.Renderer, dir, template string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, intconfig.ConfigFileName)
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", intconfig.ConfigFileName)
	}

	if err := copyTemplate(template, dir, force); err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	files, err := listTemplateFiles(template)
	if err != nil {
		return err
	}
	for _, f := range files {
		r.Println("  " + f)
	}

	r.Println("")
	r.Success("symtree project initialized!")
	r.Println("")
	r.Println("Next steps:")
	if template == "example" {
		r.Println(`  symtree eval "x * x" "x * x + sin(z)"   Score candidate expressions`)
		r.Println(`  symtree eval --save "x * x + z"         Archive a scored run`)
		r.Println(`  symtree front                           Show the archived Pareto front`)
	} else {
		r.Println("  1. Set dataset.path in symtree.yaml")
		r.Println(`  2. Run 'symtree eval "<expression>"' to score expressions`)
		r.Println("  3. Run 'symtree repl' to explore interactively")
	}
	return nil
}
