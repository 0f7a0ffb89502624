package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/symtree/internal/cli/config"
	"github.com/leapstack-labs/symtree/internal/cli/output"
	intconfig "github.com/leapstack-labs/symtree/internal/config"
)

// Health check statuses.
const (
	statusPass  = "pass"
	statusWarn  = "warn"
	statusError = "error"
)

// errUnhealthy is returned when any check fails.
var errUnhealthy = errors.New("doctor found problems")

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the project configuration and environment",
		Long: `Check that symtree can run in this project.

The doctor command verifies:
- the configuration file in use
- the dataset loads and contains the target column
- the objective policy loads
- the solution archive opens and is migrated

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON/YAML: Machine-readable format`,
		Example: `  # Run all checks
  symtree doctor

  # Output as JSON
  symtree doctor -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd.Context(), NewCommandContext(cmd))
		},
	}
}

// HealthCheck is the result of one check.
type HealthCheck struct {
	Name   string `json:"name" yaml:"name"`
	Status string `json:"status" yaml:"status"`
	Detail string `json:"detail" yaml:"detail"`
}

// DoctorOutput is the structured result of the doctor command.
type DoctorOutput struct {
	Checks  []HealthCheck `json:"checks" yaml:"checks"`
	Healthy bool          `json:"healthy" yaml:"healthy"`
}

func runDoctor(ctx context.Context, c *CommandContext) error {
	if ctx == nil {
		ctx = context.Background()
	}

	out := DoctorOutput{
		Checks: []HealthCheck{
			checkConfigFile(c),
			checkDataset(ctx, c),
			checkObjectives(c),
			checkArchive(c),
		},
		Healthy: true,
	}
	for _, check := range out.Checks {
		if check.Status == statusError {
			out.Healthy = false
		}
	}

	r := c.Renderer
	var err error
	switch {
	case r.Structured():
		err = r.Data(out)
	case r.EffectiveMode() == output.ModeMarkdown:
		renderDoctorMarkdown(r, out)
	default:
		renderDoctorText(r, out)
	}
	if err != nil {
		return err
	}
	if !out.Healthy {
		return errUnhealthy
	}
	return nil
}

func checkConfigFile(c *CommandContext) HealthCheck {
	return configCheck(config.GetConfigFileUsed(), c.Cfg)
}

// configCheck re-reads the project file on its own and names the settings
// that flags or the environment replaced.
func configCheck(path string, cfg *config.Config) HealthCheck {
	check := HealthCheck{Name: "config"}
	if path == "" {
		check.Status = statusWarn
		check.Detail = "no symtree.yaml found, using defaults (run 'symtree init')"
		return check
	}

	file, err := intconfig.LoadFromDir(filepath.Dir(path))
	if err != nil {
		check.Status = statusError
		check.Detail = firstLine(err.Error())
		return check
	}
	check.Status = statusPass
	check.Detail = path
	if file != nil {
		if keys := configOverrides(file, cfg); len(keys) > 0 {
			check.Detail += " (overridden: " + strings.Join(keys, ", ") + ")"
		}
	}
	return check
}

func configOverrides(file *intconfig.ProjectConfig, cfg *config.Config) []string {
	var keys []string
	if file.Seed != cfg.Seed {
		keys = append(keys, "seed")
	}
	if file.Workers != cfg.Workers {
		keys = append(keys, "workers")
	}
	if file.Dataset.Type != cfg.Dataset.Type {
		keys = append(keys, "dataset.type")
	}
	if file.Dataset.Target != cfg.Dataset.Target {
		keys = append(keys, "dataset.target")
	}
	if file.Objectives.MaxSteps != cfg.Objectives.MaxSteps {
		keys = append(keys, "objectives.max_steps")
	}
	return keys
}

func checkDataset(ctx context.Context, c *CommandContext) HealthCheck {
	check := HealthCheck{Name: "dataset"}
	if !c.Cfg.Dataset.Configured() {
		check.Status = statusWarn
		check.Detail = "no dataset configured; eval and repl scoring are unavailable"
		return check
	}
	ws, err := c.loadWorkspace(ctx)
	if err != nil {
		check.Status = statusError
		check.Detail = firstLine(err.Error())
		return check
	}
	check.Status = statusPass
	check.Detail = fmt.Sprintf("%s: %d rows, %d features, target %s",
		ws.Name, ws.Features.Rows(), ws.Features.Cols(), ws.TargetName)
	return check
}

func checkObjectives(c *CommandContext) HealthCheck {
	check := HealthCheck{Name: "objectives"}
	policy, err := c.loadPolicy()
	if err != nil {
		check.Status = statusError
		check.Detail = firstLine(err.Error())
		return check
	}
	check.Status = statusPass
	check.Detail = strings.Join(policy.Names(), ", ")
	if script := c.Cfg.Objectives.Script; script != "" {
		check.Detail += " (" + script + ")"
	}
	return check
}

func checkArchive(c *CommandContext) HealthCheck {
	check := HealthCheck{Name: "archive"}
	store, err := c.openArchive()
	if err != nil {
		check.Status = statusError
		check.Detail = firstLine(err.Error())
		return check
	}
	defer func() { _ = store.Close() }()

	version, err := store.GetMigrationVersion()
	if err != nil {
		check.Status = statusError
		check.Detail = firstLine(err.Error())
		return check
	}
	runs, err := store.ListRuns(0)
	if err != nil {
		check.Status = statusError
		check.Detail = firstLine(err.Error())
		return check
	}
	check.Status = statusPass
	check.Detail = fmt.Sprintf("%s (schema v%d, %d runs)", c.Cfg.StatePath, version, len(runs))
	return check
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func renderDoctorText(r *output.Renderer, out DoctorOutput) {
	styles := r.Styles()
	titleCaser := cases.Title(language.English)

	r.Println(styles.Header1.Render("symtree Health Report"))
	r.Println(styles.Muted.Render(strings.Repeat("=", 40)))
	for _, check := range out.Checks {
		icon := styles.Success.Render("✓")
		switch check.Status {
		case statusWarn:
			icon = styles.Warning.Render("!")
		case statusError:
			icon = styles.Error.Render("✗")
		}
		r.Printf("%s %s %s\n", icon, styles.Bold.Render(titleCaser.String(check.Name)+":"), check.Detail)
	}
	r.Println("")
	if out.Healthy {
		r.Success("All checks passed")
	} else {
		r.Println(styles.Error.Render("Some checks failed"))
	}
}

func renderDoctorMarkdown(r *output.Renderer, out DoctorOutput) {
	titleCaser := cases.Title(language.English)

	r.Println("# symtree Health Report")
	r.Println("")
	for _, check := range out.Checks {
		r.Printf("- **[%s]** %s: %s\n", strings.ToUpper(check.Status), titleCaser.String(check.Name), check.Detail)
	}
	r.Println("")
	if out.Healthy {
		r.Println("All checks passed.")
	} else {
		r.Println("Some checks failed.")
	}
}
