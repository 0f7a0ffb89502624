package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/symtree/internal/cli/config"
	"github.com/leapstack-labs/symtree/internal/cli/output"
	"github.com/leapstack-labs/symtree/internal/objective"
	"github.com/leapstack-labs/symtree/internal/state"
	"github.com/leapstack-labs/symtree/pkg/adapter"
	"github.com/leapstack-labs/symtree/pkg/core"
	"github.com/leapstack-labs/symtree/pkg/parser"
	"github.com/leapstack-labs/symtree/pkg/tree"
)

// errNoDataset is returned by commands that need data when none is configured.
var errNoDataset = errors.New("no dataset configured\nHint: pass --csv <file>, --table <name>, or set dataset.path in symtree.yaml")

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the current configuration, or defaults when none was
// loaded (commands constructed directly in tests).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.DefaultConfig()
}

// constantSource returns the source ephemeral constants draw from. A zero
// seed uses the process-wide generator.
func (c *CommandContext) constantSource() tree.Source {
	if c.Cfg.Seed == 0 {
		return nil
	}
	return tree.NewSource(c.Cfg.Seed)
}

// parseExpression reads input as infix, or as postfix when postfix is set.
// Column names resolve to features when columns are given.
func (c *CommandContext) parseExpression(input string, postfix bool, columns []string, src tree.Source) (*tree.Node, error) {
	opts := []parser.Option{parser.WithSource(src)}
	if len(columns) > 0 {
		opts = append(opts, parser.WithColumns(columns))
	}
	parse := parser.ParseInfix
	if postfix {
		parse = parser.ParsePostfix
	}
	n, err := parse(input, opts...)
	var pe *parser.ParseError
	if errors.As(err, &pe) {
		return nil, fmt.Errorf("%w\n%s", err, pe.Marker(input))
	}
	return n, err
}

// Workspace is a loaded dataset split into features and target.
type Workspace struct {
	Name       string
	Features   *core.Dataset
	Target     []float64
	TargetName string
}

// loadWorkspace reads the configured dataset and splits off the target column.
func (c *CommandContext) loadWorkspace(ctx context.Context) (*Workspace, error) {
	d := c.Cfg.Dataset
	if !d.Configured() {
		return nil, errNoDataset
	}

	scfg := d.SourceConfig()
	src, err := adapter.NewSource(scfg, c.Logger)
	if err != nil {
		return nil, err
	}
	defer func() { _ = src.Close() }()

	data, err := adapter.Load(ctx, src, scfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	features, target, err := data.SplitTarget(d.Target)
	if err != nil {
		return nil, fmt.Errorf("%w\nHint: set dataset.target or pass --target", err)
	}

	name := d.Path
	if name == "" {
		name = scfg.TableName()
	}
	c.Logger.Debug("loaded dataset",
		slog.String("name", name),
		slog.Int("rows", features.Rows()),
		slog.Int("features", features.Cols()),
		slog.String("target", d.Target))

	return &Workspace{
		Name:       name,
		Features:   features,
		Target:     target,
		TargetName: d.Target,
	}, nil
}

// loadPolicy returns the configured objective policy.
func (c *CommandContext) loadPolicy() (objective.Policy, error) {
	script := c.Cfg.Objectives.Script
	if script == "" {
		return objective.Default{}, nil
	}
	p, err := objective.Load(script,
		objective.WithMaxSteps(c.Cfg.Objectives.MaxSteps),
		objective.WithLogger(c.Logger))
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded objective script", slog.String("path", script), slog.Any("names", p.Names()))
	return p, nil
}

// openArchive opens and migrates the solution archive.
func (c *CommandContext) openArchive() (*state.SQLiteStore, error) {
	path := c.Cfg.StatePath
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create state directory: %w", err)
			}
		}
	}

	store := state.NewSQLiteStore(c.Logger)
	if err := store.Open(path); err != nil {
		return nil, err
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// formatFloats joins values for text output.
func formatFloats(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = output.Float(x).String()
	}
	return strings.Join(parts, ", ")
}
