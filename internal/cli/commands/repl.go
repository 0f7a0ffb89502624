package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/symtree/internal/objective"
	"github.com/leapstack-labs/symtree/pkg/eval"
	"github.com/leapstack-labs/symtree/pkg/pareto"
	"github.com/leapstack-labs/symtree/pkg/tree"
	"github.com/leapstack-labs/symtree/pkg/variant"
)

const (
	replPrompt      = "symtree> "
	replHistoryFile = "repl_history"
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	var postfix bool

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactively evaluate expressions",
		Long: `Start an interactive session. Each line is parsed as an expression,
rendered, and (when a dataset is configured) evaluated and scored.

Type .help for the available dot-commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd, postfix)
		},
	}

	cmd.Flags().BoolVar(&postfix, "postfix", false, "Read expressions in reverse Polish notation")
	return cmd
}

func runREPL(cmd *cobra.Command, postfix bool) error {
	c := NewCommandContext(cmd)
	session, err := newREPLSession(cmd.Context(), c, postfix)
	if err != nil {
		return err
	}

	// Setup history file next to the archive
	historyDir := filepath.Dir(c.Cfg.StatePath)
	if err := os.MkdirAll(historyDir, 0o750); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	historyFile := filepath.Join(historyDir, replHistoryFile)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    session.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	session.banner()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if session.handle(line) {
			break
		}
	}
	return nil
}

// replEntry is an expression scored during the session.
type replEntry struct {
	expression string
	objectives []float64
}

// replSession holds the state of an interactive session.
type replSession struct {
	ctx     context.Context
	c       *CommandContext
	ws      *Workspace
	policy  objective.Policy
	src     tree.Source
	postfix bool
	history []replEntry
	w       io.Writer
	errW    io.Writer
}

// newREPLSession loads the dataset when one is configured. Without one the
// session only parses and renders.
func newREPLSession(ctx context.Context, c *CommandContext, postfix bool) (*replSession, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	s := &replSession{
		ctx:     ctx,
		c:       c,
		src:     c.constantSource(),
		postfix: postfix,
		w:       c.Renderer.Writer(),
		errW:    c.Renderer.ErrWriter(),
	}

	if c.Cfg.Dataset.Configured() {
		ws, err := c.loadWorkspace(ctx)
		if err != nil {
			return nil, err
		}
		policy, err := c.loadPolicy()
		if err != nil {
			return nil, err
		}
		s.ws = ws
		s.policy = policy
	}
	return s, nil
}

func (s *replSession) banner() {
	if s.ws != nil {
		s.printf("symtree REPL (dataset: %s, %d rows)\n", s.ws.Name, s.ws.Features.Rows())
	} else {
		s.printf("symtree REPL (no dataset: expressions are rendered only)\n")
	}
	s.printf("Type .help for commands, .quit to exit\n\n")
}

// handle processes one input line and reports whether the session ends.
func (s *replSession) handle(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if strings.HasPrefix(line, ".") {
		return s.dotCommand(line)
	}
	if err := s.evaluate(line); err != nil {
		_, _ = fmt.Fprintf(s.errW, "Error: %v\n", err)
	}
	return false
}

func (s *replSession) evaluate(input string) error {
	var columns []string
	if s.ws != nil {
		columns = s.ws.Features.Names()
	}
	n, err := s.c.parseExpression(input, s.postfix, columns, s.src)
	if err != nil {
		return err
	}
	expr, err := n.Render()
	if err != nil {
		return err
	}
	s.printf("%s\n", expr)

	if s.ws == nil {
		sum := summaryOutput(n)
		s.printf("  size=%d height=%d complexity=%d\n", sum.Size, sum.Height, sum.Complexity)
		return nil
	}

	pred, err := eval.Output(n, s.ws.Features)
	if err != nil {
		return err
	}
	info, err := objective.InfoFor(n, s.ws.Features.Rows())
	if err != nil {
		return err
	}
	values, err := s.policy.Evaluate(s.ctx, pred, s.ws.Target, info)
	if err != nil {
		return err
	}

	names := s.policy.Names()
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%s=%s", names[i], formatFloats([]float64{v}))
	}
	s.printf("  %s\n", strings.Join(parts, " "))
	s.history = append(s.history, replEntry{expression: expr, objectives: values})
	return nil
}

func (s *replSession) dotCommand(line string) bool {
	command := strings.ToLower(strings.Fields(line)[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		s.printf("%s\n", replHelp)

	case ".dataset":
		if s.ws == nil {
			s.printf("No dataset configured\n")
			return false
		}
		s.printf("Dataset:  %s\n", s.ws.Name)
		s.printf("Rows:     %d\n", s.ws.Features.Rows())
		s.printf("Features: %d\n", s.ws.Features.Cols())
		s.printf("Target:   %s\n", s.ws.TargetName)
		s.printf("Scoring:  %s\n", strings.Join(s.policy.Names(), ", "))

	case ".vars":
		if s.ws == nil {
			s.printf("No dataset configured; use x0, x1, ...\n")
			return false
		}
		for i, name := range s.ws.Features.Names() {
			s.printf("  %s = %s\n", variant.FormatFeature(i), name)
		}

	case ".front":
		if len(s.history) == 0 {
			s.printf("No scored expressions yet\n")
			return false
		}
		objectives := make([][]float64, len(s.history))
		for i, e := range s.history {
			objectives[i] = e.objectives
		}
		for _, i := range pareto.NonDominated(objectives) {
			s.printf("  %s  [%s]\n", s.history[i].expression, formatFloats(s.history[i].objectives))
		}

	default:
		_, _ = fmt.Fprintf(s.errW, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

func (s *replSession) completer() *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, name := range variant.Names() {
		items = append(items, readline.PcItem(name))
	}
	if s.ws != nil {
		for _, name := range s.ws.Features.Names() {
			items = append(items, readline.PcItem(name))
		}
	}
	for _, dot := range []string{".help", ".dataset", ".vars", ".front", ".quit", ".exit"} {
		items = append(items, readline.PcItem(dot))
	}
	return readline.NewPrefixCompleter(items...)
}

func (s *replSession) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(s.w, format, a...)
}

const replHelp = `
Commands:
  .help           Show this help message
  .dataset        Show the loaded dataset and objectives
  .vars           List feature names and their column
  .front          Show the non-dominated expressions scored so far
  .quit / .exit   Exit the REPL

Expressions:
  sin(x0) + x1 * 2.5     infix, with exp log sin cos and ** or ^
  erc                    an ephemeral random constant
  Column names of the dataset stand for their feature.`
