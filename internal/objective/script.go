package objective

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"

	starmath "go.starlark.net/lib/math"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"

	"github.com/leapstack-labs/symtree/pkg/eval"
)

// EntryPoint is the function a script must define.
const EntryPoint = "objectives"

// Script is a Policy backed by a starlark file. The file declares
//
//	names = ["mse", "size"]
//
//	def objectives(pred, target, info):
//	    return [mse(pred, target), info.size]
//
// pred and target are lists of floats. info is a struct with expression,
// size, height, complexity and rows. The predeclared globals are math (the
// starlark math module), inf and mse. A Script is safe for concurrent use.
type Script struct {
	file     string
	names    []string
	fn       starlark.Callable
	maxSteps uint64
	logger   *slog.Logger
}

// Option configures a Script.
type Option func(*Script)

// WithMaxSteps bounds the starlark steps one evaluation may take. Zero means
// unbounded.
func WithMaxSteps(n uint64) Option {
	return func(s *Script) { s.maxSteps = n }
}

// WithLogger routes print() output to logger at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Script) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Load reads and executes the script at path.
func Load(path string, opts ...Option) (*Script, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: path comes from user configuration
	if err != nil {
		return nil, &LoadError{File: path, Message: fmt.Sprintf("failed to read file: %v", err)}
	}
	return New(path, content, opts...)
}

// New executes src and binds its names and objectives function.
func New(file string, src []byte, opts ...Option) (*Script, error) {
	s := &Script{file: file, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(s)
	}

	thread := s.newThread("load:" + file)
	fileOpts := &syntax.FileOptions{While: true, TopLevelControl: true, GlobalReassign: true}
	globals, err := starlark.ExecFileOptions(fileOpts, thread, file, src, predeclared())
	if err != nil {
		return nil, &LoadError{File: file, Message: fmt.Sprintf("starlark execution error: %v", err)}
	}
	globals.Freeze()

	fn, ok := globals[EntryPoint].(starlark.Callable)
	if !ok {
		return nil, &LoadError{File: file, Message: fmt.Sprintf("script must define a function %q", EntryPoint)}
	}
	s.fn = fn

	names, err := stringList(globals["names"])
	if err != nil {
		return nil, &LoadError{File: file, Message: fmt.Sprintf("names: %v", err)}
	}
	if len(names) == 0 {
		return nil, &LoadError{File: file, Message: "script must define a non-empty names list"}
	}
	s.names = names
	return s, nil
}

// Names implements Policy.
func (s *Script) Names() []string {
	return append([]string(nil), s.names...)
}

// File returns the script's file name.
func (s *Script) File() string { return s.file }

// Evaluate implements Policy. Non-finite results become +Inf.
func (s *Script) Evaluate(ctx context.Context, pred, target []float64, info Info) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	thread := s.newThread(info.Expression)
	if s.maxSteps > 0 {
		thread.SetMaxExecutionSteps(s.maxSteps)
	}
	stop := context.AfterFunc(ctx, func() { thread.Cancel(ctx.Err().Error()) })
	defer stop()

	args := starlark.Tuple{floatList(pred), floatList(target), infoStruct(info)}
	result, err := starlark.Call(thread, s.fn, args, nil)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &EvalError{File: s.file, Expression: info.Expression, Message: err.Error()}
	}

	values, err := numberList(result)
	if err != nil {
		return nil, &EvalError{File: s.file, Expression: info.Expression, Message: err.Error()}
	}
	if len(values) != len(s.names) {
		return nil, &EvalError{
			File:       s.file,
			Expression: info.Expression,
			Message:    fmt.Sprintf("returned %d objectives for %d names", len(values), len(s.names)),
		}
	}
	return Sanitize(values), nil
}

func (s *Script) newThread(name string) *starlark.Thread {
	return &starlark.Thread{
		Name: name,
		Print: func(_ *starlark.Thread, msg string) {
			s.logger.Debug(msg, slog.String("script", s.file))
		},
	}
}

func predeclared() starlark.StringDict {
	return starlark.StringDict{
		"math": starmath.Module,
		"inf":  starlark.Float(math.Inf(1)),
		"mse":  starlark.NewBuiltin("mse", builtinMSE),
	}
}

func builtinMSE(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var predV, targetV starlark.Value
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &predV, &targetV); err != nil {
		return nil, err
	}
	pred, err := numberList(predV)
	if err != nil {
		return nil, fmt.Errorf("%s: pred: %w", b.Name(), err)
	}
	target, err := numberList(targetV)
	if err != nil {
		return nil, fmt.Errorf("%s: target: %w", b.Name(), err)
	}
	v, err := eval.MSE(pred, target)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	return starlark.Float(v), nil
}

func infoStruct(info Info) starlark.Value {
	return starlarkstruct.FromStringDict(starlark.String("info"), starlark.StringDict{
		"expression": starlark.String(info.Expression),
		"size":       starlark.MakeInt(info.Size),
		"height":     starlark.MakeInt(info.Height),
		"complexity": starlark.MakeInt(info.Complexity),
		"rows":       starlark.MakeInt(info.Rows),
	})
}

// LoadError reports a script that could not be read or executed.
type LoadError struct {
	File    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

// EvalError reports a failure while scoring one expression.
type EvalError struct {
	File       string
	Expression string
	Message    string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("%s: error scoring %q: %s", e.File, e.Expression, e.Message)
}

var _ Policy = (*Script)(nil)
