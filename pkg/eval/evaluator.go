package eval

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/symtree/pkg/core"
	"github.com/leapstack-labs/symtree/pkg/tree"
)

// Evaluator evaluates a population of distinct trees in parallel.
type Evaluator struct {
	// Workers bounds the number of concurrent evaluations. Zero means
	// runtime.GOMAXPROCS(0).
	Workers int
	Logger  *slog.Logger
}

// NewEvaluator creates an Evaluator. A nil logger discards output.
func NewEvaluator(workers int, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Evaluator{Workers: workers, Logger: logger}
}

// EvaluateAll returns Output(roots[i], X) for every root, in input order.
//
// All constants are frozen sequentially before any goroutine starts, so the
// parallel phase only reads. The roots must be distinct trees. The first
// structural error cancels the remaining work; ctx is checked between trees.
func (e *Evaluator) EvaluateAll(ctx context.Context, roots []*tree.Node, X *core.Dataset) ([][]float64, error) {
	if X == nil {
		return nil, fmt.Errorf("evaluate population: nil dataset: %w", core.ErrShapeMismatch)
	}

	logger := e.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	workers := e.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	for _, r := range roots {
		r.Freeze()
	}

	start := time.Now()
	results := make([][]float64, len(roots))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, r := range roots {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := Output(r, X)
			if err != nil {
				return fmt.Errorf("tree %d: %w", i, err)
			}
			results[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Debug("evaluated population",
		slog.Int("trees", len(roots)),
		slog.Int("rows", X.Rows()),
		slog.Int("workers", workers),
		slog.Duration("elapsed", time.Since(start)))

	return results, nil
}
