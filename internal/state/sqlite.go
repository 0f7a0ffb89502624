package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/leapstack-labs/symtree/pkg/pareto"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store instance.
// If logger is nil, a discard logger is used.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{logger: logger}
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
	if path == ":memory:" {
		dsn = ":memory:?_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.logger.Debug("opened archive", slog.String("path", path))
	s.db = db
	s.path = path
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

// --- Run operations ---

// CreateRun records a new run.
func (s *SQLiteStore) CreateRun(dataset string, rows int, objectiveNames []string, seed uint64) (*Run, error) {
	if s.db == nil {
		return nil, ErrNotOpened
	}

	names, err := json.Marshal(objectiveNames)
	if err != nil {
		return nil, fmt.Errorf("failed to encode objective names: %w", err)
	}

	run := &Run{
		ID:             generateID(),
		Dataset:        dataset,
		Rows:           rows,
		ObjectiveNames: objectiveNames,
		Seed:           seed,
		CreatedAt:      time.Now().UTC(),
	}

	s.logger.Debug("creating run", slog.String("id", run.ID), slog.String("dataset", dataset))

	_, err = s.db.ExecContext(context.Background(),
		`INSERT INTO runs (id, dataset, rows, objective_names, seed, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Dataset, run.Rows, string(names), int64(run.Seed), run.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

const runColumns = `id, dataset, rows, objective_names, seed, created_at`

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(id string) (*Run, error) {
	if s.db == nil {
		return nil, ErrNotOpened
	}
	row := s.db.QueryRowContext(context.Background(), `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// LatestRun retrieves the most recently created run.
func (s *SQLiteStore) LatestRun() (*Run, error) {
	if s.db == nil {
		return nil, ErrNotOpened
	}
	row := s.db.QueryRowContext(context.Background(), `SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, rowid DESC LIMIT 1`)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no runs archived: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return run, nil
}

// ListRuns returns up to limit runs, newest first. A limit <= 0 means all.
func (s *SQLiteStore) ListRuns(limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, ErrNotOpened
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(context.Background(), `SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	run := &Run{}
	var names string
	var seed int64
	if err := sc.Scan(&run.ID, &run.Dataset, &run.Rows, &names, &seed, &run.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(names), &run.ObjectiveNames); err != nil {
		return nil, fmt.Errorf("failed to decode objective names: %w", err)
	}
	run.Seed = uint64(seed)
	return run, nil
}

// --- Solution operations ---

// SaveSolutions archives solutions under runID in one transaction.
// Missing IDs are generated.
func (s *SQLiteStore) SaveSolutions(runID string, solutions []*Solution) error {
	if s.db == nil {
		return ErrNotOpened
	}

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(context.Background(), `
		INSERT INTO solutions (
			id, run_id, expression, call_form, objectives, rank, crowding,
			additive, multiplicative, size, height, complexity, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UTC()
	for _, sol := range solutions {
		if sol.ID == "" {
			sol.ID = generateID()
		}
		sol.RunID = runID
		if sol.CreatedAt.IsZero() {
			sol.CreatedAt = now
		}
		_, err := stmt.ExecContext(context.Background(),
			sol.ID, runID, sol.Expression, sol.Call, encodeObjectives(sol.Fitness.Objectives),
			sol.Fitness.Rank, sol.Fitness.CrowdingDistance,
			sol.Scaling.Additive, sol.Scaling.Multiplicative,
			sol.Size, sol.Height, sol.Complexity, sol.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to save solution %q: %w", sol.Expression, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit solutions: %w", err)
	}
	s.logger.Debug("saved solutions", slog.String("run", runID), slog.Int("count", len(solutions)))
	return nil
}

// ListSolutions returns the solutions of a run in insertion order.
func (s *SQLiteStore) ListSolutions(runID string) ([]*Solution, error) {
	if s.db == nil {
		return nil, ErrNotOpened
	}

	rows, err := s.db.QueryContext(context.Background(), `
		SELECT id, run_id, expression, call_form, objectives, rank, crowding,
		       additive, multiplicative, size, height, complexity, created_at
		FROM solutions WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list solutions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*Solution
	for rows.Next() {
		sol := &Solution{}
		var objectives string
		if err := rows.Scan(
			&sol.ID, &sol.RunID, &sol.Expression, &sol.Call, &objectives,
			&sol.Fitness.Rank, &sol.Fitness.CrowdingDistance,
			&sol.Scaling.Additive, &sol.Scaling.Multiplicative,
			&sol.Size, &sol.Height, &sol.Complexity, &sol.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan solution: %w", err)
		}
		if sol.Fitness.Objectives, err = decodeObjectives(objectives); err != nil {
			return nil, fmt.Errorf("solution %s: %w", sol.ID, err)
		}
		out = append(out, sol)
	}
	return out, rows.Err()
}

// Front returns the non-dominated solutions of a run. Solutions whose
// objective vectors differ in length from the first are skipped.
func (s *SQLiteStore) Front(runID string) ([]*Solution, error) {
	all, err := s.ListSolutions(runID)
	if err != nil || len(all) == 0 {
		return nil, err
	}

	width := len(all[0].Fitness.Objectives)
	var comparable []*Solution
	var objectives [][]float64
	for _, sol := range all {
		if len(sol.Fitness.Objectives) != width {
			s.logger.Warn("skipping solution with mismatched objectives",
				slog.String("id", sol.ID), slog.Int("objectives", len(sol.Fitness.Objectives)))
			continue
		}
		comparable = append(comparable, sol)
		objectives = append(objectives, sol.Fitness.Objectives)
	}

	idx := pareto.NonDominated(objectives)
	front := make([]*Solution, len(idx))
	for i, j := range idx {
		front[i] = comparable[j]
	}
	return front, nil
}

// encodeObjectives writes a vector as comma-separated shortest decimals.
// JSON cannot carry the +Inf assigned to invalid solutions.
func encodeObjectives(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

func decodeObjectives(s string) ([]float64, error) {
	if s == "" {
		return []float64{}, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode objectives %q: %w", s, err)
		}
		out[i] = v
	}
	return out, nil
}

// Ensure SQLiteStore implements Store interface
var _ Store = (*SQLiteStore)(nil)
