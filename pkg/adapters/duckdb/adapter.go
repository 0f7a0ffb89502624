package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/symtree/pkg/adapter"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// Adapter reads datasets through DuckDB. It imports CSV and parquet files.
type Adapter struct {
	adapter.BaseSQLSource
}

// New creates a new DuckDB source. If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLSource: adapter.BaseSQLSource{Logger: logger},
	}
}

// Connect opens DuckDB at cfg.Path.
// Use ":memory:" (the default) for an in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	a.Logger.Debug("connected to duckdb", slog.String("path", path))
	a.DB = db
	a.Cfg = cfg
	return nil
}

// LoadCSV imports a file into a table, replacing it. Files ending in
// .parquet are read with read_parquet; everything else with read_csv_auto.
func (a *Adapter) LoadCSV(ctx context.Context, tableName string, filePath string) error {
	if a.DB == nil {
		return adapter.ErrNotConnected
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}
	literal := strings.ReplaceAll(absPath, "'", "''")

	reader := fmt.Sprintf("read_csv_auto('%s', header=true)", literal)
	if strings.EqualFold(filepath.Ext(absPath), ".parquet") {
		reader = fmt.Sprintf("read_parquet('%s')", literal)
	}

	query := fmt.Sprintf("CREATE OR REPLACE TABLE %s AS SELECT * FROM %s", adapter.QuoteIdent(tableName), reader)
	if err := a.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to load %s: %w", filepath.Base(absPath), err)
	}

	a.Logger.Debug("imported file", slog.String("table", tableName), slog.String("file", absPath))
	return nil
}

// Ensure Adapter implements adapter.Source interface
var _ adapter.Source = (*Adapter)(nil)
