// Package adapter defines where datasets come from.
//
// A Source connects to a database, optionally imports a file into a table,
// and reads numeric columns into a core.Dataset. Concrete sources live in
// pkg/adapters/ subdirectories and register themselves via init().
package adapter

import (
	"context"
	"database/sql"

	"github.com/leapstack-labs/symtree/pkg/core"
)

// DefaultTable is the table a file is imported into when none is named.
const DefaultTable = "dataset"

// Config holds connection and selection settings for a dataset source.
type Config struct {
	Type string

	// Path is the database location for embedded engines (":memory:" when empty).
	Path string

	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// File is a CSV or parquet file to import before reading.
	File string
	// Table is read into the dataset. Defaults to DefaultTable when File is set.
	Table string
	// Columns restricts and orders the columns read. Empty means every column.
	Columns []string

	Options map[string]string
}

// TableName returns the table to read, applying the default.
func (c Config) TableName() string {
	if c.Table == "" {
		return DefaultTable
	}
	return c.Table
}

// Source defines the contract every dataset source implements.
type Source interface {
	// Connect establishes a connection using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the connection and releases resources.
	Close() error

	// Exec executes a statement that doesn't return rows.
	Exec(ctx context.Context, query string) error

	// Query executes a statement that returns rows. The caller closes them.
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)

	// LoadCSV imports a CSV file into a table, replacing it if it exists.
	LoadCSV(ctx context.Context, tableName, filePath string) error

	// LoadTable reads the named columns of a table as float64 values.
	// NULLs read as NaN.
	LoadTable(ctx context.Context, tableName string, columns []string) (*core.Dataset, error)
}

// Load connects src, imports cfg.File when set, and reads the configured
// table. The source stays connected; the caller closes it.
func Load(ctx context.Context, src Source, cfg Config) (*core.Dataset, error) {
	if err := src.Connect(ctx, cfg); err != nil {
		return nil, err
	}
	table := cfg.TableName()
	if cfg.File != "" {
		if err := src.LoadCSV(ctx, table, cfg.File); err != nil {
			return nil, err
		}
	}
	return src.LoadTable(ctx, table, cfg.Columns)
}
