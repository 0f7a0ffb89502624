package adapter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/leapstack-labs/symtree/pkg/core"
)

// ErrNotConnected is returned when a source is used before Connect.
var ErrNotConnected = errors.New("database connection not established")

// BaseSQLSource provides common database/sql functionality for sources.
// Embed it in concrete sources to get Close, Exec, Query and LoadTable.
type BaseSQLSource struct {
	DB     *sql.DB
	Cfg    Config
	Logger *slog.Logger
}

// Close closes the database connection.
func (b *BaseSQLSource) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection")
		}
		err := b.DB.Close()
		b.DB = nil
		return err
	}
	return nil
}

// Exec executes a statement that doesn't return rows.
func (b *BaseSQLSource) Exec(ctx context.Context, query string) error {
	if b.DB == nil {
		return ErrNotConnected
	}
	if _, err := b.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

// Query executes a statement that returns rows.
func (b *BaseSQLSource) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if b.DB == nil {
		return nil, ErrNotConnected
	}
	//nolint:rowserrcheck // rows.Err() must be checked by caller after iteration completes
	rows, err := b.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return rows, nil
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLSource) IsConnected() bool {
	return b.DB != nil
}

// LoadTable reads columns of tableName as DOUBLE PRECISION values.
// With no columns it reads every column in table order. NULLs become NaN.
func (b *BaseSQLSource) LoadTable(ctx context.Context, tableName string, columns []string) (*core.Dataset, error) {
	if b.DB == nil {
		return nil, ErrNotConnected
	}

	if len(columns) == 0 {
		var err error
		if columns, err = b.tableColumns(ctx, tableName); err != nil {
			return nil, err
		}
	}

	exprs := make([]string, len(columns))
	for i, c := range columns {
		q := QuoteName(c)
		exprs[i] = fmt.Sprintf("CAST(%s AS DOUBLE PRECISION) AS %s", q, q)
	}
	//nolint:gosec // identifiers are quoted
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(exprs, ", "), QuoteIdent(tableName))

	rows, err := b.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", tableName, err)
	}
	defer func() { _ = rows.Close() }()

	var data [][]float64
	dest := make([]sql.NullFloat64, len(columns))
	ptrs := make([]any, len(columns))
	for i := range dest {
		ptrs[i] = &dest[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row %d of %s: %w", len(data), tableName, err)
		}
		row := make([]float64, len(columns))
		for i, v := range dest {
			if v.Valid {
				row[i] = v.Float64
			} else {
				row[i] = math.NaN()
			}
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", tableName, err)
	}

	if b.Logger != nil {
		b.Logger.Debug("loaded dataset",
			slog.String("table", tableName),
			slog.Int("rows", len(data)),
			slog.Int("columns", len(columns)))
	}

	if len(data) == 0 {
		return core.NewDatasetFromColumns(make([][]float64, len(columns)), columns...)
	}
	return core.NewDataset(data, columns...)
}

// tableColumns returns the column names of tableName in table order.
func (b *BaseSQLSource) tableColumns(ctx context.Context, tableName string) ([]string, error) {
	//nolint:gosec // identifier is quoted
	rows, err := b.DB.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT 0", QuoteIdent(tableName)))
	if err != nil {
		return nil, fmt.Errorf("table %s not found: %w", tableName, err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", tableName, err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %s has no columns", tableName)
	}
	return cols, nil
}

// QuoteIdent double-quotes a possibly schema-qualified identifier.
// Embedded double quotes are doubled.
func QuoteIdent(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = QuoteName(p)
	}
	return strings.Join(parts, ".")
}

// QuoteName double-quotes a single identifier such as a column name.
func QuoteName(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
