// Package duckdb provides a DuckDB dataset source.
//
// This file registers the DuckDB source with the source registry.
// Import this package with a blank identifier to register it:
//
//	import _ "github.com/leapstack-labs/symtree/pkg/adapters/duckdb"
package duckdb

import (
	"log/slog"

	"github.com/leapstack-labs/symtree/pkg/adapter"
)

func init() {
	adapter.Register("duckdb", func(logger *slog.Logger) adapter.Source { return New(logger) })
}
