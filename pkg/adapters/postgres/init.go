// Package postgres provides a PostgreSQL dataset source.
//
// This file registers the PostgreSQL source with the source registry.
// Import this package with a blank identifier to register it:
//
//	import _ "github.com/leapstack-labs/symtree/pkg/adapters/postgres"
package postgres

import (
	"log/slog"

	"github.com/leapstack-labs/symtree/pkg/adapter"
)

func init() {
	adapter.Register("postgres", func(logger *slog.Logger) adapter.Source { return New(logger) })
}
