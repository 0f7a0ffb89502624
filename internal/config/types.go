// Package config provides the configuration types shared by symtree tools.
// It is decoupled from CLI concerns; the layered loader lives in
// internal/cli/config.
package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/symtree/pkg/adapter"
)

// DatasetConfig selects the data expressions are evaluated against.
type DatasetConfig struct {
	Type string `koanf:"type"` // duckdb, postgres

	// Path is a CSV or parquet file imported before reading.
	Path string `koanf:"path"`
	// Table is read into the dataset.
	Table string `koanf:"table"`
	// Columns restricts and orders the columns read. The target column is
	// added when missing.
	Columns []string `koanf:"columns"`
	// Target names the column predictions are scored against.
	Target string `koanf:"target"`

	// Database is a file path for embedded engines or a database name.
	Database string `koanf:"database"`

	// Network databases
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	SSLMode  string `koanf:"sslmode"`

	// Additional driver-specific options
	Options map[string]string `koanf:"options"`
}

// Configured reports whether any data source has been named.
func (d *DatasetConfig) Configured() bool {
	return d.Path != "" || d.Table != "" || d.Host != ""
}

// Validate checks the dataset configuration against the source registry.
func (d *DatasetConfig) Validate() error {
	if d.Type == "" {
		return fmt.Errorf("dataset type is required")
	}
	if !adapter.IsRegistered(strings.ToLower(d.Type)) {
		return &adapter.UnknownSourceError{
			Type:      d.Type,
			Available: adapter.ListSources(),
		}
	}
	return nil
}

// SourceConfig converts d to the settings a dataset source connects with.
// The target column is appended to an explicit column list that lacks it.
func (d *DatasetConfig) SourceConfig() adapter.Config {
	columns := append([]string(nil), d.Columns...)
	if len(columns) > 0 && d.Target != "" && !containsString(columns, d.Target) {
		columns = append(columns, d.Target)
	}
	return adapter.Config{
		Type:     strings.ToLower(d.Type),
		Path:     d.Database,
		Host:     d.Host,
		Port:     d.Port,
		Database: d.Database,
		Username: d.User,
		Password: d.Password,
		SSLMode:  d.SSLMode,
		File:     d.Path,
		Table:    d.Table,
		Columns:  columns,
		Options:  d.Options,
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ObjectivesConfig selects how evaluated expressions are scored.
type ObjectivesConfig struct {
	// Script is a starlark file defining names and objectives(). Empty
	// selects mean squared error paired with non-arithmetic depth.
	Script string `koanf:"script"`
	// MaxSteps bounds one script evaluation. Zero means unbounded.
	MaxSteps uint64 `koanf:"max_steps"`
}

// ProjectConfig holds the configuration file contents that tools other than
// the CLI need.
type ProjectConfig struct {
	Seed       uint64           `koanf:"seed"`
	Workers    int              `koanf:"workers"`
	Dataset    DatasetConfig    `koanf:"dataset"`
	Objectives ObjectivesConfig `koanf:"objectives"`
}
