// Package config provides configuration management for the symtree CLI.
//
// This package extends the shared configuration types from internal/config
// with CLI-specific fields and the layered koanf loader. The shared types are
// re-exported here via type aliases for convenience.
package config

import (
	intconfig "github.com/leapstack-labs/symtree/internal/config"
)

// DatasetConfig is an alias for the shared dataset configuration.
type DatasetConfig = intconfig.DatasetConfig

// ObjectivesConfig is an alias for the shared objectives configuration.
type ObjectivesConfig = intconfig.ObjectivesConfig

// Config holds all CLI configuration options.
type Config struct {
	// Seed drives ephemeral random constants. Zero draws from the
	// process-wide generator.
	Seed         uint64           `koanf:"seed"`
	Workers      int              `koanf:"workers"`
	StatePath    string           `koanf:"state_path"`
	Verbose      bool             `koanf:"verbose"`
	OutputFormat string           `koanf:"output"`
	Dataset      DatasetConfig    `koanf:"dataset"`
	Objectives   ObjectivesConfig `koanf:"objectives"`

	// ProjectRoot is the directory relative paths resolve against.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values - uses shared defaults from internal/config
const (
	DefaultStateFile = intconfig.DefaultStateFile
	DefaultOutput    = intconfig.DefaultOutput
	EnvPrefix        = "SYMTREE_"
)

// DefaultConfig returns the configuration used when nothing was loaded.
func DefaultConfig() *Config {
	cfg := &Config{
		Workers:      intconfig.DefaultWorkers(),
		StatePath:    DefaultStateFile,
		OutputFormat: DefaultOutput,
	}
	intconfig.ApplyDatasetDefaults(&cfg.Dataset)
	return cfg
}
