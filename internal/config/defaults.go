package config

import "runtime"

// Default configuration values.
const (
	DefaultDatasetType  = "duckdb"
	DefaultTarget       = "y"
	DefaultStateFile    = ".symtree/archive.db"
	DefaultOutput       = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultPostgresPort = 5432
)

// DefaultWorkers is the evaluation parallelism used when none is configured.
func DefaultWorkers() int {
	return runtime.GOMAXPROCS(0)
}

// ApplyDefaults fills unset fields of a ProjectConfig.
func ApplyDefaults(c *ProjectConfig) {
	if c == nil {
		return
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers()
	}
	ApplyDatasetDefaults(&c.Dataset)
}

// ApplyDatasetDefaults fills unset fields of a DatasetConfig based on its type.
func ApplyDatasetDefaults(d *DatasetConfig) {
	if d == nil {
		return
	}
	if d.Type == "" {
		d.Type = DefaultDatasetType
	}
	if d.Target == "" {
		d.Target = DefaultTarget
	}
	if d.Type == "postgres" && d.Port == 0 {
		d.Port = DefaultPostgresPort
	}
}
