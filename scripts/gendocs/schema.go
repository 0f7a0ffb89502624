package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/symtree/internal/config"
)

// ConfigField describes one symtree.yaml key.
type ConfigField struct {
	Name        string
	Type        string
	Default     string
	Description string
	Category    string // "project", "dataset", "postgres", "objectives"
}

// getConfigSchema mirrors internal/config.ProjectConfig.
func getConfigSchema() []ConfigField {
	return []ConfigField{
		{Name: "seed", Type: "uint64", Default: "0", Description: "Seed for ephemeral random constants; 0 draws a random seed", Category: "project"},
		{Name: "workers", Type: "int", Description: "Parallel evaluation workers; defaults to the number of CPUs", Category: "project"},
		{Name: "state_path", Type: "string", Default: config.DefaultStateFile, Description: "Solution archive (SQLite)", Category: "project"},
		{Name: "output", Type: "string", Default: config.DefaultOutput, Description: "Output format: auto, text, markdown, json, yaml", Category: "project"},

		{Name: "type", Type: "string", Default: config.DefaultDatasetType, Description: "Dataset source: duckdb or postgres", Category: "dataset"},
		{Name: "path", Type: "string", Description: "CSV or Parquet file imported before reading", Category: "dataset"},
		{Name: "table", Type: "string", Description: "Table to read; defaults to the file name", Category: "dataset"},
		{Name: "columns", Type: "[]string", Description: "Feature columns; all columns when empty", Category: "dataset"},
		{Name: "target", Type: "string", Default: config.DefaultTarget, Description: "Target column, excluded from the features", Category: "dataset"},
		{Name: "database", Type: "string", Description: "DuckDB file or PostgreSQL database name", Category: "dataset"},
		{Name: "options", Type: "map[string]string", Description: "Additional driver options", Category: "dataset"},

		{Name: "host", Type: "string", Description: "Database host", Category: "postgres"},
		{Name: "port", Type: "int", Default: fmt.Sprint(config.DefaultPostgresPort), Description: "Database port", Category: "postgres"},
		{Name: "user", Type: "string", Description: "Database user", Category: "postgres"},
		{Name: "password", Type: "string", Description: "Database password; ${VAR} is expanded", Category: "postgres"},
		{Name: "sslmode", Type: "string", Description: "libpq sslmode", Category: "postgres"},

		{Name: "script", Type: "string", Description: "Starlark file defining names and objectives(pred, target, info)", Category: "objectives"},
		{Name: "max_steps", Type: "uint64", Default: "0", Description: "Execution step limit per evaluation; 0 for none", Category: "objectives"},
	}
}

// generateSchemaDocs writes the configuration reference.
func generateSchemaDocs(outDir string) error {
	log.Printf("Generating config docs to %s", outDir)
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	w := NewMarkdownWriter()
	w.Frontmatter("Configuration", "symtree configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph(fmt.Sprintf("symtree reads %s from the project root. Values are layered as defaults, file, SYMTREE_ environment variables and flags, later layers winning.",
		InlineCode(config.ConfigFileName)))

	sections := []struct {
		category, title, intro string
	}{
		{"project", "Project Settings", "Top-level keys:"},
		{"dataset", "Dataset", "Keys under `dataset`:"},
		{"postgres", "PostgreSQL", "Connection keys under `dataset` used when `type: postgres`:"},
		{"objectives", "Objectives", "Keys under `objectives`. Without a script, expressions are scored on mean squared error and non-arithmetic depth."},
	}

	fields := getConfigSchema()
	for _, sec := range sections {
		w.Header(2, sec.title)
		w.Paragraph(sec.intro)
		var rows [][]string
		for _, f := range fields {
			if f.Category != sec.category {
				continue
			}
			def := "-"
			if f.Default != "" {
				def = InlineCode(f.Default)
			}
			rows = append(rows, []string{InlineCode(f.Name), f.Type, def, f.Description})
		}
		w.Table([]string{"Field", "Type", "Default", "Description"}, rows)
	}

	w.Header(2, "Example")
	w.CodeBlock("yaml", `seed: 42
dataset:
  type: duckdb
  path: data/train.csv
  target: y
objectives:
  script: objectives.star`)

	if err := os.WriteFile(filepath.Join(outDir, "configuration.md"), w.Bytes(), 0o600); err != nil {
		return err
	}
	log.Printf("  Generated configuration.md")
	return nil
}
