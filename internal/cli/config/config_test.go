package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/symtree/internal/testutil"

	// Import adapter packages to ensure sources are registered via init()
	_ "github.com/leapstack-labs/symtree/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/symtree/pkg/adapters/postgres"
)

// newFlags mirrors the persistent flags the root command registers.
func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Uint64("seed", 0, "")
	fs.Int("workers", 0, "")
	fs.String("state", "", "")
	fs.StringP("output", "o", "", "")
	fs.BoolP("verbose", "v", false, "")
	fs.String("csv", "", "")
	fs.String("source", "", "")
	fs.String("table", "", "")
	fs.StringSlice("columns", nil, "")
	fs.String("target", "", "")
	fs.String("database", "", "")
	fs.String("objectives", "", "")
	fs.Uint64("max-steps", 0, "")
	return fs
}

// chdirTemp moves into a fresh directory so no stray symtree.yaml is found.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	ResetConfig()
	t.Cleanup(ResetConfig)
	// TempDir may sit behind a symlink (macOS /var -> /private/var)
	wd, err := os.Getwd()
	require.NoError(t, err)
	return wd
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "symtree.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := chdirTemp(t)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, uint64(0), cfg.Seed)
	assert.Positive(t, cfg.Workers)
	assert.Equal(t, filepath.Join(dir, DefaultStateFile), cfg.StatePath)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, "duckdb", cfg.Dataset.Type)
	assert.Equal(t, "y", cfg.Dataset.Target)
	assert.Equal(t, dir, cfg.ProjectRoot)
	assert.Empty(t, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_File(t *testing.T) {
	dir := chdirTemp(t)
	writeConfig(t, dir, `
seed: 42
workers: 2
state_path: archive/front.db
output: json
dataset:
  path: data/points.csv
  columns: [a, b]
  target: label
objectives:
  script: score.star
  max_steps: 5000
`)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, filepath.Join(dir, "archive", "front.db"), cfg.StatePath)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, filepath.Join(dir, "data", "points.csv"), cfg.Dataset.Path)
	assert.Equal(t, []string{"a", "b"}, cfg.Dataset.Columns)
	assert.Equal(t, "label", cfg.Dataset.Target)
	assert.Equal(t, filepath.Join(dir, "score.star"), cfg.Objectives.Script)
	assert.Equal(t, uint64(5000), cfg.Objectives.MaxSteps)
	assert.Equal(t, filepath.Join(dir, "symtree.yaml"), GetConfigFileUsed())
}

func TestLoadConfig_FoundFromSubdirectory(t *testing.T) {
	dir := chdirTemp(t)
	writeConfig(t, dir, "seed: 9\n")
	sub := filepath.Join(dir, "nested", "deeper")
	require.NoError(t, os.MkdirAll(sub, 0o750))
	t.Chdir(sub)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), cfg.Seed)
	assert.Equal(t, dir, cfg.ProjectRoot)
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	chdirTemp(t)
	other := t.TempDir()
	path := filepath.Join(other, "custom.yml")
	require.NoError(t, os.WriteFile(path, []byte("dataset:\n  path: p.csv\n"), 0o600))

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "p.csv"), cfg.Dataset.Path)
	assert.Equal(t, path, GetConfigFileUsed())

	_, err = LoadConfig(filepath.Join(other, "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)
	writeConfig(t, dir, "seed: 1\ndataset:\n  target: label\n")

	t.Setenv("SYMTREE_SEED", "7")
	t.Setenv("SYMTREE_DATASET__TARGET", "z")
	t.Setenv("SYMTREE_DATASET__COLUMNS", "a,b,c")
	t.Setenv("SYMTREE_VERBOSE", "true")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), cfg.Seed)
	assert.Equal(t, "z", cfg.Dataset.Target)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Dataset.Columns)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_FlagsOverrideEnv(t *testing.T) {
	dir := chdirTemp(t)
	writeConfig(t, dir, "seed: 1\nworkers: 3\n")
	t.Setenv("SYMTREE_SEED", "7")

	fs := newFlags()
	require.NoError(t, fs.Parse([]string{
		"--seed", "11",
		"--csv", "in.csv",
		"--columns", "a,b",
		"--target", "out",
		"--state", "st.db",
		"-o", "yaml",
	}))

	cfg, err := LoadConfig("", fs)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), cfg.Seed)
	assert.Equal(t, 3, cfg.Workers, "unset flags keep file values")
	assert.Equal(t, filepath.Join(dir, "in.csv"), cfg.Dataset.Path)
	assert.Equal(t, []string{"a", "b"}, cfg.Dataset.Columns)
	assert.Equal(t, "out", cfg.Dataset.Target)
	assert.Equal(t, filepath.Join(dir, "st.db"), cfg.StatePath)
	assert.Equal(t, "yaml", cfg.OutputFormat)
}

func TestLoadConfig_FlagPathsRelativeToCWD(t *testing.T) {
	dir := chdirTemp(t)
	writeConfig(t, dir, "seed: 1\n")
	sub := filepath.Join(dir, "work")
	require.NoError(t, os.MkdirAll(sub, 0o750))
	t.Chdir(sub)

	fs := newFlags()
	require.NoError(t, fs.Parse([]string{"--csv", "here.csv", "--objectives", "obj.star"}))

	cfg, err := LoadConfig("", fs)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(sub, "here.csv"), cfg.Dataset.Path)
	assert.Equal(t, filepath.Join(sub, "obj.star"), cfg.Objectives.Script)
}

func TestLoadConfig_Postgres(t *testing.T) {
	dir := chdirTemp(t)
	t.Setenv("SYMTREE_TEST_PASSWORD", "s3cret")
	writeConfig(t, dir, `
dataset:
  type: postgres
  host: db.internal
  user: analyst
  password: ${SYMTREE_TEST_PASSWORD}
  database: research
  table: samples
`)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Dataset.Type)
	assert.Equal(t, 5432, cfg.Dataset.Port)
	assert.Equal(t, "s3cret", cfg.Dataset.Password)
	assert.Equal(t, "research", cfg.Dataset.Database, "postgres database names are not paths")
}

func TestLoadConfig_UnknownSource(t *testing.T) {
	dir := chdirTemp(t)
	writeConfig(t, dir, "dataset:\n  type: oracle\n")

	_, err := LoadConfig("", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid dataset configuration")
	assert.Contains(t, err.Error(), "duckdb")
	assert.Contains(t, err.Error(), "symtree.yaml")
}

func TestLoadConfig_InvalidWorkersFallsBack(t *testing.T) {
	dir := chdirTemp(t)
	writeConfig(t, dir, "workers: -4\n")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Positive(t, cfg.Workers)
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR_ONE", "value_one")
	t.Setenv("TEST_VAR_TWO", "value_two")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "single variable", input: "${TEST_VAR_ONE}", expected: "value_one"},
		{name: "multiple variables", input: "${TEST_VAR_ONE}/${TEST_VAR_TWO}", expected: "value_one/value_two"},
		{name: "unset variable stays as-is", input: "${UNSET_VARIABLE}", expected: "${UNSET_VARIABLE}"},
		{name: "no variables", input: "plain string", expected: "plain string"},
		{name: "empty string", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandEnvVars(tt.input))
		})
	}
}

func TestResolvePathRelativeTo(t *testing.T) {
	assert.Equal(t, "", resolvePathRelativeTo("", "/base"))
	assert.Equal(t, ":memory:", resolvePathRelativeTo(":memory:", "/base"))
	assert.Equal(t, "/abs/x", resolvePathRelativeTo("/abs/x", "/base"))
	assert.Equal(t, filepath.Join("/base", "rel"), resolvePathRelativeTo("rel", "/base"))
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()))

	logger := testutil.NewTestLogger(t)
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, GetLogger(ctx))
	assert.Equal(t, logger, ctx.Value(LoggerKey()))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DefaultStateFile, cfg.StatePath)
	assert.Equal(t, "duckdb", cfg.Dataset.Type)
	assert.Equal(t, "y", cfg.Dataset.Target)
	assert.Positive(t, cfg.Workers)
}
