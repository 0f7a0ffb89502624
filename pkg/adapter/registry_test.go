package adapter

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/symtree/pkg/core"
)

func TestUnknownSourceError_Error(t *testing.T) {
	err := &UnknownSourceError{
		Type:      "fake_db",
		Available: []string{"duckdb", "postgres"},
	}

	msg := err.Error()
	assert.Contains(t, msg, "fake_db", "error should mention the unknown type")
	assert.Contains(t, msg, "symtree.yaml", "error should mention config file")
}

func TestRegister(t *testing.T) {
	Register("test_source_internal", func(_ *slog.Logger) Source { return nil })

	assert.True(t, IsRegistered("test_source_internal"))
	assert.Contains(t, ListSources(), "test_source_internal")

	factory, ok := Get("test_source_internal")
	assert.True(t, ok)
	assert.NotNil(t, factory)
}

func TestNewSource(t *testing.T) {
	_, err := NewSource(Config{}, nil)
	require.Error(t, err)
	assert.Equal(t, "dataset source type not specified", err.Error())

	_, err = NewSource(Config{Type: "nope"}, nil)
	var unknown *UnknownSourceError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "nope", unknown.Type)

	Register("test_source_stub", func(_ *slog.Logger) Source { return &stubSource{} })
	src, err := NewSource(Config{Type: "test_source_stub"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &stubSource{}, src)
}

// stubSource records the calls Load makes.
type stubSource struct {
	BaseSQLSource
	calls []string
}

func (s *stubSource) Connect(_ context.Context, _ Config) error {
	s.calls = append(s.calls, "connect")
	return nil
}

func (s *stubSource) LoadCSV(_ context.Context, table, file string) error {
	s.calls = append(s.calls, "csv:"+table+":"+file)
	return nil
}

func (s *stubSource) LoadTable(_ context.Context, table string, columns []string) (*core.Dataset, error) {
	s.calls = append(s.calls, "table:"+table)
	return core.NewDataset([][]float64{{1, 2}}, columns...)
}

func TestLoad(t *testing.T) {
	src := &stubSource{}
	ds, err := Load(context.Background(), src, Config{File: "data.csv", Columns: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"connect", "csv:dataset:data.csv", "table:dataset"}, src.calls)
	assert.Equal(t, 2, ds.Cols())

	src = &stubSource{}
	_, err = Load(context.Background(), src, Config{Table: "points"})
	require.NoError(t, err)
	assert.Equal(t, []string{"connect", "table:points"}, src.calls)
}
