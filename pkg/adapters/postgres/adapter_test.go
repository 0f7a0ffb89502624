package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/leapstack-labs/symtree/pkg/adapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPostgresDSN(t *testing.T) {
	tests := []struct {
		name     string
		config   adapter.Config
		expected string
	}{
		{
			name: "basic connection",
			config: adapter.Config{
				Host:     "localhost",
				Port:     5432,
				Database: "testdb",
				Username: "user",
				Password: "pass",
			},
			expected: "host=localhost port=5432 dbname=testdb sslmode=disable user=user password=pass",
		},
		{
			name: "with custom sslmode",
			config: adapter.Config{
				Host:     "prod.example.com",
				Port:     5432,
				Database: "proddb",
				Username: "admin",
				SSLMode:  "require",
			},
			expected: "host=prod.example.com port=5432 dbname=proddb sslmode=require user=admin",
		},
		{
			name: "sslmode from options",
			config: adapter.Config{
				Database: "mydb",
				Options:  map[string]string{"sslmode": "verify-full"},
			},
			expected: "host=localhost port=5432 dbname=mydb sslmode=verify-full",
		},
		{
			name: "defaults",
			config: adapter.Config{
				Database: "mydb",
			},
			expected: "host=localhost port=5432 dbname=mydb sslmode=disable",
		},
		{
			name: "custom port",
			config: adapter.Config{
				Host:     "db.example.com",
				Port:     5433,
				Database: "analytics",
				Username: "analyst",
			},
			expected: "host=db.example.com port=5433 dbname=analytics sslmode=disable user=analyst",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildPostgresDSN(tt.config))
		})
	}
}

func TestNew(t *testing.T) {
	adp := New(nil)

	assert.NotNil(t, adp)
	assert.Nil(t, adp.DB, "DB should be nil before Connect")
	assert.False(t, adp.IsConnected())

	var _ adapter.Source = adp
}

func TestAdapter_NotConnected(t *testing.T) {
	tests := []struct {
		name      string
		operation func(ctx context.Context, adp *Adapter) error
	}{
		{
			name: "exec without connect",
			operation: func(ctx context.Context, adp *Adapter) error {
				return adp.Exec(ctx, "SELECT 1")
			},
		},
		{
			name: "query without connect",
			operation: func(ctx context.Context, adp *Adapter) error {
				_, err := adp.Query(ctx, "SELECT 1")
				return err
			},
		},
		{
			name: "load table without connect",
			operation: func(ctx context.Context, adp *Adapter) error {
				_, err := adp.LoadTable(ctx, "points", nil)
				return err
			},
		},
		{
			name: "load csv without connect",
			operation: func(ctx context.Context, adp *Adapter) error {
				return adp.LoadCSV(ctx, "test", "/tmp/test.csv")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.operation(context.Background(), New(nil))
			require.Error(t, err)
			assert.ErrorIs(t, err, adapter.ErrNotConnected)
		})
	}
}

func TestAdapter_Registry(t *testing.T) {
	assert.True(t, adapter.IsRegistered("postgres"))

	factory, ok := adapter.Get("postgres")
	require.True(t, ok)

	_, ok = factory(nil).(*Adapter)
	assert.True(t, ok, "factory should return *Adapter")
}

func TestAdapter_Close(t *testing.T) {
	assert.NoError(t, New(nil).Close())
}

// TestAdapter_Integration runs against a live server when
// SYMTREE_TEST_POSTGRES_HOST is set.
func TestAdapter_Integration(t *testing.T) {
	host := os.Getenv("SYMTREE_TEST_POSTGRES_HOST")
	if host == "" {
		t.Skip("SYMTREE_TEST_POSTGRES_HOST not set")
	}

	ctx := context.Background()
	adp := New(nil)
	require.NoError(t, adp.Connect(ctx, adapter.Config{
		Host:     host,
		Database: os.Getenv("SYMTREE_TEST_POSTGRES_DB"),
		Username: os.Getenv("SYMTREE_TEST_POSTGRES_USER"),
		Password: os.Getenv("SYMTREE_TEST_POSTGRES_PASSWORD"),
	}))
	defer func() { _ = adp.Close() }()

	csvPath := t.TempDir() + "/points.csv"
	require.NoError(t, os.WriteFile(csvPath, []byte("x0,y\n1,2\n3,\n"), 0o600))
	require.NoError(t, adp.LoadCSV(ctx, "symtree_points", csvPath))

	ds, err := adp.LoadTable(ctx, "symtree_points", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"x0", "y"}, ds.Names())
	assert.Equal(t, 2, ds.Rows())
}
