package commands

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/symtree/internal/cli/config"
	"github.com/leapstack-labs/symtree/internal/cli/testutil"
)

func doctorChecks(t *testing.T, tr *testutil.TestRenderer) map[string]HealthCheck {
	t.Helper()
	var out DoctorOutput
	require.NoError(t, json.Unmarshal(tr.Out.Bytes(), &out))
	checks := make(map[string]HealthCheck, len(out.Checks))
	for _, c := range out.Checks {
		checks[c.Name] = c
	}
	return checks
}

func TestRunDoctor(t *testing.T) {
	config.ResetConfig()

	tests := []struct {
		name     string
		setup    func(t *testing.T, c *CommandContext)
		wantErr  bool
		statuses map[string]string
	}{
		{
			name:  "defaults",
			setup: func(_ *testing.T, _ *CommandContext) {},
			statuses: map[string]string{
				"config":     statusWarn,
				"dataset":    statusWarn,
				"objectives": statusPass,
				"archive":    statusPass,
			},
		},
		{
			name: "dataset loads",
			setup: func(t *testing.T, c *CommandContext) {
				withDataset(t, c)
			},
			statuses: map[string]string{
				"dataset":    statusPass,
				"objectives": statusPass,
			},
		},
		{
			name: "missing target",
			setup: func(t *testing.T, c *CommandContext) {
				withDataset(t, c)
				c.Cfg.Dataset.Target = "label"
			},
			wantErr: true,
			statuses: map[string]string{
				"dataset": statusError,
			},
		},
		{
			name: "broken objective script",
			setup: func(t *testing.T, c *CommandContext) {
				path := filepath.Join(t.TempDir(), "bad.star")
				require.NoError(t, os.WriteFile(path, []byte("names = [\n"), 0o600))
				c.Cfg.Objectives.Script = path
			},
			wantErr: true,
			statuses: map[string]string{
				"objectives": statusError,
				"archive":    statusPass,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := testutil.NewTestRendererJSON()
			c := newTestContext(t, tr)
			tt.setup(t, c)

			err := runDoctor(context.Background(), c)
			if tt.wantErr {
				assert.ErrorIs(t, err, errUnhealthy)
			} else {
				assert.NoError(t, err)
			}

			checks := doctorChecks(t, tr)
			for name, status := range tt.statuses {
				assert.Equal(t, status, checks[name].Status, "check %s: %s", name, checks[name].Detail)
			}
		})
	}
}

func TestRunDoctor_Text(t *testing.T) {
	config.ResetConfig()
	tr := testutil.NewTestRendererText()
	c := withDataset(t, newTestContext(t, tr))

	require.NoError(t, runDoctor(context.Background(), c))
	out := tr.Output()
	assert.Contains(t, out, "symtree Health Report")
	assert.Contains(t, out, "4 rows, 2 features, target y")
	assert.Contains(t, out, "schema v2, 0 runs")
	testutil.AssertNoANSI(t, out)
}

func TestRunDoctor_Markdown(t *testing.T) {
	config.ResetConfig()
	tr := testutil.NewTestRendererMarkdown()

	require.NoError(t, runDoctor(context.Background(), newTestContext(t, tr)))
	out := tr.Output()
	assert.Contains(t, out, "# symtree Health Report")
	assert.Contains(t, out, "**[WARN]** Config")
	testutil.AssertValidMarkdown(t, out)
}

func TestConfigCheck(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "symtree.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: 42\nworkers: 2\ndataset:\n  target: y\n"), 0o600))

	cfg := config.DefaultConfig()
	cfg.Seed = 42
	cfg.Workers = 2
	check := configCheck(path, cfg)
	assert.Equal(t, statusPass, check.Status)
	assert.Equal(t, path, check.Detail)

	cfg.Seed = 7
	cfg.Dataset.Target = "label"
	check = configCheck(path, cfg)
	assert.Equal(t, statusPass, check.Status)
	assert.Contains(t, check.Detail, "(overridden: seed, dataset.target)")

	require.NoError(t, os.WriteFile(path, []byte("seed: [\n"), 0o600))
	assert.Equal(t, statusError, configCheck(path, cfg).Status)

	assert.Equal(t, statusWarn, configCheck("", cfg).Status)
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "a", firstLine("a\nHint: b"))
	assert.Equal(t, "single", firstLine("single"))
}
