package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/transitsim/errors"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "downtown", cfg.Scenario)
	assert.Equal(t, 1, cfg.StopAdmitCapacity)
	assert.True(t, cfg.Messaging)
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty scenario", func(c *Config) { c.Scenario = "" }},
		{"negative duration", func(c *Config) { c.Duration = Duration(-time.Second) }},
		{"zero admit capacity", func(c *Config) { c.StopAdmitCapacity = 0 }},
		{"zero pacing", func(c *Config) { c.Pacing.Min = 0 }},
		{"inverted pacing", func(c *Config) {
			c.Pacing.Min = Duration(5 * time.Second)
			c.Pacing.Max = Duration(time.Second)
		}},
		{"metrics without addr", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Addr = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.False(t, errors.IsTransient(err), "config errors must not be retryable")
		})
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "transitsim.yaml")

	content := []byte(`
scenario: crosstown
duration: 30s
messaging: false
stop_admit_capacity: 2
pacing:
  min: 10ms
  max: 50ms
metrics:
  enabled: true
  addr: ":9191"
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "crosstown", cfg.Scenario)
	assert.Equal(t, 30*time.Second, cfg.Duration.Std())
	assert.False(t, cfg.Messaging)
	assert.Equal(t, 2, cfg.StopAdmitCapacity)
	assert.Equal(t, 10*time.Millisecond, cfg.Pacing.Min.Std())
	assert.Equal(t, ":9191", cfg.Metrics.Addr)
	// Unset fields keep defaults
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))
}

func TestLoad_InvalidContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scenario: [broken"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}
