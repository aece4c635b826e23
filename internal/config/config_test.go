package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))
	assert.Contains(t, cfg.Scan.Source, "**/*.py")
	assert.Equal(t, ".territory", cfg.Output.Dir)
	assert.Equal(t, 30*time.Second, cfg.FileTimeout())
}

func TestLoadWithoutConfigFile(t *testing.T) {
	cfg, err := LoadFromDir(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".territory"), 0o755))
	yml := `
scan:
  source:
    - "**/*.py"
  include_deps: true
  file_timeout_seconds: 5
output:
  dir: out
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".territory", "config.yml"), []byte(yml), 0o644))

	cfg, err := LoadFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"**/*.py"}, cfg.Scan.Source)
	assert.True(t, cfg.Scan.IncludeDeps)
	assert.Equal(t, 5*time.Second, cfg.FileTimeout())
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched sections keep their defaults.
	assert.Equal(t, Default().Output.NodesFile, cfg.Output.NodesFile)
	assert.Equal(t, Default().Scan.Ignore, cfg.Scan.Ignore)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("TERRITORY_LOG_LEVEL", "error")
	t.Setenv("TERRITORY_SCAN_INCLUDE_DEPS", "true")

	cfg, err := LoadFromDir(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.True(t, cfg.Scan.IncludeDeps)
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cfg := Default()
	cfg.Scan.Source = nil
	assert.ErrorIs(t, Validate(cfg), ErrNoSourcePatterns)

	cfg = Default()
	cfg.Scan.FileTimeoutSeconds = -1
	assert.ErrorIs(t, Validate(cfg), ErrInvalidTimeout)

	cfg = Default()
	cfg.Log.Level = "loud"
	assert.ErrorIs(t, Validate(cfg), ErrInvalidLogLevel)

	cfg = Default()
	cfg.Output.NodesFile = ""
	assert.Error(t, Validate(cfg))
}

func TestInvalidConfigFileRejected(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".territory"), 0o755))
	yml := "log:\n  level: loud\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".territory", "config.yml"), []byte(yml), 0o644))

	_, err := LoadFromDir(dir)
	assert.Error(t, err)
}
