package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 20, cfg.Engine.Seeds)
	assert.Equal(t, 1e-3, cfg.Engine.Epsilon)
	assert.Equal(t, 8, cfg.Engine.Places)
	assert.Equal(t, 400, cfg.Plot.Samples)
	assert.Empty(t, cfg.Source)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "calculus.yaml", `
server:
  addr: ":9090"
  request_timeout: 5s
engine:
  seeds: 40
  strict_real: true
plot:
  samples: 800
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 40, cfg.Engine.Seeds)
	assert.True(t, cfg.Engine.StrictReal)
	assert.Equal(t, 800, cfg.Plot.Samples)
	// Untouched keys keep their defaults.
	assert.Equal(t, 8, cfg.Engine.Places)
	assert.Equal(t, path, cfg.Source)
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "calculus.toml", `
[log]
level = "debug"
environment = "production"

[engine]
epsilon = 0.01
scan_min = -5.0
scan_max = 5.0
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "production", cfg.Log.Environment)
	assert.Equal(t, 0.01, cfg.Engine.Epsilon)
	assert.Equal(t, -5.0, cfg.Engine.ScanMin)
	assert.Equal(t, 5.0, cfg.Engine.ScanMax)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "calculus.yml", "engine:\n  seeds: 40\n")
	t.Setenv("CALCULUS_SEEDS", "12")
	t.Setenv("CALCULUS_ADDR", "127.0.0.1:7000")
	t.Setenv("CALCULUS_STRICT_REAL", "true")
	t.Setenv("CALCULUS_ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Engine.Seeds)
	assert.Equal(t, "127.0.0.1:7000", cfg.Server.Addr)
	assert.True(t, cfg.Engine.StrictReal)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("malformed env", func(t *testing.T) {
		t.Setenv("CALCULUS_WORKERS", "many")
		_, err := Load("")
		assert.ErrorContains(t, err, "CALCULUS_WORKERS")
	})
	t.Run("validation", func(t *testing.T) {
		t.Setenv("CALCULUS_SEEDS", "0")
		_, err := Load("")
		assert.ErrorContains(t, err, "validation failed")
	})
	t.Run("inverted scan range", func(t *testing.T) {
		path := writeFile(t, "c.yaml", "engine:\n  scan_min: 3\n  scan_max: -3\n")
		_, err := Load(path)
		assert.Error(t, err)
	})
	t.Run("unknown log level", func(t *testing.T) {
		path := writeFile(t, "c.yaml", "log:\n  level: loud\n")
		_, err := Load(path)
		assert.Error(t, err)
	})
	t.Run("unsupported extension", func(t *testing.T) {
		_, err := Load(writeFile(t, "c.json", "{}"))
		assert.ErrorContains(t, err, "unsupported format")
	})
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestEngineOptions(t *testing.T) {
	cfg := Default()
	cfg.Engine.Workers = 3
	cfg.Engine.ScanDefaultRange = true
	cfg.Plot.Samples = 100

	opts := cfg.EngineOptions()
	assert.Equal(t, 3, opts.Workers)
	assert.True(t, opts.ScanDefaultRange)
	assert.Equal(t, 100, opts.Samples)
	assert.Equal(t, cfg.Engine.Seeds, opts.Seeds)
	assert.Equal(t, cfg.Plot.Min, opts.PlotMin)
}
