package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "leadgen.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Batch.MaxConcurrentJobs)
	assert.Equal(t, 40, cfg.Pipeline.DefaultMaxResults)
	assert.Equal(t, 20, cfg.Pipeline.RequestTimeoutSec)
	assert.Equal(t, "https://maps.googleapis.com/maps/api/place", cfg.Places.BaseURL)
	assert.Equal(t, 30, cfg.Places.RequestsPerMinute)
	assert.Equal(t, "https://www.googleapis.com/customsearch/v1", cfg.CustomSearch.BaseURL)
	assert.Equal(t, 20, cfg.CustomSearch.RequestsPerMinute)
	assert.Equal(t, "https://www.yellowpages.com", cfg.Directory.BaseURL)
	assert.Equal(t, 10, cfg.Directory.RequestsPerMinute)
	assert.Equal(t, 5, cfg.Directory.MaxPages)
	assert.Equal(t, "https://company.clearbit.com/v2", cfg.Clearbit.BaseURL)
	assert.Empty(t, cfg.Places.Key)
	assert.Empty(t, cfg.CustomSearch.Key)
	assert.Empty(t, cfg.CustomSearch.EngineID)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/leadgen
places:
  key: test-places-key
  requests_per_minute: 12
custom_search:
  key: cs-key
  engine_id: cs-engine
log:
  level: debug
  format: console
server:
  port: 9090
batch:
  max_concurrent_jobs: 8
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/leadgen", cfg.Store.DatabaseURL)
	assert.Equal(t, "test-places-key", cfg.Places.Key)
	assert.Equal(t, 12, cfg.Places.RequestsPerMinute)
	assert.Equal(t, "cs-key", cfg.CustomSearch.Key)
	assert.Equal(t, "cs-engine", cfg.CustomSearch.EngineID)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 8, cfg.Batch.MaxConcurrentJobs)
	// Defaults still apply for unset sections.
	assert.Equal(t, 5, cfg.Directory.MaxPages)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.NotNil(t, zap.L())
}

func TestInitLogger_BadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "nope", Format: "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}
