package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  admin_enabled: true
  shutdown_timeout: 2s
catalog:
  source: postgres
  refresh_interval: 1m
database:
  host: db
  name: spa
cache:
  ttl: 30s
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Server.AdminEnabled)
	assert.Equal(t, 2*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "postgres", cfg.Catalog.Source)
	assert.Equal(t, time.Minute, cfg.Catalog.RefreshInterval)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "host=db port=5432 user=postgres password= dbname=spa sslmode=disable", cfg.Database.DSN())

	// untouched sections keep their defaults
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "data/catalog.yaml", cfg.Catalog.Path)
	assert.Equal(t, 30, cfg.Server.TimeoutSeconds)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")
	t.Setenv("CATALOG_DATABASE_URL", "postgres://u:p@db/catalog")
	t.Setenv("CATALOG_REDIS_URL", "redis://cache:6379/0")
	t.Setenv("CATALOG_PORT", "7070")
	t.Setenv("CATALOG_LOG_LEVEL", "debug")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://u:p@db/catalog", cfg.Database.DSN())
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "catalog:\n  source: s3\n"))
	assert.ErrorContains(t, err, "invalid config")

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}
