package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.Listen)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 168*time.Hour, cfg.Redis.TTL)
	assert.Equal(t, "area:draft:", cfg.Redis.Prefix)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "areaflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen: ":8080"
database_url: postgres://file
redis:
  addr: localhost:6379
  ttl: 30m
`), 0o644))

	t.Setenv("DATABASE_URL", "")
	t.Setenv("AREAFLOW_REDIS_DB", "2")
	t.Setenv("AREAFLOW_LOG_LEVEL", "debug")
	t.Setenv("AREAFLOW_DATABASE_URL", "postgres://env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, "postgres://env", cfg.DatabaseURL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 30*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, "area:draft:", cfg.Redis.Prefix, "nested defaults survive a partial section")
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "areaflow.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen = ":9090"
api_url = "http://api:3000"

[redis]
addr = "cache:6379"
ttl = "2h"
`), 0o644))
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, "http://api:3000", cfg.APIBaseURL)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 2*time.Hour, cfg.Redis.TTL)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: [unterminated"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	raw := defaults()
	applyEnv(raw, []string{"AREAFLOW_API_URL=http://api", "AREAFLOW_REDIS_ADDR=r:1", "OTHER=x", "AREAFLOW_="})

	assert.Equal(t, "http://api", raw["api_url"])
	assert.Equal(t, "r:1", raw["redis"].(map[string]any)["addr"])
	assert.NotContains(t, raw, "other")
}
