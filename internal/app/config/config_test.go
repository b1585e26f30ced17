package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPServer.Port)
	assert.Equal(t, 10*time.Second, cfg.PropertyAPI.Timeout)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, int64(1000), cfg.Cache.LocalMaxSize)
	assert.Equal(t, "properties_queue", cfg.RabbitMQ.Queue)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoadConfig_YAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
env: prod
http_server:
  port: "9000"
property_api:
  base_url: http://api.internal/api
  timeout: 3s
cache:
  backend: memcached
  search_ttl: 30s
contact:
  inbox: ventas@example.com
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "9000", cfg.HTTPServer.Port)
	assert.Equal(t, "http://api.internal/api", cfg.PropertyAPI.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.PropertyAPI.Timeout)
	assert.Equal(t, "memcached", cfg.Cache.Backend)
	assert.Equal(t, 30*time.Second, cfg.Cache.SearchTTL)
	assert.Equal(t, 15*time.Minute, cfg.Cache.PropertyTTL)
	assert.Equal(t, "ventas@example.com", cfg.Contact.Inbox)
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestLoadConfig_MissingFileFallsBackToEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "7070")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.HTTPServer.Port)
}
