package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	require.NoError(t, Load(""))

	assert.Equal(t, "http://localhost:3000", C.Server.BaseURL)
	assert.Equal(t, "/api/whop/validate", C.Server.AuthPath)
	assert.Equal(t, "whop_token", C.Session.Key)
	assert.Equal(t, 200, C.Channel.LogSize)
	assert.Equal(t, 500*time.Millisecond, C.Channel.ReconnectBase)
	assert.Equal(t, 5, C.Channel.ReconnectRetries)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  base_url: "https://poker.example.com"
  timeout: 3s
session:
  store: "redis"
channel:
  log_size: 16
  reconnect_retries: 0
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	require.NoError(t, Load(path))

	assert.Equal(t, "https://poker.example.com", C.Server.BaseURL)
	assert.Equal(t, 3*time.Second, C.Server.Timeout)
	assert.Equal(t, "redis", C.Session.Store)
	assert.Equal(t, 16, C.Channel.LogSize)
	assert.Equal(t, 0, C.Channel.ReconnectRetries)
	// untouched keys keep their defaults
	assert.Equal(t, "/ws", C.Server.RealtimePath)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("GGPOKER_SESSION_STORE", "memory")
	require.NoError(t, Load(""))
	assert.Equal(t, "memory", C.Session.Store)
}

func TestLoadEnvOverrideWithoutFile(t *testing.T) {
	t.Setenv("GGPOKER_DATABASE_DSN", "postgres://u:p@db:5432/poker")
	t.Setenv("GGPOKER_REDIS_PASSWORD", "hunter2")
	t.Setenv("GGPOKER_REDIS_DB", "3")
	require.NoError(t, Load(""))

	assert.Equal(t, "postgres://u:p@db:5432/poker", C.Database.DSN)
	assert.Equal(t, "hunter2", C.Redis.Password)
	assert.Equal(t, 3, C.Redis.DB)
}

func TestLoadMissingFile(t *testing.T) {
	err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
