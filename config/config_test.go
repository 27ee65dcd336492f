package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "HTTP_ADDR", "LOG_LEVEL", "JWT_SECRET", "STORE_BACKEND", "EVENTS_BACKEND",
		"REDIS_URL", "WORLD_APP_ID", "WORLD_ACTION", "WORLD_API_URL", "RATE_LIMIT", "RATE_WINDOW", "RATE_FAIL_OPEN",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, 10, cfg.RateLimit)
	assert.Equal(t, time.Minute, cfg.RateWindow)
	assert.False(t, cfg.IsProduction())
}

func TestLoadProductionRequiresSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("WORLD_APP_ID", "app_123")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET is required in production")

	t.Setenv("JWT_SECRET", "s3cret")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "seedvault.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
env: development
http_addr: ":8080"
store_backend: redis
rate_limit: 5
rate_window: 30s
world_app_id: app_file
`), 0o600))

	t.Setenv("RATE_LIMIT", "7")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, BackendRedis, cfg.StoreBackend)
	assert.Equal(t, 7, cfg.RateLimit)
	assert.Equal(t, 30*time.Second, cfg.RateWindow)
	assert.Equal(t, "app_file", cfg.WorldAppID)
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("APP_ENV", "staging")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_BACKEND")
	assert.Contains(t, err.Error(), "APP_ENV")

	clearEnv(t)
	t.Setenv("RATE_WINDOW", "soon")
	_, err = Load("")
	assert.Error(t, err)
}
