package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("API_KEY", "test-key")
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("CACHE_TTL_CAMERAS", "90")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.RT.APIKey)
	assert.Equal(t, "https://lk-b2b.camera.rt.ru/api", cfg.RT.BaseURL)
	assert.Equal(t, 1000, cfg.RT.PerPage)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, 90*time.Second, cfg.Cache.CamerasTTL)
	assert.Equal(t, 120*time.Second, cfg.Cache.StatsTTL)
	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
}

func TestLoadMissingAPIKey(t *testing.T) {
	t.Setenv("API_KEY", "")

	cfg, err := Load()
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, ErrAPIKeyMissing)
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvSeconds(t *testing.T) {
	key := "TEST_SEC_VAR"
	os.Setenv(key, "45")
	defer os.Unsetenv(key)

	assert.Equal(t, 45*time.Second, getEnvSeconds(key, 10))
	assert.Equal(t, 10*time.Second, getEnvSeconds("NON_EXISTENT", 10))
}
