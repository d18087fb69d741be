package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Load reads so neither the host environment
// nor an earlier test leaks in. t.Setenv restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENV_FILE", "PORT", "APP_ENV", "BASE_URL", "DB_TYPE", "DATABASE_URL", "DB_HOST", "DB_PORT",
		"DB_DATABASE", "DB_USER", "DB_PASSWORD", "DB_CONNECTION_LIMIT", "DB_LOG_LEVEL", "JWT_SECRET",
		"JWT_EXPIRY_HOURS", "API_KEY", "UPLOAD_DIR", "MEDIA_URL_PREFIX", "MEDIA_SWEEP_INTERVAL",
		"MAX_UPLOAD_MB", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "CACHE_TTL_SECONDS", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DATABASE", "ddproperty")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "mysql", cfg.DBType)
	assert.Equal(t, 24, cfg.JWTExpiryHours)
	assert.Equal(t, "/images", cfg.MediaURLPrefix)
	assert.Equal(t, 15*time.Minute, cfg.MediaSweepInterval)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes())
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_TYPE", "SQLite")
	t.Setenv("DB_DATABASE", "test.db")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("APP_ENV", "production")
	t.Setenv("BASE_URL", "https://api.ddproperty.example/")
	t.Setenv("MEDIA_URL_PREFIX", "media/")
	t.Setenv("MEDIA_SWEEP_INTERVAL", "90")
	t.Setenv("DB_CONNECTION_LIMIT", "0")
	t.Setenv("JWT_EXPIRY_HOURS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBType)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "https://api.ddproperty.example", cfg.BaseURL)
	assert.Equal(t, "/media", cfg.MediaURLPrefix)
	assert.Equal(t, 90*time.Second, cfg.MediaSweepInterval)
	assert.Equal(t, 1, cfg.DBConnectionLimit)
	assert.Equal(t, 24, cfg.JWTExpiryHours)
}

func TestLoadRequiresDatabaseAndSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")
	_, err := Load()
	assert.ErrorContains(t, err, "DB_DATABASE")

	clearEnv(t)
	t.Setenv("DATABASE_URL", "user:pass@tcp(localhost:3306)/db")
	_, err = Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	file := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(file, []byte("DB_DATABASE=fromfile\nJWT_SECRET=filesecret\nPORT=8088\n"), 0o600))
	t.Setenv("ENV_FILE", file)
	// set in the environment, so the file does not override it
	t.Setenv("PORT", "9000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "fromfile", cfg.DBDatabase)
	assert.Equal(t, "9000", cfg.Port)

	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	_, err = Load()
	assert.Error(t, err)
}
