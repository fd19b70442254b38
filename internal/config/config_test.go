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
	t.Setenv("YATUBE_CONFIG", "")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 20*time.Second, cfg.PageCacheTTL)
	assert.Equal(t, 10, cfg.PostsPerPage)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, StorageDisk, cfg.StorageBackend)
	assert.Empty(t, cfg.TLSDomains)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("YATUBE_CONFIG", "")
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_FILE", "/tmp/yatube.db")
	t.Setenv("PAGE_CACHE_TTL", "5")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("POSTS_PER_PAGE", "not-a-number")
	t.Setenv("DEBUG_MODE", "off")
	t.Setenv("TLS_DOMAINS", "yatube.example, www.yatube.example,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.BindAddress)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "/tmp/yatube.db", cfg.SQLiteFile)
	assert.Equal(t, 5*time.Second, cfg.PageCacheTTL)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10, cfg.PostsPerPage, "invalid numbers keep the default")
	assert.False(t, cfg.DebugMode)
	assert.Equal(t, []string{"yatube.example", "www.yatube.example"}, cfg.TLSDomains)
}

func TestSettingsFileIsOverriddenByEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
DB_NAME: from_file
POSTS_PER_PAGE: 25
PAGE_CACHE_TTL: 1m
STORAGE_BACKEND: s3
`), 0o600))
	t.Setenv("YATUBE_CONFIG", path)
	t.Setenv("DB_NAME", "from_env")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from_env", cfg.DBName)
	assert.Equal(t, 25, cfg.PostsPerPage)
	assert.Equal(t, time.Minute, cfg.PageCacheTTL)
	assert.Equal(t, StorageS3, cfg.StorageBackend)
}

func TestMissingSettingsFile(t *testing.T) {
	t.Setenv("YATUBE_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load()
	require.Error(t, err)
}

func TestProductionNeedsSecrets(t *testing.T) {
	t.Setenv("YATUBE_CONFIG", "")
	t.Setenv("YATUBE_ENV", ProdEnv)
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")

	t.Setenv("SESSION_SECRET", "s3ss10n")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", devJWTSecret)
	_, err = Load()
	require.Error(t, err, "the development secret is not accepted")

	t.Setenv("JWT_SECRET", "jwt-s3cret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "s3ss10n", cfg.SessionSecret)
	assert.Equal(t, "jwt-s3cret", cfg.JWTSecret)
}

func TestDevelopmentKeepsDefaultSecrets(t *testing.T) {
	t.Setenv("YATUBE_CONFIG", "")
	t.Setenv("YATUBE_ENV", DevEnv)
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, devSessionSecret, cfg.SessionSecret)
}
