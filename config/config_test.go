package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T, env string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SECRETS_DIR", dir)
	t.Setenv("CI", "false")
	t.Setenv("ENV", env)
	for _, name := range []string{
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSL_MODE",
		"JWT_SECRET", "JWT_TTL", "REDIS_URL", "REDIS_HOST", "STORAGE_BACKEND",
		"S3_BUCKET_NAME", "PUBLIC_BASE_URL", "CORS_ORIGINS", "RECIPE_CREATE_LIMIT", "TRUSTED_PROXIES",
	} {
		t.Setenv(name, "")
	}
	return dir
}

func TestLoadConfig(t *testing.T) {
	isolate(t, "development")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_USER", "foodgram")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "foodgram_dev")
	t.Setenv("JWT_SECRET", "jwt")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Development, cfg.Env)
	assert.Equal(t, "db", cfg.DBHost)
	assert.Equal(t, "5433", cfg.DBPort)
	assert.Equal(t, "foodgram", cfg.DBUser)
	assert.Equal(t, "secret", cfg.DBPassword)
	assert.Equal(t, "foodgram_dev", cfg.DBName)
	assert.Equal(t, "disable", cfg.DBSSLMode)
	assert.Equal(t, "jwt", cfg.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.True(t, cfg.RedisEnabled())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, []string{"10.0.0.0/8"}, cfg.TrustedProxies)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, "/media", cfg.MediaURL)
	assert.Contains(t, cfg.DSN(), "dbname=foodgram_dev")
}

func TestLoadConfigWithDefaults(t *testing.T) {
	isolate(t, "test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, "postgres", cfg.DBUser)
	assert.Equal(t, "foodgram", cfg.DBName)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "local", cfg.StorageBackend)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.False(t, cfg.RedisEnabled())
	assert.Empty(t, cfg.TrustedProxies)
	assert.Equal(t, "0.0.0.0:8080", cfg.ListenAddr())
}

func TestLoadConfigFromSecrets(t *testing.T) {
	dir := isolate(t, "production")
	secrets := map[string]string{
		"db_password":     "from-secret",
		"jwt_secret":      "jwt-from-secret",
		"public_base_url": "https://foodgram.example/",
	}
	for name, value := range secrets {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(value+"\n"), 0o600))
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "from-secret", cfg.DBPassword)
	assert.Equal(t, "jwt-from-secret", cfg.JWTSecret)
	assert.Equal(t, "https://foodgram.example", cfg.PublicBaseURL)
}

func TestValidateConfigProductionRequirements(t *testing.T) {
	isolate(t, "production")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PASSWORD is required")
	assert.Contains(t, err.Error(), "JWT_SECRET is required")
	assert.Contains(t, err.Error(), "PUBLIC_BASE_URL is required")
}

func TestValidateConfigStorage(t *testing.T) {
	isolate(t, "test")
	t.Setenv("STORAGE_BACKEND", "s3")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "S3_BUCKET_NAME")

	t.Setenv("STORAGE_BACKEND", "ftp")
	_, err = LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown backend "ftp"`)
}

func TestLoadConfigRejectsMalformedNumbers(t *testing.T) {
	isolate(t, "test")
	t.Setenv("RECIPE_CREATE_LIMIT", "lots")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RECIPE_CREATE_LIMIT")
}
