package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv hides variables a developer shell may export.
func clearEnv(t *testing.T) {
	for _, key := range []string{
		"CONFIG_FILE", "PORT", "APP_ENV", "CORS_ALLOWED_ORIGINS", "STORE_DRIVER", "DATABASE_URL",
		"JWT_SECRET", "JWT_TTL", "NATS_URL", "CLOUDFLARE_ACCOUNT_ID", "CLOUDFLARE_BUCKET_NAME",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultsAndEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9000")
	t.Setenv("JWT_TTL", "1h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.False(t, cfg.ImageHost.Enabled())
}

func TestLoadYAMLFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "7000"
database:
  driver: memory
auth:
  jwt_secret: from-file
  token_ttl: 30m
image_host:
  account_id: acct
  bucket_name: images
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7001")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7001", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.True(t, cfg.ImageHost.Enabled())
	assert.Equal(t, "auto", cfg.ImageHost.Region)
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)
	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "x")
	t.Setenv("STORE_DRIVER", "sqlite")
	_, err = Load()
	assert.ErrorContains(t, err, "sqlite")

	t.Setenv("STORE_DRIVER", "")
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = Load()
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable", db.DSN())

	db.URL = "postgres://u:p@db/n"
	assert.Equal(t, "postgres://u:p@db/n", db.DSN())
}
