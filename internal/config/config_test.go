package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_ACCESS_EXPIRY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 1440, cfg.JWT.AccessTokenExpiry)
	assert.Equal(t, "0 * * * *", cfg.Jobs.ReconcileCron)
	assert.Equal(t, "0 3 * * *", cfg.Jobs.ExportArchiveCron)
}

func TestLoad_ProductionRequiresSecrets(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_PASSWORD", "s3cret")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "real-secret")
	t.Setenv("DB_PASSWORD", "")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PASSWORD")

	t.Setenv("DB_PASSWORD", "s3cret")
	_, err = Load()
	assert.NoError(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db",
		Port:     5433,
		User:     "library",
		Password: "p@ss",
		Database: "catalog",
		SSLMode:  "disable",
	}
	assert.Equal(t, "postgres://library:p%40ss@db:5433/catalog?sslmode=disable", d.DSN())
}

func TestLoadDatabaseConfig(t *testing.T) {
	t.Setenv("DB_MAX_CONNECTIONS", "10")
	t.Setenv("DB_RETRY_DELAY", "250ms")

	cfg, err := LoadDatabaseConfig()
	require.NoError(t, err)
	assert.Equal(t, int32(10), cfg.MaxConns)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryDelay)

	t.Setenv("DB_CONNECT_TIMEOUT", "soon")
	_, err = LoadDatabaseConfig()
	assert.ErrorContains(t, err, "DB_CONNECT_TIMEOUT")
}

func TestLoad_CORSOrigins(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("CORS_ALLOW_ORIGINS", "http://localhost:3000, ,https://library.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"http://localhost:3000", "https://library.example.com"}, cfg.App.CORSOrigins)
}
