package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/failfeed_test?sslmode=disable")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, "memory", cfg.Cache.Provider)
	assert.Equal(t, 5*time.Second, cfg.Badges.RuleTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Badges.CatalogCacheTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/failfeed_test?sslmode=disable")
	t.Setenv("PORT", "8080")
	t.Setenv("BADGE_RULE_TIMEOUT", "2s")
	t.Setenv("DB_MAX_OPEN_CONNS", "50")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 2*time.Second, cfg.Badges.RuleTimeout)
	assert.Equal(t, 50, cfg.Database.MaxOpenConns)
}

func TestValidateRequiresDatabaseURL(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.Validate())
}

func TestValidateRequiresJWTSecretInProduction(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Environment: "production"},
		Database: DatabaseConfig{URL: "postgres://localhost/db"},
	}
	assert.Error(t, cfg.Validate())

	cfg.Auth.JWTSecret = "secret"
	assert.NoError(t, cfg.Validate())
}

func TestValidateRequiresRedisURLForRedisProvider(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{URL: "postgres://localhost/db"},
		Cache:    CacheConfig{Provider: "redis"},
	}
	assert.Error(t, cfg.Validate())
}

func TestValidateCapsIdleConns(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{URL: "postgres://localhost/db", MaxOpenConns: 5, MaxIdleConns: 10},
	}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5, cfg.Database.MaxIdleConns)
}
