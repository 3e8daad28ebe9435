package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Auth     AuthConfig
	Badges   BadgeConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	GracefulTimeout time.Duration
	MaxHeaderBytes  int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL                 string
	MaxOpenConns        int
	MaxIdleConns        int
	ConnMaxLifetime     time.Duration
	ConnMaxIdleTime     time.Duration
	SlowQueryThreshold  time.Duration
	HealthCheckInterval time.Duration
	MigrationsPath      string
}

// CacheConfig holds cache configuration
type CacheConfig struct {
	Provider        string // "memory" or "redis"
	RedisURL        string
	TTL             time.Duration
	MaxKeys         int
	CleanupInterval time.Duration
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret  string
	JWTExpiry  time.Duration
	BCryptCost int
}

// BadgeConfig holds badge engine configuration
type BadgeConfig struct {
	// RuleTimeout bounds every per-rule query; a timeout is treated the
	// same as a query error (rule evaluates to not satisfied).
	RuleTimeout time.Duration
	// CatalogCacheTTL bounds how long the badge catalog may be served
	// from cache. Activity facts are never cached.
	CatalogCacheTTL time.Duration
}

// Load reads configuration from the environment, with .env support for
// local development.
func Load() (*Config, error) {
	// .env is optional; missing file is not an error
	_ = godotenv.Load()

	env := getEnv("GO_ENV", "development")

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "9000"),
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Environment:     env,
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
			GracefulTimeout: getDurationEnv("GRACEFUL_TIMEOUT", 30*time.Second),
			MaxHeaderBytes:  getIntEnv("MAX_HEADER_BYTES", 1<<20),
		},
		Database: DatabaseConfig{
			URL:                 getEnv("DATABASE_URL", ""),
			MaxOpenConns:        getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:        getIntEnv("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime:     getDurationEnv("DB_CONN_MAX_LIFETIME", 10*time.Minute),
			ConnMaxIdleTime:     getDurationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			SlowQueryThreshold:  getDurationEnv("DB_SLOW_QUERY_THRESHOLD", 100*time.Millisecond),
			HealthCheckInterval: getDurationEnv("DB_HEALTH_CHECK_INTERVAL", 30*time.Second),
			MigrationsPath:      getEnv("DB_MIGRATIONS_PATH", "./migrations"),
		},
		Cache: CacheConfig{
			Provider:        getEnv("CACHE_PROVIDER", "memory"),
			RedisURL:        getEnv("REDIS_URL", ""),
			TTL:             getDurationEnv("CACHE_TTL", 5*time.Minute),
			MaxKeys:         getIntEnv("CACHE_MAX_KEYS", 10000),
			CleanupInterval: getDurationEnv("CACHE_CLEANUP_INTERVAL", 1*time.Minute),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", ""),
			JWTExpiry:  getDurationEnv("JWT_EXPIRY", 24*time.Hour),
			BCryptCost: getIntEnv("BCRYPT_COST", 12),
		},
		Badges: BadgeConfig{
			RuleTimeout:     getDurationEnv("BADGE_RULE_TIMEOUT", 5*time.Second),
			CatalogCacheTTL: getDurationEnv("BADGE_CATALOG_CACHE_TTL", 5*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks required settings.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Server.Environment == "production" && c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	if c.Cache.Provider == "redis" && c.Cache.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required when CACHE_PROVIDER=redis")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		c.Database.MaxIdleConns = c.Database.MaxOpenConns
	}
	return nil
}

// ===============================
// ENV HELPERS
// ===============================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
