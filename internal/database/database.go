package database

import (
	"context"
	"failfeed/internal/config"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// DB is the global database manager instance.
var DB *Manager

var initMutex sync.Mutex

// InitDB initializes the database manager, runs migrations, and waits
// for the database to report healthy.
func InitDB(cfg *config.Config, logger *zap.Logger) error {
	initMutex.Lock()
	defer initMutex.Unlock()

	if DB != nil {
		logger.Info("Database manager already initialized")
		return nil
	}

	manager, err := NewManager(&cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	if err := manager.Migrate(cfg.Database.MigrationsPath); err != nil {
		manager.Close()
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	if err := waitForHealthy(manager, logger); err != nil {
		manager.Close()
		return fmt.Errorf("database failed to become healthy: %w", err)
	}

	manager.health.StartMonitoring()
	DB = manager

	logger.Info("Database initialized successfully",
		zap.String("migrations_path", cfg.Database.MigrationsPath),
		zap.Int("open_connections", manager.Stats().OpenConnections),
	)

	return nil
}

// waitForHealthy retries the health probe with exponential backoff.
func waitForHealthy(manager *Manager, logger *zap.Logger) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = time.Second
	policy.MaxInterval = 10 * time.Second
	policy.MaxElapsedTime = 60 * time.Second

	return backoff.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		status := manager.Health(ctx)
		if status.Status == StatusUnhealthy {
			logger.Debug("Database not healthy yet",
				zap.String("status", status.Status),
				zap.Strings("errors", status.Errors),
			)
			return fmt.Errorf("database unhealthy: %v", status.Errors)
		}
		return nil
	}, policy)
}

// GetDB returns the global manager.
func GetDB() *Manager {
	return DB
}

// Close shuts down the global manager.
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// Health checks the global manager.
func Health(ctx context.Context) *HealthStatus {
	if DB == nil {
		return &HealthStatus{
			Status:    StatusUnhealthy,
			Timestamp: time.Now(),
			Errors:    []string{"database not initialized"},
		}
	}
	return DB.Health(ctx)
}

// GetMetrics returns a snapshot from the global manager.
func GetMetrics() *MetricsSnapshot {
	if DB == nil {
		return &MetricsSnapshot{Timestamp: time.Now()}
	}
	return DB.Metrics()
}
