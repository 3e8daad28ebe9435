package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Health status values.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthStatus represents the current health of the database.
type HealthStatus struct {
	Status          string        `json:"status"`
	Timestamp       time.Time     `json:"timestamp"`
	ResponseTime    time.Duration `json:"response_time"`
	ConnectionCount int           `json:"connection_count"`
	Errors          []string      `json:"errors,omitempty"`
}

// HealthChecker runs periodic health probes against the pool.
type HealthChecker struct {
	manager  *Manager
	logger   *zap.Logger
	interval time.Duration

	mu     sync.RWMutex
	last   *HealthStatus
	stopCh chan struct{}
	once   sync.Once
}

// NewHealthChecker creates a checker; call StartMonitoring to begin
// background probes.
func NewHealthChecker(manager *Manager, interval time.Duration, logger *zap.Logger) *HealthChecker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &HealthChecker{
		manager:  manager,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Check performs a single health probe.
func (h *HealthChecker) Check(ctx context.Context) *HealthStatus {
	start := time.Now()
	status := &HealthStatus{
		Status:    StatusHealthy,
		Timestamp: start,
	}

	db := h.manager.DB()
	if db == nil {
		status.Status = StatusUnhealthy
		status.Errors = append(status.Errors, "database connection not initialized")
		return status
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		status.Status = StatusUnhealthy
		status.Errors = append(status.Errors, fmt.Sprintf("ping failed: %v", err))
	}

	stats := db.Stats()
	status.ConnectionCount = stats.OpenConnections
	status.ResponseTime = time.Since(start)

	// Saturated pool is degraded, not dead
	if status.Status == StatusHealthy && stats.MaxOpenConnections > 0 &&
		stats.OpenConnections >= stats.MaxOpenConnections {
		status.Status = StatusDegraded
		status.Errors = append(status.Errors, "connection pool saturated")
	}

	h.mu.Lock()
	h.last = status
	h.mu.Unlock()

	return status
}

// Last returns the most recent probe result, if any.
func (h *HealthChecker) Last() *HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last
}

// StartMonitoring launches the background probe loop.
func (h *HealthChecker) StartMonitoring() {
	go func() {
		ticker := time.NewTicker(h.interval)
		defer ticker.Stop()

		for {
			select {
			case <-h.stopCh:
				return
			case <-ticker.C:
				status := h.Check(context.Background())
				if status.Status != StatusHealthy {
					h.logger.Warn("Database health check failed",
						zap.String("status", status.Status),
						zap.Strings("errors", status.Errors),
					)
				}
			}
		}
	}()
}

// Stop terminates the background probe loop.
func (h *HealthChecker) Stop() {
	h.once.Do(func() { close(h.stopCh) })
}
