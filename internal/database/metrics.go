package database

import (
	"database/sql"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Metrics accumulates query-level statistics for the manager.
type Metrics struct {
	db     *sql.DB
	logger *zap.Logger

	mu             sync.Mutex
	queryCount     int64
	errorCount     int64
	slowQueryCount int64
	totalDuration  time.Duration
	startedAt      time.Time
}

// MetricsSnapshot is a point-in-time view of accumulated metrics.
type MetricsSnapshot struct {
	Timestamp        time.Time     `json:"timestamp"`
	QueryCount       int64         `json:"query_count"`
	ErrorCount       int64         `json:"error_count"`
	SlowQueryCount   int64         `json:"slow_query_count"`
	AvgQueryDuration time.Duration `json:"avg_query_duration"`
	Uptime           time.Duration `json:"uptime"`
	DBStats          sql.DBStats   `json:"db_stats"`
}

// NewMetrics creates a metrics collector bound to the pool.
func NewMetrics(db *sql.DB, logger *zap.Logger) *Metrics {
	return &Metrics{
		db:        db,
		logger:    logger,
		startedAt: time.Now(),
	}
}

// RecordQuery records one query execution.
func (m *Metrics) RecordQuery(queryType string, duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.queryCount++
	m.totalDuration += duration
	if err != nil {
		m.errorCount++
	}
	if duration > 100*time.Millisecond {
		m.slowQueryCount++
	}
}

// Snapshot returns the current metrics view.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	var avg time.Duration
	if m.queryCount > 0 {
		avg = m.totalDuration / time.Duration(m.queryCount)
	}

	return &MetricsSnapshot{
		Timestamp:        time.Now(),
		QueryCount:       m.queryCount,
		ErrorCount:       m.errorCount,
		SlowQueryCount:   m.slowQueryCount,
		AvgQueryDuration: avg,
		Uptime:           time.Since(m.startedAt),
		DBStats:          m.db.Stats(),
	}
}

// Reset clears accumulated counters.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.queryCount = 0
	m.errorCount = 0
	m.slowQueryCount = 0
	m.totalDuration = 0
	m.startedAt = time.Now()
}
