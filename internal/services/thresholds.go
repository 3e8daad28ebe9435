package services

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"failfeed/internal/repositories"
)

// Thresholds holds tunable rule parameters grouped by section, e.g.
// {"funny_fails": {"reactions_per_fail": 5}}.
type Thresholds map[string]map[string]float64

// Value looks up a single threshold, falling back to the given default
// when the section or key is absent.
func (t Thresholds) Value(section, key string, fallback float64) float64 {
	if keys, ok := t[section]; ok {
		if v, ok := keys[key]; ok {
			return v
		}
	}
	return fallback
}

// ThresholdProvider loads rule thresholds for badge evaluation.
type ThresholdProvider interface {
	Thresholds(ctx context.Context) Thresholds
}

type thresholdProvider struct {
	badgeRepo repositories.BadgeRepository
	logger    *zap.Logger
}

// NewThresholdProvider creates a threshold provider backed by the
// badge settings table.
func NewThresholdProvider(badgeRepo repositories.BadgeRepository, logger *zap.Logger) ThresholdProvider {
	return &thresholdProvider{
		badgeRepo: badgeRepo,
		logger:    logger,
	}
}

// Thresholds returns the stored thresholds, or the hardcoded defaults
// when no row exists, the row does not parse, or the store is
// unreachable. Evaluation never fails on configuration problems.
func (p *thresholdProvider) Thresholds(ctx context.Context) Thresholds {
	raw, err := p.badgeRepo.GetSettings(ctx)
	if err != nil {
		p.logger.Warn("Failed to load badge settings, using defaults", zap.Error(err))
		return defaultThresholds()
	}
	if len(raw) == 0 {
		return defaultThresholds()
	}

	var t Thresholds
	if err := json.Unmarshal(raw, &t); err != nil {
		p.logger.Warn("Malformed badge settings, using defaults", zap.Error(err))
		return defaultThresholds()
	}
	return t
}

func defaultThresholds() Thresholds {
	return Thresholds{
		"funny_fails": {
			"reactions_per_fail": 5,
		},
		"comeback": {
			"gap_days": 30,
		},
	}
}
