package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestRegistry(activity *fakeActivityRepo, thresholds ThresholdProvider) *RuleRegistry {
	if thresholds == nil {
		thresholds = &staticThresholds{t: defaultThresholds()}
	}
	return NewRuleRegistry(activity, thresholds, 5*time.Second, zap.NewNop())
}

func TestEvaluateUnknownCriteriaType(t *testing.T) {
	registry := newTestRegistry(&fakeActivityRepo{}, nil)
	assert.False(t, registry.Evaluate(context.Background(), 1, "no_such_rule", 1))
}

func TestEvaluateCountRules(t *testing.T) {
	activity := &fakeActivityRepo{
		fails:             10,
		reactionsGiven:    4,
		reactionsReceived: 25,
		comments:          7,
		categories:        3,
		countries:         2,
	}
	registry := newTestRegistry(activity, nil)
	ctx := context.Background()

	assert.True(t, registry.Evaluate(ctx, 1, CriteriaFailCount, 10), "count meeting the threshold exactly unlocks")
	assert.False(t, registry.Evaluate(ctx, 1, CriteriaFailCount, 11))
	assert.True(t, registry.Evaluate(ctx, 1, CriteriaReactionsReceived, 20))
	assert.False(t, registry.Evaluate(ctx, 1, CriteriaReactionsGiven, 5))
	assert.True(t, registry.Evaluate(ctx, 1, CriteriaCommentCount, 1))
	assert.True(t, registry.Evaluate(ctx, 1, CriteriaCategoryCount, 3))
	assert.False(t, registry.Evaluate(ctx, 1, CriteriaCountryCount, 3))
}

func TestEvaluateRuleErrorYieldsFalse(t *testing.T) {
	activity := &fakeActivityRepo{fails: 100, err: errors.New("connection refused")}
	registry := newTestRegistry(activity, nil)
	assert.False(t, registry.Evaluate(context.Background(), 1, CriteriaFailCount, 1))
}

func TestEvaluateStreakRules(t *testing.T) {
	activity := &fakeActivityRepo{
		loginDays: []time.Time{
			day(2025, time.June, 1),
			day(2025, time.June, 2),
			day(2025, time.June, 3),
			day(2025, time.June, 10),
		},
		failDays: []time.Time{
			day(2025, time.June, 1),
			day(2025, time.June, 5),
		},
	}
	registry := newTestRegistry(activity, nil)
	ctx := context.Background()

	assert.True(t, registry.Evaluate(ctx, 1, CriteriaLoginDays, 4))
	assert.False(t, registry.Evaluate(ctx, 1, CriteriaLoginDays, 5))
	assert.True(t, registry.Evaluate(ctx, 1, CriteriaLoginStreak, 3))
	assert.False(t, registry.Evaluate(ctx, 1, CriteriaLoginStreak, 4))
	assert.False(t, registry.Evaluate(ctx, 1, CriteriaFailStreak, 2))
}

func TestEvaluateFunnyFailsUsesThreshold(t *testing.T) {
	activity := &fakeActivityRepo{funnyFails: 2}
	registry := newTestRegistry(activity, &staticThresholds{t: Thresholds{
		"funny_fails": {"reactions_per_fail": 3},
	}})

	assert.True(t, registry.Evaluate(context.Background(), 1, CriteriaFunnyFails, 2))
	assert.Equal(t, "laugh", activity.lastReactionKind)
	assert.Equal(t, 3, activity.lastMinReactions)
}

func TestEvaluateFunnyFailsDefaultThreshold(t *testing.T) {
	activity := &fakeActivityRepo{funnyFails: 1}
	registry := newTestRegistry(activity, &staticThresholds{t: Thresholds{}})

	registry.Evaluate(context.Background(), 1, CriteriaFunnyFails, 1)
	assert.Equal(t, 5, activity.lastMinReactions, "missing threshold falls back to the default")
}

func TestEvaluateComebackCount(t *testing.T) {
	activity := &fakeActivityRepo{
		failStamps: []time.Time{
			day(2025, time.January, 1),
			day(2025, time.March, 1),  // 59 day gap
			day(2025, time.March, 5),  // 4 day gap
			day(2025, time.June, 1),   // 88 day gap
		},
	}
	registry := newTestRegistry(activity, nil)
	ctx := context.Background()

	assert.True(t, registry.Evaluate(ctx, 1, CriteriaComebackCount, 2))
	assert.False(t, registry.Evaluate(ctx, 1, CriteriaComebackCount, 3))
}

func TestEvaluateCalendarWindowRules(t *testing.T) {
	ctx := context.Background()

	holiday := &fakeActivityRepo{failStamps: []time.Time{
		time.Date(2024, time.December, 25, 18, 30, 0, 0, time.UTC),
	}}
	registry := newTestRegistry(holiday, nil)
	assert.True(t, registry.Evaluate(ctx, 1, CriteriaHolidayFail, 1))
	assert.False(t, registry.Evaluate(ctx, 1, CriteriaNewYearFail, 1))

	newYear := &fakeActivityRepo{failStamps: []time.Time{
		time.Date(2025, time.January, 1, 0, 5, 0, 0, time.UTC),
	}}
	registry = newTestRegistry(newYear, nil)
	assert.True(t, registry.Evaluate(ctx, 1, CriteriaNewYearFail, 1))
	assert.False(t, registry.Evaluate(ctx, 1, CriteriaHolidayFail, 1))

	// Dec 23 falls just outside the holiday window.
	outside := &fakeActivityRepo{failStamps: []time.Time{
		time.Date(2024, time.December, 23, 23, 59, 0, 0, time.UTC),
	}}
	registry = newTestRegistry(outside, nil)
	assert.False(t, registry.Evaluate(ctx, 1, CriteriaHolidayFail, 1))
}

func TestEvaluateWeekendFails(t *testing.T) {
	activity := &fakeActivityRepo{failStamps: []time.Time{
		time.Date(2025, time.June, 7, 10, 0, 0, 0, time.UTC),  // Saturday
		time.Date(2025, time.June, 8, 10, 0, 0, 0, time.UTC),  // Sunday
		time.Date(2025, time.June, 9, 10, 0, 0, 0, time.UTC),  // Monday
	}}
	registry := newTestRegistry(activity, nil)
	ctx := context.Background()

	assert.True(t, registry.Evaluate(ctx, 1, CriteriaWeekendFails, 2))
	assert.False(t, registry.Evaluate(ctx, 1, CriteriaWeekendFails, 3))
}

func TestEvaluatePointsRank(t *testing.T) {
	ctx := context.Background()

	registry := newTestRegistry(&fakeActivityRepo{rank: 3}, nil)
	assert.True(t, registry.Evaluate(ctx, 1, CriteriaPointsRank, 10), "rank within the cutoff unlocks")
	assert.True(t, registry.Evaluate(ctx, 1, CriteriaPointsRank, 3))
	assert.False(t, registry.Evaluate(ctx, 1, CriteriaPointsRank, 2))

	// Rank 0 means unranked and never unlocks, whatever the cutoff.
	registry = newTestRegistry(&fakeActivityRepo{rank: 0}, nil)
	assert.False(t, registry.Evaluate(ctx, 1, CriteriaPointsRank, 1000000))
}

func TestEvaluateFeatureExplorer(t *testing.T) {
	ctx := context.Background()

	registry := newTestRegistry(&fakeActivityRepo{probesSatisfied: 5, probesTotal: 6}, nil)
	assert.True(t, registry.Evaluate(ctx, 1, CriteriaFeatureExplorer, 5))
	assert.False(t, registry.Evaluate(ctx, 1, CriteriaFeatureExplorer, 6))

	// A criteria value above the probe count clamps to the probe count.
	registry = newTestRegistry(&fakeActivityRepo{probesSatisfied: 6, probesTotal: 6}, nil)
	assert.True(t, registry.Evaluate(ctx, 1, CriteriaFeatureExplorer, 10))
}

func TestEvaluateBetaUser(t *testing.T) {
	ctx := context.Background()

	registry := newTestRegistry(&fakeActivityRepo{
		createdAt: time.Date(2025, time.June, 30, 23, 59, 59, 0, time.UTC),
	}, nil)
	assert.True(t, registry.Evaluate(ctx, 1, CriteriaBetaUser, 0))

	registry = newTestRegistry(&fakeActivityRepo{
		createdAt: time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC),
	}, nil)
	assert.False(t, registry.Evaluate(ctx, 1, CriteriaBetaUser, 0))

	// Unknown user, zero creation time.
	registry = newTestRegistry(&fakeActivityRepo{}, nil)
	assert.False(t, registry.Evaluate(ctx, 1, CriteriaBetaUser, 0))
}
