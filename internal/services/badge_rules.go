package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"failfeed/internal/repositories"
)

// Criteria types understood by the rule registry. A badge row whose
// criteria_type is not listed here never unlocks; adding a rule is a
// registry entry, not a schema change.
const (
	CriteriaFailCount         = "fail_count"
	CriteriaReactionsGiven    = "reactions_given"
	CriteriaCommentCount      = "comment_count"
	CriteriaCategoryCount     = "category_count"
	CriteriaCountryCount      = "country_count"
	CriteriaReactionsReceived = "reactions_received"
	CriteriaLoginDays         = "login_days"
	CriteriaLoginStreak       = "login_streak"
	CriteriaFailStreak        = "fail_streak"
	CriteriaFunnyFails        = "funny_fails"
	CriteriaComebackCount     = "comeback_count"
	CriteriaHolidayFail       = "holiday_fail"
	CriteriaNewYearFail       = "new_year_fail"
	CriteriaWeekendFails      = "weekend_fails"
	CriteriaPointsRank        = "points_rank"
	CriteriaFeatureExplorer   = "feature_explorer"
	CriteriaBetaUser          = "beta_user"
)

// betaCutoff is the registration deadline for the beta badge.
var betaCutoff = time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)

// RuleEvaluator decides whether a user satisfies a badge's criteria.
type RuleEvaluator interface {
	Evaluate(ctx context.Context, userID int64, criteriaType string, criteriaValue int) bool
}

// ruleFunc evaluates one criterion. value is the badge's criteria_value.
type ruleFunc func(ctx context.Context, userID int64, value int) (bool, error)

// RuleRegistry maps criteria types to their evaluation functions. All
// evaluation is read-only over activity metrics; a rule error or an
// unregistered type yields false, never a propagated failure.
type RuleRegistry struct {
	activity   repositories.ActivityRepository
	thresholds ThresholdProvider
	timeout    time.Duration
	logger     *zap.Logger
	rules      map[string]ruleFunc
}

// NewRuleRegistry creates a registry with every built-in rule installed.
func NewRuleRegistry(
	activity repositories.ActivityRepository,
	thresholds ThresholdProvider,
	timeout time.Duration,
	logger *zap.Logger,
) *RuleRegistry {
	r := &RuleRegistry{
		activity:   activity,
		thresholds: thresholds,
		timeout:    timeout,
		logger:     logger,
	}
	r.rules = map[string]ruleFunc{
		CriteriaFailCount:         r.countRule(activity.CountFails),
		CriteriaReactionsGiven:    r.countRule(activity.CountReactionsGiven),
		CriteriaCommentCount:      r.countRule(activity.CountComments),
		CriteriaCategoryCount:     r.countRule(activity.CountDistinctCategories),
		CriteriaCountryCount:      r.countRule(activity.CountDistinctCountries),
		CriteriaReactionsReceived: r.countRule(activity.CountReactionsReceived),
		CriteriaLoginDays:         r.loginDays,
		CriteriaLoginStreak:       r.loginStreak,
		CriteriaFailStreak:        r.failStreak,
		CriteriaFunnyFails:        r.funnyFails,
		CriteriaComebackCount:     r.comebackCount,
		CriteriaHolidayFail:       r.holidayFail,
		CriteriaNewYearFail:       r.newYearFail,
		CriteriaWeekendFails:      r.weekendFails,
		CriteriaPointsRank:        r.pointsRank,
		CriteriaFeatureExplorer:   r.featureExplorer,
		CriteriaBetaUser:          r.betaUser,
	}
	return r
}

// Evaluate runs the rule registered for criteriaType. Unknown types and
// rule errors both evaluate to false so one bad catalog row or one
// failing metric never blocks the rest of a pass.
func (r *RuleRegistry) Evaluate(ctx context.Context, userID int64, criteriaType string, criteriaValue int) bool {
	rule, ok := r.rules[criteriaType]
	if !ok {
		r.logger.Warn("No rule registered for criteria type",
			zap.String("criteria_type", criteriaType),
		)
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	met, err := rule(ctx, userID, criteriaValue)
	if err != nil {
		r.logger.Warn("Badge rule evaluation failed",
			zap.String("criteria_type", criteriaType),
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return false
	}
	return met
}

// ===============================
// COUNT RULES
// ===============================

// countRule adapts a plain counter into a "metric >= value" rule.
func (r *RuleRegistry) countRule(count func(context.Context, int64) (int, error)) ruleFunc {
	return func(ctx context.Context, userID int64, value int) (bool, error) {
		n, err := count(ctx, userID)
		if err != nil {
			return false, err
		}
		return n >= value, nil
	}
}

func (r *RuleRegistry) funnyFails(ctx context.Context, userID int64, value int) (bool, error) {
	perFail := int(r.thresholds.Thresholds(ctx).Value("funny_fails", "reactions_per_fail", 5))
	n, err := r.activity.CountFailsWithReactions(ctx, userID, "laugh", perFail)
	if err != nil {
		return false, err
	}
	return n >= value, nil
}

// ===============================
// DAY-SET RULES
// ===============================

func (r *RuleRegistry) loginDays(ctx context.Context, userID int64, value int) (bool, error) {
	days, err := r.activity.LoginDays(ctx, userID)
	if err != nil {
		return false, err
	}
	return len(days) >= value, nil
}

func (r *RuleRegistry) loginStreak(ctx context.Context, userID int64, value int) (bool, error) {
	days, err := r.activity.LoginDays(ctx, userID)
	if err != nil {
		return false, err
	}
	return LongestStreak(days) >= value, nil
}

func (r *RuleRegistry) failStreak(ctx context.Context, userID int64, value int) (bool, error) {
	days, err := r.activity.FailDays(ctx, userID)
	if err != nil {
		return false, err
	}
	return LongestStreak(days) >= value, nil
}

// ===============================
// GAP AND CALENDAR-WINDOW RULES
// ===============================

// comebackCount counts returns to posting after a silence longer than
// the configured gap.
func (r *RuleRegistry) comebackCount(ctx context.Context, userID int64, value int) (bool, error) {
	gapDays := r.thresholds.Thresholds(ctx).Value("comeback", "gap_days", 30)
	stamps, err := r.activity.FailTimestamps(ctx, userID)
	if err != nil {
		return false, err
	}
	gap := time.Duration(gapDays * float64(24*time.Hour))
	comebacks := 0
	for i := 1; i < len(stamps); i++ {
		if stamps[i].Sub(stamps[i-1]) > gap {
			comebacks++
		}
	}
	return comebacks >= value, nil
}

// holidayFail is satisfied by any post made on December 24 through 26,
// judged by the UTC calendar fields of the post time.
func (r *RuleRegistry) holidayFail(ctx context.Context, userID int64, _ int) (bool, error) {
	return r.anyFail(ctx, userID, func(t time.Time) bool {
		t = t.UTC()
		return t.Month() == time.December && t.Day() >= 24 && t.Day() <= 26
	})
}

// newYearFail is satisfied by any post made on January 1 UTC.
func (r *RuleRegistry) newYearFail(ctx context.Context, userID int64, _ int) (bool, error) {
	return r.anyFail(ctx, userID, func(t time.Time) bool {
		t = t.UTC()
		return t.Month() == time.January && t.Day() == 1
	})
}

func (r *RuleRegistry) weekendFails(ctx context.Context, userID int64, value int) (bool, error) {
	stamps, err := r.activity.FailTimestamps(ctx, userID)
	if err != nil {
		return false, err
	}
	n := 0
	for _, t := range stamps {
		switch t.UTC().Weekday() {
		case time.Saturday, time.Sunday:
			n++
		}
	}
	return n >= value, nil
}

func (r *RuleRegistry) anyFail(ctx context.Context, userID int64, match func(time.Time) bool) (bool, error) {
	stamps, err := r.activity.FailTimestamps(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, t := range stamps {
		if match(t) {
			return true, nil
		}
	}
	return false, nil
}

// ===============================
// RANK, PROBE AND TENURE RULES
// ===============================

// pointsRank is the one inverted comparison: a smaller rank is better,
// and rank 0 means unranked.
func (r *RuleRegistry) pointsRank(ctx context.Context, userID int64, value int) (bool, error) {
	rank, err := r.activity.PointsRank(ctx, userID)
	if err != nil {
		return false, err
	}
	return rank > 0 && rank <= value, nil
}

func (r *RuleRegistry) featureExplorer(ctx context.Context, userID int64, value int) (bool, error) {
	satisfied, total, err := r.activity.FeatureProbes(ctx, userID)
	if err != nil {
		return false, err
	}
	need := value
	if need > total {
		need = total
	}
	return satisfied >= need, nil
}

func (r *RuleRegistry) betaUser(ctx context.Context, userID int64, _ int) (bool, error) {
	createdAt, err := r.activity.AccountCreatedAt(ctx, userID)
	if err != nil {
		return false, err
	}
	return !createdAt.IsZero() && createdAt.Before(betaCutoff), nil
}
