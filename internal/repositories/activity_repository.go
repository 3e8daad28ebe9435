// file: internal/repositories/activity_repository.go
package repositories

import (
	"context"
	"failfeed/internal/database"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// activityRepository implements ActivityRepository over the raw activity
// tables. It never writes, and every metric degrades to a neutral value
// when its backing table is missing, so a partially migrated schema can
// not break badge evaluation.
type activityRepository struct {
	*BaseRepository
}

// NewActivityRepository creates a new activity metrics repository.
func NewActivityRepository(db *database.Manager, logger *zap.Logger) ActivityRepository {
	return &activityRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// ===============================
// SCALAR COUNTS
// ===============================

func (r *activityRepository) CountFails(ctx context.Context, userID int64) (int, error) {
	return r.count(ctx, "fails",
		`SELECT COUNT(*) FROM fails WHERE user_id = $1`, userID)
}

func (r *activityRepository) CountReactionsGiven(ctx context.Context, userID int64) (int, error) {
	return r.count(ctx, "reactions",
		`SELECT COUNT(*) FROM reactions WHERE user_id = $1`, userID)
}

// CountReactionsReceived counts reactions on the user's fails, excluding
// the user's own reactions to their own posts.
func (r *activityRepository) CountReactionsReceived(ctx context.Context, userID int64) (int, error) {
	return r.count(ctx, "reactions",
		`SELECT COUNT(*)
		 FROM reactions r
		 JOIN fails f ON f.id = r.fail_id
		 WHERE f.user_id = $1 AND r.user_id <> $1`, userID)
}

func (r *activityRepository) CountComments(ctx context.Context, userID int64) (int, error) {
	return r.count(ctx, "comments",
		`SELECT COUNT(*) FROM comments WHERE user_id = $1`, userID)
}

func (r *activityRepository) CountDistinctCategories(ctx context.Context, userID int64) (int, error) {
	return r.count(ctx, "fails",
		`SELECT COUNT(DISTINCT category) FROM fails WHERE user_id = $1`, userID)
}

func (r *activityRepository) CountDistinctCountries(ctx context.Context, userID int64) (int, error) {
	return r.count(ctx, "fails",
		`SELECT COUNT(DISTINCT country) FROM fails WHERE user_id = $1 AND country IS NOT NULL`, userID)
}

func (r *activityRepository) CountFailsWithReactions(ctx context.Context, userID int64, kind string, minReactions int) (int, error) {
	return r.count(ctx, "reactions",
		`SELECT COUNT(*)
		 FROM (
			SELECT f.id
			FROM fails f
			JOIN reactions r ON r.fail_id = f.id AND r.user_id <> f.user_id
			WHERE f.user_id = $1 AND r.kind = $2
			GROUP BY f.id
			HAVING COUNT(*) >= $3
		 ) qualified`, userID, kind, minReactions)
}

// ===============================
// DAY SETS AND TIMESTAMPS
// ===============================

// LoginDays returns the user's distinct login days as UTC midnights,
// ascending.
func (r *activityRepository) LoginDays(ctx context.Context, userID int64) ([]time.Time, error) {
	return r.days(ctx, "login_events",
		`SELECT DISTINCT (created_at AT TIME ZONE 'UTC')::date AS day
		 FROM login_events
		 WHERE user_id = $1
		 ORDER BY day ASC`, userID)
}

// FailDays returns the user's distinct posting days as UTC midnights,
// ascending.
func (r *activityRepository) FailDays(ctx context.Context, userID int64) ([]time.Time, error) {
	return r.days(ctx, "fails",
		`SELECT DISTINCT (created_at AT TIME ZONE 'UTC')::date AS day
		 FROM fails
		 WHERE user_id = $1
		 ORDER BY day ASC`, userID)
}

// FailTimestamps returns the user's fail creation times ascending.
func (r *activityRepository) FailTimestamps(ctx context.Context, userID int64) ([]time.Time, error) {
	rows, err := r.QueryContext(ctx,
		`SELECT created_at FROM fails WHERE user_id = $1 ORDER BY created_at ASC`, userID)
	if err != nil {
		if r.IsUndefinedTable(err) {
			r.warnMissingTable("fails", "FailTimestamps")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load fail timestamps: %w", err)
	}
	defer rows.Close()

	var stamps []time.Time
	for rows.Next() {
		var ts time.Time
		if err := rows.Scan(&ts); err != nil {
			return nil, fmt.Errorf("failed to scan fail timestamp: %w", err)
		}
		stamps = append(stamps, ts.UTC())
	}
	return stamps, rows.Err()
}

// ===============================
// RELATIVE AND COVERAGE METRICS
// ===============================

// PointsRank ranks users by accumulated points: 10 per fail posted,
// 2 per comment written, 1 per reaction received from someone else.
func (r *activityRepository) PointsRank(ctx context.Context, userID int64) (int, error) {
	query := `
		WITH points AS (
			SELECT u.id AS user_id,
				COALESCE(f.cnt, 0) * 10 + COALESCE(c.cnt, 0) * 2 + COALESCE(rr.cnt, 0) AS total
			FROM users u
			LEFT JOIN (SELECT user_id, COUNT(*) AS cnt FROM fails GROUP BY user_id) f ON f.user_id = u.id
			LEFT JOIN (SELECT user_id, COUNT(*) AS cnt FROM comments GROUP BY user_id) c ON c.user_id = u.id
			LEFT JOIN (
				SELECT f.user_id, COUNT(*) AS cnt
				FROM reactions r
				JOIN fails f ON f.id = r.fail_id
				WHERE r.user_id <> f.user_id
				GROUP BY f.user_id
			) rr ON rr.user_id = u.id
		),
		ranked AS (
			SELECT user_id, RANK() OVER (ORDER BY total DESC) AS position, total
			FROM points
		)
		SELECT position, total FROM ranked WHERE user_id = $1`

	var position, total int
	err := r.QueryRowContext(ctx, query, userID).Scan(&position, &total)
	if err != nil {
		if r.IsNotFound(err) {
			return 0, nil
		}
		if r.IsUndefinedTable(err) {
			r.warnMissingTable("users/fails/comments/reactions", "PointsRank")
			return 0, nil
		}
		return 0, fmt.Errorf("failed to compute points rank: %w", err)
	}

	// A user with zero points shares the bottom rank with every other
	// inactive user; treat that as unranked.
	if total == 0 {
		return 0, nil
	}
	return position, nil
}

// FeatureProbes runs the fixed "has the user ever done X" checks.
func (r *activityRepository) FeatureProbes(ctx context.Context, userID int64) (int, int, error) {
	query := `
		SELECT
			EXISTS(SELECT 1 FROM fails WHERE user_id = $1),
			EXISTS(SELECT 1 FROM reactions WHERE user_id = $1),
			EXISTS(SELECT 1 FROM comments WHERE user_id = $1),
			COALESCE((SELECT avatar_url IS NOT NULL FROM users WHERE id = $1), false),
			COALESCE((SELECT bio IS NOT NULL AND bio <> '' FROM users WHERE id = $1), false),
			COALESCE((SELECT push_token IS NOT NULL FROM users WHERE id = $1), false)`

	probes := make([]bool, 6)
	err := r.QueryRowContext(ctx, query, userID).Scan(
		&probes[0], &probes[1], &probes[2], &probes[3], &probes[4], &probes[5],
	)
	if err != nil {
		if r.IsUndefinedTable(err) {
			r.warnMissingTable("users/fails/reactions/comments", "FeatureProbes")
			return 0, len(probes), nil
		}
		return 0, len(probes), fmt.Errorf("failed to run feature probes: %w", err)
	}

	satisfied := 0
	for _, ok := range probes {
		if ok {
			satisfied++
		}
	}
	return satisfied, len(probes), nil
}

func (r *activityRepository) AccountCreatedAt(ctx context.Context, userID int64) (time.Time, error) {
	var createdAt time.Time
	err := r.QueryRowContext(ctx,
		`SELECT created_at FROM users WHERE id = $1`, userID).Scan(&createdAt)
	if err != nil {
		if r.IsNotFound(err) {
			return time.Time{}, nil
		}
		if r.IsUndefinedTable(err) {
			r.warnMissingTable("users", "AccountCreatedAt")
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("failed to load account creation time: %w", err)
	}
	return createdAt.UTC(), nil
}

// ===============================
// HELPERS
// ===============================

// count runs a single-scalar count query, degrading to zero when the
// backing table is absent.
func (r *activityRepository) count(ctx context.Context, table, query string, args ...interface{}) (int, error) {
	var n int
	err := r.QueryRowContext(ctx, query, args...).Scan(&n)
	if err != nil {
		if r.IsUndefinedTable(err) {
			r.warnMissingTable(table, "count")
			return 0, nil
		}
		return 0, fmt.Errorf("failed to count %s activity: %w", table, err)
	}
	return n, nil
}

// days runs a distinct-day query, degrading to an empty set when the
// backing table is absent. Rows arrive as dates, so days are already
// deduplicated and day-granular; they are returned as UTC midnights.
func (r *activityRepository) days(ctx context.Context, table, query string, args ...interface{}) ([]time.Time, error) {
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		if r.IsUndefinedTable(err) {
			r.warnMissingTable(table, "days")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load %s days: %w", table, err)
	}
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("failed to scan %s day: %w", table, err)
		}
		days = append(days, time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC))
	}
	return days, rows.Err()
}

func (r *activityRepository) warnMissingTable(table, metric string) {
	r.GetLogger().Warn("Activity table missing, treating metric as empty",
		zap.String("table", table),
		zap.String("metric", metric),
	)
}
