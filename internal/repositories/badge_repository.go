// file: internal/repositories/badge_repository.go
package repositories

import (
	"context"
	"failfeed/internal/database"
	"failfeed/internal/models"
	"fmt"

	"go.uber.org/zap"
)

// badgeRepository implements BadgeRepository over the badges and
// user_badges tables.
type badgeRepository struct {
	*BaseRepository
}

// NewBadgeRepository creates a new badge repository.
func NewBadgeRepository(db *database.Manager, logger *zap.Logger) BadgeRepository {
	return &badgeRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// GetAllActive returns the active badge catalog.
func (r *badgeRepository) GetAllActive(ctx context.Context) ([]*models.Badge, error) {
	query := `
		SELECT id, name, description, icon, category, rarity,
			criteria_type, criteria_value, is_active, created_at
		FROM badges
		WHERE is_active = true
		ORDER BY id ASC`

	rows, err := r.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load badge catalog: %w", err)
	}
	defer rows.Close()

	var badges []*models.Badge
	for rows.Next() {
		var b models.Badge
		if err := rows.Scan(
			&b.ID, &b.Name, &b.Description, &b.Icon, &b.Category, &b.Rarity,
			&b.CriteriaType, &b.CriteriaValue, &b.IsActive, &b.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		badges = append(badges, &b)
	}
	return badges, rows.Err()
}

// GetOwnedBadgeIDs returns the set of badge ids already unlocked by the
// user.
func (r *badgeRepository) GetOwnedBadgeIDs(ctx context.Context, userID int64) (map[int64]bool, error) {
	rows, err := r.QueryContext(ctx,
		`SELECT badge_id FROM user_badges WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load owned badges: %w", err)
	}
	defer rows.Close()

	owned := make(map[int64]bool)
	for rows.Next() {
		var badgeID int64
		if err := rows.Scan(&badgeID); err != nil {
			return nil, fmt.Errorf("failed to scan owned badge id: %w", err)
		}
		owned[badgeID] = true
	}
	return owned, rows.Err()
}

// InsertUserBadge records an unlock. ON CONFLICT DO NOTHING makes a
// concurrent duplicate a silent no-op; RowsAffected tells the two cases
// apart so a racing caller does not report someone else's award.
func (r *badgeRepository) InsertUserBadge(ctx context.Context, userID, badgeID int64) (bool, error) {
	result, err := r.ExecContext(ctx,
		`INSERT INTO user_badges (user_id, badge_id)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, badge_id) DO NOTHING`,
		userID, badgeID)
	if err != nil {
		return false, fmt.Errorf("failed to insert user badge: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}
	return affected == 1, nil
}

// ListUserBadges returns the catalog annotated with the user's unlock
// state.
func (r *badgeRepository) ListUserBadges(ctx context.Context, userID int64) ([]*models.UserBadgeView, error) {
	query := `
		SELECT b.id, b.name, b.description, b.icon, b.category, b.rarity,
			b.criteria_type, b.criteria_value, b.is_active, b.created_at,
			ub.unlocked_at
		FROM badges b
		LEFT JOIN user_badges ub ON ub.badge_id = b.id AND ub.user_id = $1
		WHERE b.is_active = true
		ORDER BY ub.unlocked_at DESC NULLS LAST, b.id ASC`

	rows, err := r.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user badges: %w", err)
	}
	defer rows.Close()

	var views []*models.UserBadgeView
	for rows.Next() {
		var v models.UserBadgeView
		if err := rows.Scan(
			&v.ID, &v.Name, &v.Description, &v.Icon, &v.Category, &v.Rarity,
			&v.CriteriaType, &v.CriteriaValue, &v.IsActive, &v.CreatedAt,
			&v.UnlockedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user badge: %w", err)
		}
		v.Unlocked = v.UnlockedAt != nil
		views = append(views, &v)
	}
	return views, rows.Err()
}

// GetSettings returns the threshold-override JSON blob, nil when no
// settings row exists.
func (r *badgeRepository) GetSettings(ctx context.Context) ([]byte, error) {
	var raw []byte
	err := r.QueryRowContext(ctx,
		`SELECT settings FROM badge_settings ORDER BY id ASC LIMIT 1`).Scan(&raw)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		if r.IsUndefinedTable(err) {
			r.GetLogger().Warn("badge_settings table missing, using default thresholds")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load badge settings: %w", err)
	}
	return raw, nil
}
