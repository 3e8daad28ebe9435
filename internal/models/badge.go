package models

import "time"

// Badge represents an achievement badge that users can earn by reaching
// certain milestones or completing specific actions. Rows are created by
// administrators and never mutated by the unlock engine.
type Badge struct {
	ID            int64  `json:"id" db:"id"`
	Name          string `json:"name" db:"name"`
	Description   string `json:"description" db:"description"`
	Icon          string `json:"icon" db:"icon"`
	Category      string `json:"category" db:"category"`
	Rarity        string `json:"rarity" db:"rarity"`
	CriteriaType  string `json:"criteria_type" db:"criteria_type"`
	CriteriaValue int    `json:"criteria_value" db:"criteria_value"`
	IsActive      bool   `json:"is_active" db:"is_active"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// UserBadge is the unlock record joining a user to an earned badge.
// At most one row per (user_id, badge_id), enforced by a unique constraint;
// that constraint is the only concurrency control for awards.
type UserBadge struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"user_id" db:"user_id"`
	BadgeID    int64     `json:"badge_id" db:"badge_id"`
	UnlockedAt time.Time `json:"unlocked_at" db:"unlocked_at"`
}

// UserBadgeView combines a badge definition with its unlock state for
// profile pages.
type UserBadgeView struct {
	Badge
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}
