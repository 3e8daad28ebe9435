// file: internal/repositories/interfaces.go
package repositories

import (
	"context"
	"failfeed/internal/models"
	"time"
)

// ===============================
// CORE REPOSITORY INTERFACES
// ===============================

// UserRepository defines the contract for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateLastSeen(ctx context.Context, userID int64) error
	SetPushToken(ctx context.Context, userID int64, token string) error

	// RecordLogin appends a login event, the raw material for login-day
	// and streak metrics.
	RecordLogin(ctx context.Context, userID int64) error
}

// FailRepository defines the contract for fail post operations
type FailRepository interface {
	Create(ctx context.Context, fail *models.Fail) error
	GetByID(ctx context.Context, id int64) (*models.Fail, error)
	List(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.Fail], error)
	GetByUserID(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Fail], error)
	Delete(ctx context.Context, id, userID int64) error

	// AddReaction is insert-or-ignore on (fail_id, user_id, kind);
	// returns true when a new reaction row was created.
	AddReaction(ctx context.Context, reaction *models.Reaction) (bool, error)
	RemoveReaction(ctx context.Context, failID, userID int64, kind string) error
	AddComment(ctx context.Context, comment *models.Comment) error
	GetComments(ctx context.Context, failID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Comment], error)
}

// BadgeRepository is the badge definition store plus the unlock ledger.
type BadgeRepository interface {
	// GetAllActive returns the active badge catalog. Catalog rows are
	// immutable from the engine's perspective.
	GetAllActive(ctx context.Context) ([]*models.Badge, error)

	// GetOwnedBadgeIDs returns the set of badge ids the user already earned.
	GetOwnedBadgeIDs(ctx context.Context, userID int64) (map[int64]bool, error)

	// InsertUserBadge records an unlock. The insert is a no-op when the
	// (user_id, badge_id) pair already exists; the boolean reports
	// whether this call created the row. That constraint is the only
	// concurrency control for awards.
	InsertUserBadge(ctx context.Context, userID, badgeID int64) (bool, error)

	// ListUserBadges returns the full catalog annotated with the user's
	// unlock state, for profile pages.
	ListUserBadges(ctx context.Context, userID int64) ([]*models.UserBadgeView, error)

	// GetSettings returns the raw threshold-override JSON blob, or nil
	// when no settings row exists.
	GetSettings(ctx context.Context) ([]byte, error)
}

// ActivityRepository translates raw activity tables into per-user
// metrics for badge rule evaluation. All methods are read-only and
// tolerate an entirely missing backing table by returning a neutral
// value (zero count, empty set) instead of an error.
type ActivityRepository interface {
	// Scalar counts
	CountFails(ctx context.Context, userID int64) (int, error)
	CountReactionsGiven(ctx context.Context, userID int64) (int, error)
	CountReactionsReceived(ctx context.Context, userID int64) (int, error) // net of self-reactions
	CountComments(ctx context.Context, userID int64) (int, error)
	CountDistinctCategories(ctx context.Context, userID int64) (int, error)
	CountDistinctCountries(ctx context.Context, userID int64) (int, error)

	// CountFailsWithReactions counts the user's fails that collected at
	// least minReactions reactions of the given kind from other users.
	CountFailsWithReactions(ctx context.Context, userID int64, kind string, minReactions int) (int, error)

	// Day sets: distinct UTC calendar days, deduplicated, ascending.
	LoginDays(ctx context.Context, userID int64) ([]time.Time, error)
	FailDays(ctx context.Context, userID int64) ([]time.Time, error)

	// FailTimestamps returns the user's fail creation times ascending,
	// for gap and calendar-window predicates.
	FailTimestamps(ctx context.Context, userID int64) ([]time.Time, error)

	// PointsRank returns the user's 1-based global rank by accumulated
	// points; 0 when the user has no activity.
	PointsRank(ctx context.Context, userID int64) (int, error)

	// FeatureProbes reports how many of the fixed "has ever done X"
	// probes the user satisfies, along with the probe count.
	FeatureProbes(ctx context.Context, userID int64) (satisfied, total int, err error)

	// AccountCreatedAt returns the user's registration time; the zero
	// time when the user is unknown.
	AccountCreatedAt(ctx context.Context, userID int64) (time.Time, error)
}

// NotificationRepository persists in-app notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Notification], error)
	MarkRead(ctx context.Context, notificationID, userID int64) error
}
