// file: internal/models/models.go
package models

import (
	"time"
)

// ===============================
// CORE ENTITIES
// ===============================

// User represents a failfeed member.
type User struct {
	// Primary fields
	ID       int64  `json:"id" db:"id"`
	Email    string `json:"email" db:"email" validate:"required,email,max=320"`
	Username string `json:"username" db:"username" validate:"required,min=3,max=50,alphanum"`

	// Authentication
	PasswordHash string `json:"-" db:"password_hash"`
	IsActive     bool   `json:"is_active" db:"is_active"`

	// Profile information
	DisplayName string  `json:"display_name" db:"display_name"`
	Bio         *string `json:"bio,omitempty" db:"bio" validate:"omitempty,max=1000"`
	AvatarURL   *string `json:"avatar_url,omitempty" db:"avatar_url" validate:"omitempty,url"`
	Country     *string `json:"country,omitempty" db:"country" validate:"omitempty,len=2"` // ISO 3166-1 alpha-2

	// Push registration
	PushToken *string `json:"-" db:"push_token"`

	// System fields
	Role string `json:"role" db:"role" validate:"required,oneof=user moderator admin"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	LastSeen  time.Time `json:"last_seen" db:"last_seen"`

	// Computed/joined fields (not in DB)
	Points     int `json:"points,omitempty" db:"-"`
	FailsCount int `json:"fails_count,omitempty" db:"-"`
	BadgeCount int `json:"badge_count,omitempty" db:"-"`
}

// Fail represents a shared failure story.
type Fail struct {
	ID       int64  `json:"id" db:"id"`
	UserID   int64  `json:"user_id" db:"user_id"`
	Title    string `json:"title" db:"title" validate:"required,max=200"`
	Content  string `json:"content" db:"content" validate:"required,max=5000"`
	Category string `json:"category" db:"category" validate:"required,max=50"`

	// Country is copied from the author's profile at posting time so
	// travel metrics survive later profile edits.
	Country     *string `json:"country,omitempty" db:"country"`
	IsAnonymous bool    `json:"is_anonymous" db:"is_anonymous"`

	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" db:"updated_at"`

	// Computed fields (not in DB)
	Username      string         `json:"username,omitempty" db:"-"`
	ReactionCount int            `json:"reaction_count,omitempty" db:"-"`
	CommentCount  int            `json:"comment_count,omitempty" db:"-"`
	Reactions     map[string]int `json:"reactions,omitempty" db:"-"`
}

// Reaction represents a reaction to a fail. One reaction per
// (fail, user, kind) triple, enforced by a unique constraint.
type Reaction struct {
	ID        int64     `json:"id" db:"id"`
	FailID    int64     `json:"fail_id" db:"fail_id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Kind      string    `json:"kind" db:"kind" validate:"required,oneof=laugh cry hug been_there respect"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Comment represents a comment on a fail.
type Comment struct {
	ID        int64      `json:"id" db:"id"`
	FailID    int64      `json:"fail_id" db:"fail_id"`
	UserID    int64      `json:"user_id" db:"user_id"`
	Content   string     `json:"content" db:"content" validate:"required,max=2000"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" db:"updated_at"`

	// Computed fields (not in DB)
	Username string `json:"username,omitempty" db:"-"`
}

// LoginEvent records a single authenticated login, the raw material for
// login-day and streak metrics.
type LoginEvent struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Notification represents an in-app notification.
type Notification struct {
	ID        int64          `json:"id" db:"id"`
	UserID    int64          `json:"user_id" db:"user_id"`
	Type      string         `json:"type" db:"type"`
	Title     string         `json:"title" db:"title"`
	Body      string         `json:"body" db:"body"`
	Metadata  map[string]any `json:"metadata,omitempty" db:"-"`
	IsRead    bool           `json:"is_read" db:"is_read"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

// ===============================
// PAGINATION
// ===============================

// PaginationParams holds common listing parameters.
type PaginationParams struct {
	Limit  int `json:"limit" validate:"min=0,max=100"`
	Offset int `json:"offset" validate:"min=0"`
}

// PaginatedResponse wraps a page of results with metadata.
type PaginatedResponse[T any] struct {
	Data       []T   `json:"data"`
	TotalItems int64 `json:"total_items"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	HasMore    bool  `json:"has_more"`
}
