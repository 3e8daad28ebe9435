package services

import (
	"context"

	"failfeed/internal/models"
)

// ===============================
// SERVICE INTERFACES
// ===============================

// AuthService handles registration and login.
type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *LoginRequest) (*LoginResult, error)
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*models.User, error)
}

// FailService handles fail posts, reactions and comments.
type FailService interface {
	CreateFail(ctx context.Context, userID int64, req *CreateFailRequest) (*models.Fail, error)
	GetFail(ctx context.Context, id int64) (*models.Fail, error)
	ListFails(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.Fail], error)
	ListUserFails(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Fail], error)
	DeleteFail(ctx context.Context, id, userID int64) error
	ReactToFail(ctx context.Context, failID, userID int64, req *ReactionRequest) error
	RemoveReaction(ctx context.Context, failID, userID int64, kind string) error
	AddComment(ctx context.Context, failID, userID int64, req *CommentRequest) (*models.Comment, error)
	GetComments(ctx context.Context, failID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Comment], error)
}

// BadgeService evaluates badge criteria and records unlocks.
type BadgeService interface {
	// UnlockEligibleBadges evaluates every unowned active badge for the
	// user and returns the badges newly unlocked by this call. Badges
	// already owned, or awarded concurrently by another call, are not
	// returned.
	UnlockEligibleBadges(ctx context.Context, userID int64) ([]*models.Badge, error)

	// ListUserBadges returns the catalog annotated with the user's
	// unlock state.
	ListUserBadges(ctx context.Context, userID int64) ([]*models.UserBadgeView, error)
}

// NotificationService persists and delivers notifications.
type NotificationService interface {
	// Notify stores the notification and attempts real-time delivery.
	// Delivery failures are logged, not returned; persistence failures
	// are returned.
	Notify(ctx context.Context, userID int64, req *NotificationRequest) error
	List(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Notification], error)
	MarkRead(ctx context.Context, notificationID, userID int64) error
}

// ===============================
// REQUEST / RESULT TYPES
// ===============================

// RegisterRequest is the payload for account creation.
type RegisterRequest struct {
	Email       string  `json:"email" validate:"required,email,max=320"`
	Username    string  `json:"username" validate:"required,min=3,max=50,alphanum"`
	Password    string  `json:"password" validate:"required,min=8,max=128"`
	DisplayName string  `json:"display_name" validate:"omitempty,max=100"`
	Country     *string `json:"country" validate:"omitempty,iso3166_1_alpha2"`
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult carries a signed token and the authenticated user.
type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// UpdateProfileRequest is the payload for profile edits.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name" validate:"omitempty,max=100"`
	Bio         *string `json:"bio" validate:"omitempty,max=1000"`
	AvatarURL   *string `json:"avatar_url" validate:"omitempty,url"`
	Country     *string `json:"country" validate:"omitempty,iso3166_1_alpha2"`
	PushToken   *string `json:"push_token" validate:"omitempty,max=512"`
}

// CreateFailRequest is the payload for posting a fail.
type CreateFailRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Content     string `json:"content" validate:"required,min=10,max=5000"`
	Category    string `json:"category" validate:"required,oneof=work love school money social tech family health other"`
	IsAnonymous bool   `json:"is_anonymous"`
}

// ReactionRequest is the payload for reacting to a fail.
type ReactionRequest struct {
	Kind string `json:"kind" validate:"required,oneof=laugh cry hug been_there respect"`
}

// CommentRequest is the payload for commenting on a fail.
type CommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

// NotificationRequest describes a notification to deliver.
type NotificationRequest struct {
	Type     string         `json:"type"`
	Title    string         `json:"title"`
	Body     string         `json:"body"`
	Metadata map[string]any `json:"metadata,omitempty"`
}
