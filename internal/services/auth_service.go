package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"failfeed/internal/config"
	"failfeed/internal/events"
	"failfeed/internal/models"
	"failfeed/internal/repositories"
)

type authService struct {
	userRepo repositories.UserRepository
	bus      *events.Bus
	cfg      *config.AuthConfig
	validate *validator.Validate
	logger   *zap.Logger
}

// NewAuthService creates the authentication service.
func NewAuthService(userRepo repositories.UserRepository, bus *events.Bus, cfg *config.AuthConfig, logger *zap.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		bus:      bus,
		cfg:      cfg,
		validate: validator.New(),
		logger:   logger,
	}
}

// Register creates a new account.
func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("invalid registration data", err)
	}

	if existing, err := s.userRepo.GetByEmail(ctx, req.Email); err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	} else if existing != nil {
		return nil, NewConflictError("email already registered", "EMAIL_TAKEN")
	}
	if existing, err := s.userRepo.GetByUsername(ctx, req.Username); err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	} else if existing != nil {
		return nil, NewConflictError("username already taken", "USERNAME_TAKEN")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BCryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = req.Username
	}

	user := &models.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		Country:      req.Country,
		Role:         "user",
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login authenticates and issues a signed token. Every successful login
// is also recorded as a login event, which feeds the login-day and
// streak metrics.
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*LoginResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("invalid login data", err)
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, NewUnauthorizedError("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, NewUnauthorizedError("invalid credentials")
	}

	// The login event is activity data, not part of the auth contract;
	// a failed insert degrades metrics but never blocks the login.
	if err := s.userRepo.RecordLogin(ctx, user.ID); err != nil {
		s.logger.Warn("Failed to record login event",
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)
	}
	if err := s.userRepo.UpdateLastSeen(ctx, user.ID); err != nil {
		s.logger.Warn("Failed to update last seen",
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)
	}

	token, err := s.signToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	if s.bus != nil {
		_ = s.bus.Publish(ctx, events.NewEvent(events.EventUserLoggedIn, user.ID, nil))
	}

	return &LoginResult{Token: token, User: user}, nil
}

// GetUser fetches a user by id.
func (s *authService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, NewNotFoundError("user not found")
	}
	return user, nil
}

// UpdateProfile applies partial profile edits.
func (s *authService) UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*models.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("invalid profile data", err)
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if req.Bio != nil {
		user.Bio = req.Bio
	}
	if req.AvatarURL != nil {
		user.AvatarURL = req.AvatarURL
	}
	if req.Country != nil {
		user.Country = req.Country
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	if req.PushToken != nil {
		if err := s.userRepo.SetPushToken(ctx, userID, *req.PushToken); err != nil {
			return nil, fmt.Errorf("failed to set push token: %w", err)
		}
		user.PushToken = req.PushToken
	}
	return user, nil
}

func (s *authService) signToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(user.ID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
