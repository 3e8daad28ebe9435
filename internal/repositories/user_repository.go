// file: internal/repositories/user_repository.go
package repositories

import (
	"context"
	"failfeed/internal/database"
	"failfeed/internal/models"
	"fmt"

	"go.uber.org/zap"
)

// userRepository implements UserRepository.
type userRepository struct {
	*BaseRepository
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *database.Manager, logger *zap.Logger) UserRepository {
	return &userRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const userColumns = `
	u.id, u.email, u.username, u.password_hash, u.is_active,
	u.display_name, u.bio, u.avatar_url, u.country, u.push_token,
	u.role, u.created_at, u.updated_at, u.last_seen`

func scanUser(scanner interface{ Scan(...interface{}) error }) (*models.User, error) {
	var user models.User
	err := scanner.Scan(
		&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.IsActive,
		&user.DisplayName, &user.Bio, &user.AvatarURL, &user.Country, &user.PushToken,
		&user.Role, &user.CreatedAt, &user.UpdatedAt, &user.LastSeen,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a new user.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, username, password_hash, display_name, bio, country)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at, last_seen, role, is_active`

	err := r.QueryRowContext(ctx, query,
		user.Email, user.Username, user.PasswordHash,
		user.DisplayName, user.Bio, user.Country,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt, &user.LastSeen, &user.Role, &user.IsActive)
	if err != nil {
		if r.IsUniqueViolation(err) {
			return fmt.Errorf("user already exists: %w", err)
		}
		r.GetLogger().Error("Failed to create user",
			zap.Error(err),
			zap.String("username", user.Username),
		)
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.GetLogger().Info("User created",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username),
	)
	return nil
}

// GetByID retrieves an active user by id.
func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := scanUser(r.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users u WHERE u.id = $1 AND u.is_active = true`, id))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

// GetByUsername retrieves an active user by username.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := scanUser(r.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users u WHERE u.username = $1 AND u.is_active = true`, username))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves an active user by email.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(r.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users u WHERE u.email = $1 AND u.is_active = true`, email))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// Update persists profile fields.
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	_, err := r.ExecContext(ctx,
		`UPDATE users SET
			display_name = $2, bio = $3, avatar_url = $4, country = $5,
			updated_at = NOW()
		 WHERE id = $1`,
		user.ID, user.DisplayName, user.Bio, user.AvatarURL, user.Country)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// UpdateLastSeen bumps the last-seen timestamp.
func (r *userRepository) UpdateLastSeen(ctx context.Context, userID int64) error {
	_, err := r.ExecContext(ctx,
		`UPDATE users SET last_seen = NOW() WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to update last seen: %w", err)
	}
	return nil
}

// SetPushToken stores the user's push registration token.
func (r *userRepository) SetPushToken(ctx context.Context, userID int64, token string) error {
	_, err := r.ExecContext(ctx,
		`UPDATE users SET push_token = $2, updated_at = NOW() WHERE id = $1`, userID, token)
	if err != nil {
		return fmt.Errorf("failed to set push token: %w", err)
	}
	return nil
}

// RecordLogin appends a login event.
func (r *userRepository) RecordLogin(ctx context.Context, userID int64) error {
	_, err := r.ExecContext(ctx,
		`INSERT INTO login_events (user_id) VALUES ($1)`, userID)
	if err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}
	return nil
}
