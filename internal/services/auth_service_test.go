package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"failfeed/internal/config"
)

func testAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BCryptCost: bcrypt.MinCost,
	}
}

func TestRegister(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, nil, testAuthConfig(), zap.NewNop())

	user, err := svc.Register(context.Background(), &RegisterRequest{
		Email:    "jane@example.com",
		Username: "jane",
		Password: "supersecret",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "jane", user.DisplayName, "display name defaults to the username")
	assert.Equal(t, "user", user.Role)
	assert.NotEqual(t, "supersecret", user.PasswordHash)
}

func TestRegisterValidation(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), nil, testAuthConfig(), zap.NewNop())
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterRequest{Email: "not-an-email", Username: "jane", Password: "supersecret"})
	assert.True(t, IsValidationError(err))

	_, err = svc.Register(ctx, &RegisterRequest{Email: "jane@example.com", Username: "jane", Password: "short"})
	assert.True(t, IsValidationError(err))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, nil, testAuthConfig(), zap.NewNop())
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterRequest{Email: "jane@example.com", Username: "jane", Password: "supersecret"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, &RegisterRequest{Email: "jane@example.com", Username: "other", Password: "supersecret"})
	serviceErr := GetServiceError(err)
	assert.Equal(t, "CONFLICT", serviceErr.Type)
	assert.Equal(t, "EMAIL_TAKEN", serviceErr.Code)
}

func TestLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, nil, testAuthConfig(), zap.NewNop())
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterRequest{Email: "jane@example.com", Username: "jane", Password: "supersecret"})
	require.NoError(t, err)

	result, err := svc.Login(ctx, &LoginRequest{Email: "jane@example.com", Password: "supersecret"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "jane", result.User.Username)
	assert.Equal(t, 1, repo.logins, "every successful login is recorded")
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, nil, testAuthConfig(), zap.NewNop())
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterRequest{Email: "jane@example.com", Username: "jane", Password: "supersecret"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &LoginRequest{Email: "jane@example.com", Password: "wrongpassword"})
	assert.Equal(t, "UNAUTHORIZED", GetServiceError(err).Type)
	assert.Equal(t, 0, repo.logins, "a failed login leaves no login event")
}

func TestLoginUnknownUser(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), nil, testAuthConfig(), zap.NewNop())

	_, err := svc.Login(context.Background(), &LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	assert.Equal(t, "UNAUTHORIZED", GetServiceError(err).Type)
}

func TestUpdateProfile(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, nil, testAuthConfig(), zap.NewNop())
	ctx := context.Background()

	user, err := svc.Register(ctx, &RegisterRequest{Email: "jane@example.com", Username: "jane", Password: "supersecret"})
	require.NoError(t, err)

	bio := "serial failer"
	country := "DE"
	updated, err := svc.UpdateProfile(ctx, user.ID, &UpdateProfileRequest{
		Bio:     &bio,
		Country: &country,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Bio)
	assert.Equal(t, "serial failer", *updated.Bio)
	require.NotNil(t, updated.Country)
	assert.Equal(t, "DE", *updated.Country)
	assert.Equal(t, "jane", updated.DisplayName, "untouched fields stay")
}
