package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"failfeed/internal/models"
	"failfeed/internal/repositories"
)

// Sender delivers a payload to a user's live connections. The push hub
// implements it; a nil Sender disables real-time delivery.
type Sender interface {
	Send(userID int64, payload any) error
}

type notificationService struct {
	repo   repositories.NotificationRepository
	sender Sender
	logger *zap.Logger
}

// NewNotificationService creates the notification service. sender may
// be nil.
func NewNotificationService(repo repositories.NotificationRepository, sender Sender, logger *zap.Logger) NotificationService {
	return &notificationService{
		repo:   repo,
		sender: sender,
		logger: logger,
	}
}

// Notify persists the notification and attempts best-effort real-time
// delivery. Only the persistence failure is returned; an unreachable
// client just reads the notification later.
func (s *notificationService) Notify(ctx context.Context, userID int64, req *NotificationRequest) error {
	n := &models.Notification{
		UserID:   userID,
		Type:     req.Type,
		Title:    req.Title,
		Body:     req.Body,
		Metadata: req.Metadata,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	s.deliver(userID, n)
	return nil
}

func (s *notificationService) List(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Notification], error) {
	page, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return page, nil
}

func (s *notificationService) MarkRead(ctx context.Context, notificationID, userID int64) error {
	err := s.repo.MarkRead(ctx, notificationID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return NewNotFoundError("notification not found")
	}
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// deliver pushes over the live channel with a couple of quick retries.
// Transient write hiccups recover; anything else is logged and dropped.
func (s *notificationService) deliver(userID int64, n *models.Notification) {
	if s.sender == nil {
		return
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 100 * time.Millisecond
	policy.MaxElapsedTime = 2 * time.Second

	err := backoff.Retry(func() error {
		return s.sender.Send(userID, n)
	}, policy)
	if err != nil {
		s.logger.Warn("Real-time notification delivery failed",
			zap.Int64("user_id", userID),
			zap.String("type", n.Type),
			zap.Error(err),
		)
	}
}
