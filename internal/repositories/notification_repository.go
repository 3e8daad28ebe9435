// file: internal/repositories/notification_repository.go
package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"failfeed/internal/database"
	"failfeed/internal/models"
	"fmt"

	"go.uber.org/zap"
)

// notificationRepository implements NotificationRepository.
type notificationRepository struct {
	*BaseRepository
}

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(db *database.Manager, logger *zap.Logger) NotificationRepository {
	return &notificationRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Create inserts a notification.
func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	var metadata []byte
	if n.Metadata != nil {
		var err error
		metadata, err = json.Marshal(n.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal notification metadata: %w", err)
		}
	}

	err := r.QueryRowContext(ctx,
		`INSERT INTO notifications (user_id, type, title, body, metadata)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		n.UserID, n.Type, n.Title, n.Body, metadata,
	).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListByUser returns a user's notifications, newest first.
func (r *notificationRepository) ListByUser(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Notification], error) {
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 20
	}

	rows, err := r.QueryContext(ctx,
		`SELECT id, user_id, type, title, body, metadata, is_read, created_at
		 FROM notifications
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		var n models.Notification
		var metadata []byte
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body, &metadata, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &n.Metadata); err != nil {
				r.GetLogger().Warn("Malformed notification metadata",
					zap.Int64("notification_id", n.ID), zap.Error(err))
			}
		}
		notifications = append(notifications, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var total int64
	if err := r.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	return &models.PaginatedResponse[*models.Notification]{
		Data:       notifications,
		TotalItems: total,
		Limit:      params.Limit,
		Offset:     params.Offset,
		HasMore:    int64(params.Offset+len(notifications)) < total,
	}, nil
}

// MarkRead flags a notification as read.
func (r *notificationRepository) MarkRead(ctx context.Context, notificationID, userID int64) error {
	result, err := r.ExecContext(ctx,
		`UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2`,
		notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
