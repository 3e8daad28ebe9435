// file: internal/repositories/fail_repository.go
package repositories

import (
	"context"
	"database/sql"
	"failfeed/internal/database"
	"failfeed/internal/models"
	"fmt"

	"go.uber.org/zap"
)

// failRepository implements FailRepository.
type failRepository struct {
	*BaseRepository
}

// NewFailRepository creates a new fail repository.
func NewFailRepository(db *database.Manager, logger *zap.Logger) FailRepository {
	return &failRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Create inserts a new fail.
func (r *failRepository) Create(ctx context.Context, fail *models.Fail) error {
	query := `
		INSERT INTO fails (user_id, title, content, category, country, is_anonymous)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.QueryRowContext(ctx, query,
		fail.UserID, fail.Title, fail.Content, fail.Category,
		fail.Country, fail.IsAnonymous,
	).Scan(&fail.ID, &fail.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create fail: %w", err)
	}

	r.GetLogger().Info("Fail created",
		zap.Int64("fail_id", fail.ID),
		zap.Int64("user_id", fail.UserID),
		zap.String("category", fail.Category),
	)
	return nil
}

// GetByID retrieves a fail with its author and engagement counts.
func (r *failRepository) GetByID(ctx context.Context, id int64) (*models.Fail, error) {
	query := `
		SELECT f.id, f.user_id, f.title, f.content, f.category, f.country,
			f.is_anonymous, f.created_at, f.updated_at,
			u.username,
			(SELECT COUNT(*) FROM reactions WHERE fail_id = f.id) AS reaction_count,
			(SELECT COUNT(*) FROM comments WHERE fail_id = f.id) AS comment_count
		FROM fails f
		JOIN users u ON u.id = f.user_id
		WHERE f.id = $1`

	var f models.Fail
	err := r.QueryRowContext(ctx, query, id).Scan(
		&f.ID, &f.UserID, &f.Title, &f.Content, &f.Category, &f.Country,
		&f.IsAnonymous, &f.CreatedAt, &f.UpdatedAt,
		&f.Username, &f.ReactionCount, &f.CommentCount,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get fail by ID: %w", err)
	}

	if f.IsAnonymous {
		f.Username = ""
	}
	return &f, nil
}

// List returns the newest fails, paginated.
func (r *failRepository) List(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.Fail], error) {
	return r.list(ctx, "", nil, params)
}

// GetByUserID returns one user's fails, paginated.
func (r *failRepository) GetByUserID(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Fail], error) {
	return r.list(ctx, "WHERE f.user_id = $3", []interface{}{userID}, params)
}

func (r *failRepository) list(ctx context.Context, where string, extraArgs []interface{}, params models.PaginationParams) (*models.PaginatedResponse[*models.Fail], error) {
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 20
	}

	query := fmt.Sprintf(`
		SELECT f.id, f.user_id, f.title, f.content, f.category, f.country,
			f.is_anonymous, f.created_at, f.updated_at,
			u.username,
			(SELECT COUNT(*) FROM reactions WHERE fail_id = f.id) AS reaction_count,
			(SELECT COUNT(*) FROM comments WHERE fail_id = f.id) AS comment_count
		FROM fails f
		JOIN users u ON u.id = f.user_id
		%s
		ORDER BY f.created_at DESC
		LIMIT $1 OFFSET $2`, where)

	args := append([]interface{}{params.Limit, params.Offset}, extraArgs...)
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list fails: %w", err)
	}
	defer rows.Close()

	var fails []*models.Fail
	for rows.Next() {
		var f models.Fail
		if err := rows.Scan(
			&f.ID, &f.UserID, &f.Title, &f.Content, &f.Category, &f.Country,
			&f.IsAnonymous, &f.CreatedAt, &f.UpdatedAt,
			&f.Username, &f.ReactionCount, &f.CommentCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan fail: %w", err)
		}
		if f.IsAnonymous {
			f.Username = ""
		}
		fails = append(fails, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	countQuery := "SELECT COUNT(*) FROM fails f"
	var countArgs []interface{}
	if where != "" {
		countQuery += " WHERE f.user_id = $1"
		countArgs = extraArgs
	}
	var total int64
	if err := r.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count fails: %w", err)
	}

	return &models.PaginatedResponse[*models.Fail]{
		Data:       fails,
		TotalItems: total,
		Limit:      params.Limit,
		Offset:     params.Offset,
		HasMore:    int64(params.Offset+len(fails)) < total,
	}, nil
}

// Delete removes a fail owned by the user.
func (r *failRepository) Delete(ctx context.Context, id, userID int64) error {
	result, err := r.ExecContext(ctx,
		`DELETE FROM fails WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete fail: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AddReaction is insert-or-ignore on (fail_id, user_id, kind).
func (r *failRepository) AddReaction(ctx context.Context, reaction *models.Reaction) (bool, error) {
	result, err := r.ExecContext(ctx,
		`INSERT INTO reactions (fail_id, user_id, kind)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (fail_id, user_id, kind) DO NOTHING`,
		reaction.FailID, reaction.UserID, reaction.Kind)
	if err != nil {
		return false, fmt.Errorf("failed to add reaction: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read reaction insert result: %w", err)
	}
	return affected == 1, nil
}

// RemoveReaction deletes a reaction.
func (r *failRepository) RemoveReaction(ctx context.Context, failID, userID int64, kind string) error {
	result, err := r.ExecContext(ctx,
		`DELETE FROM reactions WHERE fail_id = $1 AND user_id = $2 AND kind = $3`,
		failID, userID, kind)
	if err != nil {
		return fmt.Errorf("failed to remove reaction: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AddComment inserts a comment.
func (r *failRepository) AddComment(ctx context.Context, comment *models.Comment) error {
	err := r.QueryRowContext(ctx,
		`INSERT INTO comments (fail_id, user_id, content)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		comment.FailID, comment.UserID, comment.Content,
	).Scan(&comment.ID, &comment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add comment: %w", err)
	}
	return nil
}

// GetComments returns a fail's comments, oldest first.
func (r *failRepository) GetComments(ctx context.Context, failID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Comment], error) {
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 50
	}

	rows, err := r.QueryContext(ctx,
		`SELECT c.id, c.fail_id, c.user_id, c.content, c.created_at, c.updated_at, u.username
		 FROM comments c
		 JOIN users u ON u.id = c.user_id
		 WHERE c.fail_id = $1
		 ORDER BY c.created_at ASC
		 LIMIT $2 OFFSET $3`,
		failID, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.FailID, &c.UserID, &c.Content, &c.CreatedAt, &c.UpdatedAt, &c.Username); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var total int64
	if err := r.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comments WHERE fail_id = $1`, failID).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}

	return &models.PaginatedResponse[*models.Comment]{
		Data:       comments,
		TotalItems: total,
		Limit:      params.Limit,
		Offset:     params.Offset,
		HasMore:    int64(params.Offset+len(comments)) < total,
	}, nil
}
