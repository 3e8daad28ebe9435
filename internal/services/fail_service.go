package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"failfeed/internal/events"
	"failfeed/internal/models"
	"failfeed/internal/repositories"
)

type failService struct {
	failRepo repositories.FailRepository
	userRepo repositories.UserRepository
	bus      *events.Bus
	validate *validator.Validate
	logger   *zap.Logger
}

// NewFailService creates the fail post service.
func NewFailService(
	failRepo repositories.FailRepository,
	userRepo repositories.UserRepository,
	bus *events.Bus,
	logger *zap.Logger,
) FailService {
	return &failService{
		failRepo: failRepo,
		userRepo: userRepo,
		bus:      bus,
		validate: validator.New(),
		logger:   logger,
	}
}

// CreateFail posts a new fail. The author's current country is stamped
// onto the post so travel metrics stay stable across profile edits.
func (s *failService) CreateFail(ctx context.Context, userID int64, req *CreateFailRequest) (*models.Fail, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("invalid fail data", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load author: %w", err)
	}
	if user == nil {
		return nil, NewNotFoundError("user not found")
	}

	fail := &models.Fail{
		UserID:      userID,
		Title:       req.Title,
		Content:     req.Content,
		Category:    req.Category,
		Country:     user.Country,
		IsAnonymous: req.IsAnonymous,
	}
	if err := s.failRepo.Create(ctx, fail); err != nil {
		return nil, fmt.Errorf("failed to create fail: %w", err)
	}

	s.publish(ctx, events.EventFailCreated, userID, map[string]any{
		"fail_id":  fail.ID,
		"category": fail.Category,
	})
	return fail, nil
}

func (s *failService) GetFail(ctx context.Context, id int64) (*models.Fail, error) {
	fail, err := s.failRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get fail: %w", err)
	}
	if fail == nil {
		return nil, NewNotFoundError("fail not found")
	}
	return fail, nil
}

func (s *failService) ListFails(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.Fail], error) {
	return s.failRepo.List(ctx, normalizePagination(params))
}

func (s *failService) ListUserFails(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Fail], error) {
	return s.failRepo.GetByUserID(ctx, userID, normalizePagination(params))
}

func (s *failService) DeleteFail(ctx context.Context, id, userID int64) error {
	err := s.failRepo.Delete(ctx, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return NewNotFoundError("fail not found")
	}
	if err != nil {
		return fmt.Errorf("failed to delete fail: %w", err)
	}
	return nil
}

// ReactToFail adds a reaction. Repeating the same reaction is a silent
// no-op and publishes no event, so badge metrics only ever see the
// first occurrence.
func (s *failService) ReactToFail(ctx context.Context, failID, userID int64, req *ReactionRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return NewValidationError("invalid reaction", err)
	}

	if _, err := s.GetFail(ctx, failID); err != nil {
		return err
	}

	inserted, err := s.failRepo.AddReaction(ctx, &models.Reaction{
		FailID: failID,
		UserID: userID,
		Kind:   req.Kind,
	})
	if err != nil {
		return fmt.Errorf("failed to add reaction: %w", err)
	}
	if inserted {
		s.publish(ctx, events.EventReactionGiven, userID, map[string]any{
			"fail_id": failID,
			"kind":    req.Kind,
		})
	}
	return nil
}

func (s *failService) RemoveReaction(ctx context.Context, failID, userID int64, kind string) error {
	err := s.failRepo.RemoveReaction(ctx, failID, userID, kind)
	if errors.Is(err, sql.ErrNoRows) {
		return NewNotFoundError("reaction not found")
	}
	if err != nil {
		return fmt.Errorf("failed to remove reaction: %w", err)
	}
	return nil
}

func (s *failService) AddComment(ctx context.Context, failID, userID int64, req *CommentRequest) (*models.Comment, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("invalid comment", err)
	}

	if _, err := s.GetFail(ctx, failID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		FailID:  failID,
		UserID:  userID,
		Content: req.Content,
	}
	if err := s.failRepo.AddComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	s.publish(ctx, events.EventCommentCreated, userID, map[string]any{
		"fail_id": failID,
	})
	return comment, nil
}

func (s *failService) GetComments(ctx context.Context, failID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Comment], error) {
	return s.failRepo.GetComments(ctx, failID, normalizePagination(params))
}

func (s *failService) publish(ctx context.Context, eventType string, userID int64, metadata map[string]any) {
	if s.bus == nil {
		return
	}
	_ = s.bus.Publish(ctx, events.NewEvent(eventType, userID, metadata))
}

func normalizePagination(params models.PaginationParams) models.PaginationParams {
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 20
	}
	if params.Offset < 0 {
		params.Offset = 0
	}
	return params
}
