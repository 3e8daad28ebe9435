package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"failfeed/internal/cache"
	"failfeed/internal/models"
	"failfeed/internal/repositories"
)

const badgeCatalogCacheKey = "badges:catalog"

type badgeService struct {
	badgeRepo repositories.BadgeRepository
	rules     RuleEvaluator
	notifier  NotificationService
	cache     cache.Cache
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// NewBadgeService creates the badge evaluation and award service.
// notifier may be nil, in which case unlocks are silent.
func NewBadgeService(
	badgeRepo repositories.BadgeRepository,
	rules RuleEvaluator,
	notifier NotificationService,
	c cache.Cache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) BadgeService {
	return &badgeService{
		badgeRepo: badgeRepo,
		rules:     rules,
		notifier:  notifier,
		cache:     c,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// UnlockEligibleBadges runs one full evaluation pass. Catalog and
// ownership lookups are the only fatal failures; everything past that
// point degrades per badge. Correctness under concurrent passes for the
// same user rests entirely on the unlock table's uniqueness constraint:
// both passes may find a badge eligible, both insert, the database
// keeps one row, and only the call whose insert created the row reports
// the badge as new.
func (s *badgeService) UnlockEligibleBadges(ctx context.Context, userID int64) ([]*models.Badge, error) {
	catalog, err := s.loadCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load badge catalog: %w", err)
	}

	owned, err := s.badgeRepo.GetOwnedBadgeIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load owned badges: %w", err)
	}

	var unlocked []*models.Badge
	for _, badge := range catalog {
		if owned[badge.ID] {
			continue
		}
		if !s.rules.Evaluate(ctx, userID, badge.CriteriaType, badge.CriteriaValue) {
			continue
		}

		inserted, err := s.badgeRepo.InsertUserBadge(ctx, userID, badge.ID)
		if err != nil {
			s.logger.Error("Failed to record badge unlock",
				zap.Int64("user_id", userID),
				zap.Int64("badge_id", badge.ID),
				zap.Error(err),
			)
			continue
		}
		if !inserted {
			// Lost the race to a concurrent pass; that pass reports it.
			continue
		}

		s.logger.Info("Badge unlocked",
			zap.Int64("user_id", userID),
			zap.Int64("badge_id", badge.ID),
			zap.String("badge_name", badge.Name),
		)
		s.notifyUnlock(ctx, userID, badge)
		unlocked = append(unlocked, badge)
	}
	return unlocked, nil
}

func (s *badgeService) ListUserBadges(ctx context.Context, userID int64) ([]*models.UserBadgeView, error) {
	views, err := s.badgeRepo.ListUserBadges(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user badges: %w", err)
	}
	return views, nil
}

// loadCatalog serves the active catalog from cache when possible. The
// catalog changes rarely; a short TTL keeps new badges discoverable
// without hitting the database on every evaluation pass.
func (s *badgeService) loadCatalog(ctx context.Context) ([]*models.Badge, error) {
	var catalog []*models.Badge
	if s.cache != nil && cache.GetJSON(ctx, s.cache, badgeCatalogCacheKey, &catalog) {
		return catalog, nil
	}

	catalog, err := s.badgeRepo.GetAllActive(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := cache.SetJSON(ctx, s.cache, badgeCatalogCacheKey, catalog, s.cacheTTL); err != nil {
			s.logger.Warn("Failed to cache badge catalog", zap.Error(err))
		}
	}
	return catalog, nil
}

// notifyUnlock sends the unlock notification. An award is already
// durable by the time this runs, so delivery problems are only logged.
func (s *badgeService) notifyUnlock(ctx context.Context, userID int64, badge *models.Badge) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.Notify(ctx, userID, &NotificationRequest{
		Type:  "badge_unlocked",
		Title: "New badge unlocked!",
		Body:  fmt.Sprintf("You earned the %q badge: %s", badge.Name, badge.Description),
		Metadata: map[string]any{
			"badge_id":   badge.ID,
			"badge_name": badge.Name,
			"badge_icon": badge.Icon,
		},
	})
	if err != nil {
		s.logger.Warn("Failed to send badge unlock notification",
			zap.Int64("user_id", userID),
			zap.Int64("badge_id", badge.ID),
			zap.Error(err),
		)
	}
}
