package services

import (
	"context"

	"go.uber.org/zap"

	"failfeed/internal/cache"
	"failfeed/internal/config"
	"failfeed/internal/database"
	"failfeed/internal/events"
	"failfeed/internal/push"
	"failfeed/internal/repositories"
)

// ServiceCollection wires repositories, the event bus and services into
// one dependency graph.
type ServiceCollection struct {
	Auth          AuthService
	Fails         FailService
	Badges        BadgeService
	Notifications NotificationService

	Bus *events.Bus
	Hub *push.Hub

	logger *zap.Logger
}

// NewServiceCollection builds the full service graph. The badge engine
// subscribes to every activity event, so any fail, reaction, comment or
// login can trigger an evaluation pass for the acting user.
func NewServiceCollection(
	db *database.Manager,
	c cache.Cache,
	cfg *config.Config,
	logger *zap.Logger,
) *ServiceCollection {
	userRepo := repositories.NewUserRepository(db, logger)
	failRepo := repositories.NewFailRepository(db, logger)
	badgeRepo := repositories.NewBadgeRepository(db, logger)
	activityRepo := repositories.NewActivityRepository(db, logger)
	notificationRepo := repositories.NewNotificationRepository(db, logger)

	bus := events.NewBus(events.DefaultBusConfig(), logger)
	hub := push.NewHub(logger)

	notifications := NewNotificationService(notificationRepo, hub, logger)

	thresholds := NewThresholdProvider(badgeRepo, logger)
	rules := NewRuleRegistry(activityRepo, thresholds, cfg.Badges.RuleTimeout, logger)
	badges := NewBadgeService(badgeRepo, rules, notifications, c, cfg.Badges.CatalogCacheTTL, logger)

	sc := &ServiceCollection{
		Auth:          NewAuthService(userRepo, bus, &cfg.Auth, logger),
		Fails:         NewFailService(failRepo, userRepo, bus, logger),
		Badges:        badges,
		Notifications: notifications,
		Bus:           bus,
		Hub:           hub,
		logger:        logger,
	}
	sc.subscribeBadgeEngine()
	return sc
}

// subscribeBadgeEngine hooks badge evaluation to the activity events.
// The handler only logs; evaluation failures never surface to the
// request that produced the event.
func (sc *ServiceCollection) subscribeBadgeEngine() {
	handler := events.HandlerFunc{
		ID: "badge-engine",
		Func: func(ctx context.Context, event events.Event) error {
			unlocked, err := sc.Badges.UnlockEligibleBadges(ctx, event.GetUserID())
			if err != nil {
				return err
			}
			if len(unlocked) > 0 {
				sc.logger.Info("Badge evaluation pass unlocked badges",
					zap.Int64("user_id", event.GetUserID()),
					zap.String("trigger", event.GetEventType()),
					zap.Int("count", len(unlocked)),
				)
			}
			return nil
		},
	}

	for _, eventType := range []string{
		events.EventFailCreated,
		events.EventReactionGiven,
		events.EventCommentCreated,
		events.EventUserLoggedIn,
	} {
		sc.Bus.Subscribe(eventType, handler)
	}
}

// Shutdown stops the event bus and closes live connections.
func (sc *ServiceCollection) Shutdown(ctx context.Context) error {
	sc.Hub.Close()
	return sc.Bus.Stop(ctx)
}
