// Package router assembles the HTTP routing tree.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"failfeed/internal/cache"
	"failfeed/internal/config"
	"failfeed/internal/database"
	v1 "failfeed/internal/handlers/api/v1"
	"failfeed/internal/middleware"
	"failfeed/internal/response"
	"failfeed/internal/services"
)

// New builds the router with all routes and middleware wired.
func New(
	sc *services.ServiceCollection,
	db *database.Manager,
	c cache.Cache,
	cfg *config.Config,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Get("/health", healthHandler(db, c))

	authHandler := v1.NewAuthHandler(sc.Auth, logger)
	failHandler := v1.NewFailHandler(sc.Fails, logger)
	badgeHandler := v1.NewBadgeHandler(sc.Badges, logger)
	notificationHandler := v1.NewNotificationHandler(sc.Notifications, logger)
	wsHandler := v1.NewWSHandler(sc.Hub, logger)

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Get("/fails", failHandler.List)
		r.Get("/fails/{id}", failHandler.Get)
		r.Get("/fails/{id}/comments", failHandler.Comments)
		r.Get("/users/{id}/fails", failHandler.ListByUser)
		r.Get("/users/{id}/badges", badgeHandler.ListByUser)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.Auth.JWTSecret, logger))

			r.Get("/me", authHandler.Me)
			r.Patch("/me", authHandler.UpdateProfile)

			r.Post("/fails", failHandler.Create)
			r.Delete("/fails/{id}", failHandler.Delete)
			r.Post("/fails/{id}/reactions", failHandler.React)
			r.Delete("/fails/{id}/reactions/{kind}", failHandler.Unreact)
			r.Post("/fails/{id}/comments", failHandler.Comment)

			r.Get("/badges", badgeHandler.ListMine)
			r.Post("/badges/evaluate", badgeHandler.Evaluate)

			r.Get("/notifications", notificationHandler.List)
			r.Post("/notifications/{id}/read", notificationHandler.MarkRead)

			r.Get("/ws", wsHandler.Connect)
		})
	})

	return r
}

func healthHandler(db *database.Manager, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbHealth := db.Health(r.Context())

		cacheStatus := "healthy"
		if err := c.Health(r.Context()); err != nil {
			cacheStatus = "unhealthy"
		}

		status := http.StatusOK
		if dbHealth.Status == database.StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		response.JSON(w, status, map[string]any{
			"database": dbHealth,
			"cache":    cacheStatus,
		})
	}
}
