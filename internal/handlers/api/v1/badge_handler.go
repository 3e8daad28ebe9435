package v1

import (
	"net/http"

	"go.uber.org/zap"

	"failfeed/internal/middleware"
	"failfeed/internal/models"
	"failfeed/internal/response"
	"failfeed/internal/services"
)

// BadgeHandler serves badge listing and on-demand evaluation.
type BadgeHandler struct {
	badges services.BadgeService
	logger *zap.Logger
}

// NewBadgeHandler creates a badge handler.
func NewBadgeHandler(badges services.BadgeService, logger *zap.Logger) *BadgeHandler {
	return &BadgeHandler{badges: badges, logger: logger}
}

// ListMine handles GET /badges. The full catalog is returned with the
// caller's unlock state on each entry.
func (h *BadgeHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	views, err := h.badges.ListUserBadges(r.Context(), middleware.UserIDFrom(r.Context()))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, views)
}

// ListByUser handles GET /users/{id}/badges.
func (h *BadgeHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}

	views, err := h.badges.ListUserBadges(r.Context(), userID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, views)
}

// Evaluate handles POST /badges/evaluate. Evaluation normally runs off
// activity events; this endpoint lets a client force a pass, typically
// right after onboarding, and returns only the badges that this call
// unlocked.
func (h *BadgeHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	unlocked, err := h.badges.UnlockEligibleBadges(r.Context(), middleware.UserIDFrom(r.Context()))
	if err != nil {
		response.Error(w, err)
		return
	}
	if unlocked == nil {
		unlocked = []*models.Badge{}
	}
	response.JSON(w, http.StatusOK, unlocked)
}
