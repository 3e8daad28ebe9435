package v1

import (
	"net/http"

	"go.uber.org/zap"

	"failfeed/internal/middleware"
	"failfeed/internal/response"
	"failfeed/internal/services"
)

// NotificationHandler serves the in-app notification inbox.
type NotificationHandler struct {
	notifications services.NotificationService
	logger        *zap.Logger
}

// NewNotificationHandler creates a notification handler.
func NewNotificationHandler(notifications services.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, logger: logger}
}

// List handles GET /notifications.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.notifications.List(r.Context(), middleware.UserIDFrom(r.Context()), paginationFromQuery(r))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, page)
}

// MarkRead handles POST /notifications/{id}/read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}

	if err := h.notifications.MarkRead(r.Context(), id, middleware.UserIDFrom(r.Context())); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"status": "read"})
}
