package v1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"failfeed/internal/middleware"
	"failfeed/internal/response"
	"failfeed/internal/services"
)

// FailHandler serves fail posts, reactions and comments.
type FailHandler struct {
	fails  services.FailService
	logger *zap.Logger
}

// NewFailHandler creates a fail handler.
func NewFailHandler(fails services.FailService, logger *zap.Logger) *FailHandler {
	return &FailHandler{fails: fails, logger: logger}
}

// Create handles POST /fails.
func (h *FailHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateFailRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}

	fail, err := h.fails.CreateFail(r.Context(), middleware.UserIDFrom(r.Context()), &req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, fail)
}

// Get handles GET /fails/{id}.
func (h *FailHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}

	fail, err := h.fails.GetFail(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, fail)
}

// List handles GET /fails.
func (h *FailHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.fails.ListFails(r.Context(), paginationFromQuery(r))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, page)
}

// ListByUser handles GET /users/{id}/fails.
func (h *FailHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}

	page, err := h.fails.ListUserFails(r.Context(), userID, paginationFromQuery(r))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, page)
}

// Delete handles DELETE /fails/{id}. Users can only delete their own
// posts.
func (h *FailHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}

	if err := h.fails.DeleteFail(r.Context(), id, middleware.UserIDFrom(r.Context())); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// React handles POST /fails/{id}/reactions.
func (h *FailHandler) React(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}

	var req services.ReactionRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}

	if err := h.fails.ReactToFail(r.Context(), id, middleware.UserIDFrom(r.Context()), &req); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"status": "reacted"})
}

// Unreact handles DELETE /fails/{id}/reactions/{kind}.
func (h *FailHandler) Unreact(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	kind := chi.URLParam(r, "kind")

	if err := h.fails.RemoveReaction(r.Context(), id, middleware.UserIDFrom(r.Context()), kind); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// Comment handles POST /fails/{id}/comments.
func (h *FailHandler) Comment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}

	var req services.CommentRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}

	comment, err := h.fails.AddComment(r.Context(), id, middleware.UserIDFrom(r.Context()), &req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, comment)
}

// Comments handles GET /fails/{id}/comments.
func (h *FailHandler) Comments(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}

	page, err := h.fails.GetComments(r.Context(), id, paginationFromQuery(r))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, page)
}
