// Package v1 contains the HTTP handlers for the v1 API.
package v1

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"failfeed/internal/models"
	"failfeed/internal/services"
)

// decodeJSON reads a request body into dest.
func decodeJSON(r *http.Request, dest any) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return services.NewValidationError("invalid JSON body", err)
	}
	return nil
}

// idParam parses a numeric URL parameter.
func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, services.NewValidationError("invalid "+name, err)
	}
	return id, nil
}

// paginationFromQuery reads limit/offset query parameters with
// defaults.
func paginationFromQuery(r *http.Request) models.PaginationParams {
	params := models.PaginationParams{Limit: 20, Offset: 0}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 100 {
		params.Limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		params.Offset = v
	}
	return params
}
