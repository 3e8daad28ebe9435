// Package response provides JSON response helpers for HTTP handlers.
package response

import (
	"encoding/json"
	"net/http"

	"failfeed/internal/services"
)

type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// JSON writes data wrapped in the standard success envelope.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

// Error writes err as the standard error envelope, mapping service
// errors to their HTTP status. Internal causes are never exposed.
func Error(w http.ResponseWriter, err error) {
	serviceErr := services.GetServiceError(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(serviceErr.GetStatusCode())
	_ = json.NewEncoder(w).Encode(envelope{
		Success: false,
		Error: &errorBody{
			Type:    serviceErr.Type,
			Message: serviceErr.Message,
			Code:    serviceErr.Code,
		},
	})
}
