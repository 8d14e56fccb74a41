// Package http provides HTTP utilities including chi-compatible error handling
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/shakti-network/shakti-ledger/pkg/app/errors"
)

// HandlerFunc defines a function that returns an error for clean error handling
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// HandleError wraps an error-returning HandlerFunc into a standard http.HandlerFunc
// This allows using clean error-returning handlers with any router (chi, http.ServeMux, etc.)
//
// Usage with chi:
//
//	r.Post("/api/vaults", http.HandleError(handler.createVault))
func HandleError(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			DefaultErrorHandler(w, err)
		}
	}
}

// errorResponse is the envelope written for failed requests. Conflict
// responses additionally carry the existing record in Data so callers can
// recover without a second round trip.
type errorResponse struct {
	Success bool   `json:"success"`
	ErrMsg  string `json:"error"`
	Code    int    `json:"code"`
	Data    any    `json:"data,omitempty"`
}

// DefaultErrorHandler handles errors returned from HTTP handlers
func DefaultErrorHandler(w http.ResponseWriter, err error) {
	var svcErr *apperrors.ServiceError

	// Check if it's a ServiceError
	if errors.As(err, &svcErr) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(svcErr.StatusCode())
		_ = json.NewEncoder(w).Encode(&errorResponse{
			Success: false,
			ErrMsg:  svcErr.Message,
			Code:    svcErr.StatusCode(),
			Data:    svcErr.Data,
		})
		return
	}

	// Handle unknown errors
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(&errorResponse{
		Success: false,
		ErrMsg:  "Unexpected Service Error",
		Code:    http.StatusInternalServerError,
	})
}
