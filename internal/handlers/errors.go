package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jeremyjsx/creativelab/internal/auth"
	"github.com/jeremyjsx/creativelab/internal/db"
	"github.com/jeremyjsx/creativelab/internal/posts"
	"github.com/jeremyjsx/creativelab/internal/publish"
	"github.com/jeremyjsx/creativelab/internal/users"
	"github.com/jeremyjsx/creativelab/internal/validate"
)

type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string, details map[string]string) {
	writeJSON(w, status, map[string]any{
		"error": APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// writeServiceError maps domain errors onto HTTP responses. Anything it does
// not recognize is logged and reported as a 500.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	var (
		verr     *validate.Error
		partial  *users.PartialFailureError
		rejected *users.ProviderError
	)
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", verr.Fields)
	case errors.Is(err, auth.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
	case errors.Is(err, auth.ErrForbidden):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "admin role required", nil)
	case errors.Is(err, publish.ErrMissingID):
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "post id is required", nil)
	case errors.Is(err, posts.ErrSlugExists):
		writeError(w, http.StatusConflict, "CONFLICT", "slug already exists", nil)
	case errors.Is(err, posts.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "post not found", nil)
	case errors.Is(err, auth.ErrProfileNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "user not found", nil)
	case errors.As(err, &partial):
		logger.Error(op+" partially failed", "error", err)
		writeError(w, http.StatusInternalServerError, "PARTIAL_FAILURE", partial.Error(), map[string]string{
			"identity_id": partial.IdentityID.String(),
		})
	case errors.As(err, &rejected) && rejected.Status < http.StatusInternalServerError:
		writeError(w, http.StatusBadRequest, "PROVIDER_REJECTED", rejected.Message, nil)
	case errors.Is(err, db.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "backing store is not configured", nil)
	default:
		logger.Error(op+" failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
	}
}
