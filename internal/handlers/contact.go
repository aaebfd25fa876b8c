package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jeremyjsx/creativelab/internal/contact"
	"github.com/jeremyjsx/creativelab/internal/validate"
)

func Contact(svc *contact.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in contact.Submission
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
			return
		}
		err := svc.Submit(r.Context(), in)
		var verr *validate.Error
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", contact.FailureMessage, verr.Fields)
			return
		}
		if err != nil {
			writeServiceError(w, logger, "contact", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": contact.SuccessMessage})
	}
}
