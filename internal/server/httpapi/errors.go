package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bkkdisplay/confeditor/internal/common"
)

// statusForError maps the service error taxonomy onto HTTP status codes.
// Anything unrecognized is treated as an internal error and its detail kept
// out of the response body.
func statusForError(err error) int {
	var quota *common.QuotaExceededError
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorAuth), errors.Is(err, common.ErrorNotLoggedIn):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorCodeMismatch):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorExpiredCode):
		return http.StatusGone
	case errors.Is(err, common.ErrorNoPendingCode):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorDuplicate), errors.Is(err, common.ErrorConflict):
		return http.StatusConflict
	case errors.Is(err, common.ErrorResendLocked), errors.As(err, &quota):
		return http.StatusTooManyRequests
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorDelivery):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", msg)
		msg = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}
