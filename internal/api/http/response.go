package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/logger"
)

type errorResponse struct {
	Error     string `json:"error"`
	Committed *int   `json:"committed,omitempty"`
	Capacity  *int32 `json:"capacity,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeError maps domain errors to status codes. Anything unrecognised is a
// storage failure and its detail stays in the log.
func writeError(w http.ResponseWriter, err error) {
	var conflict *domain.CapacityConflictError
	switch {
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: conflict.Reason, Committed: &conflict.Committed, Capacity: &conflict.Capacity})
	case errors.Is(err, errBadRequest):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidDateRange):
		writeMessage(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrPenaltyActive):
		writeMessage(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrReservationNotPending),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrUserOverlap),
		errors.Is(err, domain.ErrToolUnavailable):
		writeMessage(w, http.StatusConflict, err.Error())
	default:
		logger.Error("Request failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}
