package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"lotto/service"

	log "github.com/sirupsen/logrus"
)

const (
	reasonDBUnavailable = "db unavailable"
	reasonBadRequest    = "missing parameters"
)

type errorResponse struct {
	OK      bool     `json:"ok"`
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Failed to encode JSON response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, reason string, details ...string) {
	fields := log.Fields{
		"requestID": RequestIDFromCtx(r.Context()),
		"path":      r.URL.Path,
		"status":    status,
		"reason":    reason,
	}
	if status >= http.StatusInternalServerError {
		log.WithFields(fields).Error("Request failed")
	} else {
		log.WithFields(fields).Debug("Request rejected")
	}
	writeJSON(w, status, errorResponse{OK: false, Error: reason, Details: details})
}

// errorStatuses maps service errors onto HTTP statuses. The sentinel message is the reason shown to clients.
var errorStatuses = []struct {
	err    error
	status int
}{
	{service.ErrNotAuthenticated, http.StatusUnauthorized},
	{service.ErrInvalidCredentials, http.StatusUnauthorized},
	{service.ErrMissingParameters, http.StatusBadRequest},
	{service.ErrNothingToPlay, http.StatusBadRequest},
	{service.ErrInvalidAmount, http.StatusBadRequest},
	{service.ErrInvalidNumber, http.StatusBadRequest},
	{service.ErrRowNotInPlay, http.StatusBadRequest},
	{service.ErrNothingToRefund, http.StatusBadRequest},
	{service.ErrInsufficientBalance, http.StatusBadRequest},
	{service.ErrAccountNotFound, http.StatusNotFound},
	{service.ErrPlayNotFound, http.StatusNotFound},
	{service.ErrAlreadyRefunded, http.StatusConflict},
	{service.ErrUsernameTaken, http.StatusConflict},
}

func statusFor(err error) (int, string) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status, e.err.Error()
		}
	}
	return http.StatusInternalServerError, reasonDBUnavailable
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, reason := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.WithFields(log.Fields{
			"requestID": RequestIDFromCtx(r.Context()),
			"error":     err,
		}).Error("Service call failed")
	}
	writeError(w, r, status, reason)
}
