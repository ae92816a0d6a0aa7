package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mlecomte/papote/internal/service"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// serviceError maps a domain error to its HTTP status and writes the
// structured error body.
func serviceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrContactNotFound),
		errors.Is(err, service.ErrConversationNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrDuplicateEmail),
		errors.Is(err, service.ErrDuplicateChat):
		status = http.StatusConflict
	case errors.Is(err, service.ErrBadCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrSelfContact):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		respondError(w, status, "internal server error")
		return
	}
	respondError(w, status, err.Error())
}
