package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rajeshwarchowhan1992/task-manager-web-app/internal/services"
	"github.com/rs/zerolog/log"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service errors onto the API's status code taxonomy:
// validation 400, bad credentials 401, missing records 404, duplicate email
// 409, anything else 500.
func respondServiceError(w http.ResponseWriter, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		respondError(w, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrTaskNotFound), errors.Is(err, services.ErrUserNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		respondError(w, http.StatusConflict, err.Error())
	default:
		log.Error().Err(err).Msg("Unhandled service error")
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}
