package handlers

import (
	"net/http"
	"strconv"

	"github.com/rajeshwarchowhan1992/task-manager-web-app/internal/models"
	"github.com/rajeshwarchowhan1992/task-manager-web-app/internal/services"
	"github.com/rs/zerolog/log"
)

// EventHandler handles HTTP requests for the user's activity feed.
type EventHandler struct {
	service services.EventServiceProvider
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(service services.EventServiceProvider) *EventHandler {
	return &EventHandler{service: service}
}

// GetRecent handles the request to get the caller's recent activity.
func (h *EventHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Missing auth token")
		return
	}

	limitStr := r.URL.Query().Get("limit")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20 // Default limit
	}

	events, err := h.service.GetRecentEventsForUser(uid, limit)
	if err != nil {
		log.Error().Err(err).Str("user_id", uid).Msg("Failed to retrieve events")
		respondServiceError(w, err)
		return
	}
	if events == nil {
		events = []models.Event{}
	}

	respondJSON(w, http.StatusOK, events)
}
