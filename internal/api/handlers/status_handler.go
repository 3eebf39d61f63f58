package handlers

import (
	"net/http"

	"github.com/rajeshwarchowhan1992/task-manager-web-app/internal/monitoring"
)

// StatusHandler serves the system status snapshot.
type StatusHandler struct {
	statUpdater *monitoring.StatUpdater
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(statUpdater *monitoring.StatUpdater) *StatusHandler {
	return &StatusHandler{statUpdater: statUpdater}
}

// Get returns the latest host and store sample.
func (h *StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.statUpdater.Snapshot())
}

// Health is an unauthenticated liveness probe.
func Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
