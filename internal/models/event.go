package models

import "time"

// Event represents a loggable action in a user's activity feed.
type Event struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Type      string    `json:"type"`  // e.g., "task.create", "task.due_soon"
	Level     string    `json:"level"` // e.g., "info", "warn"
	Message   string    `json:"message"`
	TaskID    *string   `json:"taskId,omitempty"` // Nullable for account-level events
	CreatedAt time.Time `json:"createdAt"`
}
