package services

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/rajeshwarchowhan1992/task-manager-web-app/internal/models"
)

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	CreateEvent(userID, eventType, level, message string, taskID *string) error
	GetRecentEventsForUser(userID string, limit int) ([]models.Event, error)
}

// EventService records and serves the per-user activity feed.
type EventService struct {
	db *sql.DB
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{db: db}
}

// CreateEvent logs a new event to the database.
func (s *EventService) CreateEvent(userID, eventType, level, message string, taskID *string) error {
	event := models.Event{
		ID:      uuid.New().String(),
		UserID:  userID,
		Type:    eventType,
		Level:   level,
		Message: message,
		TaskID:  taskID,
	}

	stmt, err := s.db.Prepare("INSERT INTO events (id, user_id, type, level, message, task_id) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.Exec(event.ID, event.UserID, event.Type, event.Level, event.Message, event.TaskID)
	return err
}

// GetRecentEventsForUser retrieves the most recent events owned by userID.
func (s *EventService) GetRecentEventsForUser(userID string, limit int) ([]models.Event, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, type, level, message, task_id, created_at
		FROM events WHERE user_id = ? ORDER BY created_at DESC, id LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.UserID, &event.Type, &event.Level, &event.Message, &event.TaskID, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
