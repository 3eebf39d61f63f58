package services

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rajeshwarchowhan1992/task-manager-web-app/internal/models"
)

// TaskServiceProvider defines the interface for task services.
type TaskServiceProvider interface {
	ListTasks(userID string) ([]models.Task, error)
	GetTaskByID(userID, taskID string) (models.Task, error)
	CreateTask(userID string, input TaskInput) (models.Task, error)
	UpdateTask(userID, taskID string, input TaskUpdate) (models.Task, error)
	DeleteTask(userID, taskID string) error
	ListPendingWithDueDates() ([]models.Task, error)
}

// Notifier pushes a message to all of a user's connected clients.
// Implemented by the websocket hub.
type Notifier interface {
	NotifyUser(userID, action string, payload interface{})
}

// TaskInput carries the fields accepted when creating a task.
type TaskInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
}

// TaskUpdate carries a partial update. Nil fields are left unchanged.
type TaskUpdate struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	Status       *string    `json:"status"`
	Priority     *string    `json:"priority"`
	DueDate      *time.Time `json:"dueDate"`
	ClearDueDate bool       `json:"clearDueDate"`
}

// TaskService provides business logic for owner-scoped task management.
type TaskService struct {
	db           *sql.DB
	eventService EventServiceProvider
	notifier     Notifier
}

// NewTaskService creates a new TaskService.
func NewTaskService(db *sql.DB, eventService EventServiceProvider, notifier Notifier) *TaskService {
	return &TaskService{
		db:           db,
		eventService: eventService,
		notifier:     notifier,
	}
}

// ListTasks retrieves all tasks owned by userID, newest first.
func (s *TaskService) ListTasks(userID string) ([]models.Task, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, title, description, status, priority, due_date, created_at, updated_at
		FROM tasks WHERE user_id = ? ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.scanTasks(rows)
}

// GetTaskByID retrieves a single task. Tasks owned by other users are reported
// as not found rather than forbidden, so their existence is not leaked.
func (s *TaskService) GetTaskByID(userID, taskID string) (models.Task, error) {
	row := s.db.QueryRow(`
		SELECT id, user_id, title, description, status, priority, due_date, created_at, updated_at
		FROM tasks WHERE id = ? AND user_id = ?`, taskID, userID)
	return s.scanTask(row)
}

// CreateTask validates the input, applies defaults and persists a new task.
func (s *TaskService) CreateTask(userID string, input TaskInput) (models.Task, error) {
	if input.Status == "" {
		input.Status = models.StatusTodo
	}
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	if err := validateTaskFields(input.Title, input.Description, input.Status, input.Priority); err != nil {
		return models.Task{}, err
	}

	now := time.Now().UTC()
	task := models.Task{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	stmt, err := s.db.Prepare(`
		INSERT INTO tasks (id, user_id, title, description, status, priority, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return models.Task{}, err
	}
	defer stmt.Close()

	_, err = stmt.Exec(task.ID, task.UserID, task.Title, task.Description, task.Status, task.Priority, nullableTime(task.DueDate), task.CreatedAt, task.UpdatedAt)
	if err != nil {
		return models.Task{}, err
	}

	s.eventService.CreateEvent(userID, "task.create", "info", "Task '"+task.Title+"' created.", &task.ID)
	s.notify(userID, "task_created", task)
	return task, nil
}

// UpdateTask applies a partial update to a task owned by userID.
func (s *TaskService) UpdateTask(userID, taskID string, input TaskUpdate) (models.Task, error) {
	task, err := s.GetTaskByID(userID, taskID)
	if err != nil {
		return models.Task{}, err
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	if err := validateTaskFields(task.Title, task.Description, task.Status, task.Priority); err != nil {
		return models.Task{}, err
	}

	task.UpdatedAt = time.Now().UTC()

	stmt, err := s.db.Prepare(`
		UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?, due_date = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`)
	if err != nil {
		return models.Task{}, err
	}
	defer stmt.Close()

	_, err = stmt.Exec(task.Title, task.Description, task.Status, task.Priority, nullableTime(task.DueDate), task.UpdatedAt, taskID, userID)
	if err != nil {
		return models.Task{}, err
	}

	s.eventService.CreateEvent(userID, "task.update", "info", "Task '"+task.Title+"' updated.", &task.ID)
	s.notify(userID, "task_updated", task)
	return task, nil
}

// DeleteTask removes a task owned by userID.
func (s *TaskService) DeleteTask(userID, taskID string) error {
	task, err := s.GetTaskByID(userID, taskID)
	if err != nil {
		return err
	}

	_, err = s.db.Exec("DELETE FROM tasks WHERE id = ? AND user_id = ?", taskID, userID)
	if err != nil {
		return err
	}

	s.eventService.CreateEvent(userID, "task.delete", "warn", "Task '"+task.Title+"' was deleted.", &task.ID)
	s.notify(userID, "task_deleted", map[string]string{"id": taskID})
	return nil
}

// ListPendingWithDueDates retrieves every non-completed task that carries a
// due date, across all users. Used by the reminder loop.
func (s *TaskService) ListPendingWithDueDates() ([]models.Task, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, title, description, status, priority, due_date, created_at, updated_at
		FROM tasks WHERE due_date IS NOT NULL AND status != ? ORDER BY due_date`, models.StatusCompleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.scanTasks(rows)
}

func (s *TaskService) notify(userID, action string, payload interface{}) {
	if s.notifier != nil {
		s.notifier.NotifyUser(userID, action, payload)
	}
}

// scanTasks is a helper function to scan multiple rows into a slice of Tasks.
func (s *TaskService) scanTasks(rows *sql.Rows) ([]models.Task, error) {
	var tasks []models.Task
	for rows.Next() {
		task, err := s.scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// scanTask is a helper function to scan a single row into a Task struct.
func (s *TaskService) scanTask(scanner interface{ Scan(...interface{}) error }) (models.Task, error) {
	var task models.Task
	var dueDate sql.NullTime
	err := scanner.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.Priority,
		&dueDate,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Task{}, ErrTaskNotFound
		}
		return models.Task{}, err
	}
	if dueDate.Valid {
		t := dueDate.Time
		task.DueDate = &t
	}
	return task, nil
}

func validateTaskFields(title, description, status, priority string) error {
	if title == "" {
		return newValidationError("title", "is required")
	}
	if len(title) > models.MaxTitleLen {
		return newValidationError("title", "is too long")
	}
	if len(description) > models.MaxDescriptionLen {
		return newValidationError("description", "is too long")
	}
	if !models.ValidStatus(status) {
		return newValidationError("status", "must be one of todo, in-progress, completed")
	}
	if !models.ValidPriority(priority) {
		return newValidationError("priority", "must be one of low, medium, high")
	}
	return nil
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
