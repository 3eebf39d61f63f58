package monitoring

import (
	"fmt"
	"time"

	"github.com/rajeshwarchowhan1992/task-manager-web-app/internal/models"
	"github.com/rajeshwarchowhan1992/task-manager-web-app/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// dueSoonWindow is how far ahead of the due date a task is announced.
const dueSoonWindow = 24 * time.Hour

// Reminder periodically scans pending tasks and announces ones that are
// overdue or coming due, through the activity feed and the websocket hub.
type Reminder struct {
	taskSvc  services.TaskServiceProvider
	eventSvc services.EventServiceProvider
	notifier services.Notifier
	schedule cron.Schedule
	ticker   *time.Ticker
	done     chan bool
	nextRun  time.Time

	// Due dates already announced, keyed by task ID. A task is announced
	// again only if its due date changes.
	announced map[string]time.Time
}

// NewReminder creates a reminder loop firing on the given cron expression.
func NewReminder(taskSvc services.TaskServiceProvider, eventSvc services.EventServiceProvider, notifier services.Notifier, cronExpr string) (*Reminder, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid reminder cron expression: %w", err)
	}
	return &Reminder{
		taskSvc:   taskSvc,
		eventSvc:  eventSvc,
		notifier:  notifier,
		schedule:  schedule,
		done:      make(chan bool),
		announced: make(map[string]time.Time),
	}, nil
}

// Run starts the reminder's ticking loop.
func (r *Reminder) Run() {
	log.Info().Msg("Starting background reminder loop...")
	r.ticker = time.NewTicker(1 * time.Minute)
	defer r.ticker.Stop()

	// Run once immediately on start
	now := time.Now()
	r.checkDueTasks(now)
	r.nextRun = r.schedule.Next(now)

	for {
		select {
		case <-r.done:
			log.Info().Msg("Stopping background reminder loop.")
			return
		case <-r.ticker.C:
			now := time.Now()
			if now.After(r.nextRun) {
				r.checkDueTasks(now)
				r.nextRun = r.schedule.Next(now)
			}
		}
	}
}

// Stop halts the reminder loop.
func (r *Reminder) Stop() {
	r.done <- true
}

// checkDueTasks classifies pending tasks against now and announces the
// overdue and due-soon ones to their owners.
func (r *Reminder) checkDueTasks(now time.Time) {
	tasks, err := r.taskSvc.ListPendingWithDueDates()
	if err != nil {
		log.Error().Err(err).Msg("Reminder: failed to list pending tasks")
		return
	}

	for _, task := range tasks {
		due := *task.DueDate
		if prev, ok := r.announced[task.ID]; ok && prev.Equal(due) {
			continue
		}

		switch {
		case due.Before(now):
			r.announce(task, "task.overdue", "warn", fmt.Sprintf("Task '%s' is overdue.", task.Title))
		case due.Sub(now) <= dueSoonWindow:
			r.announce(task, "task.due_soon", "info", fmt.Sprintf("Task '%s' is due soon.", task.Title))
		}
	}
}

func (r *Reminder) announce(task models.Task, eventType, level, message string) {
	if err := r.eventSvc.CreateEvent(task.UserID, eventType, level, message, &task.ID); err != nil {
		log.Error().Err(err).Str("task_id", task.ID).Msg("Reminder: failed to record event")
		return
	}
	if r.notifier != nil {
		r.notifier.NotifyUser(task.UserID, "task_reminder", map[string]string{
			"taskId":  task.ID,
			"type":    eventType,
			"message": message,
		})
	}
	r.announced[task.ID] = *task.DueDate
}
