package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the completion state of a daily task.
type TaskStatus string

// Task status values.
const (
	TaskStatusPending TaskStatus = "pending"
	TaskStatusDone    TaskStatus = "done"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	return s == TaskStatusPending || s == TaskStatusDone
}

// Toggled returns the opposite status.
func (s TaskStatus) Toggled() TaskStatus {
	if s == TaskStatusDone {
		return TaskStatusPending
	}
	return TaskStatusDone
}

// Validation errors for Task
var (
	ErrTaskIDEmpty       = errors.New("task ID cannot be empty")
	ErrTaskUserIDEmpty   = errors.New("task user ID cannot be empty")
	ErrTaskTitleEmpty    = errors.New("task title cannot be empty")
	ErrTaskDateEmpty     = errors.New("task date cannot be empty")
	ErrInvalidQuadrant   = errors.New("invalid quadrant")
	ErrInvalidTaskStatus = errors.New("invalid task status")
)

// Task is a dated to-do entry on a user's board. Rows created from a
// TaskTemplate carry SourceTemplateID; ad-hoc rows leave it nil.
type Task struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"user_id"`
	Date             Date       `json:"date"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	Quadrant         Quadrant   `json:"quadrant"`
	Status           TaskStatus `json:"status"`
	OrderIndex       int        `json:"order_index"`
	DeadlineAt       *time.Time `json:"deadline_at,omitempty"`
	SourceTemplateID *uuid.UUID `json:"source_template_id,omitempty"`
	LinkedPostID     *uuid.UUID `json:"linked_post_id,omitempty"`
	TagID            *uuid.UUID `json:"tag_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// NewTask creates a pending ad-hoc task.
func NewTask(userID uuid.UUID, date Date, title string, quadrant Quadrant) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:        uuid.New(),
		UserID:    userID,
		Date:      date,
		Title:     strings.TrimSpace(title),
		Quadrant:  quadrant,
		Status:    TaskStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}
	if t.UserID == uuid.Nil {
		return ErrTaskUserIDEmpty
	}
	if t.Date.IsZero() {
		return ErrTaskDateEmpty
	}
	if strings.TrimSpace(t.Title) == "" {
		return ErrTaskTitleEmpty
	}
	if !t.Quadrant.Valid() {
		return ErrInvalidQuadrant
	}
	if !t.Status.Valid() {
		return ErrInvalidTaskStatus
	}
	return nil
}

// FromTemplate reports whether the task was materialized from a template.
func (t *Task) FromTemplate() bool {
	return t.SourceTemplateID != nil
}

// HasDeadline reports whether a deadline is set.
func (t *Task) HasDeadline() bool {
	return t.DeadlineAt != nil
}

// IsDone reports whether the task is completed.
func (t *Task) IsDone() bool {
	return t.Status == TaskStatusDone
}

// ReportDate is the day a task counts toward in reports: the deadline's
// calendar day in loc when set, otherwise the task's own date.
func (t *Task) ReportDate(loc *time.Location) Date {
	if t.DeadlineAt != nil {
		return DateOf(t.DeadlineAt.In(loc))
	}
	return t.Date
}
