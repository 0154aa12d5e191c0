package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Validation errors for TaskTemplate
var (
	ErrTemplateIDEmpty     = errors.New("template ID cannot be empty")
	ErrTemplateUserIDEmpty = errors.New("template user ID cannot be empty")
	ErrTemplateTitleEmpty  = errors.New("template title cannot be empty")
	ErrTemplateOrderIndex  = errors.New("template order index cannot be negative")
)

// TaskTemplate is a recurring daily routine item. Every active template
// yields one Task per date the user views.
type TaskTemplate struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Title       string     `json:"title"`
	Quadrant    Quadrant   `json:"quadrant"`
	IsActive    bool       `json:"is_active"`
	OrderIndex  int        `json:"order_index"`
	TagID       *uuid.UUID `json:"tag_id,omitempty"`
	ActivatedAt time.Time  `json:"activated_at"` // last inactive to active switch
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTaskTemplate creates an active template.
func NewTaskTemplate(
	userID uuid.UUID,
	title string,
	quadrant Quadrant,
	orderIndex int,
) (*TaskTemplate, error) {
	now := time.Now().UTC()
	tpl := &TaskTemplate{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       strings.TrimSpace(title),
		Quadrant:    quadrant,
		IsActive:    true,
		OrderIndex:  orderIndex,
		ActivatedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := tpl.Validate(); err != nil {
		return nil, err
	}

	return tpl, nil
}

// Validate checks if the TaskTemplate has valid data.
func (t *TaskTemplate) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTemplateIDEmpty
	}
	if t.UserID == uuid.Nil {
		return ErrTemplateUserIDEmpty
	}
	if strings.TrimSpace(t.Title) == "" {
		return ErrTemplateTitleEmpty
	}
	if !t.Quadrant.Valid() {
		return ErrInvalidQuadrant
	}
	if t.OrderIndex < 0 {
		return ErrTemplateOrderIndex
	}
	return nil
}

// SetActive switches the active flag, stamping ActivatedAt on every
// inactive to active transition.
func (t *TaskTemplate) SetActive(active bool, now time.Time) {
	if active && !t.IsActive {
		t.ActivatedAt = now.UTC()
	}
	t.IsActive = active
}

// ActivatedAfter reports whether the template became active after at.
func (t *TaskTemplate) ActivatedAfter(at time.Time) bool {
	return t.ActivatedAt.After(at)
}

// Instantiate builds the pending task this template contributes to date.
// Title, quadrant, tag and order index are copied; later template edits do
// not reach tasks that already exist.
func (t *TaskTemplate) Instantiate(date Date, now time.Time) *Task {
	templateID := t.ID
	var tagID *uuid.UUID
	if t.TagID != nil {
		id := *t.TagID
		tagID = &id
	}

	return &Task{
		ID:               uuid.New(),
		UserID:           t.UserID,
		Date:             date,
		Title:            t.Title,
		Quadrant:         t.Quadrant,
		Status:           TaskStatusPending,
		OrderIndex:       t.OrderIndex,
		SourceTemplateID: &templateID,
		TagID:            tagID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}
