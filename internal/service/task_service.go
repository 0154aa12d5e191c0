package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/events"
	"github.com/phrazzld/dmo-api/internal/platform/logger"
	"github.com/phrazzld/dmo-api/internal/store"
)

// TaskInput carries the editable fields of a task.
type TaskInput struct {
	Date         domain.Date
	Title        string
	Description  string
	Quadrant     domain.Quadrant
	DeadlineAt   *time.Time
	TagID        *uuid.UUID
	LinkedPostID *uuid.UUID
}

// PostLookup resolves journal posts linked from tasks.
type PostLookup interface {
	GetPost(ctx context.Context, userID, id uuid.UUID) (*domain.JournalPost, error)
}

// TaskService manages ad-hoc tasks and task completion.
type TaskService struct {
	db          *sql.DB
	tasks       store.TaskStore
	completions store.CompletionStore
	tags        store.TagStore
	posts       PostLookup
	emitter     events.EventEmitter
	now         func() time.Time
	logger      *slog.Logger
}

// NewTaskService creates a TaskService. emitter may be nil.
func NewTaskService(
	db *sql.DB,
	tasks store.TaskStore,
	completions store.CompletionStore,
	tags store.TagStore,
	posts PostLookup,
	emitter events.EventEmitter,
	logger *slog.Logger,
) *TaskService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskService{
		db:          db,
		tasks:       tasks,
		completions: completions,
		tags:        tags,
		posts:       posts,
		emitter:     emitter,
		now:         time.Now,
		logger:      logger.With("component", "task_service"),
	}
}

// Create adds an ad-hoc pending task at the end of its date.
func (s *TaskService) Create(ctx context.Context, userID uuid.UUID, in TaskInput) (*domain.Task, error) {
	if in.Date.IsZero() {
		return nil, invalid("date is required")
	}
	task, err := domain.NewTask(userID, in.Date, in.Title, in.Quadrant)
	if err != nil {
		return nil, err
	}
	if err := s.applyInput(ctx, task, in); err != nil {
		return nil, err
	}

	count, err := s.tasks.CountOnDate(ctx, userID, in.Date)
	if err != nil {
		return nil, NewServiceError("task", "create", err)
	}
	task.OrderIndex = count

	if err := s.tasks.Create(ctx, task); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create task",
			"error", err,
			"user_id", userID)
		return nil, NewServiceError("task", "create", err)
	}
	return task, nil
}

// Update replaces the editable fields of a task. The date is kept.
func (s *TaskService) Update(ctx context.Context, userID, id uuid.UUID, in TaskInput) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, domain.ErrTaskTitleEmpty
	}
	if !in.Quadrant.Valid() {
		return nil, domain.ErrInvalidQuadrant
	}
	task.Title = strings.TrimSpace(in.Title)
	task.Quadrant = in.Quadrant
	if err := s.applyInput(ctx, task, in); err != nil {
		return nil, err
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, NewServiceError("task", "update", err)
	}
	return task, nil
}

// applyInput copies the optional fields after checking that referenced
// tags and posts belong to the task's owner.
func (s *TaskService) applyInput(ctx context.Context, task *domain.Task, in TaskInput) error {
	if in.TagID != nil {
		if _, err := s.tags.GetByID(ctx, task.UserID, *in.TagID); err != nil {
			if store.IsNotFoundError(err) {
				return invalid("unknown tag")
			}
			return NewServiceError("task", "check tag", err)
		}
	}
	if in.LinkedPostID != nil {
		if _, err := s.posts.GetPost(ctx, task.UserID, *in.LinkedPostID); err != nil {
			if store.IsNotFoundError(err) {
				return invalid("unknown journal post")
			}
			return NewServiceError("task", "check post", err)
		}
	}

	task.Description = strings.TrimSpace(in.Description)
	task.TagID = in.TagID
	task.LinkedPostID = in.LinkedPostID
	task.DeadlineAt = nil
	if in.DeadlineAt != nil {
		d := in.DeadlineAt.UTC()
		task.DeadlineAt = &d
	}
	return nil
}

// Move puts a task in another quadrant.
func (s *TaskService) Move(ctx context.Context, userID, id uuid.UUID, quadrant domain.Quadrant) error {
	if !quadrant.Valid() {
		return domain.ErrInvalidQuadrant
	}
	return s.tasks.UpdateQuadrant(ctx, userID, id, quadrant)
}

// Toggle flips a task between pending and done. Completing records a
// completion; reopening removes the newest one. Both happen in the same
// transaction as the status change, and an event is emitted after commit.
func (s *TaskService) Toggle(ctx context.Context, userID, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var task *domain.Task
	var completionID *uuid.UUID
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)
		txCompletions := s.completions.WithTx(tx)

		var err error
		task, err = txTasks.GetByID(ctx, userID, id)
		if err != nil {
			return err
		}

		task.Status = task.Status.Toggled()
		if err := txTasks.UpdateStatus(ctx, userID, id, task.Status); err != nil {
			return err
		}

		if task.IsDone() {
			c := domain.NewCompletion(task, s.now())
			if err := txCompletions.Create(ctx, c); err != nil {
				return err
			}
			completionID = &c.ID
			return nil
		}

		err = txCompletions.DeleteLatestForTask(ctx, userID, id)
		if err != nil && !errors.Is(err, store.ErrCompletionNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		log.Error("failed to toggle task",
			"error", err,
			"user_id", userID,
			"task_id", id)
		return nil, NewServiceError("task", "toggle", err)
	}

	eventType := events.TypeTaskReopened
	if task.IsDone() {
		eventType = events.TypeTaskCompleted
	}
	payload := events.CompletionPayload{TaskID: task.ID, CompletionID: completionID}
	if err := events.Emit(ctx, s.emitter, eventType, userID, payload); err != nil {
		log.Warn("failed to emit task event",
			"error", err,
			"event_type", eventType,
			"task_id", id)
	}

	log.Debug("task toggled",
		"user_id", userID,
		"task_id", id,
		"status", task.Status)
	return task, nil
}

// Delete removes a task together with its completions.
func (s *TaskService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.tasks.Delete(ctx, userID, id)
}
