package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/api/shared"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/platform/logger"
	"github.com/phrazzld/dmo-api/internal/service"
)

// TaskManager edits and completes tasks. *service.TaskService implements it.
type TaskManager interface {
	Create(ctx context.Context, userID uuid.UUID, in service.TaskInput) (*domain.Task, error)
	Update(ctx context.Context, userID, id uuid.UUID, in service.TaskInput) (*domain.Task, error)
	Move(ctx context.Context, userID, id uuid.UUID, quadrant domain.Quadrant) error
	Toggle(ctx context.Context, userID, id uuid.UUID) (*domain.Task, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// TaskHandler serves /api/tasks.
type TaskHandler struct {
	tasks  TaskManager
	today  func() domain.Date
	logger *slog.Logger
}

// NewTaskHandler creates a TaskHandler. today supplies the date of tasks
// created without one.
func NewTaskHandler(tasks TaskManager, today func() domain.Date, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{tasks: tasks, today: today, logger: logger.With(slog.String("component", "task_handler"))}
}

// Create handles POST /api/tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUser(w, r, log)
	if !ok {
		return
	}
	var req TaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if in.Date.IsZero() && h.today != nil {
		in.Date = h.today()
	}

	task, err := h.tasks.Create(r.Context(), userID, in)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}
	log.Debug("task created", slog.String("task_id", task.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// Update handles PUT /api/tasks/{id}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}
	var req TaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	task, err := h.tasks.Update(r.Context(), userID, id, in)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// Move handles PATCH /api/tasks/{id}/quadrant.
func (h *TaskHandler) Move(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}
	var req MoveTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.tasks.Move(r.Context(), userID, id, domain.Quadrant(req.Quadrant)); err != nil {
		HandleAPIError(w, r, err, "Failed to move task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Toggle handles POST /api/tasks/{id}/toggle.
func (h *TaskHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}
	task, err := h.tasks.Toggle(r.Context(), userID, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task status")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// Delete handles DELETE /api/tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}
	if err := h.tasks.Delete(r.Context(), userID, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
