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

// VisionBoard manages vision goals. *service.VisionService implements it.
type VisionBoard interface {
	Board(ctx context.Context, userID uuid.UUID) ([]service.GoalGroup, error)
	Create(ctx context.Context, userID uuid.UUID, in service.GoalInput) (*domain.VisionGoal, error)
	Update(ctx context.Context, userID, id uuid.UUID, in service.GoalInput) (*domain.VisionGoal, error)
	Toggle(ctx context.Context, userID, id uuid.UUID) (*domain.VisionGoal, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// VisionHandler serves /api/vision.
type VisionHandler struct {
	goals  VisionBoard
	logger *slog.Logger
}

// NewVisionHandler creates a VisionHandler.
func NewVisionHandler(goals VisionBoard, logger *slog.Logger) *VisionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &VisionHandler{goals: goals, logger: logger.With(slog.String("component", "vision_handler"))}
}

// Board handles GET /api/vision.
func (h *VisionHandler) Board(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}
	groups, err := h.goals.Board(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load vision board")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, groups)
}

// Create handles POST /api/vision.
func (h *VisionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}
	var req GoalRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	goal, err := h.goals.Create(r.Context(), userID, req.input())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create goal")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, goal)
}

// Update handles PUT /api/vision/{id}.
func (h *VisionHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}
	var req GoalRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	goal, err := h.goals.Update(r.Context(), userID, id, req.input())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update goal")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, goal)
}

// Toggle handles POST /api/vision/{id}/toggle.
func (h *VisionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}
	goal, err := h.goals.Toggle(r.Context(), userID, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to toggle goal")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, goal)
}

// Delete handles DELETE /api/vision/{id}.
func (h *VisionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}
	if err := h.goals.Delete(r.Context(), userID, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete goal")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
