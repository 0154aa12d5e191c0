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

// TemplateManager manages DMO templates. *service.TemplateService
// implements it.
type TemplateManager interface {
	List(ctx context.Context, userID uuid.UUID) ([]*domain.TaskTemplate, error)
	Create(ctx context.Context, userID uuid.UUID, in service.TemplateInput) (*domain.TaskTemplate, error)
	Update(ctx context.Context, userID, id uuid.UUID, in service.TemplateInput) (*domain.TaskTemplate, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// TemplateHandler serves /api/templates.
type TemplateHandler struct {
	templates TemplateManager
	logger    *slog.Logger
}

// NewTemplateHandler creates a TemplateHandler.
func NewTemplateHandler(templates TemplateManager, logger *slog.Logger) *TemplateHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TemplateHandler{templates: templates, logger: logger.With(slog.String("component", "template_handler"))}
}

// List handles GET /api/templates.
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}
	list, err := h.templates.List(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list templates")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, list)
}

// Create handles POST /api/templates.
func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}
	var req TemplateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	tpl, err := h.templates.Create(r.Context(), userID, req.input())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create template")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, tpl)
}

// Update handles PUT /api/templates/{id}.
func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}
	var req TemplateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	tpl, err := h.templates.Update(r.Context(), userID, id, req.input())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update template")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tpl)
}

// Delete handles DELETE /api/templates/{id}.
func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}
	if err := h.templates.Delete(r.Context(), userID, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete template")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
