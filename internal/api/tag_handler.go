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

// TagManager manages tags. *service.TagService implements it.
type TagManager interface {
	List(ctx context.Context, userID uuid.UUID, category *domain.TagCategory) ([]*domain.Tag, error)
	Create(ctx context.Context, userID uuid.UUID, in service.TagInput) (*domain.Tag, error)
	Update(ctx context.Context, userID, id uuid.UUID, in service.TagInput) (*domain.Tag, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// TagHandler serves /api/tags.
type TagHandler struct {
	tags   TagManager
	logger *slog.Logger
}

// NewTagHandler creates a TagHandler.
func NewTagHandler(tags TagManager, logger *slog.Logger) *TagHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TagHandler{tags: tags, logger: logger.With(slog.String("component", "tag_handler"))}
}

// List handles GET /api/tags?category=task|bucketlist.
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}
	var category *domain.TagCategory
	if raw := r.URL.Query().Get("category"); raw != "" {
		c := domain.TagCategory(raw)
		if c != domain.TagCategoryTask && c != domain.TagCategoryBucketlist {
			HandleAPIError(w, r, domain.ErrInvalidTagCategory, "")
			return
		}
		category = &c
	}
	tags, err := h.tags.List(r.Context(), userID, category)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tags")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tags)
}

// Create handles POST /api/tags.
func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}
	var req TagRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	tag, err := h.tags.Create(r.Context(), userID, req.input())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create tag")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, tag)
}

// Update handles PUT /api/tags/{id}.
func (h *TagHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}
	var req TagRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	tag, err := h.tags.Update(r.Context(), userID, id, req.input())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update tag")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tag)
}

// Delete handles DELETE /api/tags/{id}.
func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}
	if err := h.tags.Delete(r.Context(), userID, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete tag")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
