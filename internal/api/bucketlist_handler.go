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

// Bucketlist manages bucketlist items. *service.BucketlistService
// implements it.
type Bucketlist interface {
	List(ctx context.Context, userID uuid.UUID) ([]*domain.BucketlistItem, error)
	Create(ctx context.Context, userID uuid.UUID, in service.BucketItemInput) (*domain.BucketlistItem, error)
	Update(ctx context.Context, userID, id uuid.UUID, in service.BucketItemInput) (*domain.BucketlistItem, error)
	Toggle(ctx context.Context, userID, id uuid.UUID) (*domain.BucketlistItem, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// BucketlistHandler serves /api/bucketlist.
type BucketlistHandler struct {
	items  Bucketlist
	logger *slog.Logger
}

// NewBucketlistHandler creates a BucketlistHandler.
func NewBucketlistHandler(items Bucketlist, logger *slog.Logger) *BucketlistHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BucketlistHandler{items: items, logger: logger.With(slog.String("component", "bucketlist_handler"))}
}

// List handles GET /api/bucketlist.
func (h *BucketlistHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}
	items, err := h.items.List(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list bucketlist")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, items)
}

// Create handles POST /api/bucketlist.
func (h *BucketlistHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}
	var req BucketItemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	item, err := h.items.Create(r.Context(), userID, req.input())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create bucketlist item")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, item)
}

// Update handles PUT /api/bucketlist/{id}.
func (h *BucketlistHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}
	var req BucketItemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	item, err := h.items.Update(r.Context(), userID, id, req.input())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update bucketlist item")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, item)
}

// Toggle handles POST /api/bucketlist/{id}/toggle.
func (h *BucketlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}
	item, err := h.items.Toggle(r.Context(), userID, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to toggle bucketlist item")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, item)
}

// Delete handles DELETE /api/bucketlist/{id}.
func (h *BucketlistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}
	if err := h.items.Delete(r.Context(), userID, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete bucketlist item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
