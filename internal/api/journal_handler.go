package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/api/shared"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/platform/logger"
	"github.com/phrazzld/dmo-api/internal/search"
	"github.com/phrazzld/dmo-api/internal/service"
)

// defaultSearchLimit caps journal search results when ?limit is absent.
const defaultSearchLimit = 20

// Journal manages journal topics and posts. *service.JournalService
// implements it.
type Journal interface {
	ListTopics(ctx context.Context, userID uuid.UUID) ([]*domain.JournalTopic, error)
	CreateTopic(ctx context.Context, userID uuid.UUID, name string) (*domain.JournalTopic, error)
	RenameTopic(ctx context.Context, userID, id uuid.UUID, name string) (*domain.JournalTopic, error)
	ShareTopic(ctx context.Context, userID, id uuid.UUID) (*domain.JournalTopic, error)
	UnshareTopic(ctx context.Context, userID, id uuid.UUID) (*domain.JournalTopic, error)
	DeleteTopic(ctx context.Context, userID, id uuid.UUID) error
	GetShared(ctx context.Context, token string) (*service.SharedTopic, error)

	ListPosts(ctx context.Context, userID, topicID uuid.UUID) ([]*domain.JournalPost, error)
	RecentPosts(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.JournalPost, error)
	GetPost(ctx context.Context, userID, id uuid.UUID) (*domain.JournalPost, error)
	CreatePost(ctx context.Context, userID uuid.UUID, in service.PostInput) (*domain.JournalPost, error)
	UpdatePost(ctx context.Context, userID, id uuid.UUID, in service.PostInput) (*domain.JournalPost, error)
	DeletePost(ctx context.Context, userID, id uuid.UUID) error

	Search(ctx context.Context, userID uuid.UUID, query string, limit int) ([]search.Result, error)
}

// JournalHandler serves /api/journal and the public /api/share/{token}.
type JournalHandler struct {
	journal Journal
	logger  *slog.Logger
}

// NewJournalHandler creates a JournalHandler.
func NewJournalHandler(journal Journal, logger *slog.Logger) *JournalHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &JournalHandler{journal: journal, logger: logger.With(slog.String("component", "journal_handler"))}
}

// ListTopics handles GET /api/journal/topics.
func (h *JournalHandler) ListTopics(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}
	topics, err := h.journal.ListTopics(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list topics")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, topics)
}

// CreateTopic handles POST /api/journal/topics.
func (h *JournalHandler) CreateTopic(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}
	var req TopicRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	topic, err := h.journal.CreateTopic(r.Context(), userID, req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create topic")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, topic)
}

// RenameTopic handles PUT /api/journal/topics/{id}.
func (h *JournalHandler) RenameTopic(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}
	var req TopicRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	topic, err := h.journal.RenameTopic(r.Context(), userID, id, req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to rename topic")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, topic)
}

// ShareTopic handles POST /api/journal/topics/{id}/share.
func (h *JournalHandler) ShareTopic(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}
	topic, err := h.journal.ShareTopic(r.Context(), userID, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to share topic")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, topic)
}

// UnshareTopic handles DELETE /api/journal/topics/{id}/share.
func (h *JournalHandler) UnshareTopic(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}
	topic, err := h.journal.UnshareTopic(r.Context(), userID, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to unshare topic")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, topic)
}

// DeleteTopic handles DELETE /api/journal/topics/{id}.
func (h *JournalHandler) DeleteTopic(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}
	if err := h.journal.DeleteTopic(r.Context(), userID, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete topic")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetShared handles the public GET /api/share/{token}.
func (h *JournalHandler) GetShared(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		shared.RespondWithError(w, r, http.StatusNotFound, "Shared topic not found")
		return
	}
	topic, err := h.journal.GetShared(r.Context(), token)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load shared topic")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, topic)
}

// ListPosts handles GET /api/journal/topics/{id}/posts.
func (h *JournalHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	userID, topicID, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}
	posts, err := h.journal.ListPosts(r.Context(), userID, topicID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list posts")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, posts)
}

// RecentPosts handles GET /api/journal/posts/recent?limit=.
func (h *JournalHandler) RecentPosts(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}
	posts, err := h.journal.RecentPosts(r.Context(), userID, queryInt(r, "limit", service.DefaultRecentPosts))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list recent posts")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, posts)
}

// GetPost handles GET /api/journal/posts/{id}.
func (h *JournalHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}
	post, err := h.journal.GetPost(r.Context(), userID, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get post")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, post)
}

// CreatePost handles POST /api/journal/posts.
func (h *JournalHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUser(w, r, log)
	if !ok {
		return
	}
	var req PostRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	post, err := h.journal.CreatePost(r.Context(), userID, in)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create post")
		return
	}
	log.Debug("journal post created", slog.String("post_id", post.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, post)
}

// UpdatePost handles PUT /api/journal/posts/{id}.
func (h *JournalHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}
	var req PostRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	post, err := h.journal.UpdatePost(r.Context(), userID, id, in)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update post")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, post)
}

// DeletePost handles DELETE /api/journal/posts/{id}.
func (h *JournalHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}
	if err := h.journal.DeletePost(r.Context(), userID, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete post")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /api/journal/search?q=&limit=.
func (h *JournalHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}
	results, err := h.journal.Search(r.Context(), userID, r.URL.Query().Get("q"), queryInt(r, "limit", defaultSearchLimit))
	if err != nil {
		HandleAPIError(w, r, err, "Search failed")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, results)
}
