package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/api/shared"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/platform/logger"
	"github.com/phrazzld/dmo-api/internal/realtime"
	"github.com/phrazzld/dmo-api/internal/service"
)

// DefaultHeartbeat is how often an idle feed stream sends a comment line so
// proxies keep the connection open.
const DefaultHeartbeat = 25 * time.Second

// Community serves leaderboards, stats and the activity feed.
// *service.SocialService implements it.
type Community interface {
	Leaderboard(ctx context.Context, userID uuid.UUID, period service.LeaderboardPeriod) (*service.Leaderboard, error)
	Stats(ctx context.Context, userID uuid.UUID) (*service.CommunityStats, error)
	Feed(ctx context.Context, limit int) ([]domain.ActivityItem, error)
	Stream(ctx context.Context) (*realtime.Subscription, error)
}

// SocialHandler serves the community endpoints.
type SocialHandler struct {
	community Community
	heartbeat time.Duration
	logger    *slog.Logger

	closing   chan struct{}
	closeOnce sync.Once
}

// NewSocialHandler creates a SocialHandler.
func NewSocialHandler(community Community, logger *slog.Logger) *SocialHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SocialHandler{
		community: community,
		heartbeat: DefaultHeartbeat,
		logger:    logger.With(slog.String("component", "social_handler")),
		closing:   make(chan struct{}),
	}
}

// Shutdown ends every open feed stream. Streams are long-lived, so the
// server calls this when it starts shutting down.
func (h *SocialHandler) Shutdown() {
	h.closeOnce.Do(func() { close(h.closing) })
}

// Leaderboard handles GET /api/leaderboard?period=day|week|month|year.
func (h *SocialHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}
	period := service.ParseLeaderboardPeriod(r.URL.Query().Get("period"))
	board, err := h.community.Leaderboard(r.Context(), userID, period)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load leaderboard")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, board)
}

// Stats handles GET /api/stats.
func (h *SocialHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}
	stats, err := h.community.Stats(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load stats")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// Feed handles GET /api/feed?limit=.
func (h *SocialHandler) Feed(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r, logger.FromContextOrDefault(r.Context(), h.logger)); !ok {
		return
	}
	items, err := h.community.Feed(r.Context(), queryInt(r, "limit", service.DefaultFeedLimit))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load feed")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, items)
}

// Stream handles GET /api/feed/stream as Server-Sent Events. Each
// completion arrives as a "completion" event with the activity item as
// JSON data.
func (h *SocialHandler) Stream(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	if _, ok := requireUser(w, r, log); !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	sub, err := h.community.Stream(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to open feed stream")
		return
	}
	defer func() {
		if err := sub.Close(); err != nil {
			log.Debug("feed subscription close", "error", err)
		}
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-h.closing:
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case item, open := <-sub.Items():
			if !open {
				return
			}
			data, err := json.Marshal(item)
			if err != nil {
				log.Error("failed to encode feed item", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: completion\ndata: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
