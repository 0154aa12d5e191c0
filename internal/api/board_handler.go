package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/api/shared"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/domain/board"
	"github.com/phrazzld/dmo-api/internal/platform/logger"
)

// BoardLoader loads the Eisenhower board. *service.BoardService
// implements it.
type BoardLoader interface {
	GetBoard(ctx context.Context, userID uuid.UUID, date domain.Date, tagID *uuid.UUID) (*board.Board, error)
}

// BoardHandler serves GET /api/board.
type BoardHandler struct {
	boards BoardLoader
	logger *slog.Logger
}

// NewBoardHandler creates a BoardHandler.
func NewBoardHandler(boards BoardLoader, logger *slog.Logger) *BoardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BoardHandler{boards: boards, logger: logger.With(slog.String("component", "board_handler"))}
}

// GetBoard handles GET /api/board?date=YYYY-MM-DD&tag_id=. A missing date
// means today.
func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}
	date, err := queryDate(r, "date")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	tagID, err := queryUUID(r, "tag_id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	b, err := h.boards.GetBoard(r.Context(), userID, date, tagID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load board")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, b)
}
