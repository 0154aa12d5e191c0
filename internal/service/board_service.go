package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/domain/board"
	"github.com/phrazzld/dmo-api/internal/platform/logger"
	"github.com/phrazzld/dmo-api/internal/service/dmo"
	"github.com/phrazzld/dmo-api/internal/store"
)

// BoardService loads a user's Eisenhower board for one date. It owns the
// in-progress guard that keeps concurrent loads of the same board from
// materializing templates twice.
type BoardService struct {
	materializer *dmo.Materializer
	guard        *dmo.InProgressGuard
	tasks        store.TaskStore
	loc          *time.Location
	now          func() time.Time
	logger       *slog.Logger
}

// NewBoardService creates a BoardService. guardHold keeps a materialized
// key marked for that long after the run completes.
func NewBoardService(
	tasks store.TaskStore,
	templates store.TemplateStore,
	days store.MaterializationStore,
	guardHold time.Duration,
	loc *time.Location,
	logger *slog.Logger,
) *BoardService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	guard := dmo.NewInProgressGuard(guardHold)
	return &BoardService{
		materializer: dmo.NewMaterializer(tasks, templates, days, guard, loc, logger),
		guard:        guard,
		tasks:        tasks,
		loc:          loc,
		now:          time.Now,
		logger:       logger.With("component", "board_service"),
	}
}

// Today is the current date in the service's time zone.
func (s *BoardService) Today() domain.Date {
	return domain.DateOf(s.now().In(s.loc))
}

// Materializing reports whether a materialization of userID's board on date
// is running, or still inside the configured hold after finishing.
func (s *BoardService) Materializing(userID uuid.UUID, date domain.Date) bool {
	return s.guard.Held(dmo.Key{UserID: userID, Date: date})
}

// GetBoard materializes the user's templates for date, then returns the
// visible tasks grouped by quadrant. A zero date means today. A
// materialization failure fails the whole load.
func (s *BoardService) GetBoard(
	ctx context.Context,
	userID uuid.UUID,
	date domain.Date,
	tagID *uuid.UUID,
) (*board.Board, error) {
	if date.IsZero() {
		date = s.Today()
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.materializer.EnsureInstancesForDate(ctx, userID, date); err != nil {
		return nil, NewServiceError("board", "materialize", err)
	}

	rows, err := s.tasks.ListPendingOrOnDate(ctx, userID, date)
	if err != nil {
		log.Error("failed to load board rows",
			"error", err,
			"user_id", userID,
			"date", date)
		return nil, NewServiceError("board", "load", err)
	}

	b := board.Arrange(rows, date, board.Options{TagID: tagID})
	log.Debug("board loaded",
		"user_id", userID,
		"date", date,
		"rows", len(rows),
		"visible", b.Len())
	return &b, nil
}
