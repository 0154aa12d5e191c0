// Package dmo materializes recurring daily templates into dated tasks.
package dmo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/platform/logger"
	"github.com/phrazzld/dmo-api/internal/store"
)

// MaterializeError wraps a store failure during materialization.
type MaterializeError struct {
	UserID uuid.UUID
	Date   domain.Date
	Err    error
}

func (e *MaterializeError) Error() string {
	return fmt.Sprintf("materialize templates for %s: %v", e.Date, e.Err)
}

// Unwrap returns the underlying store error.
func (e *MaterializeError) Unwrap() error {
	return e.Err
}

// Materializer turns a user's active templates into pending tasks for a
// date. Each template contributes at most one task per date.
type Materializer struct {
	tasks     store.TaskStore
	templates store.TemplateStore
	days      store.MaterializationStore
	guard     *InProgressGuard
	loc       *time.Location
	now       func() time.Time
	logger    *slog.Logger
}

// NewMaterializer creates a Materializer. loc defines the calendar day of
// template activations and of "today".
func NewMaterializer(
	tasks store.TaskStore,
	templates store.TemplateStore,
	days store.MaterializationStore,
	guard *InProgressGuard,
	loc *time.Location,
	logger *slog.Logger,
) *Materializer {
	if tasks == nil || templates == nil || days == nil || guard == nil {
		panic("materializer dependencies cannot be nil")
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Materializer{
		tasks:     tasks,
		templates: templates,
		days:      days,
		guard:     guard,
		loc:       loc,
		now:       time.Now,
		logger:    logger.With(slog.String("component", "dmo_materializer")),
	}
}

// EnsureInstancesForDate creates the missing template instances of userID
// on date. A call for a key already in progress returns nil without work;
// so does a user without active templates. Store failures are returned as
// *MaterializeError.
func (m *Materializer) EnsureInstancesForDate(ctx context.Context, userID uuid.UUID, date domain.Date) error {
	key := Key{UserID: userID, Date: date}
	if !m.guard.TryAcquire(key) {
		return nil
	}
	defer m.guard.Release(key)

	log := logger.FromContextOrDefault(ctx, m.logger).With(
		slog.String("user_id", userID.String()),
		slog.String("date", date.String()),
	)

	existing, err := m.tasks.MaterializedTemplateIDs(ctx, userID, date)
	if err != nil {
		return m.fail(log, userID, date, "load existing instances", err)
	}

	active, err := m.templates.ListActive(ctx, userID)
	if err != nil {
		return m.fail(log, userID, date, "load active templates", err)
	}
	if len(active) == 0 {
		return nil
	}

	done := make(map[uuid.UUID]struct{}, len(existing))
	for _, id := range existing {
		done[id] = struct{}{}
	}
	missing := make([]*domain.TaskTemplate, 0, len(active))
	for _, tpl := range active {
		if _, ok := done[tpl.ID]; !ok {
			missing = append(missing, tpl)
		}
	}
	missing, err = m.dropLateActivations(ctx, userID, date, missing)
	if err != nil {
		return m.fail(log, userID, date, "check materialized day", err)
	}

	now := m.now().UTC()
	if len(missing) > 0 {
		rows := make([]*domain.Task, len(missing))
		for i, tpl := range missing {
			rows[i] = tpl.Instantiate(date, now)
		}
		inserted, err := m.tasks.CreateMany(ctx, rows)
		if err != nil {
			return m.fail(log, userID, date, "insert instances", err)
		}
		log.Debug("materialized template instances",
			slog.Int("missing", len(rows)),
			slog.Int("inserted", inserted))
	}

	if err := m.days.MarkMaterialized(ctx, userID, date, now); err != nil {
		return m.fail(log, userID, date, "mark materialized day", err)
	}
	return nil
}

// dropLateActivations removes templates that became active after a past
// date was first materialized. Today and later dates keep everything.
func (m *Materializer) dropLateActivations(
	ctx context.Context,
	userID uuid.UUID,
	date domain.Date,
	tpls []*domain.TaskTemplate,
) ([]*domain.TaskTemplate, error) {
	today := domain.DateOf(m.now().In(m.loc))
	if len(tpls) == 0 || !date.Before(today) {
		return tpls, nil
	}

	firstAt, materialized, err := m.days.MaterializedAt(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if !materialized {
		return tpls, nil
	}

	kept := tpls[:0]
	for _, tpl := range tpls {
		if !tpl.ActivatedAfter(firstAt) {
			kept = append(kept, tpl)
		}
	}
	return kept, nil
}

func (m *Materializer) fail(log *slog.Logger, userID uuid.UUID, date domain.Date, step string, err error) error {
	log.Error("materialization failed",
		slog.String("step", step),
		slog.String("error", err.Error()))
	return &MaterializeError{UserID: userID, Date: date, Err: fmt.Errorf("%s: %w", step, err)}
}
