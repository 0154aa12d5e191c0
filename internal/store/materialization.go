package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
)

// MaterializationStore records which (user, date) pairs have been
// materialized from templates at least once.
type MaterializationStore interface {
	// MaterializedAt returns when the date was first recorded. ok is false
	// when it never was.
	MaterializedAt(ctx context.Context, userID uuid.UUID, date domain.Date) (at time.Time, ok bool, err error)

	// MarkMaterialized records the date. The first recorded time wins.
	MarkMaterialized(ctx context.Context, userID uuid.UUID, date domain.Date, at time.Time) error
}
