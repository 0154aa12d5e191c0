package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/dmo-api/internal/events"
)

// Submitter accepts jobs for execution. *Runner implements it.
type Submitter interface {
	Submit(ctx context.Context, job Job) error
}

// EventHandler turns domain events into background jobs.
type EventHandler struct {
	feed      *FeedPublishFactory
	search    *SearchIndexFactory
	submitter Submitter
	logger    *slog.Logger
}

var _ events.EventHandler = (*EventHandler)(nil)

// NewEventHandler creates a handler. A nil factory disables its job type.
func NewEventHandler(
	feed *FeedPublishFactory,
	search *SearchIndexFactory,
	submitter Submitter,
	logger *slog.Logger,
) *EventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventHandler{
		feed:      feed,
		search:    search,
		submitter: submitter,
		logger:    logger.With("component", "job_event_handler"),
	}
}

// HandleEvent implements events.EventHandler. Unhandled event types are
// ignored.
func (h *EventHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	job, err := h.jobFor(event)
	if err != nil {
		h.logger.Error("failed to build job from event",
			"error", err,
			"event_id", event.ID,
			"event_type", event.Type)
		return err
	}
	if job == nil {
		h.logger.Debug("ignoring event", "event_id", event.ID, "event_type", event.Type)
		return nil
	}

	if err := h.submitter.Submit(ctx, job); err != nil {
		if errors.Is(err, ErrQueueFull) {
			h.logger.Warn("job queue full, job left pending for the job monitor",
				"job_id", job.ID(),
				"job_type", job.Type(),
				"event_id", event.ID)
			return nil
		}
		return fmt.Errorf("failed to submit %s job: %w", job.Type(), err)
	}

	h.logger.Debug("job submitted",
		"job_id", job.ID(),
		"job_type", job.Type(),
		"event_id", event.ID)
	return nil
}

func (h *EventHandler) jobFor(event *events.Event) (Job, error) {
	switch event.Type {
	case events.TypeTaskCompleted:
		if h.feed == nil {
			return nil, nil
		}
		var payload events.CompletionPayload
		if err := event.UnmarshalPayload(&payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
		}
		if payload.CompletionID == nil {
			return nil, nil
		}
		return h.feed.New(*payload.CompletionID)

	case events.TypeJournalPostSaved, events.TypeJournalPostDeleted:
		if h.search == nil {
			return nil, nil
		}
		var payload events.PostPayload
		if err := event.UnmarshalPayload(&payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
		}
		return h.search.New(SearchIndexPayload{
			UserID: event.UserID,
			PostID: payload.PostID,
			Delete: event.Type == events.TypeJournalPostDeleted,
		})
	}
	return nil, nil
}
