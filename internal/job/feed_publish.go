package job

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
)

// ActivitySource loads a completion joined with its user's name.
type ActivitySource interface {
	GetActivity(ctx context.Context, id uuid.UUID) (*domain.ActivityItem, error)
}

// Publisher pushes activity to live feed subscribers.
type Publisher interface {
	Publish(ctx context.Context, item domain.ActivityItem) error
}

// FeedPublishPayload is the persisted payload of a feed_publish job.
type FeedPublishPayload struct {
	CompletionID uuid.UUID `json:"completion_id"`
}

// FeedPublishJob publishes one completion to the realtime feed.
type FeedPublishJob struct {
	baseJob
	completionID uuid.UUID
	source       ActivitySource
	publisher    Publisher
}

// Execute loads the completion and publishes it.
func (j *FeedPublishJob) Execute(ctx context.Context) error {
	item, err := j.source.GetActivity(ctx, j.completionID)
	if err != nil {
		return fmt.Errorf("failed to load completion %s: %w", j.completionID, err)
	}
	if err := j.publisher.Publish(ctx, *item); err != nil {
		return fmt.Errorf("failed to publish completion %s: %w", j.completionID, err)
	}
	return nil
}

// FeedPublishFactory builds feed_publish jobs.
type FeedPublishFactory struct {
	source    ActivitySource
	publisher Publisher
}

// NewFeedPublishFactory creates a factory wired to its dependencies.
func NewFeedPublishFactory(source ActivitySource, publisher Publisher) *FeedPublishFactory {
	return &FeedPublishFactory{source: source, publisher: publisher}
}

// New creates a pending job for completionID.
func (f *FeedPublishFactory) New(completionID uuid.UUID) (*FeedPublishJob, error) {
	payload := FeedPublishPayload{CompletionID: completionID}
	base, err := newBase(TypeFeedPublish, payload)
	if err != nil {
		return nil, err
	}
	return f.job(base, payload), nil
}

// FromRecord implements Factory.
func (f *FeedPublishFactory) FromRecord(rec Record) (Job, error) {
	var payload FeedPublishPayload
	base, err := baseFromRecord(rec, &payload)
	if err != nil {
		return nil, err
	}
	return f.job(base, payload), nil
}

func (f *FeedPublishFactory) job(base baseJob, payload FeedPublishPayload) *FeedPublishJob {
	return &FeedPublishJob{
		baseJob:      base,
		completionID: payload.CompletionID,
		source:       f.source,
		publisher:    f.publisher,
	}
}
