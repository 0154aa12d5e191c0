package job

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/store"
)

// PostSource loads journal posts.
type PostSource interface {
	GetPost(ctx context.Context, userID, id uuid.UUID) (*domain.JournalPost, error)
}

// Indexer maintains the journal search index.
type Indexer interface {
	IndexPost(ctx context.Context, post *domain.JournalPost) error
	DeletePost(ctx context.Context, id uuid.UUID) error
}

// SearchIndexPayload is the persisted payload of a search_index job.
type SearchIndexPayload struct {
	UserID uuid.UUID `json:"user_id"`
	PostID uuid.UUID `json:"post_id"`
	Delete bool      `json:"delete,omitempty"`
}

// SearchIndexJob syncs one journal post into the search index.
type SearchIndexJob struct {
	baseJob
	target  SearchIndexPayload
	posts   PostSource
	indexer Indexer
}

// Execute indexes the post's current state. A post deleted since the job
// was queued is removed from the index.
func (j *SearchIndexJob) Execute(ctx context.Context) error {
	if j.target.Delete {
		return j.remove(ctx)
	}

	post, err := j.posts.GetPost(ctx, j.target.UserID, j.target.PostID)
	if store.IsNotFoundError(err) {
		return j.remove(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to load post %s: %w", j.target.PostID, err)
	}

	if err := j.indexer.IndexPost(ctx, post); err != nil {
		return fmt.Errorf("failed to index post %s: %w", j.target.PostID, err)
	}
	return nil
}

func (j *SearchIndexJob) remove(ctx context.Context) error {
	if err := j.indexer.DeletePost(ctx, j.target.PostID); err != nil {
		return fmt.Errorf("failed to remove post %s from index: %w", j.target.PostID, err)
	}
	return nil
}

// SearchIndexFactory builds search_index jobs.
type SearchIndexFactory struct {
	posts   PostSource
	indexer Indexer
}

// NewSearchIndexFactory creates a factory wired to its dependencies.
func NewSearchIndexFactory(posts PostSource, indexer Indexer) *SearchIndexFactory {
	return &SearchIndexFactory{posts: posts, indexer: indexer}
}

// New creates a pending job for target.
func (f *SearchIndexFactory) New(target SearchIndexPayload) (*SearchIndexJob, error) {
	base, err := newBase(TypeSearchIndex, target)
	if err != nil {
		return nil, err
	}
	return &SearchIndexJob{baseJob: base, target: target, posts: f.posts, indexer: f.indexer}, nil
}

// FromRecord implements Factory.
func (f *SearchIndexFactory) FromRecord(rec Record) (Job, error) {
	var target SearchIndexPayload
	base, err := baseFromRecord(rec, &target)
	if err != nil {
		return nil, err
	}
	return &SearchIndexJob{baseJob: base, target: target, posts: f.posts, indexer: f.indexer}, nil
}
