package job

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/events"
	"github.com/phrazzld/dmo-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubActivities map[uuid.UUID]*domain.ActivityItem

func (s stubActivities) GetActivity(ctx context.Context, id uuid.UUID) (*domain.ActivityItem, error) {
	if item, ok := s[id]; ok {
		return item, nil
	}
	return nil, store.ErrCompletionNotFound
}

type recordingPublisher struct {
	mu        sync.Mutex
	published []domain.ActivityItem
	err       error
}

func (p *recordingPublisher) Publish(ctx context.Context, item domain.ActivityItem) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, item)
	return nil
}

type stubPosts map[uuid.UUID]*domain.JournalPost

func (s stubPosts) GetPost(ctx context.Context, userID, id uuid.UUID) (*domain.JournalPost, error) {
	if post, ok := s[id]; ok && post.UserID == userID {
		return post, nil
	}
	return nil, store.ErrPostNotFound
}

type recordingIndexer struct {
	indexed []uuid.UUID
	deleted []uuid.UUID
}

func (i *recordingIndexer) IndexPost(ctx context.Context, post *domain.JournalPost) error {
	i.indexed = append(i.indexed, post.ID)
	return nil
}

func (i *recordingIndexer) DeletePost(ctx context.Context, id uuid.UUID) error {
	i.deleted = append(i.deleted, id)
	return nil
}

func TestFeedPublishJob(t *testing.T) {
	t.Parallel()

	item := &domain.ActivityItem{
		Completion: domain.Completion{ID: uuid.New(), TaskTitle: "Morning run", CompletedAt: time.Now().UTC()},
		UserName:   "lan",
	}
	publisher := &recordingPublisher{}
	factory := NewFeedPublishFactory(stubActivities{item.ID: item}, publisher)

	job, err := factory.New(item.ID)
	require.NoError(t, err)
	assert.Equal(t, TypeFeedPublish, job.Type())
	assert.Equal(t, StatusPending, job.Status())

	require.NoError(t, job.Execute(context.Background()))
	require.Len(t, publisher.published, 1)
	assert.Equal(t, "Morning run", publisher.published[0].TaskTitle)

	rebuilt, err := factory.FromRecord(RecordOf(job))
	require.NoError(t, err)
	assert.Equal(t, job.ID(), rebuilt.ID())
	require.NoError(t, rebuilt.Execute(context.Background()))
	assert.Len(t, publisher.published, 2)

	missing, err := factory.New(uuid.New())
	require.NoError(t, err)
	assert.ErrorIs(t, missing.Execute(context.Background()), store.ErrNotFound)

	publisher.err = errors.New("redis unavailable")
	assert.ErrorContains(t, job.Execute(context.Background()), "redis unavailable")
}

func TestSearchIndexJob(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	post := &domain.JournalPost{ID: uuid.New(), UserID: userID, Title: "Day one"}
	goneID := uuid.New()

	tests := []struct {
		name        string
		target      SearchIndexPayload
		wantIndexed []uuid.UUID
		wantDeleted []uuid.UUID
	}{
		{"index existing", SearchIndexPayload{UserID: userID, PostID: post.ID}, []uuid.UUID{post.ID}, nil},
		{"explicit delete", SearchIndexPayload{UserID: userID, PostID: post.ID, Delete: true}, nil, []uuid.UUID{post.ID}},
		{"deleted since queued", SearchIndexPayload{UserID: userID, PostID: goneID}, nil, []uuid.UUID{goneID}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			indexer := &recordingIndexer{}
			factory := NewSearchIndexFactory(stubPosts{post.ID: post}, indexer)
			job, err := factory.New(tt.target)
			require.NoError(t, err)

			require.NoError(t, job.Execute(context.Background()))
			assert.Equal(t, tt.wantIndexed, indexer.indexed)
			assert.Equal(t, tt.wantDeleted, indexer.deleted)
		})
	}
}

func TestFromRecordRejectsBadPayload(t *testing.T) {
	t.Parallel()

	rec := Record{ID: uuid.New(), Type: TypeSearchIndex, Payload: []byte("{")}
	_, err := NewSearchIndexFactory(stubPosts{}, &recordingIndexer{}).FromRecord(rec)
	assert.Error(t, err)
}

type recordingSubmitter struct {
	jobs []Job
	err  error
}

func (s *recordingSubmitter) Submit(ctx context.Context, job Job) error {
	if s.err != nil {
		return s.err
	}
	s.jobs = append(s.jobs, job)
	return nil
}

func TestEventHandler(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	completionID := uuid.New()
	postID := uuid.New()
	feed := NewFeedPublishFactory(stubActivities{}, &recordingPublisher{})
	search := NewSearchIndexFactory(stubPosts{}, &recordingIndexer{})

	event := func(typ string, payload any) *events.Event {
		e, err := events.NewEvent(typ, userID, payload)
		require.NoError(t, err)
		return e
	}

	tests := []struct {
		name     string
		event    *events.Event
		wantType string
		check    func(t *testing.T, job Job)
	}{
		{
			name:     "completion publishes to feed",
			event:    event(events.TypeTaskCompleted, events.CompletionPayload{TaskID: uuid.New(), CompletionID: &completionID}),
			wantType: TypeFeedPublish,
			check: func(t *testing.T, job Job) {
				assert.Equal(t, completionID, job.(*FeedPublishJob).completionID)
			},
		},
		{
			name:     "post saved is indexed",
			event:    event(events.TypeJournalPostSaved, events.PostPayload{PostID: postID}),
			wantType: TypeSearchIndex,
			check: func(t *testing.T, job Job) {
				assert.Equal(t, SearchIndexPayload{UserID: userID, PostID: postID}, job.(*SearchIndexJob).target)
			},
		},
		{
			name:     "post deleted is removed",
			event:    event(events.TypeJournalPostDeleted, events.PostPayload{PostID: postID}),
			wantType: TypeSearchIndex,
			check: func(t *testing.T, job Job) {
				assert.True(t, job.(*SearchIndexJob).target.Delete)
			},
		},
		{
			name:  "reopen is ignored",
			event: event(events.TypeTaskReopened, events.CompletionPayload{TaskID: uuid.New()}),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			submitter := &recordingSubmitter{}
			h := NewEventHandler(feed, search, submitter, discardLogger())
			require.NoError(t, h.HandleEvent(context.Background(), tt.event))

			if tt.wantType == "" {
				assert.Empty(t, submitter.jobs)
				return
			}
			require.Len(t, submitter.jobs, 1)
			assert.Equal(t, tt.wantType, submitter.jobs[0].Type())
			tt.check(t, submitter.jobs[0])
		})
	}
}

func TestEventHandlerSubmitErrors(t *testing.T) {
	t.Parallel()

	search := NewSearchIndexFactory(stubPosts{}, &recordingIndexer{})
	e, err := events.NewEvent(events.TypeJournalPostSaved, uuid.New(), events.PostPayload{PostID: uuid.New()})
	require.NoError(t, err)

	full := NewEventHandler(nil, search, &recordingSubmitter{err: ErrQueueFull}, discardLogger())
	assert.NoError(t, full.HandleEvent(context.Background(), e), "a full queue leaves the job pending")

	broken := NewEventHandler(nil, search, &recordingSubmitter{err: errors.New("insert failed")}, discardLogger())
	assert.ErrorContains(t, broken.HandleEvent(context.Background(), e), "insert failed")
}
