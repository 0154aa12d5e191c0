package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/events"
	"github.com/phrazzld/dmo-api/internal/mocks"
	"github.com/phrazzld/dmo-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taskFixture struct {
	svc         *TaskService
	tasks       *mocks.MockTaskStore
	completions *mocks.MockCompletionStore
	tags        *mocks.MockTagStore
	journal     *mocks.MockJournalStore
	handler     *recordingHandler
}

func newTaskFixture(t *testing.T) (*taskFixture, func(func())) {
	db, mock := newMockDB(t)
	emitter, handler := newRecordingEmitter()
	f := &taskFixture{
		tasks:       mocks.NewMockTaskStore(),
		completions: mocks.NewMockCompletionStore(),
		tags:        mocks.NewMockTagStore(),
		journal:     mocks.NewMockJournalStore(),
		handler:     handler,
	}
	f.svc = NewTaskService(db, f.tasks, f.completions, f.tags, f.journal, emitter, testLogger())
	f.svc.now = fixedClock(time.Date(2025, 3, 10, 2, 0, 0, 0, time.UTC))

	// inTx expects call to run exactly one committed transaction.
	inTx := func(call func()) {
		mock.ExpectBegin()
		mock.ExpectCommit()
		call()
	}
	return f, inTx
}

func TestTaskService_Create(t *testing.T) {
	f, _ := newTaskFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	date := domain.MustParseDate("2025-03-10")

	first, err := f.svc.Create(ctx, userID, TaskInput{Date: date, Title: " Gọi điện ", Quadrant: domain.QuadrantDoNow})
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, userID, TaskInput{Date: date, Title: "Email", Quadrant: domain.QuadrantDelegate})
	require.NoError(t, err)

	assert.Equal(t, "Gọi điện", first.Title)
	assert.Equal(t, 0, first.OrderIndex)
	assert.Equal(t, 1, second.OrderIndex, "order index is the count of tasks already on the date")
	assert.Nil(t, first.SourceTemplateID)
	assert.Equal(t, domain.TaskStatusPending, first.Status)
}

func TestTaskService_Create_Validation(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	date := domain.MustParseDate("2025-03-10")
	otherUsersTag, err := domain.NewTag(uuid.New(), "Work", "#f00", "", domain.TagCategoryTask)
	require.NoError(t, err)

	tests := []struct {
		name    string
		input   TaskInput
		wantErr error
	}{
		{
			name:    "missing date",
			input:   TaskInput{Title: "x", Quadrant: domain.QuadrantDoNow},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "empty title",
			input:   TaskInput{Date: date, Title: "  ", Quadrant: domain.QuadrantDoNow},
			wantErr: domain.ErrTaskTitleEmpty,
		},
		{
			name:    "unknown quadrant",
			input:   TaskInput{Date: date, Title: "x", Quadrant: "urgent"},
			wantErr: domain.ErrInvalidQuadrant,
		},
		{
			name:    "tag of another user",
			input:   TaskInput{Date: date, Title: "x", Quadrant: domain.QuadrantDoNow, TagID: &otherUsersTag.ID},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "unknown linked post",
			input:   TaskInput{Date: date, Title: "x", Quadrant: domain.QuadrantDoNow, LinkedPostID: newID()},
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := newTaskFixture(t)
			require.NoError(t, f.tags.Create(ctx, otherUsersTag))

			task, err := f.svc.Create(ctx, userID, tt.input)

			assert.Nil(t, task)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.tasks.All())
		})
	}
}

func TestTaskService_Update(t *testing.T) {
	f, _ := newTaskFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	tag, err := domain.NewTag(userID, "Work", "#f00", "", domain.TagCategoryTask)
	require.NoError(t, err)
	require.NoError(t, f.tags.Create(ctx, tag))

	task, err := f.svc.Create(ctx, userID, TaskInput{
		Date:     domain.MustParseDate("2025-03-10"),
		Title:    "Draft",
		Quadrant: domain.QuadrantSchedule,
	})
	require.NoError(t, err)

	deadline := time.Date(2025, 3, 12, 17, 0, 0, 0, ict)
	updated, err := f.svc.Update(ctx, userID, task.ID, TaskInput{
		Title:       "Final",
		Description: "ship it",
		Quadrant:    domain.QuadrantDoNow,
		DeadlineAt:  &deadline,
		TagID:       &tag.ID,
	})
	require.NoError(t, err)

	stored, err := f.tasks.GetByID(ctx, userID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Final", stored.Title)
	assert.Equal(t, domain.QuadrantDoNow, stored.Quadrant)
	assert.Equal(t, task.Date, stored.Date, "update keeps the date")
	require.NotNil(t, stored.DeadlineAt)
	assert.True(t, deadline.Equal(*stored.DeadlineAt))
	assert.Equal(t, time.UTC, updated.DeadlineAt.Location())
	assert.Equal(t, &tag.ID, stored.TagID)

	_, err = f.svc.Update(ctx, uuid.New(), task.ID, TaskInput{Title: "x", Quadrant: domain.QuadrantDoNow})
	assert.ErrorIs(t, err, store.ErrTaskNotFound, "tasks of other users are invisible")
}

func TestTaskService_Move(t *testing.T) {
	f, _ := newTaskFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	task, err := f.svc.Create(ctx, userID, TaskInput{
		Date:     domain.MustParseDate("2025-03-10"),
		Title:    "Move me",
		Quadrant: domain.QuadrantEliminate,
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Move(ctx, userID, task.ID, domain.QuadrantDoNow))
	stored, err := f.tasks.GetByID(ctx, userID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuadrantDoNow, stored.Quadrant)

	assert.ErrorIs(t, f.svc.Move(ctx, userID, task.ID, "nowhere"), domain.ErrInvalidQuadrant)
}

func TestTaskService_Toggle(t *testing.T) {
	f, inTx := newTaskFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	task, err := f.svc.Create(ctx, userID, TaskInput{
		Date:     domain.MustParseDate("2025-03-10"),
		Title:    "Thiền 10 phút",
		Quadrant: domain.QuadrantSchedule,
	})
	require.NoError(t, err)

	inTx(func() {
		done, err := f.svc.Toggle(ctx, userID, task.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusDone, done.Status)
	})

	require.Len(t, f.completions.Completions, 1)
	c := f.completions.Completions[0]
	assert.Equal(t, task.ID, c.TaskID)
	assert.Equal(t, "Thiền 10 phút", c.TaskTitle)
	assert.Equal(t, domain.QuadrantSchedule, c.Quadrant)
	assert.True(t, f.svc.now().Equal(c.CompletedAt))

	inTx(func() {
		reopened, err := f.svc.Toggle(ctx, userID, task.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusPending, reopened.Status)
	})

	assert.Empty(t, f.completions.Completions, "reopening removes the completion")
	assert.Equal(t, []string{events.TypeTaskCompleted, events.TypeTaskReopened}, f.handler.types())

	var payload events.CompletionPayload
	require.NoError(t, f.handler.events[0].UnmarshalPayload(&payload))
	assert.Equal(t, task.ID, payload.TaskID)
	require.NotNil(t, payload.CompletionID)
	assert.Equal(t, c.ID, *payload.CompletionID)
}

func TestTaskService_Toggle_Failures(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("unknown task rolls back", func(t *testing.T) {
		db, mock := newMockDB(t)
		tasks := mocks.NewMockTaskStore()
		svc := NewTaskService(db, tasks, mocks.NewMockCompletionStore(), mocks.NewMockTagStore(),
			mocks.NewMockJournalStore(), nil, testLogger())

		mock.ExpectBegin()
		mock.ExpectRollback()
		task, err := svc.Toggle(ctx, userID, uuid.New())

		assert.Nil(t, task)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("completion failure rolls back", func(t *testing.T) {
		db, mock := newMockDB(t)
		tasks := mocks.NewMockTaskStore()
		completions := mocks.NewMockCompletionStore()
		completions.CreateError = errors.New("connection reset")
		emitter, handler := newRecordingEmitter()
		svc := NewTaskService(db, tasks, completions, mocks.NewMockTagStore(),
			mocks.NewMockJournalStore(), emitter, testLogger())

		task, err := domain.NewTask(userID, domain.MustParseDate("2025-03-10"), "x", domain.QuadrantDoNow)
		require.NoError(t, err)
		tasks.Put(task)

		mock.ExpectBegin()
		mock.ExpectRollback()
		got, err := svc.Toggle(ctx, userID, task.ID)

		assert.Nil(t, got)
		var svcErr *ServiceError
		require.True(t, errors.As(err, &svcErr))
		assert.Equal(t, "toggle", svcErr.Op)
		assert.ErrorIs(t, err, completions.CreateError)
		assert.Empty(t, handler.types(), "no event for a rolled back toggle")
	})

	t.Run("reopen without completion succeeds", func(t *testing.T) {
		db, mock := newMockDB(t)
		tasks := mocks.NewMockTaskStore()
		svc := NewTaskService(db, tasks, mocks.NewMockCompletionStore(), mocks.NewMockTagStore(),
			mocks.NewMockJournalStore(), nil, testLogger())

		task, err := domain.NewTask(userID, domain.MustParseDate("2025-03-10"), "x", domain.QuadrantDoNow)
		require.NoError(t, err)
		task.Status = domain.TaskStatusDone
		tasks.Put(task)

		mock.ExpectBegin()
		mock.ExpectCommit()
		got, err := svc.Toggle(ctx, userID, task.ID)

		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusPending, got.Status)
	})
}

func TestTaskService_Delete(t *testing.T) {
	f, _ := newTaskFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	task, err := f.svc.Create(ctx, userID, TaskInput{
		Date:     domain.MustParseDate("2025-03-10"),
		Title:    "Gone",
		Quadrant: domain.QuadrantEliminate,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Delete(ctx, uuid.New(), task.ID), store.ErrTaskNotFound)
	require.NoError(t, f.svc.Delete(ctx, userID, task.ID))
	assert.Empty(t, f.tasks.All())
}
