package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/service"
	"github.com/phrazzld/dmo-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTasks records the last input it saw and returns canned results.
type fakeTasks struct {
	lastInput    service.TaskInput
	lastQuadrant domain.Quadrant
	err          error
}

func (f *fakeTasks) task(userID, id uuid.UUID, in service.TaskInput) *domain.Task {
	now := time.Now().UTC()
	return &domain.Task{
		ID:        id,
		UserID:    userID,
		Date:      in.Date,
		Title:     in.Title,
		Quadrant:  in.Quadrant,
		Status:    domain.TaskStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (f *fakeTasks) Create(_ context.Context, userID uuid.UUID, in service.TaskInput) (*domain.Task, error) {
	f.lastInput = in
	if f.err != nil {
		return nil, f.err
	}
	return f.task(userID, uuid.New(), in), nil
}

func (f *fakeTasks) Update(_ context.Context, userID, id uuid.UUID, in service.TaskInput) (*domain.Task, error) {
	f.lastInput = in
	if f.err != nil {
		return nil, f.err
	}
	return f.task(userID, id, in), nil
}

func (f *fakeTasks) Move(_ context.Context, _, _ uuid.UUID, quadrant domain.Quadrant) error {
	f.lastQuadrant = quadrant
	return f.err
}

func (f *fakeTasks) Toggle(_ context.Context, userID, id uuid.UUID) (*domain.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	task := f.task(userID, id, service.TaskInput{Title: "Thiền 10 phút", Quadrant: domain.QuadrantSchedule})
	task.Status = domain.TaskStatusDone
	return task, nil
}

func (f *fakeTasks) Delete(context.Context, uuid.UUID, uuid.UUID) error {
	return f.err
}

func TestTaskHandlerCreate(t *testing.T) {
	userID := uuid.New()
	today := domain.NewDate(2026, 10, 18)
	todayFn := func() domain.Date { return today }

	t.Run("explicit date", func(t *testing.T) {
		tasks := &fakeTasks{}
		rr := httptest.NewRecorder()

		NewTaskHandler(tasks, todayFn, nil).Create(rr, newRequest(t, http.MethodPost, "/api/tasks", map[string]interface{}{
			"date":     "2026-10-20",
			"title":    "Gọi khách hàng",
			"quadrant": "do_now",
		}, userID, nil))

		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		assert.Equal(t, domain.NewDate(2026, 10, 20), tasks.lastInput.Date)
		assert.Equal(t, domain.QuadrantDoNow, tasks.lastInput.Quadrant)

		var got domain.Task
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Equal(t, "Gọi khách hàng", got.Title)
		assert.Equal(t, userID, got.UserID)
	})

	t.Run("missing date defaults to today", func(t *testing.T) {
		tasks := &fakeTasks{}
		rr := httptest.NewRecorder()

		NewTaskHandler(tasks, todayFn, nil).Create(rr, newRequest(t, http.MethodPost, "/api/tasks", map[string]interface{}{
			"title":    "Review PR",
			"quadrant": "schedule",
		}, userID, nil))

		require.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, today, tasks.lastInput.Date)
	})

	t.Run("invalid quadrant", func(t *testing.T) {
		rr := httptest.NewRecorder()

		NewTaskHandler(&fakeTasks{}, todayFn, nil).Create(rr, newRequest(t, http.MethodPost, "/api/tasks", map[string]interface{}{
			"title":    "Review PR",
			"quadrant": "someday",
		}, userID, nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid Quadrant: invalid value", decodeError(t, rr).Error)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		rr := httptest.NewRecorder()

		NewTaskHandler(&fakeTasks{}, todayFn, nil).Create(rr, newRequest(t, http.MethodPost, "/api/tasks", map[string]interface{}{
			"title":    "Review PR",
			"quadrant": "schedule",
		}, uuid.Nil, nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestTaskHandlerMove(t *testing.T) {
	userID := uuid.New()
	taskID := uuid.New()

	tasks := &fakeTasks{}
	rr := httptest.NewRecorder()
	NewTaskHandler(tasks, nil, nil).Move(rr, newRequest(t, http.MethodPatch, "/api/tasks/"+taskID.String()+"/quadrant",
		MoveTaskRequest{Quadrant: "delegate"}, userID, map[string]string{"id": taskID.String()}))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, domain.QuadrantDelegate, tasks.lastQuadrant)

	rr = httptest.NewRecorder()
	NewTaskHandler(&fakeTasks{err: store.ErrTaskNotFound}, nil, nil).Move(rr, newRequest(t, http.MethodPatch, "/",
		MoveTaskRequest{Quadrant: "delegate"}, userID, map[string]string{"id": taskID.String()}))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Task not found", decodeError(t, rr).Error)
}

func TestTaskHandlerToggleAndDelete(t *testing.T) {
	userID := uuid.New()
	taskID := uuid.New()
	params := map[string]string{"id": taskID.String()}

	rr := httptest.NewRecorder()
	NewTaskHandler(&fakeTasks{}, nil, nil).Toggle(rr, newRequest(t, http.MethodPost, "/", nil, userID, params))
	require.Equal(t, http.StatusOK, rr.Code)
	var got domain.Task
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, domain.TaskStatusDone, got.Status)

	rr = httptest.NewRecorder()
	NewTaskHandler(&fakeTasks{}, nil, nil).Delete(rr, newRequest(t, http.MethodDelete, "/", nil, userID, params))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	NewTaskHandler(&fakeTasks{}, nil, nil).Delete(rr, newRequest(t, http.MethodDelete, "/", nil, userID,
		map[string]string{"id": "nope"}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
