package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/mocks"
	"github.com/phrazzld/dmo-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateService_Create(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	tags := mocks.NewMockTagStore()
	svc := NewTemplateService(mocks.NewMockTemplateStore(), tags, testLogger())

	first, err := svc.Create(ctx, userID, TemplateInput{Title: "Đọc sách", Quadrant: domain.QuadrantSchedule})
	require.NoError(t, err)
	second, err := svc.Create(ctx, userID, TemplateInput{Title: "Plan", Quadrant: domain.QuadrantDoNow})
	require.NoError(t, err)
	pinned, err := svc.Create(ctx, userID, TemplateInput{Title: "Pinned", Quadrant: domain.QuadrantDoNow, OrderIndex: ptr(7)})
	require.NoError(t, err)
	paused, err := svc.Create(ctx, userID, TemplateInput{Title: "Paused", Quadrant: domain.QuadrantDelegate, IsActive: ptr(false)})
	require.NoError(t, err)

	assert.Equal(t, 0, first.OrderIndex)
	assert.Equal(t, 1, second.OrderIndex, "appended after existing templates")
	assert.Equal(t, 7, pinned.OrderIndex)
	assert.True(t, first.IsActive)
	assert.False(t, paused.IsActive)

	list, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, "Pinned", list[3].Title)
}

func TestTemplateService_Create_Validation(t *testing.T) {
	ctx := context.Background()
	svc := NewTemplateService(mocks.NewMockTemplateStore(), mocks.NewMockTagStore(), testLogger())
	userID := uuid.New()

	_, err := svc.Create(ctx, userID, TemplateInput{Title: "", Quadrant: domain.QuadrantDoNow})
	assert.ErrorIs(t, err, domain.ErrTemplateTitleEmpty)

	_, err = svc.Create(ctx, userID, TemplateInput{Title: "x", Quadrant: "soon"})
	assert.ErrorIs(t, err, domain.ErrInvalidQuadrant)

	_, err = svc.Create(ctx, userID, TemplateInput{Title: "x", Quadrant: domain.QuadrantDoNow, TagID: newID()})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTemplateService_Update(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	templates := mocks.NewMockTemplateStore()
	svc := NewTemplateService(templates, mocks.NewMockTagStore(), testLogger())
	reactivatedAt := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
	svc.now = fixedClock(reactivatedAt)

	tpl, err := svc.Create(ctx, userID, TemplateInput{Title: "Run", Quadrant: domain.QuadrantSchedule})
	require.NoError(t, err)
	activatedAt := tpl.ActivatedAt

	paused, err := svc.Update(ctx, userID, tpl.ID, TemplateInput{Title: "Run 5k", Quadrant: domain.QuadrantSchedule, IsActive: ptr(false)})
	require.NoError(t, err)
	assert.False(t, paused.IsActive)
	assert.Equal(t, "Run 5k", paused.Title)
	assert.Equal(t, activatedAt, paused.ActivatedAt, "deactivating keeps the activation time")

	resumed, err := svc.Update(ctx, userID, tpl.ID, TemplateInput{Title: "Run 5k", Quadrant: domain.QuadrantDoNow, IsActive: ptr(true)})
	require.NoError(t, err)
	assert.True(t, resumed.IsActive)
	assert.True(t, reactivatedAt.Equal(resumed.ActivatedAt), "reactivation is stamped")

	kept, err := svc.Update(ctx, userID, tpl.ID, TemplateInput{Title: "Run 10k", Quadrant: domain.QuadrantDoNow})
	require.NoError(t, err)
	assert.True(t, kept.IsActive, "nil active flag keeps the state")

	_, err = svc.Update(ctx, userID, tpl.ID, TemplateInput{Title: " ", Quadrant: domain.QuadrantDoNow})
	assert.ErrorIs(t, err, domain.ErrTemplateTitleEmpty)

	_, err = svc.Update(ctx, uuid.New(), tpl.ID, TemplateInput{Title: "x", Quadrant: domain.QuadrantDoNow})
	assert.ErrorIs(t, err, store.ErrTemplateNotFound)

	require.NoError(t, svc.Delete(ctx, userID, tpl.ID))
	assert.Empty(t, templates.Templates)
}
