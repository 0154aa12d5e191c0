package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/mocks"
	"github.com/phrazzld/dmo-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisionService(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	svc := NewVisionService(mocks.NewMockVisionStore(), testLogger())

	house, err := svc.Create(ctx, userID, GoalInput{Category: domain.GoalCategoryFinance, Title: "Mua nhà"})
	require.NoError(t, err)
	marathon, err := svc.Create(ctx, userID, GoalInput{Category: domain.GoalCategoryHealth, Title: "Marathon", Description: "sub 4h"})
	require.NoError(t, err)
	assert.Equal(t, 0, house.OrderIndex)
	assert.Equal(t, 1, marathon.OrderIndex)

	_, err = svc.Create(ctx, userID, GoalInput{Category: "fame", Title: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidGoalCategory)

	groups, err := svc.Board(ctx, userID)
	require.NoError(t, err)
	require.Len(t, groups, len(domain.GoalCategories()), "every category is present")
	assert.Equal(t, domain.GoalCategoryFinance, groups[0].Category)
	require.Len(t, groups[0].Goals, 1)
	assert.Equal(t, "Mua nhà", groups[0].Goals[0].Title)
	assert.NotNil(t, groups[1].Goals)
	assert.Empty(t, groups[1].Goals)

	done, err := svc.Toggle(ctx, userID, marathon.ID)
	require.NoError(t, err)
	assert.True(t, done.IsCompleted)
	undone, err := svc.Toggle(ctx, userID, marathon.ID)
	require.NoError(t, err)
	assert.False(t, undone.IsCompleted)

	moved, err := svc.Update(ctx, userID, marathon.ID, GoalInput{Category: domain.GoalCategoryExperiences, Title: "Ultra"})
	require.NoError(t, err)
	assert.Equal(t, domain.GoalCategoryExperiences, moved.Category)
	assert.Equal(t, 1, moved.OrderIndex, "nil order keeps the position")

	_, err = svc.Toggle(ctx, uuid.New(), marathon.ID)
	assert.ErrorIs(t, err, store.ErrGoalNotFound)

	require.NoError(t, svc.Delete(ctx, userID, house.ID))
	groups, err = svc.Board(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, groups[0].Goals)
}
