package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/mocks"
	"github.com/phrazzld/dmo-api/internal/realtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// socialNow is Wednesday 2025-03-12 10:00 UTC.
var socialNow = time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

func complete(m *mocks.MockCompletionStore, userID uuid.UUID, at time.Time) {
	m.Completions = append(m.Completions, &domain.Completion{
		ID:          uuid.New(),
		UserID:      userID,
		TaskID:      uuid.New(),
		TaskTitle:   "task",
		Quadrant:    domain.QuadrantDoNow,
		CompletedAt: at,
	})
}

func newSocialService(completions *mocks.MockCompletionStore, users *mocks.MockUserStore) *SocialService {
	svc := NewSocialService(completions, users, nil, time.UTC, testLogger())
	svc.now = fixedClock(socialNow)
	return svc
}

func TestSocialService_Leaderboard(t *testing.T) {
	completions := mocks.NewMockCompletionStore()
	ids := make([]uuid.UUID, 12)
	for i := range ids {
		ids[i] = uuid.New()
		completions.Names[ids[i]] = fmt.Sprintf("user%02d", i)
		for n := 0; n < 12-i; n++ {
			complete(completions, ids[i], time.Date(2025, 3, 11, 8, n, 0, 0, time.UTC))
		}
	}
	svc := newSocialService(completions, mocks.NewMockUserStore())
	ctx := context.Background()

	lb, err := svc.Leaderboard(ctx, ids[3], PeriodWeek)
	require.NoError(t, err)

	require.Len(t, lb.Entries, LeaderboardSize)
	assert.Equal(t, 1, lb.Entries[0].Rank)
	assert.Equal(t, "user00", lb.Entries[0].UserName)
	assert.Equal(t, 12, lb.Entries[0].CompletionCount)
	require.NotNil(t, lb.Me)
	assert.Equal(t, 4, lb.Me.Rank)
	assert.Equal(t, 9, lb.Me.CompletionCount)

	outside, err := svc.Leaderboard(ctx, ids[11], PeriodWeek)
	require.NoError(t, err)
	assert.Nil(t, outside.Me, "users below the top ten get no entry")
}

func TestSocialService_Leaderboard_Periods(t *testing.T) {
	tests := []struct {
		period LeaderboardPeriod
		since  time.Time
	}{
		{PeriodDay, time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)},
		{PeriodWeek, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)},
		{PeriodMonth, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{PeriodYear, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"decade", time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)},
	}
	svc := newSocialService(mocks.NewMockCompletionStore(), mocks.NewMockUserStore())

	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			lb, err := svc.Leaderboard(context.Background(), uuid.New(), tt.period)
			require.NoError(t, err)
			assert.True(t, tt.since.Equal(lb.Since), "since %s, want %s", lb.Since, tt.since)
			assert.NotNil(t, lb.Entries)
		})
	}
}

func TestSocialService_Stats(t *testing.T) {
	me, other := uuid.New(), uuid.New()
	completions := mocks.NewMockCompletionStore()
	complete(completions, me, time.Date(2025, 3, 12, 8, 0, 0, 0, time.UTC))
	complete(completions, me, time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))
	complete(completions, me, time.Date(2025, 3, 9, 8, 0, 0, 0, time.UTC))
	complete(completions, me, time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))
	complete(completions, other, time.Date(2025, 3, 12, 7, 0, 0, 0, time.UTC))
	complete(completions, other, time.Date(2025, 3, 11, 7, 0, 0, 0, time.UTC))
	complete(completions, other, time.Date(2025, 3, 11, 8, 0, 0, 0, time.UTC))

	users := mocks.NewMockUserStore()
	users.Users["me@example.com"] = &domain.User{ID: me}
	users.Users["other@example.com"] = &domain.User{ID: other}

	st, err := newSocialService(completions, users).Stats(context.Background(), me)
	require.NoError(t, err)

	assert.Equal(t, CommunityStats{
		Today:        2,
		Week:         5,
		Month:        7,
		TotalUsers:   2,
		TodayVsYday:  0,
		MyToday:      1,
		MyWeek:       2,
		MyMonth:      4,
		MyWeeklyRank: 2,
	}, *st)

	st, err = newSocialService(completions, users).Stats(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Zero(t, st.MyWeeklyRank, "unranked")
}

func TestSocialService_Feed(t *testing.T) {
	completions := mocks.NewMockCompletionStore()
	userID := uuid.New()
	completions.Names[userID] = "Giang"
	for i := 0; i < 150; i++ {
		complete(completions, userID, socialNow.Add(-time.Duration(i)*time.Minute))
	}
	svc := newSocialService(completions, mocks.NewMockUserStore())
	ctx := context.Background()

	items, err := svc.Feed(ctx, 0)
	require.NoError(t, err)
	require.Len(t, items, DefaultFeedLimit)
	assert.Equal(t, "Giang", items[0].UserName)
	assert.True(t, items[0].CompletedAt.Equal(socialNow), "newest first")

	items, err = svc.Feed(ctx, 1000)
	require.NoError(t, err)
	assert.Len(t, items, MaxFeedLimit)
}

func TestSocialService_Stream(t *testing.T) {
	ctx := context.Background()

	t.Run("without broker", func(t *testing.T) {
		svc := newSocialService(mocks.NewMockCompletionStore(), mocks.NewMockUserStore())
		sub, err := svc.Stream(ctx)
		assert.Nil(t, sub)
		assert.True(t, errors.Is(err, ErrUnavailable))
	})

	t.Run("with broker", func(t *testing.T) {
		s := miniredis.RunT(t)
		client, err := realtime.NewClient(ctx, "redis://"+s.Addr())
		require.NoError(t, err)
		t.Cleanup(func() { _ = client.Close() })
		broker := realtime.NewBroker(client, "", testLogger())

		svc := NewSocialService(mocks.NewMockCompletionStore(), mocks.NewMockUserStore(), broker, time.UTC, testLogger())
		sub, err := svc.Stream(ctx)
		require.NoError(t, err)
		defer func() { _ = sub.Close() }()

		item := domain.ActivityItem{UserName: "Giang"}
		item.ID = uuid.New()
		require.NoError(t, broker.Publish(ctx, item))

		select {
		case got := <-sub.Items():
			assert.Equal(t, item.ID, got.ID)
			assert.Equal(t, "Giang", got.UserName)
		case <-time.After(2 * time.Second):
			t.Fatal("no item received")
		}
	})
}
