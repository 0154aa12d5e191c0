package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/platform/logger"
	"github.com/phrazzld/dmo-api/internal/realtime"
	"github.com/phrazzld/dmo-api/internal/store"
)

// LeaderboardPeriod selects how far back completions are counted.
type LeaderboardPeriod string

// Leaderboard periods.
const (
	PeriodDay   LeaderboardPeriod = "day"
	PeriodWeek  LeaderboardPeriod = "week"
	PeriodMonth LeaderboardPeriod = "month"
	PeriodYear  LeaderboardPeriod = "year"
)

// ParseLeaderboardPeriod maps s to a period. Unknown values select the week.
func ParseLeaderboardPeriod(s string) LeaderboardPeriod {
	switch p := LeaderboardPeriod(s); p {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return p
	default:
		return PeriodWeek
	}
}

// Leaderboard and feed sizes.
const (
	LeaderboardSize  = 10
	DefaultFeedLimit = 20
	MaxFeedLimit     = 100
)

// LeaderboardEntry is one ranked user.
type LeaderboardEntry struct {
	Rank            int       `json:"rank"`
	UserID          uuid.UUID `json:"user_id"`
	UserName        string    `json:"user_name"`
	CompletionCount int       `json:"completion_count"`
}

// Leaderboard is the top of the ranking plus the caller's own entry when
// the caller made the top.
type Leaderboard struct {
	Period  LeaderboardPeriod  `json:"period"`
	Since   time.Time          `json:"since"`
	Entries []LeaderboardEntry `json:"entries"`
	Me      *LeaderboardEntry  `json:"me,omitempty"`
}

// CommunityStats are completion counts across all users together with the
// caller's own counts.
type CommunityStats struct {
	Today        int `json:"today"`
	Week         int `json:"week"`
	Month        int `json:"month"`
	TotalUsers   int `json:"total_users"`
	TodayVsYday  int `json:"today_vs_yesterday"`
	MyToday      int `json:"my_today"`
	MyWeek       int `json:"my_week"`
	MyMonth      int `json:"my_month"`
	MyWeeklyRank int `json:"my_weekly_rank"`
}

// SocialService serves the leaderboard, community stats and activity feed.
type SocialService struct {
	completions store.CompletionStore
	users       store.UserStore
	broker      *realtime.Broker
	loc         *time.Location
	now         func() time.Time
	logger      *slog.Logger
}

// NewSocialService creates a SocialService. broker may be nil, in which
// case streaming is unavailable.
func NewSocialService(
	completions store.CompletionStore,
	users store.UserStore,
	broker *realtime.Broker,
	loc *time.Location,
	logger *slog.Logger,
) *SocialService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SocialService{
		completions: completions,
		users:       users,
		broker:      broker,
		loc:         loc,
		now:         time.Now,
		logger:      logger.With("component", "social_service"),
	}
}

func (s *SocialService) today() domain.Date {
	return domain.DateOf(s.now().In(s.loc))
}

// periodStart is the first instant of period. Leaderboard weeks start on
// Sunday.
func (s *SocialService) periodStart(period LeaderboardPeriod) time.Time {
	today := s.today()
	switch period {
	case PeriodDay:
		return today.In(s.loc)
	case PeriodMonth:
		return monthStart(today).In(s.loc)
	case PeriodYear:
		return yearStart(today).In(s.loc)
	default:
		return weekStart(today, time.Sunday).In(s.loc)
	}
}

// Leaderboard ranks users by completions since the start of period.
func (s *SocialService) Leaderboard(ctx context.Context, userID uuid.UUID, period LeaderboardPeriod) (*Leaderboard, error) {
	period = ParseLeaderboardPeriod(string(period))
	since := s.periodStart(period)

	counts, err := s.completions.CountsByUserSince(ctx, since)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to rank users",
			"error", err,
			"period", period)
		return nil, NewServiceError("social", "leaderboard", err)
	}

	lb := &Leaderboard{Period: period, Since: since, Entries: []LeaderboardEntry{}}
	for i, c := range counts {
		if i == LeaderboardSize {
			break
		}
		entry := LeaderboardEntry{Rank: i + 1, UserID: c.UserID, UserName: c.Name, CompletionCount: c.Count}
		lb.Entries = append(lb.Entries, entry)
		if c.UserID == userID {
			me := entry
			lb.Me = &me
		}
	}
	return lb, nil
}

// Stats returns community and personal completion counts. Stats weeks
// start on Monday.
func (s *SocialService) Stats(ctx context.Context, userID uuid.UUID) (*CommunityStats, error) {
	today := s.today()
	dayStart := today.In(s.loc)
	tomorrow := today.AddDays(1).In(s.loc)
	yesterday := today.AddDays(-1).In(s.loc)
	week := weekStart(today, time.Monday).In(s.loc)
	month := monthStart(today).In(s.loc)

	var st CommunityStats
	var yday int
	counts := []struct {
		dst      *int
		from, to time.Time
		own      bool
	}{
		{&st.Today, dayStart, tomorrow, false},
		{&yday, yesterday, dayStart, false},
		{&st.Week, week, tomorrow, false},
		{&st.Month, month, tomorrow, false},
		{&st.MyToday, dayStart, tomorrow, true},
		{&st.MyWeek, week, tomorrow, true},
		{&st.MyMonth, month, tomorrow, true},
	}
	for _, c := range counts {
		var n int
		var err error
		if c.own {
			n, err = s.completions.CountForUserBetween(ctx, userID, c.from, c.to)
		} else {
			n, err = s.completions.CountBetween(ctx, c.from, c.to)
		}
		if err != nil {
			return nil, NewServiceError("social", "stats", err)
		}
		*c.dst = n
	}
	st.TodayVsYday = st.Today - yday

	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, NewServiceError("social", "stats", err)
	}
	st.TotalUsers = users

	ranked, err := s.completions.CountsByUserSince(ctx, week)
	if err != nil {
		return nil, NewServiceError("social", "stats", err)
	}
	for i, c := range ranked {
		if c.UserID == userID {
			st.MyWeeklyRank = i + 1
			break
		}
	}
	return &st, nil
}

// Feed returns the newest completions across all users.
func (s *SocialService) Feed(ctx context.Context, limit int) ([]domain.ActivityItem, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	if limit > MaxFeedLimit {
		limit = MaxFeedLimit
	}
	items, err := s.completions.Recent(ctx, limit)
	if err != nil {
		return nil, NewServiceError("social", "feed", err)
	}
	return items, nil
}

// Stream subscribes to completions as they happen. The caller closes the
// subscription. Returns ErrUnavailable without a broker.
func (s *SocialService) Stream(ctx context.Context) (*realtime.Subscription, error) {
	if s.broker == nil {
		return nil, ErrUnavailable
	}
	sub, err := s.broker.Subscribe(ctx)
	if err != nil {
		return nil, NewServiceError("social", "stream", err)
	}
	return sub, nil
}
