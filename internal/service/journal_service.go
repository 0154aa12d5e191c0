package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/events"
	"github.com/phrazzld/dmo-api/internal/platform/logger"
	"github.com/phrazzld/dmo-api/internal/search"
	"github.com/phrazzld/dmo-api/internal/store"
)

// DefaultRecentPosts is the number of posts RecentPosts returns by default.
const DefaultRecentPosts = 20

// shareTokenBytes is the entropy of a share token.
const shareTokenBytes = 24

// PostInput carries the editable fields of a journal post.
type PostInput struct {
	TopicID   uuid.UUID
	Title     string
	Content   string
	Mood      *int
	EntryDate domain.Date
}

// SharedTopic is a public topic with its posts.
type SharedTopic struct {
	Topic *domain.JournalTopic  `json:"topic"`
	Posts []*domain.JournalPost `json:"posts"`
}

// Searcher finds journal posts. *search.Service implements it.
type Searcher interface {
	Search(ctx context.Context, userID uuid.UUID, query string, limit int) ([]search.Result, error)
}

// JournalService manages journal topics and posts.
type JournalService struct {
	journal  store.JournalStore
	searcher Searcher
	emitter  events.EventEmitter
	policy   *bluemonday.Policy
	loc      *time.Location
	now      func() time.Time
	logger   *slog.Logger
}

var _ PostLookup = (*JournalService)(nil)

// NewJournalService creates a JournalService. emitter may be nil.
func NewJournalService(
	journal store.JournalStore,
	searcher Searcher,
	emitter events.EventEmitter,
	loc *time.Location,
	logger *slog.Logger,
) *JournalService {
	if journal == nil {
		panic("journal store cannot be nil")
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &JournalService{
		journal:  journal,
		searcher: searcher,
		emitter:  emitter,
		policy:   bluemonday.UGCPolicy(),
		loc:      loc,
		now:      time.Now,
		logger:   logger.With("component", "journal_service"),
	}
}

// ListTopics returns the user's topics.
func (s *JournalService) ListTopics(ctx context.Context, userID uuid.UUID) ([]*domain.JournalTopic, error) {
	return s.journal.ListTopics(ctx, userID)
}

// CreateTopic adds a private topic.
func (s *JournalService) CreateTopic(ctx context.Context, userID uuid.UUID, name string) (*domain.JournalTopic, error) {
	topic, err := domain.NewJournalTopic(userID, name)
	if err != nil {
		return nil, err
	}
	if err := s.journal.CreateTopic(ctx, topic); err != nil {
		return nil, NewServiceError("journal", "create topic", err)
	}
	return topic, nil
}

// RenameTopic changes a topic's name.
func (s *JournalService) RenameTopic(ctx context.Context, userID, id uuid.UUID, name string) (*domain.JournalTopic, error) {
	topic, err := s.journal.GetTopic(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	topic.Name = strings.TrimSpace(name)
	if err := topic.Validate(); err != nil {
		return nil, err
	}
	return topic, s.saveTopic(ctx, topic)
}

// ShareTopic makes a topic public. A token is generated on first share and
// kept while the topic stays shared.
func (s *JournalService) ShareTopic(ctx context.Context, userID, id uuid.UUID) (*domain.JournalTopic, error) {
	topic, err := s.journal.GetTopic(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if topic.ShareToken == nil {
		token, err := newShareToken()
		if err != nil {
			return nil, NewServiceError("journal", "share topic", err)
		}
		topic.ShareToken = &token
	}
	topic.IsPublic = true
	return topic, s.saveTopic(ctx, topic)
}

// UnshareTopic makes a topic private and revokes its token.
func (s *JournalService) UnshareTopic(ctx context.Context, userID, id uuid.UUID) (*domain.JournalTopic, error) {
	topic, err := s.journal.GetTopic(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	topic.IsPublic = false
	topic.ShareToken = nil
	return topic, s.saveTopic(ctx, topic)
}

func (s *JournalService) saveTopic(ctx context.Context, topic *domain.JournalTopic) error {
	topic.UpdatedAt = s.now().UTC()
	if err := s.journal.UpdateTopic(ctx, topic); err != nil {
		if store.IsNotFoundError(err) {
			return err
		}
		return NewServiceError("journal", "update topic", err)
	}
	return nil
}

// DeleteTopic removes a topic and its posts.
func (s *JournalService) DeleteTopic(ctx context.Context, userID, id uuid.UUID) error {
	posts, err := s.journal.ListPosts(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.journal.DeleteTopic(ctx, userID, id); err != nil {
		return err
	}
	for _, p := range posts {
		s.emit(ctx, events.TypeJournalPostDeleted, userID, p.ID)
	}
	return nil
}

// GetShared returns a public topic and its posts by share token.
func (s *JournalService) GetShared(ctx context.Context, token string) (*SharedTopic, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrShareNotFound
	}
	topic, err := s.journal.GetPublicTopicByToken(ctx, token)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrShareNotFound
		}
		return nil, NewServiceError("journal", "get shared topic", err)
	}
	posts, err := s.journal.ListPublicPosts(ctx, topic.ID)
	if err != nil {
		return nil, NewServiceError("journal", "get shared topic", err)
	}
	return &SharedTopic{Topic: topic, Posts: posts}, nil
}

// ListPosts returns a topic's posts, newest entry first.
func (s *JournalService) ListPosts(ctx context.Context, userID, topicID uuid.UUID) ([]*domain.JournalPost, error) {
	if _, err := s.journal.GetTopic(ctx, userID, topicID); err != nil {
		return nil, err
	}
	return s.journal.ListPosts(ctx, userID, topicID)
}

// RecentPosts returns the user's latest posts across topics.
func (s *JournalService) RecentPosts(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.JournalPost, error) {
	if limit <= 0 || limit > MaxFeedLimit {
		limit = DefaultRecentPosts
	}
	return s.journal.RecentPosts(ctx, userID, limit)
}

// GetPost returns one of the user's posts.
func (s *JournalService) GetPost(ctx context.Context, userID, id uuid.UUID) (*domain.JournalPost, error) {
	return s.journal.GetPost(ctx, userID, id)
}

// CreatePost adds a post to one of the user's topics. A zero entry date
// means today.
func (s *JournalService) CreatePost(ctx context.Context, userID uuid.UUID, in PostInput) (*domain.JournalPost, error) {
	if _, err := s.journal.GetTopic(ctx, userID, in.TopicID); err != nil {
		if store.IsNotFoundError(err) {
			return nil, invalid("unknown topic")
		}
		return nil, NewServiceError("journal", "create post", err)
	}

	now := s.now().UTC()
	post := &domain.JournalPost{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now,
	}
	s.applyPost(post, in, now)
	if err := post.Validate(); err != nil {
		return nil, err
	}

	if err := s.journal.CreatePost(ctx, post); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create post",
			"error", err,
			"user_id", userID)
		return nil, NewServiceError("journal", "create post", err)
	}
	s.emit(ctx, events.TypeJournalPostSaved, userID, post.ID)
	return post, nil
}

// UpdatePost replaces a post's fields. The post may move to another of the
// user's topics.
func (s *JournalService) UpdatePost(ctx context.Context, userID, id uuid.UUID, in PostInput) (*domain.JournalPost, error) {
	post, err := s.journal.GetPost(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if in.TopicID != post.TopicID {
		if _, err := s.journal.GetTopic(ctx, userID, in.TopicID); err != nil {
			if store.IsNotFoundError(err) {
				return nil, invalid("unknown topic")
			}
			return nil, NewServiceError("journal", "update post", err)
		}
	}

	s.applyPost(post, in, s.now().UTC())
	if err := post.Validate(); err != nil {
		return nil, err
	}
	if err := s.journal.UpdatePost(ctx, post); err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		return nil, NewServiceError("journal", "update post", err)
	}
	s.emit(ctx, events.TypeJournalPostSaved, userID, post.ID)
	return post, nil
}

func (s *JournalService) applyPost(post *domain.JournalPost, in PostInput, now time.Time) {
	post.TopicID = in.TopicID
	post.Title = strings.TrimSpace(in.Title)
	post.Content = s.policy.Sanitize(in.Content)
	post.Mood = in.Mood
	post.EntryDate = in.EntryDate
	if post.EntryDate.IsZero() {
		post.EntryDate = domain.DateOf(now.In(s.loc))
	}
	post.UpdatedAt = now
}

// DeletePost removes a post.
func (s *JournalService) DeletePost(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.journal.DeletePost(ctx, userID, id); err != nil {
		return err
	}
	s.emit(ctx, events.TypeJournalPostDeleted, userID, id)
	return nil
}

// Search finds the user's posts matching query.
func (s *JournalService) Search(ctx context.Context, userID uuid.UUID, query string, limit int) ([]search.Result, error) {
	if s.searcher == nil {
		return nil, ErrUnavailable
	}
	results, err := s.searcher.Search(ctx, userID, query, limit)
	if err != nil {
		return nil, NewServiceError("journal", "search", err)
	}
	return results, nil
}

func (s *JournalService) emit(ctx context.Context, eventType string, userID, postID uuid.UUID) {
	err := events.Emit(ctx, s.emitter, eventType, userID, events.PostPayload{PostID: postID})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to emit journal event",
			"error", err,
			"event_type", eventType,
			"post_id", postID)
	}
}

func newShareToken() (string, error) {
	b := make([]byte, shareTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate share token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
