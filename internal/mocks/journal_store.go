package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/store"
)

// MockJournalStore is an in-memory store.JournalStore. SearchPosts matches
// case-insensitive substrings of title and content.
type MockJournalStore struct {
	mu sync.Mutex

	Topics map[uuid.UUID]*domain.JournalTopic
	Posts  map[uuid.UUID]*domain.JournalPost

	CreatePostError error
}

var _ store.JournalStore = (*MockJournalStore)(nil)

// NewMockJournalStore creates an empty MockJournalStore.
func NewMockJournalStore() *MockJournalStore {
	return &MockJournalStore{
		Topics: make(map[uuid.UUID]*domain.JournalTopic),
		Posts:  make(map[uuid.UUID]*domain.JournalPost),
	}
}

// CreateTopic implements store.JournalStore.
func (m *MockJournalStore) CreateTopic(ctx context.Context, topic *domain.JournalTopic) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *topic
	m.Topics[topic.ID] = &c
	return nil
}

// GetTopic implements store.JournalStore.
func (m *MockJournalStore) GetTopic(ctx context.Context, userID, id uuid.UUID) (*domain.JournalTopic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	topic, ok := m.Topics[id]
	if !ok || topic.UserID != userID {
		return nil, store.ErrTopicNotFound
	}
	c := *topic
	return &c, nil
}

// ListTopics implements store.JournalStore.
func (m *MockJournalStore) ListTopics(ctx context.Context, userID uuid.UUID) ([]*domain.JournalTopic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.JournalTopic{}
	for _, t := range m.Topics {
		if t.UserID == userID {
			c := *t
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// UpdateTopic implements store.JournalStore.
func (m *MockJournalStore) UpdateTopic(ctx context.Context, topic *domain.JournalTopic) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Topics[topic.ID]
	if !ok || existing.UserID != topic.UserID {
		return store.ErrTopicNotFound
	}
	c := *topic
	m.Topics[topic.ID] = &c
	return nil
}

// DeleteTopic implements store.JournalStore.
func (m *MockJournalStore) DeleteTopic(ctx context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	topic, ok := m.Topics[id]
	if !ok || topic.UserID != userID {
		return store.ErrTopicNotFound
	}
	delete(m.Topics, id)
	for pid, p := range m.Posts {
		if p.TopicID == id {
			delete(m.Posts, pid)
		}
	}
	return nil
}

// GetPublicTopicByToken implements store.JournalStore.
func (m *MockJournalStore) GetPublicTopicByToken(ctx context.Context, token string) (*domain.JournalTopic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.Topics {
		if t.IsPublic && t.ShareToken != nil && *t.ShareToken == token {
			c := *t
			return &c, nil
		}
	}
	return nil, store.ErrTopicNotFound
}

// CreatePost implements store.JournalStore.
func (m *MockJournalStore) CreatePost(ctx context.Context, post *domain.JournalPost) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreatePostError != nil {
		return m.CreatePostError
	}
	c := *post
	m.Posts[post.ID] = &c
	return nil
}

// GetPost implements store.JournalStore.
func (m *MockJournalStore) GetPost(ctx context.Context, userID, id uuid.UUID) (*domain.JournalPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	post, ok := m.Posts[id]
	if !ok || post.UserID != userID {
		return nil, store.ErrPostNotFound
	}
	c := *post
	return &c, nil
}

// ListPosts implements store.JournalStore.
func (m *MockJournalStore) ListPosts(ctx context.Context, userID, topicID uuid.UUID) ([]*domain.JournalPost, error) {
	return m.posts(func(p *domain.JournalPost) bool {
		return p.UserID == userID && p.TopicID == topicID
	}, 0), nil
}

// RecentPosts implements store.JournalStore.
func (m *MockJournalStore) RecentPosts(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.JournalPost, error) {
	return m.posts(func(p *domain.JournalPost) bool { return p.UserID == userID }, limit), nil
}

// ListPublicPosts implements store.JournalStore.
func (m *MockJournalStore) ListPublicPosts(ctx context.Context, topicID uuid.UUID) ([]*domain.JournalPost, error) {
	return m.posts(func(p *domain.JournalPost) bool { return p.TopicID == topicID }, 0), nil
}

// SearchPosts implements store.JournalStore.
func (m *MockJournalStore) SearchPosts(
	ctx context.Context,
	userID uuid.UUID,
	query string,
	limit int,
) ([]*domain.JournalPost, error) {
	q := strings.ToLower(query)
	return m.posts(func(p *domain.JournalPost) bool {
		return p.UserID == userID &&
			(strings.Contains(strings.ToLower(p.Title), q) || strings.Contains(strings.ToLower(p.Content), q))
	}, limit), nil
}

// UpdatePost implements store.JournalStore.
func (m *MockJournalStore) UpdatePost(ctx context.Context, post *domain.JournalPost) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Posts[post.ID]
	if !ok || existing.UserID != post.UserID {
		return store.ErrPostNotFound
	}
	c := *post
	m.Posts[post.ID] = &c
	return nil
}

// DeletePost implements store.JournalStore.
func (m *MockJournalStore) DeletePost(ctx context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	post, ok := m.Posts[id]
	if !ok || post.UserID != userID {
		return store.ErrPostNotFound
	}
	delete(m.Posts, id)
	return nil
}

// posts returns matching posts, newest entry date first.
func (m *MockJournalStore) posts(keep func(*domain.JournalPost) bool, limit int) []*domain.JournalPost {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.JournalPost{}
	for _, p := range m.Posts {
		if keep(p) {
			c := *p
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EntryDate != out[j].EntryDate {
			return out[i].EntryDate.After(out[j].EntryDate)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
