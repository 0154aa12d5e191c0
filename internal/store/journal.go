package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
)

// JournalStore defines the interface for journal topics and posts.
type JournalStore interface {
	CreateTopic(ctx context.Context, topic *domain.JournalTopic) error
	GetTopic(ctx context.Context, userID, id uuid.UUID) (*domain.JournalTopic, error)
	ListTopics(ctx context.Context, userID uuid.UUID) ([]*domain.JournalTopic, error)
	// UpdateTopic saves name, public flag and share token.
	UpdateTopic(ctx context.Context, topic *domain.JournalTopic) error
	// DeleteTopic removes the topic and its posts.
	DeleteTopic(ctx context.Context, userID, id uuid.UUID) error
	// GetPublicTopicByToken ignores ownership; only public topics match.
	GetPublicTopicByToken(ctx context.Context, token string) (*domain.JournalTopic, error)

	CreatePost(ctx context.Context, post *domain.JournalPost) error
	GetPost(ctx context.Context, userID, id uuid.UUID) (*domain.JournalPost, error)
	// ListPosts returns a topic's posts, newest entry date first.
	ListPosts(ctx context.Context, userID, topicID uuid.UUID) ([]*domain.JournalPost, error)
	// RecentPosts returns the user's latest posts across topics.
	RecentPosts(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.JournalPost, error)
	// ListPublicPosts returns a public topic's posts without an ownership check.
	ListPublicPosts(ctx context.Context, topicID uuid.UUID) ([]*domain.JournalPost, error)
	// SearchPosts runs a full-text query over the user's posts, best match first.
	SearchPosts(ctx context.Context, userID uuid.UUID, query string, limit int) ([]*domain.JournalPost, error)
	UpdatePost(ctx context.Context, post *domain.JournalPost) error
	DeletePost(ctx context.Context, userID, id uuid.UUID) error
}
