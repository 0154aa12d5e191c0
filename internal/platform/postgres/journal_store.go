package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/platform/logger"
	"github.com/phrazzld/dmo-api/internal/store"
)

// PostgresJournalStore implements the store.JournalStore interface on the
// journal_topic and journal_post tables.
type PostgresJournalStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresJournalStore creates a new PostgresJournalStore.
func NewPostgresJournalStore(db store.DBTX, logger *slog.Logger) *PostgresJournalStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresJournalStore{
		db:     db,
		logger: logger.With(slog.String("component", "journal_store")),
	}
}

var _ store.JournalStore = (*PostgresJournalStore)(nil)

const topicColumns = `id, user_id, name, is_public, share_token, created_at, updated_at`

func scanTopic(row interface{ Scan(...any) error }) (*domain.JournalTopic, error) {
	var t domain.JournalTopic
	if err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.IsPublic, &t.ShareToken, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTopic implements store.JournalStore.CreateTopic
func (s *PostgresJournalStore) CreateTopic(ctx context.Context, topic *domain.JournalTopic) error {
	if err := topic.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO journal_topic (`+topicColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		topic.ID, topic.UserID, topic.Name, topic.IsPublic, topic.ShareToken, topic.CreatedAt, topic.UpdatedAt)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create topic",
			slog.String("error", err.Error()),
			slog.String("topic_id", topic.ID.String()))
		return MapError(err)
	}
	return nil
}

// GetTopic implements store.JournalStore.GetTopic
func (s *PostgresJournalStore) GetTopic(ctx context.Context, userID, id uuid.UUID) (*domain.JournalTopic, error) {
	topic, err := scanTopic(s.db.QueryRowContext(ctx,
		`SELECT `+topicColumns+` FROM journal_topic WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		return nil, mapNotFound(err, store.ErrTopicNotFound)
	}
	return topic, nil
}

// GetPublicTopicByToken implements store.JournalStore.GetPublicTopicByToken
func (s *PostgresJournalStore) GetPublicTopicByToken(ctx context.Context, token string) (*domain.JournalTopic, error) {
	topic, err := scanTopic(s.db.QueryRowContext(ctx,
		`SELECT `+topicColumns+` FROM journal_topic WHERE share_token = $1 AND is_public = TRUE`, token))
	if err != nil {
		return nil, mapNotFound(err, store.ErrTopicNotFound)
	}
	return topic, nil
}

// ListTopics implements store.JournalStore.ListTopics
func (s *PostgresJournalStore) ListTopics(ctx context.Context, userID uuid.UUID) ([]*domain.JournalTopic, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+topicColumns+` FROM journal_topic WHERE user_id = $1 ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	topics := []*domain.JournalTopic{}
	for rows.Next() {
		topic, err := scanTopic(rows)
		if err != nil {
			return nil, err
		}
		topics = append(topics, topic)
	}
	return topics, MapError(rows.Err())
}

// UpdateTopic implements store.JournalStore.UpdateTopic
func (s *PostgresJournalStore) UpdateTopic(ctx context.Context, topic *domain.JournalTopic) error {
	if err := topic.Validate(); err != nil {
		return err
	}
	topic.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE journal_topic SET name = $1, is_public = $2, share_token = $3, updated_at = $4
		WHERE id = $5 AND user_id = $6
	`, topic.Name, topic.IsPublic, topic.ShareToken, topic.UpdatedAt, topic.ID, topic.UserID)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrTopicNotFound)
}

// DeleteTopic implements store.JournalStore.DeleteTopic
func (s *PostgresJournalStore) DeleteTopic(ctx context.Context, userID, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM journal_topic WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrTopicNotFound)
}

const postColumns = `id, user_id, topic_id, title, content, mood, entry_date, created_at, updated_at`

func scanPost(row interface{ Scan(...any) error }) (*domain.JournalPost, error) {
	var p domain.JournalPost
	var mood *int16
	if err := row.Scan(
		&p.ID, &p.UserID, &p.TopicID, &p.Title, &p.Content, &mood, &p.EntryDate, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if mood != nil {
		m := int(*mood)
		p.Mood = &m
	}
	return &p, nil
}

// CreatePost implements store.JournalStore.CreatePost
func (s *PostgresJournalStore) CreatePost(ctx context.Context, post *domain.JournalPost) error {
	if err := post.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO journal_post (`+postColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		post.ID, post.UserID, post.TopicID, post.Title, post.Content, post.Mood, post.EntryDate,
		post.CreatedAt, post.UpdatedAt)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create post",
			slog.String("error", err.Error()),
			slog.String("post_id", post.ID.String()))
		return MapError(err)
	}
	return nil
}

// GetPost implements store.JournalStore.GetPost
func (s *PostgresJournalStore) GetPost(ctx context.Context, userID, id uuid.UUID) (*domain.JournalPost, error) {
	post, err := scanPost(s.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM journal_post WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		return nil, mapNotFound(err, store.ErrPostNotFound)
	}
	return post, nil
}

// ListPosts implements store.JournalStore.ListPosts
func (s *PostgresJournalStore) ListPosts(ctx context.Context, userID, topicID uuid.UUID) ([]*domain.JournalPost, error) {
	return s.queryPosts(ctx, `SELECT `+postColumns+` FROM journal_post
		WHERE user_id = $1 AND topic_id = $2
		ORDER BY entry_date DESC, created_at DESC`, userID, topicID)
}

// RecentPosts implements store.JournalStore.RecentPosts
func (s *PostgresJournalStore) RecentPosts(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.JournalPost, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryPosts(ctx, `SELECT `+postColumns+` FROM journal_post
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
}

// SearchPosts runs a full-text query over the user's posts, best match
// first. It backs journal search when no external engine is configured.
func (s *PostgresJournalStore) SearchPosts(
	ctx context.Context,
	userID uuid.UUID,
	query string,
	limit int,
) ([]*domain.JournalPost, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryPosts(ctx, `SELECT `+postColumns+` FROM journal_post
		WHERE user_id = $1 AND search_vector @@ plainto_tsquery('simple', $2)
		ORDER BY ts_rank(search_vector, plainto_tsquery('simple', $2)) DESC, entry_date DESC
		LIMIT $3`, userID, query, limit)
}

func (s *PostgresJournalStore) queryPosts(ctx context.Context, query string, args ...any) ([]*domain.JournalPost, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query posts",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	posts := []*domain.JournalPost{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, MapError(rows.Err())
}

// ListPublicPosts returns the posts of a topic without an ownership check.
// Callers must have resolved the topic through its share token first.
func (s *PostgresJournalStore) ListPublicPosts(ctx context.Context, topicID uuid.UUID) ([]*domain.JournalPost, error) {
	return s.queryPosts(ctx, `SELECT p.id, p.user_id, p.topic_id, p.title, p.content, p.mood,
			p.entry_date, p.created_at, p.updated_at
		FROM journal_post p
		JOIN journal_topic t ON t.id = p.topic_id
		WHERE p.topic_id = $1 AND t.is_public = TRUE
		ORDER BY p.entry_date DESC, p.created_at DESC`, topicID)
}

// UpdatePost implements store.JournalStore.UpdatePost
func (s *PostgresJournalStore) UpdatePost(ctx context.Context, post *domain.JournalPost) error {
	if err := post.Validate(); err != nil {
		return err
	}
	post.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE journal_post
		SET topic_id = $1, title = $2, content = $3, mood = $4, entry_date = $5, updated_at = $6
		WHERE id = $7 AND user_id = $8
	`, post.TopicID, post.Title, post.Content, post.Mood, post.EntryDate, post.UpdatedAt, post.ID, post.UserID)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrPostNotFound)
}

// DeletePost implements store.JournalStore.DeletePost
func (s *PostgresJournalStore) DeletePost(ctx context.Context, userID, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM journal_post WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrPostNotFound)
}
