// Package search finds journal posts. Meilisearch serves queries when it is
// configured and healthy; PostgreSQL full-text search covers the rest.
package search

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/phrazzld/dmo-api/internal/domain"
)

// DefaultLimit caps results when the caller passes no limit.
const DefaultLimit = 20

const snippetLength = 160

// ErrUnavailable is returned by index writes while Meilisearch is configured
// but unreachable.
var ErrUnavailable = errors.New("search engine unavailable")

// Result is one matching post.
type Result struct {
	PostID    uuid.UUID   `json:"post_id"`
	TopicID   uuid.UUID   `json:"topic_id"`
	Title     string      `json:"title"`
	Snippet   string      `json:"snippet"`
	EntryDate domain.Date `json:"entry_date"`
}

// PostSearcher is the PostgreSQL full-text fallback.
type PostSearcher interface {
	SearchPosts(ctx context.Context, userID uuid.UUID, query string, limit int) ([]*domain.JournalPost, error)
}

// Service is the facade that tries Meilisearch first and falls back to
// PostgreSQL. It also implements job.Indexer.
type Service struct {
	meili  *Meili
	pg     PostSearcher
	logger *slog.Logger
}

// NewService creates a search service. meili may be nil when Meilisearch is
// not configured.
func NewService(meili *Meili, pg PostSearcher, logger *slog.Logger) *Service {
	if pg == nil {
		panic("postgres searcher cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{meili: meili, pg: pg, logger: logger.With(slog.String("component", "search_service"))}
}

// Search returns userID's posts matching query, best match first.
func (s *Service) Search(ctx context.Context, userID uuid.UUID, query string, limit int) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Result{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = DefaultLimit
	}

	if s.meili != nil && s.meili.Healthy() {
		results, err := s.meili.Search(ctx, userID, query, limit)
		if err == nil {
			return results, nil
		}
		s.logger.Warn("meilisearch error, falling back to postgres",
			slog.String("error", err.Error()))
	}

	posts, err := s.pg.SearchPosts(ctx, userID, query, limit)
	if err != nil {
		return nil, err
	}
	results := make([]Result, 0, len(posts))
	for _, p := range posts {
		results = append(results, resultOf(p))
	}
	return results, nil
}

// IndexPost adds or replaces post in Meilisearch. Without Meilisearch it
// is a no-op; PostgreSQL indexes posts on write.
func (s *Service) IndexPost(ctx context.Context, post *domain.JournalPost) error {
	if s.meili == nil {
		return nil
	}
	if !s.meili.Healthy() {
		return ErrUnavailable
	}
	return s.meili.IndexPost(documentOf(post))
}

// DeletePost removes a post from Meilisearch.
func (s *Service) DeletePost(ctx context.Context, id uuid.UUID) error {
	if s.meili == nil {
		return nil
	}
	if !s.meili.Healthy() {
		return ErrUnavailable
	}
	return s.meili.DeletePost(id.String())
}

// postDocument is the Meilisearch representation of a post.
type postDocument struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	TopicID   string `json:"topic_id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	EntryDate string `json:"entry_date"`
	UpdatedAt int64  `json:"updated_at"`
}

var plainText = bluemonday.StrictPolicy()

func documentOf(p *domain.JournalPost) postDocument {
	return postDocument{
		ID:        p.ID.String(),
		UserID:    p.UserID.String(),
		TopicID:   p.TopicID.String(),
		Title:     p.Title,
		Content:   stripHTML(p.Content),
		EntryDate: p.EntryDate.String(),
		UpdatedAt: p.UpdatedAt.UTC().Unix(),
	}
}

func resultOf(p *domain.JournalPost) Result {
	return Result{
		PostID:    p.ID,
		TopicID:   p.TopicID,
		Title:     p.Title,
		Snippet:   snippet(stripHTML(p.Content)),
		EntryDate: p.EntryDate,
	}
}

// stripHTML reduces sanitized post HTML to whitespace-normalized text.
func stripHTML(html string) string {
	return strings.Join(strings.Fields(plainText.Sanitize(html)), " ")
}

func snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= snippetLength {
		return text
	}
	return strings.TrimSpace(string(runes[:snippetLength])) + "…"
}

// healthInterval is how often Meili re-probes the server.
var healthInterval = 10 * time.Second
