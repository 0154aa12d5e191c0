package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	meili "github.com/meilisearch/meilisearch-go"
	"github.com/phrazzld/dmo-api/internal/domain"
)

// Meili indexes and queries journal posts in Meilisearch.
type Meili struct {
	client  meili.ServiceManager
	index   string
	healthy atomic.Bool
	done    chan struct{}
	logger  *slog.Logger
}

// NewMeili creates a Meilisearch client and configures the index. It never
// fails: an unreachable server leaves the client unhealthy until the
// background probe sees it recover.
func NewMeili(url, apiKey, index string, logger *slog.Logger) *Meili {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Meili{
		client: meili.New(url, meili.WithAPIKey(apiKey)),
		index:  index,
		done:   make(chan struct{}),
		logger: logger.With(slog.String("component", "meilisearch")),
	}

	if _, err := m.client.Health(); err != nil {
		m.logger.Warn("meilisearch unavailable",
			slog.String("url", url),
			slog.String("error", err.Error()))
	} else {
		m.healthy.Store(true)
		m.configureIndex()
	}

	go m.healthLoop()
	return m
}

func (m *Meili) configureIndex() {
	if _, err := m.client.CreateIndex(&meili.IndexConfig{Uid: m.index, PrimaryKey: "id"}); err != nil {
		m.logger.Debug("create index (may already exist)", slog.String("error", err.Error()))
	}

	index := m.client.Index(m.index)
	filterable := []interface{}{"user_id", "topic_id"}
	if _, err := index.UpdateFilterableAttributes(&filterable); err != nil {
		m.logger.Warn("update filterable attributes", slog.String("error", err.Error()))
	}
	searchable := []string{"title", "content"}
	if _, err := index.UpdateSearchableAttributes(&searchable); err != nil {
		m.logger.Warn("update searchable attributes", slog.String("error", err.Error()))
	}
}

func (m *Meili) healthLoop() {
	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			wasHealthy := m.healthy.Load()
			m.healthy.Store(err == nil)
			if err == nil && !wasHealthy {
				m.logger.Info("meilisearch recovered, reconfiguring index")
				m.configureIndex()
			}
		}
	}
}

// Close stops the background health probe.
func (m *Meili) Close() {
	close(m.done)
}

// Healthy reports whether Meilisearch answered its last probe.
func (m *Meili) Healthy() bool {
	return m.healthy.Load()
}

// Search queries userID's posts.
func (m *Meili) Search(ctx context.Context, userID uuid.UUID, query string, limit int) ([]Result, error) {
	resp, err := m.client.Index(m.index).Search(query, &meili.SearchRequest{
		Limit:                 int64(limit),
		Filter:                fmt.Sprintf("user_id = %q", userID.String()),
		AttributesToCrop:      []string{"content"},
		CropLength:            32,
		AttributesToHighlight: []string{"title", "content"},
		HighlightPreTag:       "<mark>",
		HighlightPostTag:      "</mark>",
	})
	if err != nil {
		m.healthy.Store(false)
		return nil, fmt.Errorf("meilisearch search: %w", err)
	}

	results := make([]Result, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		r, ok := hitToResult(hit)
		if ok {
			results = append(results, r)
		}
	}
	return results, nil
}

// IndexPost adds or replaces one document.
func (m *Meili) IndexPost(doc postDocument) error {
	_, err := m.client.Index(m.index).AddDocuments([]postDocument{doc}, nil)
	return err
}

// DeletePost removes one document.
func (m *Meili) DeletePost(id string) error {
	_, err := m.client.Index(m.index).DeleteDocument(id, nil)
	return err
}

// hitToResult decodes a hit, preferring highlighted fields. Hits with a
// malformed id are skipped.
func hitToResult(hit meili.Hit) (Result, bool) {
	id, err := uuid.Parse(decodeString(hit, "id"))
	if err != nil {
		return Result{}, false
	}
	topicID, _ := uuid.Parse(decodeString(hit, "topic_id"))
	entryDate, _ := domain.ParseDate(decodeString(hit, "entry_date"))

	return Result{
		PostID:    id,
		TopicID:   topicID,
		Title:     firstNonBlank(decodeFormattedString(hit, "title"), decodeString(hit, "title")),
		Snippet:   firstNonBlank(decodeFormattedString(hit, "content"), snippet(decodeString(hit, "content"))),
		EntryDate: entryDate,
	}, true
}

func decodeString(hit meili.Hit, key string) string {
	raw, ok := hit[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

func decodeFormattedString(hit meili.Hit, key string) string {
	raw, ok := hit["_formatted"]
	if !ok {
		return ""
	}
	var formatted map[string]json.RawMessage
	if err := json.Unmarshal(raw, &formatted); err != nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(formatted[key], &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func firstNonBlank(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
