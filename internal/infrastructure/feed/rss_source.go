package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"

	"newstracker/internal/domain"
	"newstracker/internal/source"
)

// RSSSource polls an RSS/Atom feed as an alternative news provider.
type RSSSource struct {
	parser    *gofeed.Parser
	userAgent string
}

var _ source.Strategy = (*RSSSource)(nil)

// NewRSSSource builds the gofeed-backed strategy.
func NewRSSSource(userAgent string) *RSSSource {
	parser := gofeed.NewParser()
	if userAgent != "" {
		parser.UserAgent = userAgent
	}
	return &RSSSource{parser: parser, userAgent: userAgent}
}

// Name identifies the strategy inside the registry.
func (r *RSSSource) Name() string {
	return "rss"
}

// Poll parses the configured feed URL and maps entries to news items.
// Items beyond the configured limit are dropped.
func (r *RSSSource) Poll(ctx context.Context, req source.Request) ([]domain.NewsItem, error) {
	parsed, err := r.parser.ParseURLWithContext(req.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %v: %w", req.SourceName, err, domain.ErrSourceUnavailable)
	}

	limit := req.Limit
	if limit <= 0 || limit > len(parsed.Items) {
		limit = len(parsed.Items)
	}

	items := make([]domain.NewsItem, 0, limit)
	for _, entry := range parsed.Items[:limit] {
		if entry.Link == "" {
			continue
		}

		text := entry.Description
		if text == "" {
			text = entry.Content
		}

		publishedAt := time.Now().UTC()
		if entry.PublishedParsed != nil {
			publishedAt = entry.PublishedParsed.UTC()
		}

		items = append(items, domain.NewsItem{
			URL:         entry.Link,
			Title:       entry.Title,
			Text:        text,
			PublishedAt: publishedAt,
		})
	}

	return items, nil
}
