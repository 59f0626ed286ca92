// Package enrich selects the content handed to the analyzer for one
// matched rule, according to the rule's tier.
package enrich

import (
	"context"
	"log/slog"
	"strings"

	"newstracker/internal/domain"
	"newstracker/internal/ports"
)

// Analysis labels rendered into the report, one per content mode.
const (
	LabelFullText = "【Pro 深度全文分析模式】"
	LabelFallback = "【Pro 模式 (全文抓取受限，改用摘要)】"
	LabelSummary  = "【標準摘要分析模式】"
)

// Selector implements the tier policy: pro rules attempt a full-article
// fetch and fall back to the feed summary when the fetch fails or the
// extracted text is too short; free and plus rules use the summary.
type Selector struct {
	fetcher  ports.ArticleFetcher
	minChars int
	logger   *slog.Logger
}

// NewSelector wires the article fetcher. minChars is the threshold
// under which fetched text counts as a failed fetch.
func NewSelector(fetcher ports.ArticleFetcher, minChars int, logger *slog.Logger) *Selector {
	if minChars <= 0 {
		minChars = 200
	}
	return &Selector{fetcher: fetcher, minChars: minChars, logger: logger}
}

// Select picks the content source for one match. Fetch failures are
// absorbed here: the result always carries usable text.
func (s *Selector) Select(ctx context.Context, m domain.MatchResult) domain.EnrichedContent {
	if m.Rule.Tier != domain.TierPro {
		return domain.EnrichedContent{
			Text:  m.Item.Text,
			Mode:  domain.ModeSummary,
			Label: LabelSummary,
		}
	}

	text, err := s.fetchFullText(ctx, m.Item.URL)
	if err != nil {
		s.debug("full-text fetch unavailable, using summary",
			"url", m.Item.URL, "recipient", m.Rule.Recipient, "error", err)
		return domain.EnrichedContent{
			Text:  m.Item.Text,
			Mode:  domain.ModeFullTextFallback,
			Label: LabelFallback,
		}
	}

	return domain.EnrichedContent{
		Text:  text,
		Mode:  domain.ModeFullText,
		Label: LabelFullText,
	}
}

// BuildPrompt assembles the analyzer request for a match and its
// selected content.
func (s *Selector) BuildPrompt(m domain.MatchResult, enriched domain.EnrichedContent) domain.PromptContext {
	return domain.PromptContext{
		Label:    enriched.Label,
		Reason:   m.Rule.Reason,
		Keywords: m.Rule.Keywords,
		Title:    m.Item.Title,
		Content:  enriched.Text,
	}
}

func (s *Selector) fetchFullText(ctx context.Context, url string) (string, error) {
	if s.fetcher == nil {
		return "", domain.ErrFetchFailed
	}

	text, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if len(text) < s.minChars {
		return "", domain.ErrFetchFailed
	}

	return text, nil
}

func (s *Selector) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
