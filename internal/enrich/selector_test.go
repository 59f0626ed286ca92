package enrich

import (
	"context"
	"strings"
	"testing"

	"newstracker/internal/domain"
)

type stubFetcher struct {
	text string
	err  error
}

func (s *stubFetcher) Fetch(ctx context.Context, url string) (string, error) {
	return s.text, s.err
}

func proMatch() domain.MatchResult {
	return domain.MatchResult{
		Item: domain.NewsItem{URL: "https://example.com/a", Title: "Acme beats earnings", Text: "summary text"},
		Rule: domain.Rule{Keywords: []string{"acme"}, Tier: domain.TierPro, Recipient: "a@x.com"},
	}
}

func TestSelectFreeTierUsesSummary(t *testing.T) {
	t.Parallel()

	m := proMatch()
	m.Rule.Tier = domain.TierFree

	selector := NewSelector(&stubFetcher{text: strings.Repeat("x", 500)}, 200, nil)
	enriched := selector.Select(context.Background(), m)

	if enriched.Mode != domain.ModeSummary {
		t.Fatalf("expected summary mode, got %s", enriched.Mode)
	}
	if enriched.Text != "summary text" {
		t.Fatalf("expected item text, got %q", enriched.Text)
	}
	if enriched.Label != LabelSummary {
		t.Fatalf("unexpected label: %s", enriched.Label)
	}
}

func TestSelectProTierFullText(t *testing.T) {
	t.Parallel()

	full := strings.Repeat("full article body. ", 20)
	selector := NewSelector(&stubFetcher{text: full}, 200, nil)
	enriched := selector.Select(context.Background(), proMatch())

	if enriched.Mode != domain.ModeFullText {
		t.Fatalf("expected full_text mode, got %s", enriched.Mode)
	}
	if !strings.Contains(enriched.Text, "full article body") {
		t.Fatalf("expected fetched text, got %q", enriched.Text)
	}
	if enriched.Label != LabelFullText {
		t.Fatalf("unexpected label: %s", enriched.Label)
	}
}

func TestSelectProTierShortTextFallsBack(t *testing.T) {
	t.Parallel()

	selector := NewSelector(&stubFetcher{text: strings.Repeat("x", 50)}, 200, nil)
	enriched := selector.Select(context.Background(), proMatch())

	if enriched.Mode != domain.ModeFullTextFallback {
		t.Fatalf("expected fallback mode, got %s", enriched.Mode)
	}
	if enriched.Text != "summary text" {
		t.Fatalf("expected fallback to item text, got %q", enriched.Text)
	}
	if enriched.Label != LabelFallback {
		t.Fatalf("unexpected label: %s", enriched.Label)
	}
}

func TestSelectProTierFetchErrorFallsBack(t *testing.T) {
	t.Parallel()

	selector := NewSelector(&stubFetcher{err: domain.ErrFetchFailed}, 200, nil)
	enriched := selector.Select(context.Background(), proMatch())

	if enriched.Mode != domain.ModeFullTextFallback {
		t.Fatalf("expected fallback mode, got %s", enriched.Mode)
	}
	if enriched.Text != "summary text" {
		t.Fatalf("expected fallback to item text, got %q", enriched.Text)
	}
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	m := proMatch()
	m.Rule.Reason = "watching acme"
	selector := NewSelector(nil, 200, nil)
	enriched := domain.EnrichedContent{Text: "content body", Mode: domain.ModeSummary, Label: LabelSummary}

	prompt := selector.BuildPrompt(m, enriched)
	if prompt.Label != LabelSummary {
		t.Fatalf("unexpected label: %s", prompt.Label)
	}
	if prompt.Reason != "watching acme" {
		t.Fatalf("unexpected reason: %s", prompt.Reason)
	}
	if prompt.Title != "Acme beats earnings" {
		t.Fatalf("unexpected title: %s", prompt.Title)
	}
	if prompt.Content != "content body" {
		t.Fatalf("unexpected content: %s", prompt.Content)
	}
}
