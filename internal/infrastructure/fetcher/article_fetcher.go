// Package fetcher downloads an article page and extracts its readable text.
package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"newstracker/internal/domain"
	"newstracker/internal/ports"
)

// ArticleFetcher implements ports.ArticleFetcher over plain HTTP plus
// readability extraction.
type ArticleFetcher struct {
	client    *http.Client
	userAgent string
}

var _ ports.ArticleFetcher = (*ArticleFetcher)(nil)

// NewArticleFetcher wires an HTTP client; a nil client gets a 30s timeout.
func NewArticleFetcher(client *http.Client, userAgent string) *ArticleFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if userAgent == "" {
		userAgent = "NewsTracker/1.0"
	}
	return &ArticleFetcher{client: client, userAgent: userAgent}
}

// Fetch downloads the page and returns the extracted plain text. Every
// failure is wrapped as FetchFailed so callers can fall back locally.
func (f *ArticleFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %v: %w", err, domain.ErrFetchFailed)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %v: %w", pageURL, err, domain.ErrFetchFailed)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %s: %w", pageURL, resp.Status, domain.ErrFetchFailed)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(strings.ToLower(contentType), "text/html") {
		return "", fmt.Errorf("fetch %s: content type %s is not HTML: %w", pageURL, contentType, domain.ErrFetchFailed)
	}

	parsedURL, _ := url.Parse(pageURL)
	article, err := readability.FromReader(resp.Body, parsedURL)
	if err != nil {
		return "", fmt.Errorf("extract %s: %v: %w", pageURL, err, domain.ErrFetchFailed)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return "", fmt.Errorf("extract %s: no readable content: %w", pageURL, domain.ErrFetchFailed)
	}

	return text, nil
}
