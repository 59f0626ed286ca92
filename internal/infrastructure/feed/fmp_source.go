package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"newstracker/internal/domain"
	"newstracker/internal/source"
)

const fmpDefaultLimit = 20

// FMPSource polls the Financial Modeling Prep stock-news endpoint.
type FMPSource struct {
	apiKey string
	client *http.Client
	logger *slog.Logger
}

var _ source.Strategy = (*FMPSource)(nil)

// NewFMPSource wires an HTTP client; a nil client gets a 20s timeout default.
func NewFMPSource(apiKey string, client *http.Client, logger *slog.Logger) *FMPSource {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &FMPSource{apiKey: apiKey, client: client, logger: logger}
}

// Name identifies the strategy inside the registry.
func (f *FMPSource) Name() string {
	return "fmp"
}

type fmpNewsItem struct {
	Symbol        string `json:"symbol"`
	PublishedDate string `json:"publishedDate"`
	Title         string `json:"title"`
	Site          string `json:"site"`
	Text          string `json:"text"`
	URL           string `json:"url"`
}

// Poll requests the latest page of stock news. A non-200 status yields
// an empty item list so the run ends without processing; transport
// errors surface as SourceUnavailable.
func (f *FMPSource) Poll(ctx context.Context, req source.Request) ([]domain.NewsItem, error) {
	pageURL, err := f.buildURL(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request stock news: %v: %w", err, domain.ErrSourceUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.warn("stock news endpoint returned non-200, skipping run", "status", resp.Status)
		return nil, nil
	}

	var raw []fmpNewsItem
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode stock news: %w", err)
	}

	items := make([]domain.NewsItem, 0, len(raw))
	for _, entry := range raw {
		if entry.URL == "" {
			continue
		}
		items = append(items, domain.NewsItem{
			URL:         entry.URL,
			Title:       entry.Title,
			Text:        entry.Text,
			PublishedAt: parseFMPDate(entry.PublishedDate),
		})
	}

	return items, nil
}

func (f *FMPSource) buildURL(req source.Request) (string, error) {
	parsed, err := url.Parse(req.URL)
	if err != nil {
		return "", fmt.Errorf("invalid source url %s: %w", req.URL, err)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = fmpDefaultLimit
	}

	query := parsed.Query()
	query.Set("page", "0")
	query.Set("limit", strconv.Itoa(limit))
	query.Set("apikey", f.apiKey)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func parseFMPDate(raw string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC()
		}
	}
	return time.Now().UTC()
}

func (f *FMPSource) warn(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Warn(msg, args...)
	}
}
