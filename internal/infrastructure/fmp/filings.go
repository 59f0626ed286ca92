// Package fmp locates and downloads SEC filings through the Financial
// Modeling Prep API.
package fmp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"newstracker/internal/domain"
	"newstracker/internal/ports"
)

const (
	searchLookbackDays = 120
	searchLimit        = 50
	maxFilingChars     = 500000
)

var whitespaceExpr = regexp.MustCompile(`\s+`)

// FilingSource implements ports.FilingSource over the FMP
// sec-filings-search endpoint plus a plain download of the filing page.
type FilingSource struct {
	baseURL   string
	apiKey    string
	client    *http.Client
	userAgent string
}

var _ ports.FilingSource = (*FilingSource)(nil)

// NewFilingSource wires an HTTP client; a nil client gets a 30s timeout.
func NewFilingSource(baseURL, apiKey, userAgent string, client *http.Client) *FilingSource {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if userAgent == "" {
		userAgent = "NewsTracker/1.0"
	}
	return &FilingSource{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		apiKey:    apiKey,
		client:    client,
		userAgent: userAgent,
	}
}

type filingSearchEntry struct {
	FormType   string `json:"formType"`
	FinalLink  string `json:"finalLink"`
	FilingDate string `json:"filingDate"`
}

// LatestReport finds the most recent 10-Q or 10-K filed in the last
// 120 days, or nil when there is none.
func (f *FilingSource) LatestReport(ctx context.Context, symbol string) (*domain.Filing, error) {
	now := time.Now().UTC()
	query := url.Values{}
	query.Set("symbol", symbol)
	query.Set("apikey", f.apiKey)
	query.Set("limit", strconv.Itoa(searchLimit))
	query.Set("from", now.AddDate(0, 0, -searchLookbackDays).Format("2006-01-02"))
	query.Set("to", now.Format("2006-01-02"))

	endpoint := f.baseURL + "/sec-filings-search/symbol?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search filings for %s: %v: %w", symbol, err, domain.ErrSourceUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search filings for %s: status %s: %w", symbol, resp.Status, domain.ErrSourceUnavailable)
	}

	var entries []filingSearchEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode filings for %s: %w", symbol, err)
	}

	for _, entry := range entries {
		if entry.FormType != "10-Q" && entry.FormType != "10-K" {
			continue
		}
		filedAt, _ := time.Parse("2006-01-02", entry.FilingDate)
		return &domain.Filing{
			FormType:  entry.FormType,
			FinalLink: entry.FinalLink,
			FiledAt:   filedAt,
		}, nil
	}

	return nil, nil
}

// DownloadFiling fetches the filing page and reduces it to bounded
// plain text suitable for the analyzer.
func (f *FilingSource) DownloadFiling(ctx context.Context, filing domain.Filing) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, filing.FinalLink, nil)
	if err != nil {
		return "", fmt.Errorf("build filing request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download filing: %v: %w", err, domain.ErrFetchFailed)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download filing: status %s: %w", resp.Status, domain.ErrFetchFailed)
	}

	text, err := cleanFilingHTML(resp.Body)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", fmt.Errorf("filing %s has no text content: %w", filing.FinalLink, domain.ErrFetchFailed)
	}

	return text, nil
}

func cleanFilingHTML(body io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", fmt.Errorf("parse filing html: %w", err)
	}

	doc.Find("script, style").Remove()
	text := whitespaceExpr.ReplaceAllString(doc.Text(), " ")
	text = strings.TrimSpace(text)

	if len(text) > maxFilingChars {
		text = text[:maxFilingChars]
	}
	return text, nil
}
