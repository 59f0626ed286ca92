package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"newstracker/internal/domain"
)

const articlePage = `<!DOCTYPE html>
<html>
<head><title>Acme beats earnings</title></head>
<body>
<article>
<h1>Acme beats earnings</h1>
<p>Acme Corporation reported quarterly results that exceeded analyst expectations across every segment,
driven primarily by accelerating demand for its artificial intelligence infrastructure products. Management
raised full-year guidance and highlighted a growing backlog of enterprise orders scheduled for delivery
over the next four quarters, which it expects to convert at historically high margins.</p>
<p>Executives noted on the earnings call that supply constraints which limited shipments earlier in the year
have largely been resolved, and that the company continues to invest heavily in additional manufacturing
capacity. Analysts responded by lifting price targets, while cautioning that competition in the sector is
intensifying and that sustaining the current growth rate will require continued execution.</p>
</article>
</body>
</html>`

func TestFetchExtractsReadableText(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "NewsTracker/1.0" {
			t.Errorf("unexpected user agent: %s", got)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articlePage))
	}))
	defer server.Close()

	f := NewArticleFetcher(server.Client(), "")
	text, err := f.Fetch(context.Background(), server.URL+"/article")
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if !strings.Contains(text, "exceeded analyst expectations") {
		t.Fatalf("extracted text missing article body: %q", text)
	}
	if strings.Contains(text, "<p>") {
		t.Fatalf("extracted text still contains markup: %q", text)
	}
}

func TestFetchNon200IsFetchFailed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := NewArticleFetcher(server.Client(), "")
	_, err := f.Fetch(context.Background(), server.URL)
	if !errors.Is(err, domain.ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
}

func TestFetchNonHTMLIsFetchFailed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	defer server.Close()

	f := NewArticleFetcher(server.Client(), "")
	_, err := f.Fetch(context.Background(), server.URL)
	if !errors.Is(err, domain.ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
}
