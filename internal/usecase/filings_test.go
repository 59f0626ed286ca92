package usecase

import (
	"context"
	"errors"
	"testing"

	"newstracker/internal/domain"
)

type stubStocks struct {
	pending  []domain.TrackedStock
	err      error
	digests  map[int64]string
	statuses map[int64]domain.StockStatus
}

func newStubStocks(pending ...domain.TrackedStock) *stubStocks {
	return &stubStocks{
		pending:  pending,
		digests:  map[int64]string{},
		statuses: map[int64]domain.StockStatus{},
	}
}

func (s *stubStocks) Pending(ctx context.Context) ([]domain.TrackedStock, error) {
	return s.pending, s.err
}

func (s *stubStocks) SaveDigest(ctx context.Context, id int64, digest string) error {
	s.digests[id] = digest
	s.statuses[id] = domain.StockReview
	return nil
}

func (s *stubStocks) SetStatus(ctx context.Context, id int64, status domain.StockStatus) error {
	s.statuses[id] = status
	return nil
}

type stubFilings struct {
	filing      *domain.Filing
	searchErr   error
	text        string
	downloadErr error
}

func (s *stubFilings) LatestReport(ctx context.Context, symbol string) (*domain.Filing, error) {
	return s.filing, s.searchErr
}

func (s *stubFilings) DownloadFiling(ctx context.Context, filing domain.Filing) (string, error) {
	return s.text, s.downloadErr
}

type stubDigester struct {
	digest string
	err    error
}

func (s *stubDigester) Analyze(ctx context.Context, prompt domain.PromptContext) (domain.AnalysisResult, error) {
	return domain.AnalysisResult{}, nil
}

func (s *stubDigester) DigestFiling(ctx context.Context, symbol, text string) (string, error) {
	return s.digest, s.err
}

func TestFilingsRunDigestsPendingStock(t *testing.T) {
	t.Parallel()

	stocks := newStubStocks(domain.TrackedStock{ID: 7, Symbol: "ACME"})
	job := NewFilingsJob(FilingsDeps{
		Stocks:   stocks,
		Filings:  &stubFilings{filing: &domain.Filing{FormType: "10-Q", FinalLink: "https://sec.example/f"}, text: "md&a text"},
		Analyzer: &stubDigester{digest: "### 本季一句話營運判斷"},
	})

	stats, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if stats.Processed != 1 || stats.Errors != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stocks.digests[7] != "### 本季一句話營運判斷" {
		t.Fatalf("digest not persisted: %+v", stocks.digests)
	}
	if stocks.statuses[7] != domain.StockReview {
		t.Fatalf("expected review status, got %s", stocks.statuses[7])
	}
}

func TestFilingsRunNoReportMarksSkipped(t *testing.T) {
	t.Parallel()

	stocks := newStubStocks(domain.TrackedStock{ID: 3, Symbol: "NONE"})
	job := NewFilingsJob(FilingsDeps{
		Stocks:   stocks,
		Filings:  &stubFilings{filing: nil},
		Analyzer: &stubDigester{},
	})

	stats, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if stats.Skipped != 1 || stats.Processed != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stocks.statuses[3] != domain.StockNoReport {
		t.Fatalf("expected no_report status, got %s", stocks.statuses[3])
	}
}

func TestFilingsRunIsolatesPerStockFailures(t *testing.T) {
	t.Parallel()

	stocks := newStubStocks(
		domain.TrackedStock{ID: 1, Symbol: "BAD"},
		domain.TrackedStock{ID: 2, Symbol: "GOOD"},
	)
	filings := &stubFilings{filing: &domain.Filing{FormType: "10-K", FinalLink: "https://sec.example/f"}, text: "text"}
	job := NewFilingsJob(FilingsDeps{
		Stocks:   stocks,
		Filings:  filings,
		Analyzer: &stubDigester{digest: "digest"},
	})

	filings.downloadErr = domain.ErrFetchFailed
	statsFirst, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if statsFirst.Errors != 2 {
		t.Fatalf("expected both stocks to fail download, got %+v", statsFirst)
	}

	filings.downloadErr = nil
	statsSecond, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if statsSecond.Processed != 2 || statsSecond.Errors != 0 {
		t.Fatalf("unexpected stats: %+v", statsSecond)
	}
}

func TestFilingsRunStoreFailureIsFatal(t *testing.T) {
	t.Parallel()

	stocks := newStubStocks()
	stocks.err = domain.ErrStoreUnavailable
	job := NewFilingsJob(FilingsDeps{Stocks: stocks, Filings: &stubFilings{}, Analyzer: &stubDigester{}})

	_, err := job.Run(context.Background())
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected fatal store error, got %v", err)
	}
}
