package ports

import (
	"context"

	"newstracker/internal/domain"
)

// NewsSource pulls the latest items from upstream feed providers.
type NewsSource interface {
	Latest(ctx context.Context) ([]domain.NewsItem, error)
}

// RulesStore loads the active tracking rules with normalized keywords
// and resolved recipient/tier.
type RulesStore interface {
	ActiveRules(ctx context.Context) ([]domain.Rule, error)
}

// Ledger is the append-only record of already-notified item ids.
type Ledger interface {
	Contains(ctx context.Context, itemURL string) (bool, error)
	Record(ctx context.Context, itemURL, title string) error
}

// ArticleFetcher retrieves the readable full text behind an item URL.
type ArticleFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Analyzer turns a prompt context into a structured analysis, and
// produces filings digests for the tracked-stocks job.
type Analyzer interface {
	Analyze(ctx context.Context, prompt domain.PromptContext) (domain.AnalysisResult, error)
	DigestFiling(ctx context.Context, symbol, text string) (string, error)
}

// Notifier delivers an assembled notification to its recipient.
type Notifier interface {
	Send(ctx context.Context, n domain.Notification) error
}

// StocksRepository manages tracked-stock rows for the filings digest.
type StocksRepository interface {
	Pending(ctx context.Context) ([]domain.TrackedStock, error)
	SaveDigest(ctx context.Context, id int64, digest string) error
	SetStatus(ctx context.Context, id int64, status domain.StockStatus) error
}

// FilingSource locates and downloads recent SEC reports.
type FilingSource interface {
	LatestReport(ctx context.Context, symbol string) (*domain.Filing, error)
	DownloadFiling(ctx context.Context, filing domain.Filing) (string, error)
}

// Scheduler controls when jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(context.Context)) error
	Stop(ctx context.Context) error
}
