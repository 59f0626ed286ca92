package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"newstracker/internal/domain"
	"newstracker/internal/ports"
)

// FilingsStats accumulates counters for one filings-digest run.
type FilingsStats struct {
	Processed int
	Skipped   int
	Errors    int
}

// FilingsDeps wires the collaborators of the filings-digest job.
type FilingsDeps struct {
	Stocks      ports.StocksRepository
	Filings     ports.FilingSource
	Analyzer    ports.Analyzer
	CallTimeout time.Duration
	Logger      *slog.Logger
}

// FilingsJob digests the latest quarterly or annual report for every
// pending tracked stock.
type FilingsJob struct {
	stocks      ports.StocksRepository
	filings     ports.FilingSource
	analyzer    ports.Analyzer
	callTimeout time.Duration
	logger      *slog.Logger
}

// NewFilingsJob constructs the job.
func NewFilingsJob(deps FilingsDeps) *FilingsJob {
	timeout := deps.CallTimeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &FilingsJob{
		stocks:      deps.Stocks,
		filings:     deps.Filings,
		analyzer:    deps.Analyzer,
		callTimeout: timeout,
		logger:      deps.Logger,
	}
}

// Run processes every pending stock. Per-symbol failures are logged
// and counted; only an unreachable stocks store aborts the run.
func (j *FilingsJob) Run(ctx context.Context) (FilingsStats, error) {
	var stats FilingsStats

	pending, err := j.stocks.Pending(ctx)
	if err != nil {
		return stats, fmt.Errorf("load pending stocks: %w", err)
	}
	if len(pending) == 0 {
		j.info("no pending stocks")
		return stats, nil
	}
	j.info("found pending stocks", "count", len(pending))

	for _, stock := range pending {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		if err := j.processStock(ctx, stock, &stats); err != nil {
			stats.Errors++
			j.warn("stock processing failed", "symbol", stock.Symbol, "error", err)
		}
	}

	j.info("filings run complete",
		"processed", stats.Processed,
		"skipped", stats.Skipped,
		"errors", stats.Errors)

	return stats, nil
}

func (j *FilingsJob) processStock(ctx context.Context, stock domain.TrackedStock, stats *FilingsStats) error {
	filing, err := j.filings.LatestReport(ctx, stock.Symbol)
	if err != nil {
		return fmt.Errorf("search report: %w", err)
	}

	if filing == nil {
		j.info("no recent report, skipping", "symbol", stock.Symbol)
		if err := j.stocks.SetStatus(ctx, stock.ID, domain.StockNoReport); err != nil {
			return fmt.Errorf("mark no_report: %w", err)
		}
		stats.Skipped++
		return nil
	}

	text, err := j.filings.DownloadFiling(ctx, *filing)
	if err != nil {
		return fmt.Errorf("download %s: %w", filing.FormType, err)
	}

	digestCtx, cancel := context.WithTimeout(ctx, j.callTimeout)
	digest, err := j.analyzer.DigestFiling(digestCtx, stock.Symbol, text)
	cancel()
	if err != nil {
		return fmt.Errorf("digest %s: %w", filing.FormType, err)
	}

	if err := j.stocks.SaveDigest(ctx, stock.ID, digest); err != nil {
		return fmt.Errorf("save digest: %w", err)
	}

	stats.Processed++
	j.info("filing digested", "symbol", stock.Symbol, "form", filing.FormType)
	return nil
}

func (j *FilingsJob) info(msg string, args ...any) {
	if j.logger != nil {
		j.logger.Info(msg, args...)
	}
}

func (j *FilingsJob) warn(msg string, args ...any) {
	if j.logger != nil {
		j.logger.Warn(msg, args...)
	}
}
