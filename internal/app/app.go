package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"newstracker/internal/config"
	"newstracker/internal/enrich"
	"newstracker/internal/infrastructure/feed"
	"newstracker/internal/infrastructure/fetcher"
	"newstracker/internal/infrastructure/fmp"
	"newstracker/internal/infrastructure/llm"
	"newstracker/internal/infrastructure/mail"
	"newstracker/internal/infrastructure/scheduler"
	"newstracker/internal/infrastructure/storage"
	"newstracker/internal/logging"
	"newstracker/internal/matcher"
	"newstracker/internal/report"
	"newstracker/internal/source"
	"newstracker/internal/usecase"
)

const userAgent = "NewsTracker/1.0"

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	db        *sql.DB
	pipeline  *usecase.Pipeline
	filings   *usecase.FilingsJob
	scheduler *usecase.Scheduler
}

// New builds a runnable application instance. All collaborator handles
// are constructed here once and passed in explicitly; nothing else
// holds global state.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := storage.Open(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect storage: %w", err)
	}

	rulesRepo := storage.NewRulesRepository(db, cfg.Mail.AdminEmail)
	ledgerRepo := storage.NewLedgerRepository(db)
	stocksRepo := storage.NewStocksRepository(db)

	httpClient := &http.Client{Timeout: 30 * time.Second}

	registry := source.NewRegistry()
	registry.Register(feed.NewFMPSource(cfg.FMP.APIKey, httpClient, baseLogger.With("component", "source.fmp")))
	registry.Register(feed.NewRSSSource(userAgent))
	newsSource := feed.NewStrategySource(registry, cfg.Sources, baseLogger.With("component", "source"))

	articleFetcher := fetcher.NewArticleFetcher(httpClient, userAgent)
	selector := enrich.NewSelector(articleFetcher, cfg.Enrich.MinChars(), baseLogger.With("component", "enrich"))
	analyzer := llm.NewGeminiAnalyzer(cfg.Gemini)
	assembler := report.NewAssembler(cfg.Scheduler.Location())
	notifier := mail.NewNotifier(cfg.Mail)

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Rules:       rulesRepo,
		Source:      newsSource,
		Ledger:      ledgerRepo,
		Matcher:     matcher.New(cfg.Matching.AllMatches),
		Selector:    selector,
		Analyzer:    analyzer,
		Assembler:   assembler,
		Notifier:    notifier,
		CallTimeout: cfg.Enrich.Timeout(),
		Logger:      baseLogger.With("component", "pipeline"),
	})

	filings := usecase.NewFilingsJob(usecase.FilingsDeps{
		Stocks:   stocksRepo,
		Filings:  fmp.NewFilingSource(cfg.FMP.BaseURL, cfg.FMP.APIKey, userAgent, httpClient),
		Analyzer: analyzer,
		Logger:   baseLogger.With("component", "filings"),
	})

	driver := scheduler.NewIntervalScheduler(cfg.Scheduler.Interval())

	return &Application{
		cfg:       cfg,
		db:        db,
		pipeline:  pipeline,
		filings:   filings,
		scheduler: usecase.NewScheduler(driver, pipeline, filings),
	}, nil
}

// RunOnce performs a single tracking run followed by the filings job.
func (a *Application) RunOnce(ctx context.Context) error {
	if _, err := a.pipeline.Run(ctx); err != nil {
		return err
	}
	_, err := a.filings.Run(ctx)
	return err
}

// Start launches the recurring scheduler.
func (a *Application) Start(ctx context.Context) error {
	return a.scheduler.Start(ctx)
}

// Shutdown stops the scheduler and releases the database handle.
func (a *Application) Shutdown(ctx context.Context) error {
	if err := a.scheduler.Stop(ctx); err != nil {
		return err
	}
	return a.db.Close()
}
