package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"newstracker/internal/domain"
	"newstracker/internal/enrich"
	"newstracker/internal/matcher"
	"newstracker/internal/ports"
	"newstracker/internal/report"
)

// PipelineDeps wires all collaborators into the tracking pipeline.
type PipelineDeps struct {
	Rules       ports.RulesStore
	Source      ports.NewsSource
	Ledger      ports.Ledger
	Matcher     *matcher.Matcher
	Selector    *enrich.Selector
	Analyzer    ports.Analyzer
	Assembler   *report.Assembler
	Notifier    ports.Notifier
	CallTimeout time.Duration
	Logger      *slog.Logger
}

// Pipeline implements one tracking run: load rules, poll items, and for
// every unseen item match, enrich, analyze, dispatch, and record.
type Pipeline struct {
	rules       ports.RulesStore
	source      ports.NewsSource
	ledger      ports.Ledger
	matcher     *matcher.Matcher
	selector    *enrich.Selector
	analyzer    ports.Analyzer
	assembler   *report.Assembler
	notifier    ports.Notifier
	callTimeout time.Duration
	logger      *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	timeout := deps.CallTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Pipeline{
		rules:       deps.Rules,
		source:      deps.Source,
		ledger:      deps.Ledger,
		matcher:     deps.Matcher,
		selector:    deps.Selector,
		analyzer:    deps.Analyzer,
		assembler:   deps.Assembler,
		notifier:    deps.Notifier,
		callTimeout: timeout,
		logger:      deps.Logger,
	}
}

// Run executes one tracking run. Only an unreachable rules store or
// news source aborts the run; everything below the item level is
// counted into the returned stats and processing continues.
func (p *Pipeline) Run(ctx context.Context) (domain.RunStats, error) {
	var stats domain.RunStats

	rules, err := p.rules.ActiveRules(ctx)
	if err != nil {
		return stats, fmt.Errorf("load rules: %w", err)
	}
	if len(rules) == 0 {
		p.info("no active rules, nothing to do")
		return stats, nil
	}
	p.info("loaded active rules", "count", len(rules))

	items, err := p.source.Latest(ctx)
	if err != nil {
		return stats, fmt.Errorf("fetch news: %w", err)
	}
	if len(items) == 0 {
		p.info("no news items, nothing to do")
		return stats, nil
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		stats.ItemsSeen++

		// A ledger read failure is treated as "not processed" so a
		// transient store hiccup cannot silently drop new items.
		seen, err := p.ledger.Contains(ctx, item.URL)
		if err != nil {
			p.warn("ledger check failed, treating item as new", "url", item.URL, "error", err)
			seen = false
		}
		if seen {
			continue
		}
		stats.ItemsNew++

		matched := p.matcher.Match(item, rules)
		if len(matched) == 0 {
			// Unmatched items stay off the ledger so future rule
			// changes can still pick them up.
			continue
		}

		recorded := false
		for _, rule := range matched {
			if err := ctx.Err(); err != nil {
				return stats, err
			}

			if !p.processMatch(ctx, domain.MatchResult{Item: item, Rule: rule}, &stats) {
				continue
			}

			if !recorded {
				if err := p.ledger.Record(ctx, item.URL, item.Title); err != nil {
					p.warn("ledger record failed", "url", item.URL, "error", err)
				}
				recorded = true
			}
		}
	}

	p.info("run complete",
		"items_seen", stats.ItemsSeen,
		"items_new", stats.ItemsNew,
		"notifications_sent", stats.NotificationsSent,
		"errors", stats.Errors)

	return stats, nil
}

// processMatch handles one (item, rule) unit end to end and reports
// whether a notification went out. All failures stay inside this unit.
func (p *Pipeline) processMatch(ctx context.Context, m domain.MatchResult, stats *domain.RunStats) bool {
	enrichCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	enriched := p.selector.Select(enrichCtx, m)
	cancel()

	prompt := p.selector.BuildPrompt(m, enriched)

	analyzeCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	analysis, err := p.analyzer.Analyze(analyzeCtx, prompt)
	cancel()
	if err != nil {
		stats.Errors++
		p.warn("analysis failed", "url", m.Item.URL, "recipient", m.Rule.Recipient, "error", err)
		return false
	}

	notification, err := p.assembler.Assemble(m, enriched, analysis)
	if err != nil {
		stats.Errors++
		p.warn("report assembly failed", "url", m.Item.URL, "recipient", m.Rule.Recipient, "error", err)
		return false
	}

	if err := p.notifier.Send(ctx, notification); err != nil {
		stats.Errors++
		p.warn("notification delivery failed", "url", m.Item.URL, "recipient", m.Rule.Recipient, "error", err)
		return false
	}

	stats.NotificationsSent++
	p.info("notification sent", "url", m.Item.URL, "recipient", m.Rule.Recipient, "mode", enriched.Mode)
	return true
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
