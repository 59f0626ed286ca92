package feed

import (
	"context"
	"fmt"
	"log/slog"

	"newstracker/internal/config"
	"newstracker/internal/domain"
	"newstracker/internal/ports"
	"newstracker/internal/source"
)

// StrategySource implements NewsSource via registered feed strategies.
type StrategySource struct {
	registry *source.Registry
	sources  []config.SourceConfig
	logger   *slog.Logger
}

var _ ports.NewsSource = (*StrategySource)(nil)

// NewStrategySource wires the strategy registry with config-defined sources.
func NewStrategySource(reg *source.Registry, sources []config.SourceConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sources:  sources,
		logger:   log,
	}
}

// Latest iterates over configured sources and executes their strategies.
// Duplicate URLs across sources collapse to the first occurrence.
func (s *StrategySource) Latest(ctx context.Context) ([]domain.NewsItem, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("source registry is not configured: %w", domain.ErrSourceUnavailable)
	}

	s.debug("poll latest", "sources", len(s.sources))

	seen := map[string]struct{}{}
	var aggregated []domain.NewsItem
	for _, src := range s.sources {
		strategy, err := s.registry.Resolve(src.Kind)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", src.Name, err)
		}

		req := source.Request{
			SourceName: src.Name,
			URL:        src.URL,
			Limit:      src.Limit,
			Options:    src.Options,
		}

		items, err := strategy.Poll(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("poll source %s: %w", src.Name, err)
		}

		for _, item := range items {
			if item.URL == "" {
				continue
			}
			if _, ok := seen[item.URL]; ok {
				continue
			}
			seen[item.URL] = struct{}{}
			aggregated = append(aggregated, item)
		}
		s.debug("source produced items", "source", src.Name, "count", len(items))
	}

	s.debug("strategy source done", "total_items", len(aggregated))
	return aggregated, nil
}

func (s *StrategySource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
