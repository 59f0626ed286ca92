package source

import (
	"context"
	"fmt"

	"newstracker/internal/domain"
)

// Request carries all parameters required to poll one configured source.
type Request struct {
	SourceName string
	URL        string
	Limit      int
	Options    map[string]string
}

// Strategy captures a single feed-provider implementation (FMP, RSS, etc.).
type Strategy interface {
	Name() string
	Poll(ctx context.Context, req Request) ([]domain.NewsItem, error)
}

// Registry keeps a mapping from strategy names to their implementations.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: map[string]Strategy{}}
}

// Register adds or replaces a strategy implementation.
func (r *Registry) Register(strategy Strategy) {
	if r.strategies == nil {
		r.strategies = map[string]Strategy{}
	}
	r.strategies[strategy.Name()] = strategy
}

// Resolve returns a strategy by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Strategy, error) {
	if strategy, ok := r.strategies[name]; ok {
		return strategy, nil
	}
	return nil, fmt.Errorf("source strategy %s is not registered", name)
}
