package scanner

import (
	"context"
	"fmt"

	"QuotePress/internal/domain"
)

// Query carries the profile and qualification settings for one attempt.
type Query struct {
	Username     string
	Hashtag      string
	RequireQuote bool
}

// Strategy captures a single acquisition channel (official API, mirror, feed, file).
// An error or an empty slice both mean "no result" to the caller.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, q Query) ([]domain.CandidateItem, error)
}

// Registry keeps strategies by name in registration order.
type Registry struct {
	strategies map[string]Strategy
	order      []string
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
	name := strategy.Name()
	if _, exists := r.strategies[name]; !exists {
		r.order = append(r.order, name)
	}
	r.strategies[name] = strategy
}

// Resolve returns a strategy by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Strategy, error) {
	if strategy, ok := r.strategies[name]; ok {
		return strategy, nil
	}
	return nil, fmt.Errorf("strategy %s is not registered", name)
}

// Names lists registered strategies in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Ordered resolves the given priority list. Unknown names are an error.
func (r *Registry) Ordered(names []string) ([]Strategy, error) {
	out := make([]Strategy, 0, len(names))
	for _, name := range names {
		strategy, err := r.Resolve(name)
		if err != nil {
			return nil, err
		}
		out = append(out, strategy)
	}
	return out, nil
}
