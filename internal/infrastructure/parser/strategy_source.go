package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"QuotePress/internal/domain"
	"QuotePress/internal/ports"
	"QuotePress/internal/scanner"
)

// StrategySource implements ItemSource by walking strategies in priority order.
type StrategySource struct {
	registry *scanner.Registry
	order    []string
	query    scanner.Query
	logger   *slog.Logger
}

var _ ports.ItemSource = (*StrategySource)(nil)

// NewStrategySource wires the scanner registry with the configured priority list.
func NewStrategySource(reg *scanner.Registry, order []string, q scanner.Query, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		order:    order,
		query:    q,
		logger:   log,
	}
}

// Fetch returns the items of the first strategy that yields any, plus its name.
// Errors from individual strategies are logged and the next one is tried.
// When every strategy comes up empty the result wraps domain.ErrNoNewItems.
func (s *StrategySource) Fetch(ctx context.Context) ([]domain.CandidateItem, string, error) {
	if s.registry == nil {
		return nil, "", fmt.Errorf("scanner registry is not configured")
	}

	strategies, err := s.Strategies()
	if err != nil {
		return nil, "", err
	}

	s.debug("fetch", "strategies", len(strategies), "user", s.query.Username, "tag", s.query.Hashtag)

	var failures []error
	for _, strategy := range strategies {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}

		items, err := strategy.Attempt(ctx, s.query)
		if err != nil {
			if ctx.Err() != nil {
				return nil, "", ctx.Err()
			}
			failures = append(failures, fmt.Errorf("%s: %w", strategy.Name(), err))
			if s.logger != nil {
				s.logger.Warn("strategy failed", "strategy", strategy.Name(), "error", err)
			}
			continue
		}
		if len(items) == 0 {
			s.debug("strategy empty", "strategy", strategy.Name())
			continue
		}

		for i := range items {
			if items[i].Source == "" {
				items[i].Source = strategy.Name()
			}
		}
		s.debug("strategy produced items", "strategy", strategy.Name(), "count", len(items))
		return items, strategy.Name(), nil
	}

	if len(failures) > 0 {
		return nil, "", fmt.Errorf("%w: %w", domain.ErrNoNewItems, errors.Join(failures...))
	}
	return nil, "", domain.ErrNoNewItems
}

// Strategies resolves the configured priority list against the registry.
func (s *StrategySource) Strategies() ([]scanner.Strategy, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}
	return s.registry.Ordered(s.order)
}

func (s *StrategySource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
