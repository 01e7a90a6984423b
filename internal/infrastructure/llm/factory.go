package llm

import (
	"context"
	"fmt"

	"QuotePress/internal/config"
	"QuotePress/internal/domain"
	"QuotePress/internal/ports"
)

// New returns the generator selected by cfg.Provider.
func New(ctx context.Context, cfg config.GeneratorConfig) (ports.Generator, error) {
	switch cfg.Provider {
	case config.ProviderGemini, "":
		return NewGeminiClient(ctx, cfg)
	case config.ProviderOpenAI:
		return NewChatGPTClient(cfg), nil
	case config.ProviderCohere:
		return NewCohereClient(cfg), nil
	default:
		return nil, fmt.Errorf("%w: unknown generator provider %q", domain.ErrConfig, cfg.Provider)
	}
}
