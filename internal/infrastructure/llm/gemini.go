package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"

	"QuotePress/internal/config"
	"QuotePress/internal/ports"
)

// GeminiClient generates text through genkit's Google AI plugin.
type GeminiClient struct {
	g            *genkit.Genkit
	model        string
	systemPrompt string
	timeout      time.Duration
}

var _ ports.Generator = (*GeminiClient)(nil)

// NewGeminiClient initialises genkit with the configured API key.
func NewGeminiClient(ctx context.Context, cfg config.GeneratorConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}
	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{
		APIKey: cfg.APIKey,
	}))
	return &GeminiClient{
		g:            g,
		model:        cfg.Model,
		systemPrompt: strings.TrimSpace(cfg.SystemPrompt),
		timeout:      cfg.Timeout,
	}, nil
}

// Generate runs a single-turn generation.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if c.systemPrompt != "" {
		prompt = c.systemPrompt + "\n\n" + prompt
	}

	resp, err := genkit.Generate(ctx, c.g,
		ai.WithPrompt(prompt),
		ai.WithModelName(c.model),
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return resp.Text(), nil
}
