package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	"github.com/cohere-ai/cohere-go/v2/option"

	"QuotePress/internal/config"
	"QuotePress/internal/ports"
)

// CohereClient generates text with Cohere's chat endpoint.
type CohereClient struct {
	client       *cohereclient.Client
	model        string
	systemPrompt string
}

var _ ports.Generator = (*CohereClient)(nil)

// NewCohereClient builds a client from configuration.
func NewCohereClient(cfg config.GeneratorConfig) *CohereClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &CohereClient{
		client: cohereclient.NewClient(
			option.WithToken(cfg.APIKey),
			option.WithHTTPClient(&http.Client{Timeout: timeout}),
		),
		model:        cfg.Model,
		systemPrompt: strings.TrimSpace(cfg.SystemPrompt),
	}
}

// Generate sends a single chat message and returns the reply text.
func (c *CohereClient) Generate(ctx context.Context, prompt string) (string, error) {
	req := &cohere.ChatRequest{Message: prompt}
	if c.model != "" {
		req.Model = cohere.String(c.model)
	}
	if c.systemPrompt != "" {
		req.Preamble = cohere.String(c.systemPrompt)
	}

	resp, err := c.client.Chat(ctx, req)
	if err != nil {
		return "", fmt.Errorf("cohere chat: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("cohere chat: empty response")
	}
	return resp.Text, nil
}
