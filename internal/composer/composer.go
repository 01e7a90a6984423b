package composer

import (
	"context"
	"fmt"
	"log/slog"

	"QuotePress/internal/domain"
	"QuotePress/internal/ports"
)

// Composer asks a generator for an article and parses the answer.
type Composer struct {
	generator ports.Generator
	hashtag   string
	logger    *slog.Logger
}

var _ ports.Composer = (*Composer)(nil)

// New wires a composer around a text generator.
func New(generator ports.Generator, hashtag string, log *slog.Logger) *Composer {
	return &Composer{generator: generator, hashtag: hashtag, logger: log}
}

// Compose generates and parses the article for item.
func (c *Composer) Compose(ctx context.Context, item domain.CandidateItem, sources []domain.SourceReference) (domain.ComposedArticle, error) {
	if c.generator == nil {
		return domain.ComposedArticle{}, fmt.Errorf("%w: generator is not configured", domain.ErrGeneration)
	}

	prompt := BuildPrompt(item, sources)
	response, err := c.generator.Generate(ctx, prompt)
	if err != nil {
		return domain.ComposedArticle{}, fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}

	article, err := ParseArticle(response, item, c.hashtag, sources)
	if err != nil {
		return domain.ComposedArticle{}, err
	}

	if c.logger != nil {
		c.logger.Debug("article composed",
			"item_id", item.ID,
			"title", article.Title,
			"paragraphs", len(article.Paragraphs()),
			"references", len(article.References),
		)
	}
	return article, nil
}
