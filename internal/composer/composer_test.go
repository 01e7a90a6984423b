package composer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QuotePress/internal/domain"
)

type fakeGenerator struct {
	response string
	err      error
	prompt   string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.response, f.err
}

var sampleItem = domain.CandidateItem{
	ID:         "123",
	Text:       "This deserves a deep dive #BlogThis https://t.co/xyz",
	QuotedText: "Sodium batteries are getting cheaper",
	URL:        "https://x.com/someone/status/123",
}

const wellFormed = `Title: **Sodium Is Back**

Sodium batteries are back in the news.

Costs fell sharply over the last year.

Grid operators are paying attention.

The next few years will tell.

References:
1. [Wikipedia](https://en.wikipedia.org/wiki/Sodium-ion_battery)
2. [Battery news](https://example.com/news)`

func TestParseArticleWellFormed(t *testing.T) {
	t.Parallel()

	article, err := ParseArticle(wellFormed, sampleItem, "#BlogThis", nil)
	require.NoError(t, err)

	assert.Equal(t, "Sodium Is Back", article.Title)
	assert.Len(t, article.Paragraphs(), 4)
	assert.NotContains(t, article.Body, "References")
	assert.Equal(t, []string{
		"[Wikipedia](https://en.wikipedia.org/wiki/Sodium-ion_battery)",
		"[Battery news](https://example.com/news)",
	}, article.References)
}

func TestParseArticleWithoutTitleLine(t *testing.T) {
	t.Parallel()

	response := "First paragraph.\n\nSecond paragraph."
	sources := []domain.SourceReference{{Title: "Docs", URL: "https://example.com"}}

	article, err := ParseArticle(response, sampleItem, "#BlogThis", sources)
	require.NoError(t, err)

	assert.Equal(t, "This deserves a deep dive", article.Title)
	assert.Equal(t, response, article.Body)
	assert.Equal(t, []string{"[Docs](https://example.com)"}, article.References)
}

func TestParseArticleEmpty(t *testing.T) {
	t.Parallel()

	_, err := ParseArticle("  \n ", sampleItem, "#BlogThis", nil)
	assert.ErrorIs(t, err, domain.ErrGeneration)
}

func TestFallbackTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Article from X", FallbackTitle("#BlogThis https://t.co/abc", "#blogthis"))

	long := strings.Repeat("word ", 20)
	title := FallbackTitle(long, "")
	assert.True(t, strings.HasSuffix(title, "…"))
	assert.LessOrEqual(t, len([]rune(title)), 61)
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	prompt := BuildPrompt(sampleItem, nil)
	assert.Contains(t, prompt, noSourcesText)
	assert.Contains(t, prompt, "QUOTED POST (main topic): Sodium batteries are getting cheaper")
	assert.Contains(t, prompt, "Original post: https://x.com/someone/status/123")
	assert.Contains(t, prompt, "Title: [Engaging Title Here]")

	withSources := BuildPrompt(sampleItem, []domain.SourceReference{{Title: "Wiki", Snippet: "Sodium-ion", URL: "https://w.org"}})
	assert.Contains(t, withSources, "- Wiki: Sodium-ion (URL: https://w.org)")
	assert.NotContains(t, withSources, noSourcesText)
}

func TestComposeWrapsGeneratorFailure(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	_, err := New(gen, "#BlogThis", nil).Compose(context.Background(), sampleItem, nil)
	assert.ErrorIs(t, err, domain.ErrGeneration)
	assert.Contains(t, gen.prompt, sampleItem.URL)
}

func TestComposeSuccess(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{response: wellFormed}
	article, err := New(gen, "#BlogThis", nil).Compose(context.Background(), sampleItem, nil)
	require.NoError(t, err)
	assert.Equal(t, "Sodium Is Back", article.Title)
}
