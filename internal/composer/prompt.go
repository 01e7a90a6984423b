package composer

import (
	"fmt"
	"strings"

	"QuotePress/internal/domain"
)

const (
	maxQuotedRunes = 300
	noSourcesText  = "No external sources found. Write based on general knowledge of the quoted topic."
)

const promptTemplate = `You are a professional blogger. Write an informative article based on this information:

ORIGINAL POST: %s

QUOTED POST (main topic): %s

RESEARCH SOURCES:
%s

REQUIREMENTS:
- Write about 300 words
- Create an engaging title
- Write in clear paragraphs (no bullet points in main text)
- Be informative and educational
- Include all source URLs as clickable references at the end
- Make it readable and engaging

FORMAT:
Title: [Engaging Title Here]

[First paragraph introducing the topic]

[Second paragraph with main information]

[Third paragraph with additional context]

[Concluding paragraph]

References:
1. [Source name](URL)
2. [Source name](URL)

Original post: %s
`

// BuildPrompt renders the generation instruction for one item.
func BuildPrompt(item domain.CandidateItem, sources []domain.SourceReference) string {
	return fmt.Sprintf(promptTemplate,
		item.Text,
		truncate(item.QuotedText, maxQuotedRunes),
		renderSources(sources),
		item.URL,
	)
}

func renderSources(sources []domain.SourceReference) string {
	if len(sources) == 0 {
		return noSourcesText
	}
	lines := make([]string, 0, len(sources))
	for _, s := range sources {
		lines = append(lines, fmt.Sprintf("- %s: %s (URL: %s)", s.Title, s.Snippet, s.URL))
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
