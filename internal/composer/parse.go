package composer

import (
	"fmt"
	"regexp"
	"strings"

	"QuotePress/internal/domain"
)

const (
	fallbackTitleRunes = 60
	defaultTitle       = "Article from X"
	decorationCutset   = "*#_\"'“”` "
)

var (
	linkPattern = regexp.MustCompile(`https?://\S+`)
	listPrefix  = regexp.MustCompile(`^(\d+[.)]|[-*•])\s+`)
)

// ParseArticle splits a generated response into title, body and references.
// An empty response wraps domain.ErrGeneration.
func ParseArticle(response string, item domain.CandidateItem, hashtag string, sources []domain.SourceReference) (domain.ComposedArticle, error) {
	response = strings.TrimSpace(strings.ReplaceAll(response, "\r\n", "\n"))
	if response == "" {
		return domain.ComposedArticle{}, fmt.Errorf("%w: empty response", domain.ErrGeneration)
	}

	lines := strings.Split(response, "\n")

	title := ""
	bodyLines := lines
	for i, line := range lines {
		if rest, ok := titleRemainder(line); ok {
			title = strings.Trim(rest, decorationCutset)
			bodyLines = lines[i+1:]
			break
		}
	}
	if title == "" {
		title = FallbackTitle(item.Text, hashtag)
	}

	body, refs := splitReferences(bodyLines)
	if len(refs) == 0 {
		for _, s := range sources {
			refs = append(refs, s.Markdown())
		}
	}

	return domain.ComposedArticle{
		Title:      title,
		Body:       body,
		References: refs,
	}, nil
}

func titleRemainder(line string) (string, bool) {
	trimmed := strings.TrimLeft(strings.TrimSpace(line), "*# ")
	if !strings.HasPrefix(trimmed, "Title:") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(trimmed, "Title:")), true
}

func isReferencesHeading(line string) bool {
	trimmed := strings.ToLower(strings.Trim(strings.TrimSpace(line), "*#_ "))
	return trimmed == "references:" || trimmed == "references"
}

func splitReferences(lines []string) (string, []string) {
	cut := -1
	for i := len(lines) - 1; i >= 0; i-- {
		if isReferencesHeading(lines[i]) {
			cut = i
			break
		}
	}
	if cut < 0 {
		return strings.TrimSpace(strings.Join(lines, "\n")), nil
	}

	var refs []string
	for _, line := range lines[cut+1:] {
		entry := strings.TrimSpace(listPrefix.ReplaceAllString(strings.TrimSpace(line), ""))
		if entry != "" {
			refs = append(refs, entry)
		}
	}
	return strings.TrimSpace(strings.Join(lines[:cut], "\n")), refs
}

// FallbackTitle derives a title from the post text when the response carries none.
func FallbackTitle(text, hashtag string) string {
	cleaned := linkPattern.ReplaceAllString(text, " ")
	if hashtag != "" {
		cleaned = regexp.MustCompile(`(?i)`+regexp.QuoteMeta(hashtag)).ReplaceAllString(cleaned, " ")
	}
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if cleaned == "" {
		return defaultTitle
	}

	r := []rune(cleaned)
	if len(r) <= fallbackTitleRunes {
		return cleaned
	}
	return strings.TrimSpace(string(r[:fallbackTitleRunes])) + "…"
}
