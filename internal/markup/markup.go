// Package markup converts the light Markdown produced by generators into HTML.
package markup

import (
	"html"
	"regexp"
	"strings"
)

var (
	boldPattern = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	linkPattern = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^)\s]+)\)`)
	headingMark = regexp.MustCompile(`^#{1,6}\s+`)
)

// Inline escapes text and converts **bold** and [text](url). Only http and https
// targets become links; anything else stays literal text.
func Inline(text string) string {
	out := html.EscapeString(text)
	out = boldPattern.ReplaceAllString(out, "<strong>$1</strong>")
	out = linkPattern.ReplaceAllString(out, `<a href="$2">$1</a>`)
	return out
}

// ToHTML wraps each blank-line separated block in <p>. Heading markers are dropped.
func ToHTML(body string) string {
	var b strings.Builder
	for _, para := range Paragraphs(body) {
		lines := strings.Split(para, "\n")
		for i, line := range lines {
			lines[i] = headingMark.ReplaceAllString(strings.TrimSpace(line), "")
		}
		b.WriteString("<p>")
		b.WriteString(Inline(strings.Join(lines, " ")))
		b.WriteString("</p>\n")
	}
	return b.String()
}

// ReferencesHTML renders references as an ordered list, or nothing when empty.
func ReferencesHTML(refs []string) string {
	if len(refs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<h3>References</h3>\n<ol>\n")
	for _, ref := range refs {
		b.WriteString("<li>")
		b.WriteString(Inline(ref))
		b.WriteString("</li>\n")
	}
	b.WriteString("</ol>\n")
	return b.String()
}

// Paragraphs splits text on blank lines and drops empty blocks.
func Paragraphs(text string) []string {
	var out []string
	for _, block := range regexp.MustCompile(`\n\s*\n`).Split(strings.ReplaceAll(text, "\r\n", "\n"), -1) {
		if block = strings.TrimSpace(block); block != "" {
			out = append(out, block)
		}
	}
	return out
}
