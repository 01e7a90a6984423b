package scanner

import (
	"fmt"
	"strings"
)

// Qualifies applies the one qualification policy shared by every network strategy:
// the text must carry the tracked tag, and when the query asks for it, the post must
// quote another post.
func Qualifies(text, quotedText string, q Query) bool {
	if q.Hashtag == "" {
		return false
	}
	if !strings.Contains(strings.ToLower(text), strings.ToLower(q.Hashtag)) {
		return false
	}
	if q.RequireQuote && strings.TrimSpace(quotedText) == "" {
		return false
	}
	return true
}

// StatusURL is the canonical link for a post id.
func StatusURL(username, id string) string {
	return fmt.Sprintf("https://x.com/%s/status/%s", username, id)
}

// CollapseSpace trims and joins whitespace runs with single spaces.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
