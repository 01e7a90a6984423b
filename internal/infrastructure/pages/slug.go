package pages

import (
	"strings"
	"unicode"
)

const (
	maxSlugTitle = 60
	idSuffixLen  = 6
)

// Slug builds the file name stem: the lowercased title with every other
// character turned into single dashes, at most 60 chars, plus the tail of the
// id's letters and digits.
func Slug(title, id string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if isSlugRune(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}

	stem := b.String()
	if len(stem) > maxSlugTitle {
		stem = stem[:maxSlugTitle]
	}
	stem = strings.Trim(stem, "-")
	if stem == "" {
		stem = "post"
	}

	suffix := strings.Map(func(r rune) rune {
		if isSlugRune(r) {
			return r
		}
		return -1
	}, strings.ToLower(id))
	if len(suffix) > idSuffixLen {
		suffix = suffix[len(suffix)-idSuffixLen:]
	}
	if suffix == "" {
		return stem
	}
	return stem + "-" + suffix
}

func isSlugRune(r rune) bool {
	return r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))
}
