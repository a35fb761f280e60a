package word

import (
	"regexp"
	"strings"
)

// punctuationRegex matches the fixed punctuation set stripped from selected
// words. The normalized form is the identity key for both the translation
// cache and the tooltip toggle, so two selections that differ only in case
// or punctuation must collapse to the same key.
var punctuationRegex = regexp.MustCompile(`[.,;:!?"'()\[\]{}«»“”‘’…—–-]+`)

// whitespaceRegex matches one or more whitespace characters.
var whitespaceRegex = regexp.MustCompile(`\s+`)

// Normalize normalizes a raw selected word:
// 1. Lowercase
// 2. Strip the fixed punctuation set
// 3. Collapse whitespace and trim
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = punctuationRegex.ReplaceAllString(s, "")
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
