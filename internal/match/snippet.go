package match

import (
	"strings"
	"unicode/utf8"
)

// DefaultSnippetContext is the number of bytes kept on each side of a match
const DefaultSnippetContext = 40

// Snippet extracts text[start-context : end+context], clipped to the text and
// trimmed of surrounding whitespace. Bounds move inward to rune boundaries so a
// snippet never starts or ends inside a multi-byte character.
func Snippet(text string, start, end, context int) string {
	if context < 0 {
		context = 0
	}
	start = clamp(start, 0, len(text))
	end = clamp(end, start, len(text))

	lo := max(0, start-context)
	hi := min(len(text), end+context)

	for lo < hi && !utf8.RuneStart(text[lo]) {
		lo++
	}
	for hi > lo && hi < len(text) && !utf8.RuneStart(text[hi]) {
		hi--
	}

	return strings.TrimSpace(text[lo:hi])
}
