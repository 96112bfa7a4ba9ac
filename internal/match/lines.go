package match

import (
	"sort"
	"strings"
)

// LineOf returns the 1-based line of a byte offset: one plus the number of
// newlines before it. Offsets are clamped to the text.
func LineOf(text string, offset int) int {
	offset = clamp(offset, 0, len(text))
	return 1 + strings.Count(text[:offset], "\n")
}

// LineIndex answers LineOf queries in O(log n) using precomputed newline offsets
type LineIndex struct {
	newlines []int
	size     int
}

// NewLineIndex indexes every newline in text
func NewLineIndex(text string) *LineIndex {
	idx := &LineIndex{size: len(text)}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			idx.newlines = append(idx.newlines, i)
		}
	}
	return idx
}

// LineOf agrees exactly with the package-level LineOf on the indexed text
func (x *LineIndex) LineOf(offset int) int {
	offset = clamp(offset, 0, x.size)
	// Newlines strictly before offset
	return 1 + sort.SearchInts(x.newlines, offset)
}

// Lines returns the number of lines in the indexed text
func (x *LineIndex) Lines() int {
	return len(x.newlines) + 1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
