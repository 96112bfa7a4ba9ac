package core

import (
	"math"
	"sort"
	"unicode/utf8"

	"github.com/SaweraJamal/PowerScan/internal/match"
	"github.com/SaweraJamal/PowerScan/pkg/models"
)

// Aggregate folds the raw matches of one detector on one file into a Finding.
// It reports false when there are no matches: absence, not a zero count.
func Aggregate(text string, d *models.Detector, matches []models.RawMatch, lines *match.LineIndex, snippetContext int) (models.Finding, bool) {
	if len(matches) == 0 {
		return models.Finding{}, false
	}

	earliest := matches[0]
	lineSet := make(map[int]bool, len(matches))
	for _, m := range matches {
		if m.Start < earliest.Start {
			earliest = m
		}
		lineSet[lines.LineOf(m.Start)] = true
	}

	lineNumbers := make([]int, 0, len(lineSet))
	for line := range lineSet {
		lineNumbers = append(lineNumbers, line)
	}
	sort.Ints(lineNumbers)

	return models.Finding{
		DetectorID:  d.ID,
		FeatureName: d.Name,
		Description: d.Description,
		Severity:    d.Severity,
		Group:       d.Group,
		Count:       len(matches),
		Lines:       lineNumbers,
		Snippet:     match.Snippet(text, earliest.Start, earliest.End, snippetContext),
	}, true
}

// SizeKB converts a byte count to kilobytes rounded to two decimals
func SizeKB(size int) float64 {
	return math.Round(float64(size)/1024*100) / 100
}

// Preview returns at most n bytes from the start of text, cut on a rune boundary
func Preview(text string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(text) <= n {
		return text
	}
	for n > 0 && !utf8.RuneStart(text[n]) {
		n--
	}
	return text[:n]
}
