package match

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/SaweraJamal/PowerScan/pkg/models"
)

// PatternCompileError is returned when a detector's matcher cannot be built.
// It only invalidates that one detector.
type PatternCompileError struct {
	DetectorID string
	Pattern    string
	Err        error
}

func (e *PatternCompileError) Error() string {
	return fmt.Sprintf("detector %s: invalid matcher %q: %v", e.DetectorID, e.Pattern, e.Err)
}

func (e *PatternCompileError) Unwrap() error {
	return e.Err
}

// RegexMatcher matches a portable text pattern. Matching is case-insensitive
// and ^/$ anchor at line boundaries.
type RegexMatcher struct {
	re *regexp.Regexp
}

// CompilePattern validates and compiles a text pattern
func CompilePattern(pattern string) (*RegexMatcher, error) {
	if pattern == "" {
		return nil, errors.New("empty pattern")
	}
	if err := CheckPortable(pattern); err != nil {
		return nil, err
	}
	re, err := regexp.Compile("(?im)" + pattern)
	if err != nil {
		return nil, err
	}
	return &RegexMatcher{re: re}, nil
}

// FindAll returns all non-overlapping match spans in ascending order
func (m *RegexMatcher) FindAll(text string) [][]int {
	return m.re.FindAllStringIndex(text, -1)
}

// Compile builds the matcher for a detector and stores it on the detector.
// On failure the detector is left without a matcher.
func Compile(d *models.Detector) error {
	var (
		m   models.Matcher
		err error
	)
	source := d.Pattern
	if d.Structural != nil {
		source = "<" + d.Structural.Tag
		if d.Structural.Attribute != "" {
			source += " " + d.Structural.Attribute
		}
		source += ">"
		m, err = NewStructuralMatcher(*d.Structural)
	} else {
		m, err = CompilePattern(d.Pattern)
	}
	if err != nil {
		return &PatternCompileError{DetectorID: d.ID, Pattern: strings.TrimSpace(source), Err: err}
	}
	d.Matcher = m
	return nil
}
