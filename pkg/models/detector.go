package models

import "strings"

// Severity represents how significant a detected pattern is
type Severity string

const (
	SeverityMajor Severity = "major"
	SeverityMinor Severity = "minor"
)

// Severities is the closed severity set in display order
var Severities = []Severity{SeverityMajor, SeverityMinor}

// ParseSeverity converts a case-insensitive string into a Severity
func ParseSeverity(s string) (Severity, bool) {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityMajor:
		return SeverityMajor, true
	case SeverityMinor:
		return SeverityMinor, true
	default:
		return "", false
	}
}

// GetSeverityPriority returns numeric priority for severity (higher = more severe)
func GetSeverityPriority(s Severity) int {
	switch s {
	case SeverityMajor:
		return 2
	case SeverityMinor:
		return 1
	default:
		return 0
	}
}

// Group is the web-platform area a detector belongs to
type Group string

const (
	GroupHTML Group = "html"
	GroupCSS  Group = "css"
	GroupJS   Group = "js"
)

// ParseGroup converts a case-insensitive string into a Group
func ParseGroup(s string) (Group, bool) {
	switch Group(strings.ToLower(strings.TrimSpace(s))) {
	case GroupHTML:
		return GroupHTML, true
	case GroupCSS:
		return GroupCSS, true
	case GroupJS:
		return GroupJS, true
	default:
		return "", false
	}
}

// MatcherKind tells how a detector finds occurrences
type MatcherKind string

const (
	MatcherTextPattern MatcherKind = "pattern"
	MatcherStructural  MatcherKind = "structural"
)

// StructuralPredicate matches HTML tags by name and optional attribute presence.
// Tag "*" matches any element.
type StructuralPredicate struct {
	Tag       string `yaml:"tag" json:"tag"`
	Attribute string `yaml:"attribute,omitempty" json:"attribute,omitempty"`
}

// Matcher finds occurrence spans in decoded text. Each span is a [start, end) pair
// of byte offsets, in ascending start order.
type Matcher interface {
	FindAll(text string) [][]int
}

// Detector is a named rule used to flag one kind of occurrence
type Detector struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Severity    Severity             `json:"severity"`
	Group       Group                `json:"group"`
	Pattern     string               `json:"pattern,omitempty"`
	Structural  *StructuralPredicate `json:"structural,omitempty"`

	// Invalid detectors stay in the catalog for diagnostics but never run
	Invalid      bool   `json:"invalid,omitempty"`
	CompileError string `json:"compile_error,omitempty"`

	Matcher Matcher `json:"-"`
}

// Kind returns the matcher kind of the detector
func (d *Detector) Kind() MatcherKind {
	if d.Structural != nil {
		return MatcherStructural
	}
	return MatcherTextPattern
}
