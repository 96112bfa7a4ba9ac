package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/SaweraJamal/PowerScan/pkg/models"
)

// TopN is the number of (feature, severity) pairs in the dashboard top list
const TopN = 5

// FeatureTotal is the summed count of one feature
type FeatureTotal struct {
	Feature string `json:"feature"`
	Count   int    `json:"count"`
}

// FeatureSeverityTotal is the summed count of one (feature, severity) pair
type FeatureSeverityTotal struct {
	Feature  string          `json:"feature"`
	Severity models.Severity `json:"severity"`
	Count    int             `json:"count"`
}

// SeverityTotal is the summed count of one severity
type SeverityTotal struct {
	Severity models.Severity `json:"severity"`
	Count    int             `json:"count"`
}

// Summary holds the dashboard statistics of a scan. It is computed from flat
// records only, so live reports and reloaded exports summarize identically.
type Summary struct {
	Files      int                    `json:"files"` // files with at least one finding
	Records    int                    `json:"records"`
	TotalCount int                    `json:"total_count"`
	ByFeature  []FeatureTotal         `json:"by_feature"`
	Top        []FeatureSeverityTotal `json:"top"`
	BySeverity []SeverityTotal        `json:"by_severity"`
}

// SummarizeReport summarizes a live scan report
func SummarizeReport(report *models.ScanReport) *Summary {
	return Summarize(Flatten(report))
}

// Summarize computes dashboard statistics from flat records
func Summarize(records []Record) *Summary {
	s := &Summary{
		Records:    len(records),
		ByFeature:  []FeatureTotal{},
		Top:        []FeatureSeverityTotal{},
		BySeverity: []SeverityTotal{},
	}

	files := make(map[string]bool)
	byFeature := make(map[string]int)
	byPair := make(map[FeatureSeverityTotal]int)
	bySeverity := make(map[models.Severity]int)

	for _, r := range records {
		files[r.File] = true
		s.TotalCount += r.Count
		byFeature[r.Feature] += r.Count
		byPair[FeatureSeverityTotal{Feature: r.Feature, Severity: r.Severity}] += r.Count
		bySeverity[r.Severity] += r.Count
	}
	s.Files = len(files)

	for feature, count := range byFeature {
		s.ByFeature = append(s.ByFeature, FeatureTotal{Feature: feature, Count: count})
	}
	sort.Slice(s.ByFeature, func(i, j int) bool {
		if s.ByFeature[i].Count != s.ByFeature[j].Count {
			return s.ByFeature[i].Count > s.ByFeature[j].Count
		}
		return s.ByFeature[i].Feature < s.ByFeature[j].Feature
	})

	for pair, count := range byPair {
		pair.Count = count
		s.Top = append(s.Top, pair)
	}
	sort.Slice(s.Top, func(i, j int) bool {
		a, b := s.Top[i], s.Top[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.Feature != b.Feature {
			return a.Feature < b.Feature
		}
		return a.Severity < b.Severity
	})
	if len(s.Top) > TopN {
		s.Top = s.Top[:TopN]
	}

	// Known severities always appear, in display order
	for _, sev := range models.Severities {
		s.BySeverity = append(s.BySeverity, SeverityTotal{Severity: sev, Count: bySeverity[sev]})
		delete(bySeverity, sev)
	}
	var others []models.Severity
	for sev := range bySeverity {
		others = append(others, sev)
	}
	sort.Slice(others, func(i, j int) bool { return others[i] < others[j] })
	for _, sev := range others {
		s.BySeverity = append(s.BySeverity, SeverityTotal{Severity: sev, Count: bySeverity[sev]})
	}

	return s
}

// PrintSummary renders the dashboard as text with bar charts
func PrintSummary(w io.Writer, s *Summary) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s%sDASHBOARD%s\n\n", colorBold, colorOrange, colorReset)
	fmt.Fprintf(w, "  %sFiles with findings:%s %d\n", colorGray, colorReset, s.Files)
	fmt.Fprintf(w, "  %sOccurrences:%s         %d\n", colorGray, colorReset, s.TotalCount)
	fmt.Fprintln(w)

	if s.TotalCount == 0 {
		fmt.Fprintf(w, "  %s%s✓ No findings%s\n\n", colorBold, colorGreen, colorReset)
		return
	}

	maxCount := 0
	width := 0
	for _, f := range s.ByFeature {
		maxCount = max(maxCount, f.Count)
		width = max(width, len(f.Feature))
	}

	fmt.Fprintf(w, "%sFindings by feature%s\n", colorBold, colorReset)
	for _, f := range s.ByFeature {
		fmt.Fprintf(w, "  %-*s %s %d\n", width, f.Feature, bar(f.Count, maxCount, 30), f.Count)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%sTop %d features by count%s\n", colorBold, TopN, colorReset)
	for i, t := range s.Top {
		fmt.Fprintf(w, "  %d. %s %s(%s)%s  %d\n", i+1, t.Feature, getSeverityColor(t.Severity), t.Severity, colorReset, t.Count)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%sSeverity distribution%s\n", colorBold, colorReset)
	for _, sv := range s.BySeverity {
		fmt.Fprintf(w, "  %s%-6s%s %s %d\n", getSeverityColor(sv.Severity), sv.Severity, colorReset, bar(sv.Count, s.TotalCount, 30), sv.Count)
	}
	fmt.Fprintln(w)
}

func bar(value, total, width int) string {
	if total <= 0 || value <= 0 {
		return ""
	}
	n := value * width / total
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}
