package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/SaweraJamal/PowerScan/pkg/models"
)

// writeText generates a plain text report
func writeText(w io.Writer, doc *Document) error {
	var sb strings.Builder
	r := doc.Report

	// Header
	sb.WriteString("=" + strings.Repeat("=", 78) + "\n")
	sb.WriteString(fmt.Sprintf("  POWERSCAN WEB FEATURE REPORT v%s\n", doc.Meta.Version))
	sb.WriteString("=" + strings.Repeat("=", 78) + "\n\n")

	// Summary
	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 79) + "\n")
	sb.WriteString(fmt.Sprintf("Scan ID:          %s\n", doc.Meta.ScanID))
	sb.WriteString(fmt.Sprintf("Generated:        %s\n", doc.Meta.GeneratedAt.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("Duration:         %s\n", doc.Meta.Duration))
	sb.WriteString(fmt.Sprintf("Catalog:          %s\n", doc.Meta.Catalog))
	sb.WriteString(fmt.Sprintf("Files:            %d\n", r.FileCount))
	sb.WriteString(fmt.Sprintf("OCCURRENCES:      %d\n", r.TotalCount))
	sb.WriteString("\n")

	sb.WriteString("OCCURRENCES BY SEVERITY\n")
	sb.WriteString(strings.Repeat("-", 79) + "\n")
	for _, severity := range models.Severities {
		sb.WriteString(fmt.Sprintf("  %-10s: %d\n", strings.ToUpper(string(severity)), r.SeverityTotals[severity]))
	}
	sb.WriteString("\n")

	sb.WriteString("OCCURRENCES BY FEATURE\n")
	sb.WriteString(strings.Repeat("-", 79) + "\n")
	for _, dt := range r.DetectorTotals {
		sb.WriteString(fmt.Sprintf("  %-40s %-6s %d\n", dt.FeatureName, dt.Severity, dt.Count))
	}
	sb.WriteString("\n")

	// Detailed findings
	if r.TotalCount > 0 {
		sb.WriteString("DETAILED FINDINGS\n")
		sb.WriteString(strings.Repeat("-", 79) + "\n\n")

		i := 0
		for _, fr := range r.FileReports {
			for _, f := range fr.Findings {
				i++
				sb.WriteString(fmt.Sprintf("[%d] %s\n", i, f.FeatureName))
				sb.WriteString(fmt.Sprintf("    File:        %s (%.2f KB)\n", fr.FileName, fr.SizeKB))
				sb.WriteString(fmt.Sprintf("    Severity:    %s\n", strings.ToUpper(string(f.Severity))))
				sb.WriteString(fmt.Sprintf("    Group:       %s\n", f.Group))
				sb.WriteString(fmt.Sprintf("    Count:       %d\n", f.Count))
				sb.WriteString(fmt.Sprintf("    Lines:       %s\n", formatLines(f.Lines)))
				if f.Description != "" {
					sb.WriteString(fmt.Sprintf("    Description: %s\n", f.Description))
				}
				if f.Snippet != "" {
					sb.WriteString(fmt.Sprintf("    Code:        %s\n", cleanFragment(f.Snippet, 200)))
				}
				sb.WriteString("\n")
			}
		}
	}

	// Diagnostics
	var notes []string
	for _, inv := range r.InvalidDetectors {
		notes = append(notes, fmt.Sprintf("invalid detector %s: %s", inv.DetectorID, inv.Error))
	}
	for _, fr := range r.FileReports {
		if fr.DecodeFallback {
			notes = append(notes, fmt.Sprintf("%s decoded with replacement characters", fr.FileName))
		}
		for _, sk := range fr.Skipped {
			notes = append(notes, fmt.Sprintf("%s skipped on %s (%s)", sk.DetectorID, fr.FileName, sk.Reason))
		}
	}
	if len(notes) > 0 {
		sb.WriteString("DIAGNOSTICS\n")
		sb.WriteString(strings.Repeat("-", 79) + "\n")
		for _, n := range notes {
			sb.WriteString("  " + n + "\n")
		}
		sb.WriteString("\n")
	}

	if doc.Advice != nil && len(doc.Advice.Advice) > 0 {
		sb.WriteString("MIGRATION ADVICE\n")
		sb.WriteString(strings.Repeat("-", 79) + "\n")
		for _, a := range doc.Advice.Advice {
			sb.WriteString(fmt.Sprintf("  %s\n", a.FeatureName))
			if a.Error != "" {
				sb.WriteString(fmt.Sprintf("    Error:       %s\n", a.Error))
				continue
			}
			sb.WriteString(fmt.Sprintf("    Summary:     %s\n", a.Summary))
			sb.WriteString(fmt.Sprintf("    Alternative: %s\n", a.Alternative))
			if a.Fallback != "" {
				sb.WriteString(fmt.Sprintf("    Fallback:    %s\n", a.Fallback))
			}
		}
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
