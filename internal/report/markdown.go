package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/SaweraJamal/PowerScan/pkg/models"
)

// writeMarkdown generates a Markdown report
func writeMarkdown(w io.Writer, doc *Document) error {
	var sb strings.Builder
	r := doc.Report

	// Header
	sb.WriteString(fmt.Sprintf("# PowerScan Web Feature Report v%s\n\n", doc.Meta.Version))

	// Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Parameter | Value |\n")
	sb.WriteString("|-----------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Scan ID | `%s` |\n", doc.Meta.ScanID))
	sb.WriteString(fmt.Sprintf("| Generated | %s |\n", doc.Meta.GeneratedAt.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("| Duration | %s |\n", doc.Meta.Duration))
	sb.WriteString(fmt.Sprintf("| Catalog | `%s` |\n", doc.Meta.Catalog))
	sb.WriteString(fmt.Sprintf("| Files | %d |\n", r.FileCount))
	sb.WriteString(fmt.Sprintf("| **Occurrences** | **%d** |\n", r.TotalCount))
	sb.WriteString("\n")

	if r.TotalCount == 0 {
		sb.WriteString("> ✅ **No non-Baseline features detected**\n\n")
		_, err := io.WriteString(w, sb.String())
		return err
	}

	// Statistics by severity
	sb.WriteString("## Occurrences by Severity\n\n")
	sb.WriteString("| Severity | Count |\n")
	sb.WriteString("|----------|-------|\n")
	for _, severity := range models.Severities {
		emoji := getSeverityEmoji(severity)
		sb.WriteString(fmt.Sprintf("| %s %s | %d |\n", emoji, strings.ToUpper(string(severity)), r.SeverityTotals[severity]))
	}
	sb.WriteString("\n")

	// Statistics by feature
	sb.WriteString("## Occurrences by Feature\n\n")
	sb.WriteString("| Feature | Group | Severity | Count |\n")
	sb.WriteString("|---------|-------|----------|-------|\n")
	for _, dt := range r.DetectorTotals {
		if dt.Count == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %d |\n", escapeCell(dt.FeatureName), dt.Group, dt.Severity, dt.Count))
	}
	sb.WriteString("\n")

	// Per file findings
	sb.WriteString("## Findings by File\n\n")
	for _, fr := range r.FileReports {
		if len(fr.Findings) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("### `%s` (%.2f KB)\n\n", fr.FileName, fr.SizeKB))
		sb.WriteString("| Feature | Severity | Count | Lines |\n")
		sb.WriteString("|---------|----------|-------|-------|\n")
		for _, f := range fr.Findings {
			sb.WriteString(fmt.Sprintf("| %s %s | %s | %d | %s |\n",
				getSeverityEmoji(f.Severity), escapeCell(f.FeatureName), f.Severity, f.Count, formatLines(f.Lines)))
		}
		sb.WriteString("\n")

		for _, f := range fr.Findings {
			if f.Snippet == "" {
				continue
			}
			sb.WriteString(fmt.Sprintf("**%s:**\n\n", f.FeatureName))
			sb.WriteString(fmt.Sprintf("```%s\n", f.Group))
			sb.WriteString(f.Snippet)
			sb.WriteString("\n```\n\n")
		}
		sb.WriteString("---\n\n")
	}

	// Advice section
	if doc.Advice != nil && len(doc.Advice.Advice) > 0 {
		sb.WriteString("## Migration Advice\n\n")
		sb.WriteString(fmt.Sprintf("_Model: %s, tokens used: %d_\n\n", doc.Advice.Model, doc.Advice.TotalTokensUsed))
		for _, a := range doc.Advice.Advice {
			sb.WriteString(fmt.Sprintf("### %s\n\n", a.FeatureName))
			if a.Error != "" {
				sb.WriteString(fmt.Sprintf("> ⚠️ %s\n\n", a.Error))
				continue
			}
			sb.WriteString(a.Summary + "\n\n")
			sb.WriteString(fmt.Sprintf("**Alternative:** %s\n\n", a.Alternative))
			if a.Fallback != "" {
				sb.WriteString(fmt.Sprintf("**Fallback:** %s\n\n", a.Fallback))
			}
			if a.Example != "" {
				sb.WriteString("```\n" + a.Example + "\n```\n\n")
			}
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// getSeverityEmoji returns emoji for severity
func getSeverityEmoji(severity models.Severity) string {
	switch severity {
	case models.SeverityMajor:
		return "🔴"
	case models.SeverityMinor:
		return "🟡"
	default:
		return "⚪"
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
