package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/SaweraJamal/PowerScan/pkg/models"
)

const ruler = "───────────────────────────────────────────────────────────────"

// printConsole prints results with colors
func printConsole(w io.Writer, doc *Document) {
	r := doc.Report
	fmt.Fprintln(w)

	// Summary header
	fmt.Fprintf(w, "%s%sSCAN COMPLETE%s\n", colorBold, colorOrange, colorReset)
	fmt.Fprintln(w)

	// Stats
	fmt.Fprintf(w, "  %sCatalog:%s   %s\n", colorGray, colorReset, doc.Meta.Catalog)
	fmt.Fprintf(w, "  %sFiles:%s     %d\n", colorGray, colorReset, r.FileCount)
	fmt.Fprintf(w, "  %sDuration:%s  %s\n", colorGray, colorReset, doc.Meta.Duration)
	fmt.Fprintln(w)

	printDiagnostics(w, r)

	if r.TotalCount == 0 {
		fmt.Fprintf(w, "  %s%s✓ No non-Baseline features detected%s\n", colorBold, colorGreen, colorReset)
		fmt.Fprintln(w)
		return
	}

	// Findings
	fmt.Fprintf(w, "  %s%s⚠ OCCURRENCES FOUND: %d%s  (%s%d major%s, %s%d minor%s)\n",
		colorBold, colorOrange, r.TotalCount, colorReset,
		getSeverityColor(models.SeverityMajor), r.SeverityTotals[models.SeverityMajor], colorReset,
		getSeverityColor(models.SeverityMinor), r.SeverityTotals[models.SeverityMinor], colorReset)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s%s%s\n", colorGray, ruler, colorReset)

	i := 0
	for _, fr := range r.FileReports {
		for _, f := range fr.Findings {
			i++
			severityColor := getSeverityColor(f.Severity)
			fmt.Fprintf(w, "\n  %s%s[%d]%s %s%s%s  ×%d\n", colorBold, colorWhite, i, colorReset, colorBold, f.FeatureName, colorReset, f.Count)
			fmt.Fprintf(w, "      %sSeverity:%s  %s%s%s\n", colorGray, colorReset, severityColor, strings.ToUpper(string(f.Severity)), colorReset)
			fmt.Fprintf(w, "      %sFile:%s      %s%s%s  %slines %s%s\n", colorGray, colorReset, colorOrange, fr.FileName, colorReset, colorRed, formatLines(f.Lines), colorReset)
			fmt.Fprintf(w, "      %sGroup:%s     %s\n", colorGray, colorReset, f.Group)
			if f.Snippet != "" {
				fmt.Fprintf(w, "      %sCode:%s      %s%s%s\n", colorGray, colorReset, colorDim, cleanFragment(f.Snippet, 120), colorReset)
			}
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s%s%s\n", colorGray, ruler, colorReset)

	// Totals per detector
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s%sTOTALS BY FEATURE%s\n", colorBold, colorOrange, colorReset)
	fmt.Fprintln(w)
	for _, dt := range r.DetectorTotals {
		if dt.Count == 0 {
			continue
		}
		fmt.Fprintf(w, "  %s%-6s%s %-40s %d\n", getSeverityColor(dt.Severity), dt.Severity, colorReset, dt.FeatureName, dt.Count)
	}

	if doc.Advice != nil && len(doc.Advice.Advice) > 0 {
		printAdvice(w, doc.Advice)
	}

	fmt.Fprintln(w)
}

// printDiagnostics lists invalid detectors, timeouts and lossy decodes
func printDiagnostics(w io.Writer, r *models.ScanReport) {
	shown := false
	for _, inv := range r.InvalidDetectors {
		fmt.Fprintf(w, "  %s!%s invalid detector %s: %s\n", colorYellow, colorReset, inv.DetectorID, inv.Error)
		shown = true
	}
	for _, fr := range r.FileReports {
		if fr.DecodeFallback {
			fmt.Fprintf(w, "  %s!%s %s is not valid UTF-8, decoded with replacement characters\n", colorYellow, colorReset, fr.FileName)
			shown = true
		}
		for _, sk := range fr.Skipped {
			fmt.Fprintf(w, "  %s!%s %s skipped on %s (%s)\n", colorYellow, colorReset, sk.DetectorID, fr.FileName, sk.Reason)
			shown = true
		}
	}
	if shown {
		fmt.Fprintln(w)
	}
}

func printAdvice(w io.Writer, advice *models.AdviceReport) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s%sMIGRATION ADVICE%s  %s(%s, %d tokens)%s\n", colorBold, colorMagenta, colorReset, colorGray, advice.Model, advice.TotalTokensUsed, colorReset)
	for _, a := range advice.Advice {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  %s%s%s\n", colorBold, a.FeatureName, colorReset)
		if a.Error != "" {
			fmt.Fprintf(w, "      %sError:%s       %s\n", colorGray, colorReset, a.Error)
			continue
		}
		fmt.Fprintf(w, "      %sSummary:%s     %s\n", colorGray, colorReset, cleanFragment(a.Summary, 160))
		fmt.Fprintf(w, "      %sAlternative:%s %s\n", colorGray, colorReset, cleanFragment(a.Alternative, 160))
		if a.Fallback != "" {
			fmt.Fprintf(w, "      %sFallback:%s    %s\n", colorGray, colorReset, cleanFragment(a.Fallback, 160))
		}
	}
	if advice.SkippedCount > 0 {
		fmt.Fprintf(w, "\n  %s%d more features not analyzed (limit reached)%s\n", colorDim, advice.SkippedCount, colorReset)
	}
}
