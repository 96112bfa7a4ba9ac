package report

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/SaweraJamal/PowerScan/pkg/models"
)

const htmlHead = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>PowerScan Web Feature Report</title>
    <style>
        :root {
            --bg-primary: #0C0C0C;
            --bg-secondary: #161616;
            --bg-tertiary: #1C1C1C;
            --text-primary: #ECECEC;
            --text-secondary: #A0A0A0;
            --text-muted: #6B6B6B;
            --accent: #D97706;
            --border-color: #2A2A2A;
            --major-color: #EF4444;
            --major-bg: #2A1515;
            --minor-color: #EAB308;
            --minor-bg: #2A2515;
        }
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; background: var(--bg-primary); color: var(--text-primary); line-height: 1.6; }
        .container { max-width: 1200px; margin: 0 auto; padding: 32px 24px; }
        h1 { font-size: 24px; font-weight: 600; margin-bottom: 4px; }
        h2 { font-size: 16px; font-weight: 600; margin: 32px 0 12px; color: var(--accent); text-transform: uppercase; letter-spacing: 0.05em; }
        .meta { color: var(--text-muted); font-size: 13px; }
        .cards { display: grid; grid-template-columns: repeat(auto-fit, minmax(180px, 1fr)); gap: 12px; margin-top: 24px; }
        .card { background: var(--bg-secondary); border: 1px solid var(--border-color); border-radius: 8px; padding: 16px; }
        .card .label { color: var(--text-secondary); font-size: 12px; text-transform: uppercase; }
        .card .value { font-size: 28px; font-weight: 600; }
        table { width: 100%; border-collapse: collapse; background: var(--bg-secondary); border: 1px solid var(--border-color); border-radius: 8px; overflow: hidden; }
        th, td { text-align: left; padding: 8px 12px; border-bottom: 1px solid var(--border-color); font-size: 14px; vertical-align: top; }
        th { background: var(--bg-tertiary); color: var(--text-secondary); font-weight: 500; }
        .badge { display: inline-block; padding: 1px 8px; border-radius: 4px; font-size: 12px; font-weight: 600; text-transform: uppercase; }
        .badge.major { color: var(--major-color); background: var(--major-bg); }
        .badge.minor { color: var(--minor-color); background: var(--minor-bg); }
        .bar { display: inline-block; height: 10px; background: var(--accent); border-radius: 2px; }
        pre { font-family: "JetBrains Mono", monospace; font-size: 12px; background: var(--bg-tertiary); padding: 8px; border-radius: 4px; white-space: pre-wrap; word-break: break-all; }
        .file { margin-bottom: 24px; }
        .file h3 { font-size: 14px; font-family: monospace; margin-bottom: 8px; }
        .note { color: var(--minor-color); font-size: 13px; }
        .empty { color: #22C55E; font-weight: 600; margin-top: 24px; }
    </style>
</head>
<body>
<div class="container">
`

// writeHTML generates a standalone HTML report
func writeHTML(w io.Writer, doc *Document) error {
	var sb strings.Builder
	r := doc.Report
	esc := html.EscapeString

	sb.WriteString(htmlHead)

	// Header
	sb.WriteString(fmt.Sprintf("<h1>PowerScan Web Feature Report</h1>\n<div class=\"meta\">v%s · %s · scan %s · catalog %s · %s</div>\n",
		esc(doc.Meta.Version), doc.Meta.GeneratedAt.Format("2006-01-02 15:04:05"), esc(doc.Meta.ScanID), esc(doc.Meta.Catalog), esc(doc.Meta.Duration)))

	// Summary cards
	sb.WriteString("<div class=\"cards\">\n")
	writeCard(&sb, "Files", r.FileCount)
	writeCard(&sb, "Occurrences", r.TotalCount)
	for _, sev := range models.Severities {
		writeCard(&sb, string(sev), r.SeverityTotals[sev])
	}
	sb.WriteString("</div>\n")

	if r.TotalCount == 0 {
		sb.WriteString("<p class=\"empty\">✓ No non-Baseline features detected</p>\n")
	} else {
		// Totals by feature with bars
		maxCount := 0
		for _, dt := range r.DetectorTotals {
			maxCount = max(maxCount, dt.Count)
		}
		sb.WriteString("<h2>Findings by feature</h2>\n<table>\n<tr><th>Feature</th><th>Group</th><th>Severity</th><th>Count</th><th></th></tr>\n")
		for _, dt := range r.DetectorTotals {
			if dt.Count == 0 {
				continue
			}
			width := dt.Count * 200 / maxCount
			sb.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%s</td><td>%s</td><td>%d</td><td><span class=\"bar\" style=\"width:%dpx\"></span></td></tr>\n",
				esc(dt.FeatureName), esc(string(dt.Group)), severityBadge(dt.Severity), dt.Count, width))
		}
		sb.WriteString("</table>\n")

		// Per file findings
		sb.WriteString("<h2>Findings by file</h2>\n")
		for _, fr := range r.FileReports {
			if len(fr.Findings) == 0 {
				continue
			}
			sb.WriteString(fmt.Sprintf("<div class=\"file\">\n<h3>%s <span class=\"meta\">%.2f KB</span></h3>\n", esc(fr.FileName), fr.SizeKB))
			sb.WriteString("<table>\n<tr><th>Feature</th><th>Severity</th><th>Count</th><th>Lines</th><th>Snippet</th></tr>\n")
			for _, f := range fr.Findings {
				sb.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%s</td><td>%d</td><td>%s</td><td><pre>%s</pre></td></tr>\n",
					esc(f.FeatureName), severityBadge(f.Severity), f.Count, esc(formatLines(f.Lines)), esc(f.Snippet)))
			}
			sb.WriteString("</table>\n</div>\n")
		}
	}

	// Diagnostics
	var notes []string
	for _, inv := range r.InvalidDetectors {
		notes = append(notes, fmt.Sprintf("Invalid detector %s: %s", inv.DetectorID, inv.Error))
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
		sb.WriteString("<h2>Diagnostics</h2>\n")
		for _, n := range notes {
			sb.WriteString(fmt.Sprintf("<p class=\"note\">%s</p>\n", esc(n)))
		}
	}

	// Advice
	if doc.Advice != nil && len(doc.Advice.Advice) > 0 {
		sb.WriteString(fmt.Sprintf("<h2>Migration advice</h2>\n<p class=\"meta\">%s · %d tokens</p>\n", esc(doc.Advice.Model), doc.Advice.TotalTokensUsed))
		sb.WriteString("<table>\n<tr><th>Feature</th><th>Advice</th></tr>\n")
		for _, a := range doc.Advice.Advice {
			body := esc(a.Summary)
			if a.Error != "" {
				body = fmt.Sprintf("<span class=\"note\">%s</span>", esc(a.Error))
			} else {
				body += fmt.Sprintf("<br><strong>Alternative:</strong> %s", esc(a.Alternative))
				if a.Fallback != "" {
					body += fmt.Sprintf("<br><strong>Fallback:</strong> %s", esc(a.Fallback))
				}
				if a.Example != "" {
					body += fmt.Sprintf("<pre>%s</pre>", esc(a.Example))
				}
			}
			sb.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%s</td></tr>\n", esc(a.FeatureName), body))
		}
		sb.WriteString("</table>\n")
	}

	sb.WriteString("</div>\n</body>\n</html>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeCard(sb *strings.Builder, label string, value int) {
	sb.WriteString(fmt.Sprintf("<div class=\"card\"><div class=\"label\">%s</div><div class=\"value\">%d</div></div>\n", html.EscapeString(label), value))
}

func severityBadge(s models.Severity) string {
	return fmt.Sprintf("<span class=\"badge %s\">%s</span>", html.EscapeString(string(s)), html.EscapeString(string(s)))
}
