package advisor

import (
	"fmt"
	"path/filepath"
	"strings"
)

// getSyntaxLang returns the code fence language for a detector group or file
func getSyntaxLang(group, fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".js", ".mjs", ".cjs":
		return "javascript"
	case ".ts", ".tsx":
		return "typescript"
	case ".css", ".scss":
		return "css"
	case ".html", ".htm":
		return "html"
	}

	switch group {
	case "js":
		return "javascript"
	case "css":
		return "css"
	default:
		return "html"
	}
}

// SystemPrompt asks for a Baseline compatible replacement of one feature
const SystemPrompt = `You are a front-end platform engineer helping a team ship code that runs on every browser in the "Baseline widely available" set.
A scanner flagged a web platform feature that is newly available or not yet Baseline. Propose how to keep the functionality while staying compatible.

OUTPUT: Valid JSON only, no markdown. Do not escape unicode in strings.
{
  "summary": "one or two sentences on current browser support and the main risk",
  "alternative": "the widely available API, pattern or library to use instead",
  "fallback": "how to feature-detect and fall back when keeping the new feature, empty if not applicable",
  "example": "a short code example of the alternative or fallback, empty if not useful"
}

RULES:
- Prefer feature detection (CSS @supports, "in" checks, typeof) over user agent sniffing.
- Name polyfills only when they are maintained and small.
- If the feature is safe to keep with progressive enhancement, say so in the summary.
- Keep the example under 15 lines and in the same language as the flagged code.`

// BuildAdvicePrompt builds the user prompt for one detector
func BuildAdvicePrompt(req *Request) string {
	var sb strings.Builder

	sb.WriteString("## Feature\n\n")
	sb.WriteString("| Field | Value |\n")
	sb.WriteString("|-------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Feature | %s (`%s`) |\n", req.FeatureName, req.DetectorID))
	sb.WriteString(fmt.Sprintf("| Group | %s |\n", req.Group))
	sb.WriteString(fmt.Sprintf("| Severity | %s |\n", req.Severity))
	sb.WriteString(fmt.Sprintf("| Occurrences | %d in %d file(s) |\n", req.Count, req.Files))

	if req.Description != "" {
		sb.WriteString(fmt.Sprintf("\n## Scanner Note\n\n%s\n", req.Description))
	}

	if req.Snippet != "" {
		sb.WriteString(fmt.Sprintf("\n## Code from `%s`\n\n```%s\n", req.FileName, getSyntaxLang(req.Group, req.FileName)))
		sb.WriteString(truncateCode(req.Snippet, 1500))
		sb.WriteString("\n```\n")
	}

	return sb.String()
}

// truncateCode truncates code to a maximum length while preserving complete lines
func truncateCode(code string, maxLen int) string {
	code = strings.TrimSpace(code)
	if len(code) <= maxLen {
		return code
	}

	truncated := code[:maxLen]
	if idx := strings.LastIndex(truncated, "\n"); idx > maxLen/2 {
		truncated = truncated[:idx]
	}

	return truncated + "\n... [truncated]"
}
