package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/SaweraJamal/PowerScan/internal/config"
	"github.com/SaweraJamal/PowerScan/pkg/models"
	"go.uber.org/zap"
)

// ANSI color codes
const (
	colorReset   = "\033[0m"
	colorBold    = "\033[1m"
	colorDim     = "\033[2m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorMagenta = "\033[35m"
	colorWhite   = "\033[37m"
	colorOrange  = "\033[38;5;208m"
	colorGray    = "\033[38;5;245m"
)

// Report formats
const (
	FormatConsole  = "console"
	FormatJSON     = "json"
	FormatRecords  = "records"
	FormatCSV      = "csv"
	FormatMarkdown = "md"
	FormatText     = "txt"
	FormatHTML     = "html"
	FormatSARIF    = "sarif"
)

// Formats lists every supported report format
var Formats = []string{FormatConsole, FormatJSON, FormatRecords, FormatCSV, FormatMarkdown, FormatText, FormatHTML, FormatSARIF}

// NormalizeFormat maps aliases to a format name and reports whether it is known
func NormalizeFormat(format string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatConsole:
		return FormatConsole, true
	case FormatJSON:
		return FormatJSON, true
	case FormatRecords:
		return FormatRecords, true
	case FormatCSV:
		return FormatCSV, true
	case FormatMarkdown, "markdown":
		return FormatMarkdown, true
	case FormatText, "text":
		return FormatText, true
	case FormatHTML:
		return FormatHTML, true
	case FormatSARIF:
		return FormatSARIF, true
	default:
		return "", false
	}
}

// extension returns the file extension used for a format
func extension(format string) string {
	switch format {
	case FormatRecords:
		return "records.json"
	default:
		return format
	}
}

// Generator generates scan reports in various formats
type Generator struct {
	config *config.Config
	logger *zap.Logger
	out    io.Writer
}

// NewGenerator creates a new report generator
func NewGenerator(cfg *config.Config, logger *zap.Logger) (*Generator, error) {
	if _, ok := NormalizeFormat(cfg.ReportFormat); !ok {
		return nil, fmt.Errorf("unknown report format: %s", cfg.ReportFormat)
	}
	return &Generator{
		config: cfg,
		logger: logger,
		out:    os.Stdout,
	}, nil
}

// SetOutput redirects console output
func (g *Generator) SetOutput(w io.Writer) {
	g.out = w
}

// Generate writes the document in the configured format and returns the
// absolute report path, or "" when the report went to the console
func (g *Generator) Generate(doc *Document) (string, error) {
	format, _ := NormalizeFormat(g.config.ReportFormat)
	outputFile := g.config.OutputFile

	// If no format specified, print to console
	if format == FormatConsole && outputFile == "" {
		printConsole(g.out, doc)
		return "", nil
	}

	// Generate default filename if not specified
	if outputFile == "" {
		timestamp := time.Now().Format("20060102-150405")
		outputFile = fmt.Sprintf("POWERSCAN-REPORT-%s.%s", timestamp, extension(format))
	}

	g.logger.Info("Generating report",
		zap.String("format", format),
		zap.String("output", outputFile))

	f, err := os.Create(outputFile)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	if err := Render(f, format, doc); err != nil {
		return "", fmt.Errorf("failed to generate %s report: %w", format, err)
	}

	// Get absolute path
	absPath, _ := filepath.Abs(outputFile)
	return absPath, nil
}

// Render writes the document to w in the given format
func Render(w io.Writer, format string, doc *Document) error {
	normalized, ok := NormalizeFormat(format)
	if !ok {
		return fmt.Errorf("unknown report format: %s", format)
	}

	switch normalized {
	case FormatJSON:
		return writeJSON(w, doc)
	case FormatRecords:
		return WriteRecordsJSON(w, Flatten(doc.Report))
	case FormatCSV:
		return WriteCSV(w, Flatten(doc.Report))
	case FormatMarkdown:
		return writeMarkdown(w, doc)
	case FormatText:
		return writeText(w, doc)
	case FormatHTML:
		return writeHTML(w, doc)
	case FormatSARIF:
		return writeSARIF(w, doc)
	default:
		printConsole(w, doc)
		return nil
	}
}

// getSeverityColor returns ANSI color for severity level
func getSeverityColor(severity models.Severity) string {
	switch severity {
	case models.SeverityMajor:
		return colorRed + colorBold
	case models.SeverityMinor:
		return colorYellow
	default:
		return colorWhite
	}
}

// cleanFragment cleans and truncates code fragment for console output
func cleanFragment(fragment string, maxLen int) string {
	// Replace newlines and tabs with spaces
	fragment = strings.ReplaceAll(fragment, "\n", " ")
	fragment = strings.ReplaceAll(fragment, "\r", "")
	fragment = strings.ReplaceAll(fragment, "\t", " ")

	// Collapse multiple spaces
	for strings.Contains(fragment, "  ") {
		fragment = strings.ReplaceAll(fragment, "  ", " ")
	}

	fragment = strings.TrimSpace(fragment)

	if len(fragment) > maxLen {
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(fragment[cut]) {
			cut--
		}
		fragment = fragment[:cut] + "..."
	}

	return fragment
}

// formatLines renders line numbers as "1, 2, 5"
func formatLines(lines []int) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = fmt.Sprintf("%d", l)
	}
	return strings.Join(parts, ", ")
}
