package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/SaweraJamal/PowerScan/internal/config"
	"github.com/SaweraJamal/PowerScan/pkg/models"
	"go.uber.org/zap"
)

func sampleReport() *models.ScanReport {
	return &models.ScanReport{
		FileReports: []*models.FileReport{
			{
				FileName: "a.js",
				SizeKB:   0.02,
				Preview:  "fetch(\"/x\");",
				Findings: []models.Finding{
					{DetectorID: "fetch_api", FeatureName: "Fetch API", Severity: models.SeverityMajor, Group: models.GroupJS,
						Count: 2, Lines: []int{1, 2}, Snippet: "fetch(\"/x\");\nfetch(\"/y\");"},
					{DetectorID: "js_clipboard", FeatureName: "Async Clipboard API", Severity: models.SeverityMinor, Group: models.GroupJS,
						Count: 1, Lines: []int{3}, Snippet: "navigator.clipboard, \"quoted\""},
				},
			},
			{
				FileName:       "b.css",
				SizeKB:         0.01,
				DecodeFallback: true,
				Findings: []models.Finding{
					{DetectorID: "css_has", FeatureName: ":has() selector", Severity: models.SeverityMajor, Group: models.GroupCSS,
						Count: 3, Lines: []int{1, 4}, Snippet: "a:has(b) | c"},
				},
				Skipped: []models.SkippedDetector{{DetectorID: "slow", Reason: models.SkipTimeout}},
			},
			{FileName: "c.html", Findings: []models.Finding{}},
		},
		FileCount:      3,
		TotalCount:     6,
		SeverityTotals: map[models.Severity]int{models.SeverityMajor: 5, models.SeverityMinor: 1},
		DetectorTotals: []models.DetectorTotal{
			{DetectorID: "fetch_api", FeatureName: "Fetch API", Severity: models.SeverityMajor, Group: models.GroupJS, Count: 2},
			{DetectorID: "css_has", FeatureName: ":has() selector", Severity: models.SeverityMajor, Group: models.GroupCSS, Count: 3},
			{DetectorID: "js_clipboard", FeatureName: "Async Clipboard API", Severity: models.SeverityMinor, Group: models.GroupJS, Count: 1},
			{DetectorID: "html_dialog", FeatureName: "Dialog element", Severity: models.SeverityMinor, Group: models.GroupHTML, Count: 0},
		},
		InvalidDetectors: []models.InvalidDetector{{DetectorID: "bad", Error: "missing closing )"}},
	}
}

func sampleDocument() *Document {
	doc := NewDocument(sampleReport(), "1.0.0", "builtin", 1500*time.Millisecond)
	doc.Advice = &models.AdviceReport{
		Model:           "haiku",
		TotalTokensUsed: 120,
		Advice: []models.Advice{
			{DetectorID: "fetch_api", FeatureName: "Fetch API", Summary: "Widely available.", Alternative: "XMLHttpRequest"},
		},
	}
	return doc
}

func TestFlatten(t *testing.T) {
	records := Flatten(sampleReport())
	if len(records) != 3 {
		t.Fatalf("Flatten() returned %d records, want 3", len(records))
	}

	want := Record{File: "b.css", Feature: ":has() selector", Severity: models.SeverityMajor, Count: 3, Lines: []int{1, 4}, Snippet: "a:has(b) | c"}
	if !reflect.DeepEqual(records[2], want) {
		t.Errorf("records[2] = %+v, want %+v", records[2], want)
	}
}

func TestSummarize(t *testing.T) {
	s := SummarizeReport(sampleReport())

	if s.Files != 2 || s.Records != 3 || s.TotalCount != 6 {
		t.Errorf("Summary files/records/total = %d/%d/%d, want 2/3/6", s.Files, s.Records, s.TotalCount)
	}

	wantFeatures := []FeatureTotal{
		{Feature: ":has() selector", Count: 3},
		{Feature: "Fetch API", Count: 2},
		{Feature: "Async Clipboard API", Count: 1},
	}
	if !reflect.DeepEqual(s.ByFeature, wantFeatures) {
		t.Errorf("ByFeature = %+v, want %+v", s.ByFeature, wantFeatures)
	}

	wantSeverity := []SeverityTotal{
		{Severity: models.SeverityMajor, Count: 5},
		{Severity: models.SeverityMinor, Count: 1},
	}
	if !reflect.DeepEqual(s.BySeverity, wantSeverity) {
		t.Errorf("BySeverity = %+v, want %+v", s.BySeverity, wantSeverity)
	}

	if len(s.Top) != 3 || s.Top[0].Feature != ":has() selector" {
		t.Errorf("Top = %+v", s.Top)
	}
}

func TestSummarize_TopLimitAndTies(t *testing.T) {
	var records []Record
	for _, name := range []string{"g", "f", "e", "d", "c", "b", "a"} {
		records = append(records, Record{File: "x", Feature: name, Severity: models.SeverityMinor, Count: 1})
	}

	s := Summarize(records)
	if len(s.Top) != TopN {
		t.Fatalf("Top has %d entries, want %d", len(s.Top), TopN)
	}
	for i, want := range []string{"a", "b", "c", "d", "e"} {
		if s.Top[i].Feature != want {
			t.Errorf("Top[%d] = %s, want %s", i, s.Top[i].Feature, want)
		}
	}
	if s.ByFeature[0].Feature != "a" {
		t.Errorf("ties should be broken by name, got %s first", s.ByFeature[0].Feature)
	}

	empty := Summarize(nil)
	if len(empty.BySeverity) != 2 || empty.BySeverity[0].Count != 0 {
		t.Errorf("empty summary severities = %+v", empty.BySeverity)
	}
}

func TestSummary_ReloadedExportsMatchLive(t *testing.T) {
	doc := sampleDocument()
	live := SummarizeReport(doc.Report)
	dir := t.TempDir()

	for _, format := range []string{FormatJSON, FormatRecords, FormatCSV} {
		t.Run(format, func(t *testing.T) {
			path := filepath.Join(dir, "export."+extension(format))

			var buf bytes.Buffer
			if err := Render(&buf, format, doc); err != nil {
				t.Fatalf("Render(%s) error = %v", format, err)
			}
			if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
				t.Fatalf("Failed to write export: %v", err)
			}

			records, err := LoadRecords(path)
			if err != nil {
				t.Fatalf("LoadRecords() error = %v", err)
			}

			if got := Summarize(records); !reflect.DeepEqual(got, live) {
				t.Errorf("summary from %s export = %+v, want %+v", format, got, live)
			}
		})
	}
}

func TestLoadRecords_BareReport(t *testing.T) {
	data, err := json.Marshal(sampleReport())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	path := filepath.Join(t.TempDir(), "report.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write report: %v", err)
	}

	records, err := LoadRecords(path)
	if err != nil {
		t.Fatalf("LoadRecords() error = %v", err)
	}
	if len(records) != 3 {
		t.Errorf("LoadRecords() returned %d records, want 3", len(records))
	}
}

func TestLoadRecords_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"Empty", "empty.json", ""},
		{"Unknown object", "other.json", `{"hello": "world"}`},
		{"Broken JSON", "broken.json", `[{"file": `},
		{"Bad CSV count", "bad.csv", "file,feature,severity,count,lines,snippet\na.js,Fetch,major,many,1,x\n"},
		{"Bad CSV columns", "cols.csv", "file,feature\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write file: %v", err)
			}
			if _, err := LoadRecords(path); err == nil {
				t.Error("LoadRecords() expected error, got nil")
			}
		})
	}

	if _, err := LoadRecords(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("LoadRecords() expected error for missing file")
	}
}

func TestRender_Formats(t *testing.T) {
	doc := sampleDocument()

	tests := []struct {
		format   string
		contains []string
	}{
		{FormatConsole, []string{"SCAN COMPLETE", "Fetch API", "a.js", "invalid detector bad", "MIGRATION ADVICE"}},
		{FormatText, []string{"POWERSCAN WEB FEATURE REPORT v1.0.0", "MAJOR     : 5", "Lines:       1, 2", "slow skipped on b.css"}},
		{"markdown", []string{"# PowerScan Web Feature Report v1.0.0", "| 🔴 MAJOR | 5 |", "```css\na:has(b) | c", "## Migration Advice"}},
		{FormatHTML, []string{"<!DOCTYPE html>", "&#34;quoted&#34;", "Fetch API", "Migration advice"}},
		{FormatCSV, []string{"file,feature,severity,count,lines,snippet", "a.js,Fetch API,major,2,1;2"}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Render(&buf, tt.format, doc); err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			out := buf.String()
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("%s output missing %q", tt.format, want)
				}
			}
		})
	}

	if err := Render(&bytes.Buffer{}, "xml", doc); err == nil {
		t.Error("Render() should reject unknown formats")
	}
}

func TestRender_JSONDocument(t *testing.T) {
	doc := sampleDocument()

	var buf bytes.Buffer
	if err := Render(&buf, FormatJSON, doc); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	var decoded struct {
		Meta   Meta              `json:"meta"`
		Report models.ScanReport `json:"report"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if decoded.Meta.ScanID == "" || decoded.Meta.ScanID != doc.Meta.ScanID {
		t.Errorf("scan id = %q, want %q", decoded.Meta.ScanID, doc.Meta.ScanID)
	}
	if decoded.Meta.Duration != "1.50s" {
		t.Errorf("duration = %q, want 1.50s", decoded.Meta.Duration)
	}
	if decoded.Report.SeverityTotals[models.SeverityMinor] != 1 {
		t.Errorf("severity totals = %v", decoded.Report.SeverityTotals)
	}
}

func TestRender_SARIF(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, FormatSARIF, sampleDocument()); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("unexpected SARIF envelope: %+v", log)
	}

	// One result per finding line: 2 + 1 + 2
	results := log.Runs[0].Results
	if len(results) != 5 {
		t.Fatalf("SARIF results = %d, want 5", len(results))
	}
	if results[0].Level != "error" || results[2].Level != "warning" {
		t.Errorf("levels = %s/%s, want error/warning", results[0].Level, results[2].Level)
	}
	if results[3].Locations[0].PhysicalLocation.ArtifactLocation.URI != "b.css" ||
		results[4].Locations[0].PhysicalLocation.Region.StartLine != 4 {
		t.Errorf("unexpected location %+v", results[4].Locations[0])
	}
}

func TestGenerator_Generate(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "report.md")

	g, err := NewGenerator(&config.Config{ReportFormat: "md", OutputFile: out}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}

	path, err := g.Generate(sampleDocument())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !filepath.IsAbs(path) {
		t.Errorf("Generate() path %q is not absolute", path)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if !strings.HasPrefix(string(data), "# PowerScan") {
		t.Errorf("unexpected report content: %.40s", data)
	}

	if _, err := NewGenerator(&config.Config{ReportFormat: "xml"}, zap.NewNop()); err == nil {
		t.Error("NewGenerator() should reject unknown formats")
	}
}

func TestGenerator_Console(t *testing.T) {
	g, err := NewGenerator(&config.Config{}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}

	var buf bytes.Buffer
	g.SetOutput(&buf)

	path, err := g.Generate(sampleDocument())
	if err != nil || path != "" {
		t.Fatalf("Generate() = %q, %v; want console output", path, err)
	}
	if !strings.Contains(buf.String(), "OCCURRENCES FOUND: 6") {
		t.Errorf("console output missing totals:\n%s", buf.String())
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{250 * time.Millisecond, "250.00ms"},
		{1500 * time.Millisecond, "1.50s"},
		{90 * time.Second, "1m30.00s"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, SummarizeReport(sampleReport()))

	out := buf.String()
	for _, want := range []string{"DASHBOARD", "Files with findings:", ":has() selector", "Top 5 features by count", "Severity distribution"} {
		if !strings.Contains(out, want) {
			t.Errorf("PrintSummary() output missing %q", want)
		}
	}
}
