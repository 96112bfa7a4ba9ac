package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/SaweraJamal/PowerScan/pkg/models"
)

// Record is one finding flattened for tabular exports
type Record struct {
	File     string          `json:"file"`
	Feature  string          `json:"feature"`
	Severity models.Severity `json:"severity"`
	Count    int             `json:"count"`
	Lines    []int           `json:"lines"`
	Snippet  string          `json:"snippet"`
}

var csvHeader = []string{"file", "feature", "severity", "count", "lines", "snippet"}

// Flatten turns a report into one record per file and finding, in report order
func Flatten(report *models.ScanReport) []Record {
	records := make([]Record, 0, report.FindingsCount())
	for _, fr := range report.FileReports {
		for _, f := range fr.Findings {
			records = append(records, Record{
				File:     fr.FileName,
				Feature:  f.FeatureName,
				Severity: f.Severity,
				Count:    f.Count,
				Lines:    f.Lines,
				Snippet:  f.Snippet,
			})
		}
	}
	return records
}

// WriteRecordsJSON writes records as an indented JSON array
func WriteRecordsJSON(w io.Writer, records []Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// WriteCSV writes records with a header row. Lines are joined with ';'.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		lines := make([]string, len(r.Lines))
		for i, l := range r.Lines {
			lines[i] = strconv.Itoa(l)
		}
		row := []string{r.File, r.Feature, string(r.Severity), strconv.Itoa(r.Count), strings.Join(lines, ";"), r.Snippet}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// LoadRecords reloads an export as flat records. It accepts the nested JSON
// document, a bare JSON scan report, a JSON record list or a CSV record file.
func LoadRecords(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return ReadCSV(bytes.NewReader(data))
	}
	return ParseJSON(data)
}

// ParseJSON reads records from any of the JSON export shapes
func ParseJSON(data []byte) ([]Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty export")
	}

	if data[0] == '[' {
		var records []Record
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("invalid record list: %w", err)
		}
		return records, nil
	}

	var probe struct {
		Report      *models.ScanReport   `json:"report"`
		FileReports []*models.FileReport `json:"file_reports"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("invalid report document: %w", err)
	}

	switch {
	case probe.Report != nil:
		return Flatten(probe.Report), nil
	case probe.FileReports != nil:
		return Flatten(&models.ScanReport{FileReports: probe.FileReports}), nil
	default:
		return nil, errors.New("export has neither a report nor file reports")
	}
}

// ReadCSV reads records written by WriteCSV
func ReadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid csv export: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("csv export has no header")
	}

	records := make([]Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		count, err := strconv.Atoi(row[3])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid count %q", i+2, row[3])
		}

		lines := []int{}
		if row[4] != "" {
			for _, part := range strings.Split(row[4], ";") {
				l, err := strconv.Atoi(part)
				if err != nil {
					return nil, fmt.Errorf("row %d: invalid line %q", i+2, part)
				}
				lines = append(lines, l)
			}
		}

		records = append(records, Record{
			File:     row[0],
			Feature:  row[1],
			Severity: models.Severity(row[2]),
			Count:    count,
			Lines:    lines,
			Snippet:  row[5],
		})
	}
	return records, nil
}
