package models

// SkipReason explains why a detector contributed nothing for a file
type SkipReason string

const (
	SkipTimeout SkipReason = "timeout"
)

// SkippedDetector records a detector that did not finish on a file
type SkippedDetector struct {
	DetectorID string     `json:"detector_id"`
	Reason     SkipReason `json:"reason"`
}

// FileReport holds all findings plus metadata for one scanned file
type FileReport struct {
	FileName       string            `json:"file_name"`
	SizeKB         float64           `json:"size_kb"`
	DecodeFallback bool              `json:"decode_fallback"`
	Preview        string            `json:"preview"`
	Findings       []Finding         `json:"findings"`
	Skipped        []SkippedDetector `json:"skipped,omitempty"`
}

// TotalCount returns the sum of finding counts in the file
func (fr *FileReport) TotalCount() int {
	total := 0
	for _, f := range fr.Findings {
		total += f.Count
	}
	return total
}

// DetectorTotal is the count of one detector across all files
type DetectorTotal struct {
	DetectorID  string   `json:"detector_id"`
	FeatureName string   `json:"feature_name"`
	Severity    Severity `json:"severity"`
	Group       Group    `json:"group"`
	Count       int      `json:"count"`
}

// InvalidDetector is a requested detector that could not be compiled
type InvalidDetector struct {
	DetectorID string `json:"detector_id"`
	Error      string `json:"error"`
}

// ScanReport is the full batch result. It carries no wall-clock data so that
// identical inputs produce identical reports.
type ScanReport struct {
	FileReports      []*FileReport     `json:"file_reports"`
	FileCount        int               `json:"file_count"`
	TotalCount       int               `json:"total_count"`
	SeverityTotals   map[Severity]int  `json:"severity_totals"`
	DetectorTotals   []DetectorTotal   `json:"detector_totals"`
	InvalidDetectors []InvalidDetector `json:"invalid_detectors,omitempty"`
}

// FindingsCount returns the number of (file, detector) findings in the report
func (r *ScanReport) FindingsCount() int {
	n := 0
	for _, fr := range r.FileReports {
		n += len(fr.Findings)
	}
	return n
}
