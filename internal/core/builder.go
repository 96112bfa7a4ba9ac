package core

import (
	"sort"

	"github.com/SaweraJamal/PowerScan/internal/catalog"
	"github.com/SaweraJamal/PowerScan/pkg/models"
)

// BuildFileReport assembles a file report with findings in catalog order
func BuildFileReport(name string, sizeKB float64, findings []models.Finding, preview string, c *catalog.Catalog) *models.FileReport {
	ordered := make([]models.Finding, len(findings))
	copy(ordered, findings)
	sort.SliceStable(ordered, func(i, j int) bool {
		return c.Position(ordered[i].DetectorID) < c.Position(ordered[j].DetectorID)
	})

	return &models.FileReport{
		FileName: name,
		SizeKB:   sizeKB,
		Preview:  preview,
		Findings: ordered,
	}
}

// BuildScanReport aggregates file reports, kept in input order, into a batch
// report. Detector totals list every effective detector, zero counts included.
func BuildScanReport(fileReports []*models.FileReport, effective []*models.Detector, invalid []models.InvalidDetector) *models.ScanReport {
	report := &models.ScanReport{
		FileReports:      make([]*models.FileReport, len(fileReports)),
		FileCount:        len(fileReports),
		SeverityTotals:   make(map[models.Severity]int, len(models.Severities)),
		DetectorTotals:   make([]models.DetectorTotal, 0, len(effective)),
		InvalidDetectors: invalid,
	}
	copy(report.FileReports, fileReports)

	for _, sev := range models.Severities {
		report.SeverityTotals[sev] = 0
	}

	counts := make(map[string]int, len(effective))
	for _, fr := range fileReports {
		for _, f := range fr.Findings {
			counts[f.DetectorID] += f.Count
			report.SeverityTotals[f.Severity] += f.Count
			report.TotalCount += f.Count
		}
	}

	for _, d := range effective {
		report.DetectorTotals = append(report.DetectorTotals, models.DetectorTotal{
			DetectorID:  d.ID,
			FeatureName: d.Name,
			Severity:    d.Severity,
			Group:       d.Group,
			Count:       counts[d.ID],
		})
	}

	return report
}
