package report

import (
	"fmt"
	"time"

	"github.com/SaweraJamal/PowerScan/pkg/models"
	"github.com/google/uuid"
)

// Meta carries the wall-clock data that never enters a ScanReport
type Meta struct {
	ScanID      string    `json:"scan_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Duration    string    `json:"duration"`
	Version     string    `json:"version"`
	Catalog     string    `json:"catalog"`
}

// Document is the export envelope around a scan report
type Document struct {
	Meta   Meta                 `json:"meta"`
	Report *models.ScanReport   `json:"report"`
	Advice *models.AdviceReport `json:"advice,omitempty"`
}

// NewDocument wraps a report with a fresh scan id and generation time
func NewDocument(report *models.ScanReport, version, catalog string, duration time.Duration) *Document {
	return &Document{
		Meta: Meta{
			ScanID:      uuid.NewString(),
			GeneratedAt: time.Now().UTC(),
			Duration:    FormatDuration(duration),
			Version:     version,
			Catalog:     catalog,
		},
		Report: report,
	}
}

// FormatDuration formats duration to a human-readable string with max 2 decimal places
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		// Milliseconds
		return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1e6)
	} else if d < time.Minute {
		// Seconds
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	// Minutes and seconds
	mins := int(d.Minutes())
	secs := d.Seconds() - float64(mins*60)
	return fmt.Sprintf("%dm%.2fs", mins, secs)
}
