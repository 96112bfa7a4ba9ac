package catalog

import "github.com/SaweraJamal/PowerScan/pkg/models"

// Effective returns the detectors that are selected by id, have one of the
// given severities and compiled successfully, in catalog order. Unknown ids
// and severities are ignored. An empty result is valid.
func (c *Catalog) Effective(selectedIDs []string, severities []models.Severity) []*models.Detector {
	selected := make(map[string]bool, len(selectedIDs))
	for _, id := range selectedIDs {
		selected[id] = true
	}
	allowed := make(map[models.Severity]bool, len(severities))
	for _, s := range severities {
		allowed[s] = true
	}

	effective := make([]*models.Detector, 0, len(selectedIDs))
	for _, d := range c.detectors {
		if d.Invalid || !selected[d.ID] || !allowed[d.Severity] {
			continue
		}
		effective = append(effective, d)
	}
	return effective
}
