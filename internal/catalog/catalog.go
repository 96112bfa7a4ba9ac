package catalog

import (
	"fmt"

	"github.com/SaweraJamal/PowerScan/pkg/models"
)

// Catalog is an ordered, immutable set of detectors with an id index.
// It is built once and shared read-only by every scan.
type Catalog struct {
	source    string
	detectors []*models.Detector
	index     map[string]int
}

// New builds a catalog from detectors in the given order. Detector ids must be unique.
func New(source string, detectors []*models.Detector) (*Catalog, error) {
	c := &Catalog{
		source:    source,
		detectors: make([]*models.Detector, 0, len(detectors)),
		index:     make(map[string]int, len(detectors)),
	}

	for _, d := range detectors {
		if _, exists := c.index[d.ID]; exists {
			return nil, fmt.Errorf("duplicate detector id %q", d.ID)
		}
		c.index[d.ID] = len(c.detectors)
		c.detectors = append(c.detectors, d)
	}

	return c, nil
}

// Source returns where the catalog was loaded from
func (c *Catalog) Source() string {
	return c.source
}

// Len returns the number of detectors, invalid ones included
func (c *Catalog) Len() int {
	return len(c.detectors)
}

// Detectors returns all detectors in catalog order
func (c *Catalog) Detectors() []*models.Detector {
	out := make([]*models.Detector, len(c.detectors))
	copy(out, c.detectors)
	return out
}

// Get returns a detector by id
func (c *Catalog) Get(id string) (*models.Detector, bool) {
	i, ok := c.index[id]
	if !ok {
		return nil, false
	}
	return c.detectors[i], true
}

// Position returns the catalog position of a detector, or -1 if unknown
func (c *Catalog) Position(id string) int {
	if i, ok := c.index[id]; ok {
		return i
	}
	return -1
}

// IDs returns every detector id in catalog order
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.detectors))
	for i, d := range c.detectors {
		ids[i] = d.ID
	}
	return ids
}

// Invalid returns detectors whose matcher failed to compile
func (c *Catalog) Invalid() []*models.Detector {
	var invalid []*models.Detector
	for _, d := range c.detectors {
		if d.Invalid {
			invalid = append(invalid, d)
		}
	}
	return invalid
}

// InvalidAmong reports the invalid detectors among the given ids, in catalog order
func (c *Catalog) InvalidAmong(ids []string) []models.InvalidDetector {
	requested := make(map[string]bool, len(ids))
	for _, id := range ids {
		requested[id] = true
	}

	var out []models.InvalidDetector
	for _, d := range c.detectors {
		if d.Invalid && requested[d.ID] {
			out = append(out, models.InvalidDetector{DetectorID: d.ID, Error: d.CompileError})
		}
	}
	return out
}
