package models

// RawMatch is a single occurrence of a detector in decoded text
type RawMatch struct {
	DetectorID string
	Start      int // byte offset, inclusive
	End        int // byte offset, exclusive
}

// Finding is the aggregated result of one detector matching one file
type Finding struct {
	DetectorID  string   `json:"detector_id"`
	FeatureName string   `json:"feature_name"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Group       Group    `json:"group"`
	Count       int      `json:"count"`
	Lines       []int    `json:"lines"`   // ascending, deduplicated, 1-based
	Snippet     string   `json:"snippet"` // context around the earliest match
}
