package models

// Advice is a suggested Baseline-compatible alternative for one detector
type Advice struct {
	DetectorID  string `json:"detector_id"`
	FeatureName string `json:"feature_name"`
	Summary     string `json:"summary"`
	Alternative string `json:"alternative"`
	Fallback    string `json:"fallback,omitempty"`
	Example     string `json:"example,omitempty"`
	Error       string `json:"error,omitempty"`
	TokensUsed  int    `json:"tokens_used"`
}

// AdviceReport collects the advice produced for one scan
type AdviceReport struct {
	Model           string   `json:"model"`
	Advice          []Advice `json:"advice"`
	TotalTokensUsed int      `json:"total_tokens_used"`
	SkippedCount    int      `json:"skipped_count"` // detectors over the request limit
}
