package advisor

import "strings"

// Request is the data sent to the model for one detector
type Request struct {
	DetectorID  string `json:"detector_id"`
	FeatureName string `json:"feature_name"`
	Description string `json:"description"`
	Group       string `json:"group"`
	Severity    string `json:"severity"`
	Count       int    `json:"count"`
	Files       int    `json:"files"`
	FileName    string `json:"file_name"`
	Snippet     string `json:"snippet"`
}

// Suggestion is the parsed model answer for one detector
type Suggestion struct {
	Summary     string `json:"summary"`
	Alternative string `json:"alternative"`
	Fallback    string `json:"fallback,omitempty"`
	Example     string `json:"example,omitempty"`
	TokensUsed  int    `json:"tokens_used"`
}

// mapModelName converts friendly model names to model IDs
func mapModelName(name string) string {
	switch strings.ToLower(name) {
	case "haiku":
		return "claude-3-5-haiku-latest"
	case "sonnet":
		return "claude-sonnet-4-20250514"
	case "opus":
		return "claude-opus-4-20250514"
	case "":
		return "claude-3-5-haiku-latest"
	default:
		// Full model ids pass through
		return name
	}
}

// CostEstimate represents estimated API costs for an advice run
type CostEstimate struct {
	Model            string
	Requests         int
	EstimatedTokens  int
	EstimatedCostUSD float64
}

// TokenPricing contains pricing per million tokens for each model
type TokenPricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// ModelPricing returns pricing for a model
func ModelPricing(model string) TokenPricing {
	switch model {
	case "haiku", "claude-3-5-haiku-latest":
		return TokenPricing{InputPerMillion: 0.8, OutputPerMillion: 4.0}
	case "opus", "claude-opus-4-20250514":
		return TokenPricing{InputPerMillion: 15.0, OutputPerMillion: 75.0}
	default: // sonnet
		return TokenPricing{InputPerMillion: 3.0, OutputPerMillion: 15.0}
	}
}

// EstimateCost calculates the estimated cost of advising on n detectors
func EstimateCost(model string, requests int) *CostEstimate {
	// Average tokens per request (system + user prompt, response)
	const (
		inputTokens  = 650
		outputTokens = 300
	)

	pricing := ModelPricing(model)
	inputTotal := float64(requests * inputTokens)
	outputTotal := float64(requests * outputTokens)

	return &CostEstimate{
		Model:           model,
		Requests:        requests,
		EstimatedTokens: int(inputTotal + outputTotal),
		EstimatedCostUSD: (inputTotal/1_000_000)*pricing.InputPerMillion +
			(outputTotal/1_000_000)*pricing.OutputPerMillion,
	}
}
