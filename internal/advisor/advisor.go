package advisor

import (
	"context"
	"fmt"
	"sort"

	"github.com/SaweraJamal/PowerScan/internal/config"
	"github.com/SaweraJamal/PowerScan/pkg/models"
	"go.uber.org/zap"
)

// ProgressCallback is called once per advised detector
type ProgressCallback func(current, total int, message string)

// Suggester produces a suggestion for one detector
type Suggester interface {
	Suggest(ctx context.Context, req *Request) (*Suggestion, error)
	Model() string
}

// Advisor asks a model for Baseline compatible alternatives to detected features
type Advisor struct {
	suggester        Suggester
	config           config.AdvisorConfig
	logger           *zap.Logger
	progressCallback ProgressCallback
}

// NewAdvisor creates an advisor backed by the Anthropic API
func NewAdvisor(cfg config.AdvisorConfig, logger *zap.Logger) (*Advisor, error) {
	client, err := NewClient(cfg.Model, cfg.Token, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return NewAdvisorWithSuggester(client, cfg, logger), nil
}

// NewAdvisorWithSuggester creates an advisor around any suggester
func NewAdvisorWithSuggester(s Suggester, cfg config.AdvisorConfig, logger *zap.Logger) *Advisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Advisor{
		suggester: s,
		config:    cfg,
		logger:    logger,
	}
}

// SetProgressCallback sets the progress callback function
func (a *Advisor) SetProgressCallback(cb ProgressCallback) {
	a.progressCallback = cb
}

func (a *Advisor) reportProgress(current, total int, message string) {
	if a.progressCallback != nil {
		a.progressCallback(current, total, message)
	}
}

// Advise requests advice for every detector with findings, most severe and
// most frequent first, up to the configured limit. A failed request is
// recorded on its entry and does not stop the run.
func (a *Advisor) Advise(ctx context.Context, report *models.ScanReport) (*models.AdviceReport, error) {
	requests := BuildRequests(report)

	result := &models.AdviceReport{
		Model:  a.suggester.Model(),
		Advice: make([]models.Advice, 0, len(requests)),
	}

	if limit := a.config.MaxDetectors; limit > 0 && len(requests) > limit {
		a.logger.Info("Limiting detectors for advice",
			zap.Int("total", len(requests)),
			zap.Int("limit", limit))
		result.SkippedCount = len(requests) - limit
		requests = requests[:limit]
	}

	for i, req := range requests {
		if err := ctx.Err(); err != nil {
			a.logger.Warn("Advice cancelled", zap.Int("advised", i))
			return result, err
		}

		a.reportProgress(i+1, len(requests), fmt.Sprintf("Advising: %s", req.FeatureName))

		advice := models.Advice{DetectorID: req.DetectorID, FeatureName: req.FeatureName}
		suggestion, err := a.suggester.Suggest(ctx, req)
		if err != nil {
			a.logger.Warn("Advice failed for detector",
				zap.String("detector", req.DetectorID),
				zap.Error(err))
			advice.Error = err.Error()
		} else {
			advice.Summary = suggestion.Summary
			advice.Alternative = suggestion.Alternative
			advice.Fallback = suggestion.Fallback
			advice.Example = suggestion.Example
			advice.TokensUsed = suggestion.TokensUsed
			result.TotalTokensUsed += suggestion.TokensUsed
		}
		result.Advice = append(result.Advice, advice)
	}

	a.logger.Info("Advice complete",
		zap.Int("advised", len(result.Advice)),
		zap.Int("skipped", result.SkippedCount),
		zap.Int("tokens_used", result.TotalTokensUsed))

	return result, nil
}

// BuildRequests creates one request per detector with findings. Each request
// carries the snippet of the first file the detector matched in.
func BuildRequests(report *models.ScanReport) []*Request {
	byID := make(map[string]*Request)
	var requests []*Request

	for _, dt := range report.DetectorTotals {
		if dt.Count == 0 {
			continue
		}
		req := &Request{
			DetectorID:  dt.DetectorID,
			FeatureName: dt.FeatureName,
			Group:       string(dt.Group),
			Severity:    string(dt.Severity),
			Count:       dt.Count,
		}
		byID[dt.DetectorID] = req
		requests = append(requests, req)
	}

	for _, fr := range report.FileReports {
		for _, f := range fr.Findings {
			req, ok := byID[f.DetectorID]
			if !ok {
				continue
			}
			req.Files++
			if req.FileName == "" {
				req.FileName = fr.FileName
				req.Snippet = f.Snippet
				req.Description = f.Description
			}
		}
	}

	// Severity first, then occurrences; catalog order breaks ties
	sort.SliceStable(requests, func(i, j int) bool {
		pi := models.GetSeverityPriority(models.Severity(requests[i].Severity))
		pj := models.GetSeverityPriority(models.Severity(requests[j].Severity))
		if pi != pj {
			return pi > pj
		}
		return requests[i].Count > requests[j].Count
	})

	return requests
}
