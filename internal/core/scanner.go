package core

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/SaweraJamal/PowerScan/internal/catalog"
	"github.com/SaweraJamal/PowerScan/internal/config"
	"github.com/SaweraJamal/PowerScan/internal/decode"
	"github.com/SaweraJamal/PowerScan/internal/match"
	"github.com/SaweraJamal/PowerScan/pkg/models"
	"go.uber.org/zap"
)

// ProgressCallback is called to report scan progress
type ProgressCallback func(phase string, current, total int, message string)

// PhaseScanning is reported once per completed file
const PhaseScanning = "scanning"

// DefaultPreviewBytes bounds the file preview when no size is configured
const DefaultPreviewBytes = 500

// Scanner runs the effective detectors of a catalog over a batch of files.
// A Scanner holds no per-scan state and may run several scans concurrently.
type Scanner struct {
	catalog          *catalog.Catalog
	config           *config.Config
	logger           *zap.Logger
	progressCallback ProgressCallback
}

// NewScanner creates a new scanner instance
func NewScanner(cat *catalog.Catalog, cfg *config.Config, logger *zap.Logger) *Scanner {
	if cfg == nil {
		cfg = &config.Config{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{
		catalog: cat,
		config:  cfg,
		logger:  logger,
	}
}

// SetProgressCallback sets the progress callback function
func (s *Scanner) SetProgressCallback(cb ProgressCallback) {
	s.progressCallback = cb
}

// Catalog returns the catalog the scanner runs against
func (s *Scanner) Catalog() *catalog.Catalog {
	return s.catalog
}

// reportProgress calls the progress callback if set
func (s *Scanner) reportProgress(phase string, current, total int, message string) {
	if s.progressCallback != nil {
		s.progressCallback(phase, current, total, message)
	}
}

// scanJob is one file to scan, addressed by its position in the batch
type scanJob struct {
	index  int
	target models.ScanTarget
}

// scanResult is the report for the file at index
type scanResult struct {
	index  int
	report *models.FileReport
}

// Scan scans every target with the detectors selected by id and severity and
// returns the batch report with file reports in target order. Only a
// cancelled context makes Scan fail.
func (s *Scanner) Scan(ctx context.Context, targets []models.ScanTarget, selectedIDs []string, severities []models.Severity) (*models.ScanReport, error) {
	effective := s.catalog.Effective(selectedIDs, severities)

	s.logger.Info("Starting scan",
		zap.Int("files", len(targets)),
		zap.Int("detectors", len(effective)))

	workers := s.config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(targets) {
		workers = len(targets)
	}

	reports := make([]*models.FileReport, len(targets))

	// Create channels
	jobChan := make(chan scanJob, workers*2)
	resultsChan := make(chan scanResult, workers*2)

	// Start worker pool
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go s.worker(ctx, &wg, effective, jobChan, resultsChan)
	}

	// Start results collector with progress
	var collectWg sync.WaitGroup
	collectWg.Add(1)
	go s.collectResults(&collectWg, resultsChan, reports, targets)

	// Send files to workers
feed:
	for i, target := range targets {
		select {
		case <-ctx.Done():
			break feed
		case jobChan <- scanJob{index: i, target: target}:
		}
	}

	// Close channels and wait
	close(jobChan)
	wg.Wait()
	close(resultsChan)
	collectWg.Wait()

	if err := ctx.Err(); err != nil {
		s.logger.Warn("Scan cancelled", zap.Error(err))
		return nil, err
	}

	report := BuildScanReport(reports, effective, s.catalog.InvalidAmong(selectedIDs))

	s.logger.Info("Scan completed",
		zap.Int("files", report.FileCount),
		zap.Int("occurrences", report.TotalCount))

	return report, nil
}

// worker processes files from the channel
func (s *Scanner) worker(ctx context.Context, wg *sync.WaitGroup, effective []*models.Detector, jobChan <-chan scanJob, resultsChan chan<- scanResult) {
	defer wg.Done()

	for job := range jobChan {
		select {
		case <-ctx.Done():
			// Drain remaining jobs without scanning them
			continue
		default:
			report := s.scanFile(ctx, job.target, effective)
			if report != nil {
				resultsChan <- scanResult{index: job.index, report: report}
			}
		}
	}
}

// collectResults stores reports by index and reports progress once per file
func (s *Scanner) collectResults(wg *sync.WaitGroup, resultsChan <-chan scanResult, reports []*models.FileReport, targets []models.ScanTarget) {
	defer wg.Done()

	processed := 0
	for result := range resultsChan {
		reports[result.index] = result.report
		processed++
		s.reportProgress(PhaseScanning, processed, len(targets), targets[result.index].Name)
	}
}

// scanFile runs the per-file pipeline. It returns nil only when ctx is done.
func (s *Scanner) scanFile(ctx context.Context, target models.ScanTarget, effective []*models.Detector) *models.FileReport {
	text, fallback := decode.Decode(target.Content)
	if fallback {
		s.logger.Debug("Decoded with replacement characters", zap.String("file", target.Name))
	}

	lines := match.NewLineIndex(text)
	// Zero keeps only the matched text
	snippetContext := s.config.SnippetContext
	if snippetContext < 0 {
		snippetContext = match.DefaultSnippetContext
	}

	var (
		findings []models.Finding
		skipped  []models.SkippedDetector
	)
	for _, d := range effective {
		matches, err := match.Run(ctx, text, d, s.config.DetectorTimeout)
		if err != nil {
			if errors.Is(err, match.ErrTimeout) {
				s.logger.Warn("Detector timed out",
					zap.String("file", target.Name),
					zap.String("detector", d.ID),
					zap.Duration("budget", s.config.DetectorTimeout))
				skipped = append(skipped, models.SkippedDetector{DetectorID: d.ID, Reason: models.SkipTimeout})
				continue
			}
			return nil
		}

		if finding, ok := Aggregate(text, d, matches, lines, snippetContext); ok {
			findings = append(findings, finding)
		}
	}

	previewBytes := s.config.PreviewBytes
	if previewBytes <= 0 {
		previewBytes = DefaultPreviewBytes
	}

	report := BuildFileReport(target.Name, SizeKB(len(target.Content)), findings, Preview(text, previewBytes), s.catalog)
	report.DecodeFallback = fallback
	report.Skipped = skipped

	s.logger.Debug("Scanned file",
		zap.String("file", target.Name),
		zap.Int("findings", len(report.Findings)),
		zap.Int("occurrences", report.TotalCount()))

	return report
}
