package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/SaweraJamal/PowerScan/internal/advisor"
	"github.com/SaweraJamal/PowerScan/internal/config"
	"github.com/SaweraJamal/PowerScan/internal/core"
	"github.com/SaweraJamal/PowerScan/internal/filesystem"
	"github.com/SaweraJamal/PowerScan/internal/report"
	"github.com/SaweraJamal/PowerScan/pkg/models"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// scanFlags holds the scan command flags that override configuration
type scanFlags struct {
	detectors    []string
	severities   []string
	catalogPath  string
	workers      int
	timeout      time.Duration
	maxSize      string
	extensions   []string
	exclude      []string
	reportFormat string
	outputFile   string
	advise       bool
	adviseModel  string
}

// apply overrides configuration values with the flags that were set
func (f *scanFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if len(f.detectors) > 0 {
		cfg.Detectors = f.detectors
	}
	if len(f.severities) > 0 {
		cfg.Severities = f.severities
	}
	if f.catalogPath != "" {
		cfg.CatalogPath = f.catalogPath
	}
	if f.workers > 0 {
		cfg.Workers = f.workers
	}
	if cmd.Flags().Changed("timeout") {
		cfg.DetectorTimeout = f.timeout
	}
	if f.maxSize != "" {
		cfg.MaxSize = f.maxSize
	}
	if len(f.extensions) > 0 {
		cfg.Extensions = f.extensions
	}
	if len(f.exclude) > 0 {
		cfg.Exclude = f.exclude
	}
	if f.reportFormat != "" {
		cfg.ReportFormat = f.reportFormat
	}
	if f.outputFile != "" {
		cfg.OutputFile = f.outputFile
	}
	if f.advise {
		cfg.Advisor.Enabled = true
	}
	if f.adviseModel != "" {
		cfg.Advisor.Model = f.adviseModel
	}
}

// scanCmd creates the scan command
func scanCmd() *cobra.Command {
	var flags scanFlags

	cmd := &cobra.Command{
		Use:   "scan [paths...]",
		Short: "Scan files and directories for non-Baseline web features",
		Long: `Collect HTML, CSS and JavaScript files from the given paths (the current
directory by default), run the selected detectors and render the report.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			// Validate flags before doing anything
			if err := validateFlags(flags.reportFormat, flags.adviseModel, flags.severities); err != nil {
				fmt.Fprintf(out, "\n  %s✗ Invalid parameter:%s %s\n\n", colorRed, colorReset, err.Error())
				return err
			}

			logger, err := newLogger(verbose)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
				return err
			}
			defer logger.Sync()

			cfg, err := loadConfig()
			if err != nil {
				logger.Error("Failed to load config", zap.Error(err))
				return err
			}
			flags.apply(cmd, cfg)

			if len(args) == 0 {
				args = []string{"."}
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runScan(ctx, out, cfg, args, logger)
		},
	}

	// Flags
	cmd.Flags().StringSliceVar(&flags.detectors, "detectors", nil, "Detector ids to run (comma-separated, default: all)")
	cmd.Flags().StringSliceVar(&flags.severities, "severity", nil, "Severities to include: major, minor (default: both)")
	cmd.Flags().StringVar(&flags.catalogPath, "catalog", "", "Catalog file or directory (default: builtin catalog)")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "Number of worker goroutines (default: CPU cores)")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "Matching budget per file and detector, 0 disables (default: 2s)")
	cmd.Flags().StringVar(&flags.maxSize, "max-size", "", "Maximum file size to scan (default: 2M)")
	cmd.Flags().StringSliceVar(&flags.extensions, "extensions", nil, "File extensions to scan (comma-separated)")
	cmd.Flags().StringSliceVar(&flags.exclude, "exclude", nil, "Gitignore-style exclude patterns (comma-separated)")
	cmd.Flags().StringVarP(&flags.reportFormat, "report", "r", "", "Report format: "+strings.Join(report.Formats, ", ")+" (default: console)")
	cmd.Flags().StringVarP(&flags.outputFile, "output", "o", "", "Output file path")

	// Advice flags
	cmd.Flags().BoolVar(&flags.advise, "advise", false, "Ask an Anthropic model for Baseline compatible alternatives")
	cmd.Flags().StringVar(&flags.adviseModel, "advise-model", "", "Advice model: haiku, sonnet, opus (default: haiku)")

	return cmd
}

// runScan collects files, scans them and renders the report
func runScan(ctx context.Context, out io.Writer, cfg *config.Config, paths []string, logger *zap.Logger) error {
	start := time.Now()

	cat, err := loadCatalog(out, cfg.CatalogPath, logger)
	if err != nil {
		return err
	}

	printBanner(out, paths, cat.Source(), cat.Len())

	walker := filesystem.NewWalker(cfg, logger)
	files, err := walker.Collect(paths)
	if err != nil {
		logger.Error("Failed to collect files", zap.Error(err))
		return err
	}
	fmt.Fprintf(out, "  %sFiles:%s      %d\n", colorGray, colorReset, len(files))

	targets, err := filesystem.ReadTargets(files)
	if err != nil {
		logger.Error("Failed to read files", zap.Error(err))
		return err
	}

	scanner := core.NewScanner(cat, cfg, logger)
	scanner.SetProgressCallback(progressPrinter(out))

	result, err := scanner.Scan(ctx, targets, cfg.DetectorSelection(cat.IDs()), cfg.SeverityFilter())
	if err != nil {
		logger.Error("Scan failed", zap.Error(err))
		return err
	}

	doc := report.NewDocument(result, version, cat.Source(), time.Since(start))

	if cfg.Advisor.Enabled {
		doc.Advice = runAdvisor(ctx, out, cfg.Advisor, result, logger)
	}

	generator, err := report.NewGenerator(cfg, logger)
	if err != nil {
		return err
	}
	generator.SetOutput(out)

	reportPath, err := generator.Generate(doc)
	if err != nil {
		logger.Error("Failed to generate report", zap.Error(err))
		return err
	}

	// Print report path if generated
	if reportPath != "" {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "  %sOccurrences:%s %d in %d file(s)\n", colorGray, colorReset, result.TotalCount, result.FileCount)
		fmt.Fprintf(out, "  %sReport:%s      %s%s%s\n", colorGray, colorReset, colorOrange, reportPath, colorReset)
		fmt.Fprintln(out)
	}

	return nil
}

// runAdvisor returns advice for the report, or nil when advice is unavailable
func runAdvisor(ctx context.Context, out io.Writer, cfg config.AdvisorConfig, result *models.ScanReport, logger *zap.Logger) *models.AdviceReport {
	fmt.Fprintf(out, "\n  %s%sMigration Advice%s\n", colorBold, colorCyan, colorReset)

	adv, err := advisor.NewAdvisor(cfg, logger)
	if err != nil {
		if errors.Is(err, advisor.ErrNoToken) {
			fmt.Fprintf(out, "  %s⚠ %v, skipping advice%s\n\n", colorYellow, err, colorReset)
		} else {
			fmt.Fprintf(out, "  %s⚠ Advice unavailable: %v%s\n\n", colorYellow, err, colorReset)
		}
		return nil
	}

	requests := len(advisor.BuildRequests(result))
	if cfg.MaxDetectors > 0 {
		requests = min(requests, cfg.MaxDetectors)
	}
	if requests == 0 {
		fmt.Fprintf(out, "  %s⊘ Nothing to advise on%s\n\n", colorGray, colorReset)
		return nil
	}

	estimate := advisor.EstimateCost(cfg.Model, requests)
	fmt.Fprintf(out, "  %sDetectors:%s   %d\n", colorGray, colorReset, estimate.Requests)
	fmt.Fprintf(out, "  %sModel:%s       %s\n", colorGray, colorReset, estimate.Model)
	fmt.Fprintf(out, "  %sEst. Cost:%s   %s$%.3f%s (~%d tokens)\n", colorGray, colorReset, colorYellow, estimate.EstimatedCostUSD, colorReset, estimate.EstimatedTokens)

	adv.SetProgressCallback(func(current, total int, message string) {
		fmt.Fprintf(out, "  %sAdvising:%s   (%d/%d) %s%s%s\n", colorGray, colorReset, current, total, colorGray, message, colorReset)
	})

	advice, err := adv.Advise(ctx, result)
	if err != nil {
		fmt.Fprintf(out, "  %s⚠ Advice interrupted: %v%s\n\n", colorYellow, err, colorReset)
	} else {
		fmt.Fprintf(out, "  %s✓ Advice complete%s %s(%d tokens used)%s\n\n", colorCyan, colorReset, colorGray, advice.TotalTokensUsed, colorReset)
	}
	return advice
}

// progressPrinter renders per-file scan progress as a bar
func progressPrinter(out io.Writer) core.ProgressCallback {
	started := false
	return func(phase string, current, total int, message string) {
		if phase != core.PhaseScanning || total == 0 {
			return
		}
		// Redraw the previous progress line
		if started {
			fmt.Fprint(out, "\033[1A\033[K")
		}
		started = true

		pct := float64(current) / float64(total) * 100
		barWidth := 30
		filled := barWidth * current / total
		bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
		fmt.Fprintf(out, "  %sScanning:%s  [%s%s%s] %s%.1f%%%s (%d/%d)\n",
			colorGray, colorReset, colorOrange, bar, colorReset, colorOrange, pct, colorReset, current, total)
	}
}

// printBanner prints the startup banner
func printBanner(out io.Writer, paths []string, catalogSource string, detectors int) {
	printMainBanner(out)
	fmt.Fprintf(out, "  %sScanning:%s  %s\n", colorGray, colorReset, strings.Join(paths, ", "))
	fmt.Fprintf(out, "  %sCatalog:%s   %s (%d detectors)\n", colorGray, colorReset, catalogSource, detectors)
}
