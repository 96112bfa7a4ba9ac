package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/SaweraJamal/PowerScan/internal/catalog"
	"github.com/SaweraJamal/PowerScan/internal/config"
	"github.com/SaweraJamal/PowerScan/internal/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorOrange = "\033[38;5;208m"
	colorYellow = "\033[38;5;220m"
	colorGray   = "\033[38;5;245m"
	colorCyan   = "\033[36m"
)

var (
	version    = "0.1.0"
	verbose    bool
	configFile string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "powerscan",
		Short: "PowerScan - Web Feature Pattern Scanner",
		Long: `Scan HTML, CSS and JavaScript for web platform features that are not yet
Baseline, and aggregate the occurrences per file and feature.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			printMainBanner(cmd.OutOrStdout())
			cmd.Help()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default: ./powerscan.yaml)")

	rootCmd.AddCommand(scanCmd())
	rootCmd.AddCommand(detectorsCmd())
	rootCmd.AddCommand(dashboardCmd())
	rootCmd.AddCommand(serveCmd())

	return rootCmd
}

// newLogger builds a development logger in verbose mode and an error-only
// JSON logger otherwise
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapcore.ErrorLevel),
		Encoding:         "json",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig:    zap.NewProductionEncoderConfig(),
	}
	return cfg.Build()
}

// loadConfig reads the --config file when given, ./powerscan.yaml otherwise
func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.LoadConfigFrom(configFile)
	}
	return config.LoadConfig()
}

// loadCatalog loads the configured catalog, printing load errors for the user
func loadCatalog(w io.Writer, path string, logger *zap.Logger) (*catalog.Catalog, error) {
	cat, err := catalog.NewLoader(path, logger).Load()
	if err != nil {
		fmt.Fprintf(w, "\n  %s✗ Catalog error:%s %v\n\n", colorRed, colorReset, err)
		return nil, err
	}
	return cat, nil
}

// printMainBanner prints the main banner
func printMainBanner(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s", colorOrange)
	fmt.Fprintln(w, "█▀█ █▀█ █ █ █ █▀▀ █▀█ █▀▀ █▀▀ ▄▀█ █▄ █")
	fmt.Fprintln(w, "█▀▀ █▄█ ▀▄▀▄▀ ██▄ █▀▄ ▄▄█ █▄▄ █▀█ █ ▀█")
	fmt.Fprintf(w, "%s", colorReset)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%sWeb Feature Scanner v%s%s\n", colorGray, version, colorReset)
	fmt.Fprintln(w)
}

// validateFlags validates CLI flag values
func validateFlags(reportFormat, advisorModel string, severities []string) error {
	if reportFormat != "" {
		if _, ok := report.NormalizeFormat(reportFormat); !ok {
			return fmt.Errorf("--report must be one of: %s (got: %s)", strings.Join(report.Formats, ", "), reportFormat)
		}
	}

	if advisorModel != "" {
		validModels := []string{"haiku", "sonnet", "opus"}
		if !contains(validModels, advisorModel) {
			return fmt.Errorf("--advise-model must be one of: %s (got: %s)", strings.Join(validModels, ", "), advisorModel)
		}
	}

	for _, s := range severities {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "major" && s != "minor" {
			return fmt.Errorf("--severity must be major or minor (got: %s)", s)
		}
	}

	return nil
}

// contains checks if a slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
