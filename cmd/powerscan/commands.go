package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/SaweraJamal/PowerScan/internal/advisor"
	"github.com/SaweraJamal/PowerScan/internal/catalog"
	"github.com/SaweraJamal/PowerScan/internal/report"
	"github.com/SaweraJamal/PowerScan/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// detectorsCmd creates the detectors command group
func detectorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detectors",
		Short: "Inspect the detector catalog",
	}
	cmd.AddCommand(detectorsListCmd())
	return cmd
}

func detectorsListCmd() *cobra.Command {
	var catalogPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog detectors",
		Long:  `Display every detector of the catalog with its group, severity, matcher kind and validity.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			logger, err := newLogger(verbose)
			if err != nil {
				return err
			}
			defer logger.Sync()

			if catalogPath == "" {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				catalogPath = cfg.CatalogPath
			}

			cat, err := loadCatalog(out, catalogPath, logger)
			if err != nil {
				return err
			}
			printDetectors(out, cat)
			return nil
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Catalog file or directory (default: builtin catalog)")
	return cmd
}

// printDetectors prints the catalog as a table in catalog order
func printDetectors(out io.Writer, cat *catalog.Catalog) {
	fmt.Fprintf(out, "%s%sCATALOG%s %s (%d detectors)\n\n", colorBold, colorOrange, colorReset, cat.Source(), cat.Len())

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  ID\tGROUP\tSEVERITY\tKIND\tSTATUS\tNAME")
	for _, d := range cat.Detectors() {
		status := "✓ ok"
		if d.Invalid {
			status = "✗ invalid"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\t%s\n", d.ID, d.Group, d.Severity, d.Kind(), status, d.Name)
	}
	tw.Flush()

	invalid := cat.Invalid()
	if len(invalid) > 0 {
		fmt.Fprintln(out)
		for _, d := range invalid {
			fmt.Fprintf(out, "  %s!%s %s: %s\n", colorYellow, colorReset, d.ID, d.CompileError)
		}
	}
}

// dashboardCmd creates the dashboard command
func dashboardCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "dashboard <export>",
		Short: "Summarize a previously exported report",
		Long: `Reload a json, records or csv export and print totals by feature, the top
features and the severity distribution.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			records, err := report.LoadRecords(args[0])
			if err != nil {
				fmt.Fprintf(out, "\n  %s✗ Cannot load export:%s %v\n\n", colorRed, colorReset, err)
				return err
			}

			summary := report.Summarize(records)
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}

			report.PrintSummary(out, summary)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")
	return cmd
}

// serveCmd creates the serve command
func serveCmd() *cobra.Command {
	var (
		addr        string
		catalogPath string
		watch       bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP scanning API",
		Long: `Serve POST /api/scan for multipart uploads and keep recent reports in memory
for the /api/reports endpoints.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			// The server always logs at info level or above
			logger, err := newLogger(true)
			if err != nil {
				return err
			}
			defer logger.Sync()

			cfg, err := loadConfig()
			if err != nil {
				logger.Error("Failed to load config", zap.Error(err))
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if catalogPath != "" {
				cfg.CatalogPath = catalogPath
			}
			if watch {
				cfg.Server.WatchCatalog = true
			}

			cat, err := loadCatalog(out, cfg.CatalogPath, logger)
			if err != nil {
				return err
			}
			holder := server.NewCatalogHolder(cat)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if cfg.Server.WatchCatalog {
				if cfg.CatalogPath == "" {
					logger.Warn("Catalog watching needs a catalog path, builtin catalog is static")
				} else {
					watcher, err := server.NewWatcher(cfg.CatalogPath, holder, logger)
					if err != nil {
						return fmt.Errorf("failed to create catalog watcher: %w", err)
					}
					if err := watcher.Start(ctx); err != nil {
						return fmt.Errorf("failed to watch catalog: %w", err)
					}
					defer watcher.Stop()
				}
			}

			opts := server.Options{Version: version}
			if cfg.Advisor.Enabled {
				adv, err := advisor.NewAdvisor(cfg.Advisor, logger)
				switch {
				case errors.Is(err, advisor.ErrNoToken):
					logger.Warn("Advice disabled", zap.Error(err))
				case err != nil:
					return err
				default:
					opts.Adviser = adv
				}
			}

			srv := server.NewServer(cfg, holder, logger, opts)

			printMainBanner(out)
			fmt.Fprintf(out, "  %sListening:%s %s\n", colorGray, colorReset, cfg.Server.Addr)
			fmt.Fprintf(out, "  %sCatalog:%s   %s (%d detectors)\n\n", colorGray, colorReset, cat.Source(), cat.Len())

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				logger.Info("Shutting down")
				return srv.Stop(context.Background())
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: :8080)")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Catalog file or directory (default: builtin catalog)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Reload the catalog when its files change")
	return cmd
}

