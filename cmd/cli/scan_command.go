package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/himanishpuri/BeatLink/pkg/models"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var summary bool

	cmd := &cobra.Command{
		Use:   "scan <youtube-url>",
		Short: "Scan a YouTube video and print the matched songs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			svc, err := cfg.NewService(runCtx)
			if err != nil {
				return err
			}

			report, err := svc.Scan(runCtx, args[0])
			if err != nil {
				se := models.AsScanError(err)
				if runCtx.Err() != nil {
					return context.Canceled
				}
				return fmt.Errorf("scan failed (%s): %s", se.Kind, se.Message)
			}

			if summary {
				printSummary(cmd.OutOrStdout(), report)
				return nil
			}
			return printReport(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().BoolVar(&summary, "summary", false, "Print a short human-readable summary instead of JSON")
	return cmd
}

func printReport(w io.Writer, report *models.ScanReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(models.NewScanResponse(report))
}

func printSummary(w io.Writer, report *models.ScanReport) {
	fmt.Fprintf(w, "%s by %s (%d views)\n", report.Video.Title, report.Video.Author, report.Video.Views)
	if report.ResultsCount == 0 {
		fmt.Fprintln(w, "No matches found")
		return
	}
	fmt.Fprintf(w, "Found %d match(es):\n", report.ResultsCount)
	for i, m := range report.Matches {
		fmt.Fprintf(w, "  %d. %s - %s (score %.0f)\n", i+1, m.Title, m.Artists, m.Score)
		if m.CatalogURL != "" {
			fmt.Fprintf(w, "     %s\n", m.CatalogURL)
		}
	}
}
