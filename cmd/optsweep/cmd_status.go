package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"optsweep/internal/report"
	"optsweep/internal/runid"
	"optsweep/internal/sweep"
)

var (
	statusRun      string
	statusRoot     string
	statusMarkdown bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show one run's per-job results",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusRun, "run", "", "3-digit run id (required)")
	statusCmd.Flags().StringVar(&statusRoot, "root", "out", "Output root the run lives under")
	statusCmd.Flags().BoolVar(&statusMarkdown, "markdown", false, "Render as Markdown")
	_ = statusCmd.MarkFlagRequired("run")
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if _, err := runid.Parse(statusRun); err != nil {
		return err
	}
	sum, err := sweep.LoadSummary(filepath.Join(statusRoot, statusRun))
	if err != nil {
		return fmt.Errorf("no summary for run %s under %s: %w", statusRun, statusRoot, err)
	}

	mode := report.ASCII
	if statusMarkdown {
		mode = report.Markdown
	}
	fmt.Fprintln(cmd.OutOrStdout(), report.Summary(sum, mode))
	return nil
}
