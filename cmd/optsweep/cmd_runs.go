package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"optsweep/internal/report"
	"optsweep/internal/store"
)

var (
	runsDBPath   string
	runsMarkdown bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded sweep runs, most recent first",
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().StringVar(&runsDBPath, "db", store.DefaultDBPath, "Run-history DB path")
	runsCmd.Flags().BoolVar(&runsMarkdown, "markdown", false, "Render as Markdown")
}

func runRuns(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(runsDBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No recorded runs. Run 'optsweep sweep' first.")
		return nil
	}

	rows := make([]report.Row, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, report.Row{
			RunID: r.RunID, StartedAt: r.StartedAt,
			Jobs: r.Jobs, Failed: r.Failed, Dir: r.Dir,
		})
	}
	mode := report.ASCII
	if runsMarkdown {
		mode = report.Markdown
	}
	fmt.Fprintln(cmd.OutOrStdout(), report.Runs(rows, mode))
	return nil
}
