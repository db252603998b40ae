package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"optsweep/internal/config"
	"optsweep/internal/report"
	"optsweep/internal/solver"
	"optsweep/internal/store"
	"optsweep/internal/sweep"
)

var (
	sweepConfigPath string
	sweepDBPath     string
	sweepMarkdown   bool
	sweepNoHistory  bool
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the experiment matrix from a config file",
	Long: `Reserves the next run directory under the output root, then launches one
solver process per (instance, selector) pair. Each job's stdout goes to
output_<selector>.txt and its log to log_<selector>.txt. Failing jobs are
recorded and the sweep continues; the summary lands in <run-dir>/sweep.json.`,
	RunE: runSweep,
}

func init() {
	sweepCmd.Flags().StringVarP(&sweepConfigPath, "config", "c", "sweep.yaml", "Sweep config path (YAML or JSON)")
	sweepCmd.Flags().StringVar(&sweepDBPath, "db", "", "Run-history DB path (default "+store.DefaultDBPath+")")
	sweepCmd.Flags().BoolVar(&sweepMarkdown, "markdown", false, "Render the summary table as Markdown")
	sweepCmd.Flags().BoolVar(&sweepNoHistory, "no-history", false, "Skip run-history recording")
}

func runSweep(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadFromPath(sweepConfigPath)
	if err != nil {
		return err
	}

	var hist store.Store
	if !sweepNoHistory {
		s, err := store.Open(historyPath(cfg))
		if err != nil {
			return err
		}
		defer s.Close()
		hist = s
	}

	runner := &sweep.Runner{
		Config:     cfg,
		Invoker:    solver.NewExecInvoker(cfg.Solver),
		History:    hist,
		ConfigPath: sweepConfigPath,
	}
	sum, err := runner.Run(cmd.Context())
	if err != nil {
		return err
	}

	mode := report.ASCII
	if sweepMarkdown {
		mode = report.Markdown
	}
	fmt.Fprintln(cmd.OutOrStdout(), report.Summary(sum, mode))
	if failed := sum.Failed(); failed > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%d of %d jobs failed; see the log files under %s\n",
			failed, len(sum.Jobs), sum.Dir)
	}
	return nil
}

// historyPath resolves the DB location: --db flag beats the config,
// which beats the default.
func historyPath(cfg *config.Sweep) string {
	if sweepDBPath != "" {
		return sweepDBPath
	}
	if cfg.Store != "" {
		return cfg.Store
	}
	return store.DefaultDBPath
}
