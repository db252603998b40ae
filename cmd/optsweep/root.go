// optsweep drives parameter-sweep experiments against the external
// optimization solver: it enumerates instances × algorithm selectors,
// runs one solver process per pair, and records the outcome.
//
// Usage:
//
//	optsweep sweep    -c <config>            run the experiment matrix
//	optsweep validate -c <config>            check config and instances
//	optsweep status   --run <id>             show one run's job table
//	optsweep runs                            list recorded runs
//	optsweep serve                           MCP server over stdio
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"optsweep/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagLogLevel  string
	flagLogFormat string
)

var rootCmd = &cobra.Command{
	Use:   "optsweep",
	Short: "Parameter-sweep driver for the container-collection solver",
	Long: "optsweep enumerates (instance × algorithm-selector) pairs, launches one\n" +
		"external solver process per pair, captures stdout and logs per run, and\n" +
		"aggregates results into a sweep summary.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return logging.Init(flagLogLevel, flagLogFormat)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "driver log level (debug|info|warning|error)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "driver log format (text|json)")

	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
