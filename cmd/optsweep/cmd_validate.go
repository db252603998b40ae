package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"optsweep/internal/config"
	"optsweep/internal/routing"
	"optsweep/internal/sweep"
)

var validateConfigPath string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the sweep config and parse every instance file",
	Long: `Loads the config, validates the matrix, and parses each instance file
with the problem-model reader. No directory is created and no solver is
launched; a sweep that passes validation can only fail on solver or
environment errors.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateConfigPath, "config", "c", "sweep.yaml", "Sweep config path (YAML or JSON)")
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadFromPath(validateConfigPath)
	if err != nil {
		return err
	}

	plan := sweep.BuildPlan(cfg)
	fmt.Fprintf(cmd.OutOrStdout(), "config ok: %d instances × selectors = %d jobs\n",
		len(cfg.Instances), len(plan))

	bad := 0
	for _, inst := range cfg.Instances {
		p, err := parseInstance(inst)
		if err != nil {
			bad++
			fmt.Fprintf(cmd.OutOrStdout(), "  %-30s INVALID: %v\n", inst, err)
			continue
		}
		lb, _ := p.EmptySolution().LowerBound()
		fmt.Fprintf(cmd.OutOrStdout(), "  %-30s ok: %d containers, lower bound %d\n",
			inst, p.N, lb)
	}
	if bad > 0 {
		return fmt.Errorf("%d of %d instances failed to parse", bad, len(cfg.Instances))
	}
	return nil
}

func parseInstance(path string) (*routing.Problem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return routing.ParseProblem(f)
}
