// Package sweep drives one experiment: the cross product of instances
// and algorithm selectors, one external solver process per pair, with
// stdout and log routed into the run directory.
package sweep

import (
	"path/filepath"
	"strings"

	"optsweep/internal/config"
	"optsweep/internal/solver"
)

// Item is one cell of the experiment matrix.
type Item struct {
	Instance string // input file path
	Name     string // display name: filename minus dir and .txt
	Selector string
	Family   solver.Family
}

// InstanceName derives the display name used for the per-instance
// output directory.
func InstanceName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".txt")
}

// BuildPlan enumerates the matrix in sweep order: instances as listed;
// per instance all constructive selectors, then all local selectors,
// each in listed order. An empty local list contributes nothing.
func BuildPlan(cfg *config.Sweep) []Item {
	items := make([]Item, 0, len(cfg.Instances)*(len(cfg.Constructive)+len(cfg.Local)))
	for _, inst := range cfg.Instances {
		name := InstanceName(inst)
		for _, sel := range cfg.Constructive {
			items = append(items, Item{inst, name, sel, solver.Constructive})
		}
		for _, sel := range cfg.Local {
			items = append(items, Item{inst, name, sel, solver.Local})
		}
	}
	return items
}
