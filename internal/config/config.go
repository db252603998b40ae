// Package config holds the declarative experiment matrix: which solver
// binary to run, over which instances, with which algorithm selectors.
package config

import (
	"fmt"

	"optsweep/internal/logging"
	"optsweep/internal/solver"
)

// Sweep is the experiment matrix consumed by the driver. One solver
// invocation happens per (instance, selector) pair, constructive
// selectors first, then local ones.
type Sweep struct {
	Solver     string   `json:"solver" yaml:"solver"`
	OutputRoot string   `json:"output_root,omitempty" yaml:"output_root,omitempty"`
	LogLevel   string   `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	Instances  []string `json:"instances" yaml:"instances"`

	Constructive []string `json:"constructive,omitempty" yaml:"constructive,omitempty"`
	Local        []string `json:"local,omitempty" yaml:"local,omitempty"`

	// Budgets in seconds for the solver's --cbudget/--lbudget flags.
	// Zero omits the flag so the solver's own default applies.
	ConstructiveBudget float64 `json:"constructive_budget,omitempty" yaml:"constructive_budget,omitempty"`
	LocalBudget        float64 `json:"local_budget,omitempty" yaml:"local_budget,omitempty"`

	// Workers bounds concurrent solver processes. 1 = strictly
	// sequential, which is the default and the historical behavior.
	Workers int `json:"workers,omitempty" yaml:"workers,omitempty"`

	// Timeout bounds one solver process. Zero = wait forever.
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// Store is the run-history database path. Empty = default.
	Store string `json:"store,omitempty" yaml:"store,omitempty"`
}

// ApplyDefaults fills unset fields with their defaults.
func (s *Sweep) ApplyDefaults() {
	if s.OutputRoot == "" {
		s.OutputRoot = "out"
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
	if s.Workers == 0 {
		s.Workers = 1
	}
}

// Validate checks the matrix before any directory is created or process
// spawned. A sweep with an invalid matrix must not leave any trace.
func (s *Sweep) Validate() error {
	if s.Solver == "" {
		return fmt.Errorf("solver binary path is required")
	}
	if len(s.Instances) == 0 {
		return fmt.Errorf("at least one instance is required")
	}
	for i, inst := range s.Instances {
		if inst == "" {
			return fmt.Errorf("instances[%d] is empty", i)
		}
	}
	if len(s.Constructive) == 0 && len(s.Local) == 0 {
		return fmt.Errorf("at least one selector is required")
	}
	for _, sel := range s.Constructive {
		if !solver.ValidSelector(solver.Constructive, sel) {
			return fmt.Errorf("unknown constructive selector %q", sel)
		}
	}
	for _, sel := range s.Local {
		if !solver.ValidSelector(solver.Local, sel) {
			return fmt.Errorf("unknown local selector %q", sel)
		}
	}
	if _, err := logging.ParseLevel(s.LogLevel); err != nil {
		return err
	}
	if s.ConstructiveBudget < 0 || s.LocalBudget < 0 {
		return fmt.Errorf("budgets must be >= 0")
	}
	if s.Workers < 1 {
		return fmt.Errorf("workers must be >= 1 (got %d)", s.Workers)
	}
	if s.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0")
	}
	return nil
}
