// Package solver defines the invocation contract with the external
// optimization program. The program is an opaque collaborator: this
// package knows its command-line vocabulary and how to route its output
// streams, nothing about its internals.
package solver

import (
	"fmt"
	"strconv"
)

// Family selects which algorithm-family flag carries the selector.
type Family string

const (
	// Constructive algorithms build a solution incrementally
	// (beam search, greedy, GRASP, ant-colony variants).
	Constructive Family = "constructive"
	// Local algorithms improve an existing solution via iterative moves
	// (best/first improvement, ILS, RLS, simulated annealing).
	Local Family = "local"
)

// Selector vocabularies recognized by the solver, in its own spelling.
var (
	constructiveSelectors = map[string]bool{
		"beam": true, "greedy": true, "heuristic": true,
		"grasp": true, "as": true, "mmas": true,
	}
	localSelectors = map[string]bool{
		"bi": true, "fi": true, "ils": true, "rls": true, "sa": true,
	}
)

// ValidSelector reports whether sel belongs to the family's vocabulary.
func ValidSelector(family Family, sel string) bool {
	switch family {
	case Constructive:
		return constructiveSelectors[sel]
	case Local:
		return localSelectors[sel]
	}
	return false
}

// Request describes one solver invocation: which instance, which
// algorithm, and where the output streams go.
type Request struct {
	Instance   string  // input file path, passed verbatim
	Selector   string  // algorithm name, passed verbatim
	Family     Family  // which flag carries the selector
	Budget     float64 // seconds for the family's budget flag; 0 = omit
	LogLevel   string  // solver logging verbosity
	OutputPath string  // captured-stdout destination
	LogPath    string  // solver-managed log destination
}

// Args builds the solver's argv (excluding the program name).
func (r Request) Args() ([]string, error) {
	if !ValidSelector(r.Family, r.Selector) {
		return nil, fmt.Errorf("selector %q not in %s vocabulary", r.Selector, r.Family)
	}
	selFlag, budgetFlag := "--csearch", "--cbudget"
	if r.Family == Local {
		selFlag, budgetFlag = "--lsearch", "--lbudget"
	}
	level := r.LogLevel
	if level == "" {
		level = "info"
	}
	args := []string{
		"--log-level", level,
		selFlag, r.Selector,
	}
	if r.Budget > 0 {
		args = append(args, budgetFlag, strconv.FormatFloat(r.Budget, 'f', -1, 64))
	}
	args = append(args,
		"--input-file", r.Instance,
		"--log-file", r.LogPath,
	)
	return args, nil
}
