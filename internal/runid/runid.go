// Package runid allocates run identifiers: 3-digit ordinals naming one
// sweep invocation's output directory. The historical scheme derived
// the ordinal from a directory count with no reservation, so concurrent
// invocations could collide; here the count only seeds a candidate and
// os.Mkdir is the atomic reservation.
package runid

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Width is the zero-padded width of a run identifier.
const Width = 3

// maxProbes bounds the reservation loop against a root packed with
// thousands of colliding entries.
const maxProbes = 10000

// ID is a reserved run identifier.
type ID struct {
	Ordinal int
	Dir     string // reserved directory under the output root
}

// String returns the zero-padded form, e.g. 7 → "007".
func (id ID) String() string { return Format(id.Ordinal) }

// Format renders an ordinal in the on-disk form.
func Format(n int) string { return fmt.Sprintf("%0*d", Width, n) }

// Parse reads a zero-padded identifier back into its ordinal.
func Parse(s string) (int, error) {
	if len(s) != Width {
		return 0, fmt.Errorf("run id %q must be %d digits", s, Width)
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("run id %q is not a non-negative ordinal", s)
	}
	return n, nil
}

// Allocator reserves run identifiers under a fixed output root.
type Allocator interface {
	Reserve() (ID, error)
}

// DirAllocator reserves identifiers by creating the run directory
// itself: mkdir either succeeds (the ordinal is ours alone) or reports
// EEXIST (someone else holds it, probe the next one).
type DirAllocator struct {
	Root string
}

// Reserve creates and returns the next free run directory. The first
// candidate is the count of existing entries, so on an untouched root
// the sequence is 000, 001, 002, ...
func (a DirAllocator) Reserve() (ID, error) {
	if err := os.MkdirAll(a.Root, 0755); err != nil {
		return ID{}, fmt.Errorf("create output root: %w", err)
	}
	entries, err := os.ReadDir(a.Root)
	if err != nil {
		return ID{}, fmt.Errorf("read output root: %w", err)
	}

	for n := len(entries); n < len(entries)+maxProbes; n++ {
		dir := filepath.Join(a.Root, Format(n))
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return ID{Ordinal: n, Dir: dir}, nil
		}
		if os.IsExist(err) {
			continue
		}
		return ID{}, fmt.Errorf("reserve run dir: %w", err)
	}
	return ID{}, fmt.Errorf("no free run id under %s after %d probes", a.Root, maxProbes)
}
