// Package routing models the container-collection problem the external
// solver operates on: a vehicle leaves the depot, empties every
// container exactly once approaching it from one of two directions, and
// ends at the treatment plant. The search algorithms live in the solver;
// this package owns the instance format and the solution semantics, and
// backs pre-sweep instance validation.
package routing

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// Problem is one instance: n containers plus the travel-cost matrices.
// Direction pairs index the container-to-container matrix as a two-bit
// number: cost[fromDir<<1|toDir][from][to].
type Problem struct {
	N int

	// DepotToContainer[d][c]: depot → container c arriving in direction d.
	DepotToContainer [2][]int
	// ContainerToPlant[d][c]: container c left in direction d → plant.
	ContainerToPlant [2][]int
	// ContainerToContainer[dirPair][from][to].
	ContainerToContainer [4][][]int
}

// DirIndex combines two approach directions into the matrix index.
func DirIndex(fromDir, toDir int) int { return fromDir<<1 | toDir }

// ParseProblem reads an instance in the solver's text format: the
// container count, two depot-to-container rows, two container-to-plant
// rows, then the four container-to-container blocks (n rows each) in
// file order for direction pairs 00, 01, 11, 10.
func ParseProblem(r io.Reader) (*Problem, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	sc.Split(bufio.ScanWords)

	next := func() (int, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return 0, err
			}
			return 0, io.ErrUnexpectedEOF
		}
		return strconv.Atoi(sc.Text())
	}

	n, err := next()
	if err != nil {
		return nil, fmt.Errorf("read container count: %w", err)
	}
	if n <= 0 {
		return nil, fmt.Errorf("container count must be > 0 (got %d)", n)
	}

	row := func(what string) ([]int, error) {
		vals := make([]int, n)
		for i := range vals {
			v, err := next()
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", what, err)
			}
			vals[i] = v
		}
		return vals, nil
	}

	p := &Problem{N: n}
	for d := 0; d < 2; d++ {
		if p.DepotToContainer[d], err = row("depot-to-container"); err != nil {
			return nil, err
		}
	}
	for d := 0; d < 2; d++ {
		if p.ContainerToPlant[d], err = row("container-to-plant"); err != nil {
			return nil, err
		}
	}
	// Block order in the file is direction pair 00, 01, 11, 10.
	for _, dirPair := range []int{0, 1, 3, 2} {
		block := make([][]int, n)
		for i := range block {
			if block[i], err = row("container-to-container"); err != nil {
				return nil, err
			}
		}
		p.ContainerToContainer[dirPair] = block
	}
	return p, nil
}

// EmptySolution returns the (infeasible) solution with nothing picked.
func (p *Problem) EmptySolution() *Solution {
	return &Solution{
		problem:   p,
		picked:    make([]bool, p.N),
		remaining: p.N,
	}
}
