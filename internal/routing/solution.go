package routing

import (
	"fmt"
	"math/rand"
	"strings"
)

// Component is a construction step: empty container Node arriving in
// Direction.
type Component struct {
	Node      int
	Direction int
}

// LocalMove swaps the containers at positions I and J and rewrites
// their directions.
type LocalMove struct {
	I, J       int
	IDir, JDir int
}

// Solution is the route under construction plus its running cost.
// Incremental local-move costs are exposed via DeltaObjective; Step
// itself does not fold the delta back in, matching the solver's own
// accounting.
type Solution struct {
	problem    *Problem
	containers []int // visit order
	directions []int // approach direction per visit
	picked     []bool
	remaining  int // containers not yet picked
	objValue   int // accumulated cost depot → last picked container
}

// Problem returns the instance this solution belongs to.
func (s *Solution) Problem() *Problem { return s.problem }

// Copy returns an independent copy. Changes to the copy never affect
// the original.
func (s *Solution) Copy() *Solution {
	c := &Solution{
		problem:    s.problem,
		containers: append([]int(nil), s.containers...),
		directions: append([]int(nil), s.directions...),
		picked:     append([]bool(nil), s.picked...),
		remaining:  s.remaining,
		objValue:   s.objValue,
	}
	return c
}

// Complete reports whether every container has been picked.
func (s *Solution) Complete() bool { return s.remaining == 0 }

// Feasible reports whether the route visits every container.
func (s *Solution) Feasible() bool {
	seen := make(map[int]bool, len(s.containers))
	for _, c := range s.containers {
		seen[c] = true
	}
	return len(seen) == s.problem.N
}

// Objective returns the route cost including the final leg to the
// plant. Defined only for complete solutions.
func (s *Solution) Objective() (int, bool) {
	if s.remaining > 0 {
		return 0, false
	}
	last := len(s.containers) - 1
	return s.objValue + s.problem.ContainerToPlant[s.directions[last]][s.containers[last]], true
}

// LowerBound returns an optimistic completion cost: the accumulated
// cost plus the cheapest possible remaining connections. Defined only
// while the solution is incomplete.
func (s *Solution) LowerBound() (int, bool) {
	if s.remaining == 0 {
		return 0, false
	}
	return s.objValue + s.minimalConnections(s.notPicked()), true
}

// notPicked lists unpicked containers in ascending order.
func (s *Solution) notPicked() []int {
	out := make([]int, 0, s.remaining)
	for c, p := range s.picked {
		if !p {
			out = append(out, c)
		}
	}
	return out
}

// minimalConnections sums, per remaining container, the cheapest way to
// reach it from any other remaining container, plus the cheapest final
// leg to the plant.
func (s *Solution) minimalConnections(containers []int) int {
	total := 0
	for _, dest := range containers {
		best, found := 0, false
		for _, dep := range containers {
			if dep == dest {
				continue
			}
			for dirPair := 0; dirPair < 4; dirPair++ {
				v := s.problem.ContainerToContainer[dirPair][dep][dest]
				if !found || v < best {
					best, found = v, true
				}
			}
		}
		if found {
			total += best
		}
	}

	best, found := 0, false
	for _, dep := range containers {
		for d := 0; d < 2; d++ {
			v := s.problem.ContainerToPlant[d][dep]
			if !found || v < best {
				best, found = v, true
			}
		}
	}
	total += best
	return total
}

// AddMoves enumerates every component that can extend the solution.
func (s *Solution) AddMoves() []Component {
	out := make([]Component, 0, s.remaining*2)
	for _, c := range s.notPicked() {
		out = append(out, Component{c, 0}, Component{c, 1})
	}
	return out
}

// LocalMoves enumerates every swap move over the full route.
func (s *Solution) LocalMoves() []LocalMove {
	n := s.problem.N
	out := make([]LocalMove, 0, 2*n*(n+1))
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			out = append(out,
				LocalMove{i, j, 0, 0},
				LocalMove{i, j, 0, 1},
				LocalMove{i, j, 1, 0},
				LocalMove{i, j, 1, 1},
			)
		}
	}
	return out
}

// RandomLocalMove draws one applicable local move: uniform position i,
// uniform j ≥ i, uniform direction rewrite.
func (s *Solution) RandomLocalMove(rng *rand.Rand) LocalMove {
	n := s.problem.N
	i := rng.Intn(n)
	j := i + rng.Intn(n-i)
	return LocalMove{i, j, rng.Intn(2), rng.Intn(2)}
}

// directionRewrites lists the four (IDir, JDir) combinations of a swap.
var directionRewrites = [4][2]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}}

// RandomLocalMovesWOR enumerates every local move exactly once in
// random order: positions i are shuffled, then the j ≥ i positions per
// i, then the four direction rewrites per pair.
func (s *Solution) RandomLocalMovesWOR(rng *rand.Rand) []LocalMove {
	n := s.problem.N
	out := make([]LocalMove, 0, 2*n*(n+1))
	for _, i := range rng.Perm(n) {
		for _, off := range rng.Perm(n - i) {
			j := i + off
			for _, d := range rng.Perm(len(directionRewrites)) {
				out = append(out, LocalMove{i, j, directionRewrites[d][0], directionRewrites[d][1]})
			}
		}
	}
	return out
}

// connectionCost prices the leg between two consecutive components.
// Node -1 stands for the depot, node N for the plant.
func (s *Solution) connectionCost(last, next Component) int {
	if last.Node == -1 {
		return s.problem.DepotToContainer[next.Direction][next.Node]
	}
	if next.Node == s.problem.N {
		return s.problem.ContainerToPlant[last.Direction][last.Node]
	}
	return s.problem.ContainerToContainer[DirIndex(last.Direction, next.Direction)][last.Node][next.Node]
}

// HeuristicAddMove returns the cheapest next component from the end of
// the current route, or nil when the solution is complete.
func (s *Solution) HeuristicAddMove() *Component {
	if s.remaining == 0 {
		return nil
	}

	var rows [2][]int
	if len(s.containers) == 0 {
		rows[0] = s.problem.DepotToContainer[0]
		rows[1] = s.problem.DepotToContainer[1]
	} else {
		last, lastDir := s.containers[len(s.containers)-1], s.directions[len(s.directions)-1]
		rows[0] = s.problem.ContainerToContainer[DirIndex(lastDir, 0)][last]
		rows[1] = s.problem.ContainerToContainer[DirIndex(lastDir, 1)][last]
	}

	// Seed the threshold above any single row entry so the first
	// candidate always wins.
	threshold := rows[0][0] + rows[1][0]
	for i := 0; i < s.problem.N; i++ {
		if v := rows[0][i] + rows[1][i]; v > threshold {
			threshold = v
		}
	}

	var best *Component
	bestVal := threshold
	for _, c := range s.notPicked() {
		for d := 0; d < 2; d++ {
			if rows[d][c] < bestVal {
				bestVal = rows[d][c]
				best = &Component{Node: c, Direction: d}
			}
		}
	}
	return best
}

// Add appends a component to the route and folds in its cost.
// Invalidates previously enumerated moves.
func (s *Solution) Add(c Component) {
	if len(s.containers) == 0 {
		s.objValue += s.problem.DepotToContainer[c.Direction][c.Node]
	} else {
		last := Component{s.containers[len(s.containers)-1], s.directions[len(s.directions)-1]}
		s.objValue += s.connectionCost(last, c)
	}
	s.containers = append(s.containers, c.Node)
	s.directions = append(s.directions, c.Direction)
	s.picked[c.Node] = true
	s.remaining--
}

// Step applies a swap move in place. The accumulated cost is not
// adjusted; callers track cost changes through DeltaObjective.
func (s *Solution) Step(m LocalMove) {
	s.containers[m.I], s.containers[m.J] = s.containers[m.J], s.containers[m.I]
	s.directions[m.I] = m.IDir
	s.directions[m.J] = m.JDir
}

// DeltaObjective prices a swap move without applying it: the cost of
// the four affected legs after the swap minus before. Positions at the
// route boundaries price against the depot and the plant. Exact only
// when the two positions are not adjacent; overlapping neighborhoods
// double-count the shared leg.
func (s *Solution) DeltaObjective(m LocalMove) int {
	n := s.problem.N

	neighbors := func(pos int) (prev, next Component) {
		prev = Component{Node: -1}
		if pos > 0 {
			prev = Component{s.containers[pos-1], s.directions[pos-1]}
		}
		next = Component{Node: n}
		if pos < n-1 {
			next = Component{s.containers[pos+1], s.directions[pos+1]}
		}
		return prev, next
	}

	prevI, nextI := neighbors(m.I)
	prevJ, nextJ := neighbors(m.J)
	curI := Component{s.containers[m.I], s.directions[m.I]}
	curJ := Component{s.containers[m.J], s.directions[m.J]}
	newI := Component{s.containers[m.J], m.JDir}
	newJ := Component{s.containers[m.I], m.IDir}

	before := s.connectionCost(prevI, curI) + s.connectionCost(curI, nextI) +
		s.connectionCost(prevJ, curJ) + s.connectionCost(curJ, nextJ)
	after := s.connectionCost(prevI, newI) + s.connectionCost(newI, nextI) +
		s.connectionCost(prevJ, newJ) + s.connectionCost(newJ, nextJ)
	return after - before
}

// DeltaLowerBound prices adding a component against the current lower
// bound. Zero when only one container remains.
func (s *Solution) DeltaLowerBound(c Component) int {
	if s.remaining == 1 {
		return 0
	}

	var newObj int
	if len(s.containers) == 0 {
		newObj = s.problem.DepotToContainer[c.Direction][c.Node]
	} else {
		last := Component{s.containers[len(s.containers)-1], s.directions[len(s.directions)-1]}
		newObj = s.objValue + s.connectionCost(last, c)
	}

	s.picked[c.Node] = true
	newObj += s.minimalConnections(s.notPicked())
	s.picked[c.Node] = false

	lb, _ := s.LowerBound()
	return newObj - lb
}

// Perturb applies ks random swap moves in place (kick strength ks).
func (s *Solution) Perturb(ks int, rng *rand.Rand) {
	for i := 0; i < ks; i++ {
		s.Step(s.RandomLocalMove(rng))
	}
}

// Components returns the route as components in visit order.
func (s *Solution) Components() []Component {
	out := make([]Component, len(s.containers))
	for i := range s.containers {
		out[i] = Component{s.containers[i], s.directions[i]}
	}
	return out
}

// Output renders the solution in the solver's exchange format: one
// "container direction" pair per line, containers 1-based.
func (s *Solution) Output() string {
	var b strings.Builder
	for i, c := range s.containers {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d %d", c+1, s.directions[i])
	}
	return b.String()
}
