// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package solver

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/needler/pkg/types"
)

// CoverEngine is the default solver backend. Protein coverage with
// single-peptide depth is a bipartite assignment between proteins and
// window slots, so the engine reaches a provably maximal coverage with
// deterministic augmenting paths: a seeded greedy pass covers the easy
// proteins, augmentation reroutes earlier assignments to make room for
// the rest (moving a peptide to another eligible window, or switching
// a covered protein onto an alternate peptide that fits elsewhere),
// and a depth-fill pass spends leftover budget on additional peptides
// per covered protein. The seed permutes all candidate orderings once
// up front; the search itself is order-driven and never consults map
// iteration order.
type CoverEngine struct{}

// Solve implements Engine.
func (CoverEngine) Solve(ctx context.Context, req Request) (sol types.Solution, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			sol = types.Solution{Status: types.StatusSolverError, RunID: uuid.NewString()}
			sol.ElapsedSeconds = time.Since(start).Seconds()
			err = fmt.Errorf("solver panic: %v", r)
		}
	}()

	minDepth := req.MinDepth
	if minDepth <= 0 {
		minDepth = 2
	}

	stats := types.CoverageStats{
		PoolSize:        req.Eligibility.EligibleCount(),
		IneligibleCount: req.Eligibility.IneligibleCount(),
	}

	if req.Budget <= 0 || stats.PoolSize == 0 {
		return types.Solution{
			Status:         types.StatusInfeasible,
			Coverage:       stats,
			ElapsedSeconds: time.Since(start).Seconds(),
			RunID:          uuid.NewString(),
		}, nil
	}

	st := newState(req)
	timedOut := st.run(ctx)

	status := types.StatusOptimal
	if timedOut {
		status = types.StatusFeasibleTimeout
	}

	assignments := st.assignments()
	// No peptide placeable at all (e.g. every eligible window has zero
	// capacity): infeasible, unless the deadline cut the search short.
	if len(assignments) == 0 && !timedOut {
		status = types.StatusInfeasible
	}
	stats.PeptidesSelected = len(assignments)
	stats.ProteinsCovered, stats.ProteinsAtDepth = st.coverage(minDepth)

	return types.Solution{
		Status:         status,
		Assignments:    assignments,
		Coverage:       stats,
		ElapsedSeconds: time.Since(start).Seconds(),
		RunID:          uuid.NewString(),
	}, nil
}

// state holds the mutable search structures of one solve. The feasibility
// invariant holds at every step: selected count ≤ budget and every
// window's occupancy ≤ its capacity, so the incumbent is always
// returnable.
type state struct {
	req      Request
	minDepth int

	// protOrder lists accessions scarcest-first: proteins with few
	// candidate peptides are hardest to place, so they go first. Ties
	// are broken by the seeded permutation.
	protOrder []string

	// pepOrder[acc] lists the protein's candidate positions in seeded
	// order; windowPref[i] lists candidate i's eligible windows in
	// seeded preference order.
	pepOrder   map[string][]int
	windowPref [][]int

	remaining []int   // free slots per window
	occupants [][]int // assigned candidate positions per window, insertion order
	assignWin []int   // window per candidate, -1 when unselected
	selected  int
	depth     map[string]int // selected peptides per protein
}

func newState(req Request) *state {
	rng := rand.New(rand.NewSource(req.Seed))
	idx := req.Index
	windows := req.Eligibility.Windows()

	minDepth := req.MinDepth
	if minDepth <= 0 {
		minDepth = 2
	}

	// Accessions arrive sorted from the index; shuffle for tie-break
	// variety, then stable-sort scarcest proteins to the front.
	protOrder := append([]string(nil), idx.Accessions()...)
	rng.Shuffle(len(protOrder), func(i, j int) { protOrder[i], protOrder[j] = protOrder[j], protOrder[i] })
	sort.SliceStable(protOrder, func(i, j int) bool {
		return len(idx.PeptidesOf(protOrder[i])) < len(idx.PeptidesOf(protOrder[j]))
	})

	pepOrder := make(map[string][]int, len(protOrder))
	for _, acc := range protOrder {
		peps := append([]int(nil), idx.PeptidesOf(acc)...)
		rng.Shuffle(len(peps), func(i, j int) { peps[i], peps[j] = peps[j], peps[i] })
		pepOrder[acc] = peps
	}

	windowPref := make([][]int, idx.Len())
	for i := range windowPref {
		pref := append([]int(nil), req.Eligibility.WindowsOf(i)...)
		rng.Shuffle(len(pref), func(a, b int) { pref[a], pref[b] = pref[b], pref[a] })
		windowPref[i] = pref
	}

	remaining := make([]int, len(windows))
	for i, w := range windows {
		remaining[i] = w.Capacity
	}

	assignWin := make([]int, idx.Len())
	for i := range assignWin {
		assignWin[i] = -1
	}

	return &state{
		req:        req,
		minDepth:   minDepth,
		protOrder:  protOrder,
		pepOrder:   pepOrder,
		windowPref: windowPref,
		remaining:  remaining,
		occupants:  make([][]int, len(windows)),
		assignWin:  assignWin,
		selected:   0,
		depth:      make(map[string]int, len(protOrder)),
	}
}

// run executes the three search phases and reports whether the deadline
// cut the search short.
func (s *state) run(ctx context.Context) (timedOut bool) {
	// Phase 1: greedy cover, one peptide per protein into a free slot.
	for _, acc := range s.protOrder {
		if expired(ctx) {
			return true
		}
		if s.selected >= s.req.Budget {
			return false // budget saturated: coverage cannot grow further
		}
		s.greedyCover(acc)
	}

	// Phase 2: augment for proteins the greedy pass could not place.
	// One augmentation attempt per uncovered protein yields a maximum
	// assignment; every reroute keeps the displaced protein covered.
	for _, acc := range s.protOrder {
		if expired(ctx) {
			return true
		}
		if s.selected >= s.req.Budget {
			return false
		}
		if s.depth[acc] == 0 {
			s.augmentCover(acc)
		}
	}

	// Phase 3: depth fill. Coverage is already maximal; spend leftover
	// budget deepening proteins below the depth threshold, then on any
	// remaining placeable peptide.
	for _, belowOnly := range []bool{true, false} {
		for _, acc := range s.protOrder {
			if expired(ctx) {
				return true
			}
			if s.depth[acc] == 0 {
				continue
			}
			for _, p := range s.pepOrder[acc] {
				if s.selected >= s.req.Budget {
					return false
				}
				if belowOnly && s.depth[acc] >= s.minDepth {
					break
				}
				if s.assignWin[p] != -1 {
					continue
				}
				visited := make([]bool, len(s.remaining))
				s.place(p, visited)
			}
		}
	}
	return false
}

// greedyCover selects one peptide of acc into a window with a free slot,
// if any.
func (s *state) greedyCover(acc string) {
	for _, p := range s.pepOrder[acc] {
		for _, w := range s.windowPref[p] {
			if s.remaining[w] > 0 {
				s.assign(p, w)
				return
			}
		}
	}
}

// augmentCover tries to cover acc by placing one of its peptides,
// rerouting already-assigned peptides out of contested windows when
// every direct slot is taken.
func (s *state) augmentCover(acc string) bool {
	visited := make([]bool, len(s.remaining))
	for _, p := range s.pepOrder[acc] {
		if s.place(p, visited) {
			return true
		}
	}
	return false
}

// place assigns candidate p to one of its eligible windows, recursively
// relocating an occupant when the window is full. visited guards against
// revisiting a window within one augmentation attempt.
func (s *state) place(p int, visited []bool) bool {
	for _, w := range s.windowPref[p] {
		if visited[w] {
			continue
		}
		visited[w] = true
		if s.remaining[w] > 0 {
			s.assign(p, w)
			return true
		}
		for _, q := range s.occupants[w] {
			if s.relocate(q, visited) {
				s.assign(p, w)
				return true
			}
		}
	}
	return false
}

// relocate frees candidate q's slot while keeping q's protein covered.
// Three exits, tried in order: q moves to another of its eligible
// windows; an unassigned sibling peptide of the same protein takes
// over in some other window and q is dropped; the protein is covered
// more than once, so q is dropped outright.
func (s *state) relocate(q int, visited []bool) bool {
	for _, w := range s.windowPref[q] {
		if visited[w] {
			continue
		}
		visited[w] = true
		if s.remaining[w] > 0 {
			s.move(q, w)
			return true
		}
		for _, r := range s.occupants[w] {
			if s.relocate(r, visited) {
				s.move(q, w)
				return true
			}
		}
	}
	acc := s.req.Index.Candidate(q).Accession
	for _, alt := range s.pepOrder[acc] {
		if alt == q || s.assignWin[alt] != -1 {
			continue
		}
		if s.place(alt, visited) {
			s.unassign(q)
			return true
		}
	}
	if s.depth[acc] > 1 {
		s.unassign(q)
		return true
	}
	return false
}

func (s *state) assign(p, w int) {
	s.assignWin[p] = w
	s.remaining[w]--
	s.occupants[w] = append(s.occupants[w], p)
	s.selected++
	s.depth[s.req.Index.Candidate(p).Accession]++
}

func (s *state) unassign(q int) {
	from := s.assignWin[q]
	occ := s.occupants[from]
	for i, c := range occ {
		if c == q {
			s.occupants[from] = append(occ[:i], occ[i+1:]...)
			break
		}
	}
	s.remaining[from]++
	s.assignWin[q] = -1
	s.selected--
	s.depth[s.req.Index.Candidate(q).Accession]--
}

func (s *state) move(q, toW int) {
	from := s.assignWin[q]
	occ := s.occupants[from]
	for i, c := range occ {
		if c == q {
			s.occupants[from] = append(occ[:i], occ[i+1:]...)
			break
		}
	}
	s.remaining[from]++
	s.assignWin[q] = toW
	s.remaining[toW]--
	s.occupants[toW] = append(s.occupants[toW], q)
}

// assignments renders the selection sorted by (window, sequence) so the
// same solution always serializes to the same bytes.
func (s *state) assignments() []types.Assignment {
	windows := s.req.Eligibility.Windows()
	var out []types.Assignment
	for p, w := range s.assignWin {
		if w < 0 {
			continue
		}
		c := s.req.Index.Candidate(p)
		out = append(out, types.Assignment{
			Sequence:         c.Sequence,
			Accession:        c.Accession,
			RetentionTimeMin: c.RetentionTimeMin,
			WindowIndex:      w,
			WindowStartMin:   windows[w].StartMin,
			WindowEndMin:     windows[w].EndMin,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].WindowIndex != out[j].WindowIndex {
			return out[i].WindowIndex < out[j].WindowIndex
		}
		return out[i].Sequence < out[j].Sequence
	})
	return out
}

func (s *state) coverage(minDepth int) (covered, atDepth int) {
	for _, n := range s.depth {
		if n > 0 {
			covered++
		}
		if n >= minDepth {
			atDepth++
		}
	}
	return covered, atDepth
}

func expired(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
