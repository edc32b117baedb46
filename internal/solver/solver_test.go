// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package solver

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/needler/internal/pool"
	"github.com/pdiddy/needler/internal/window"
	"github.com/pdiddy/needler/pkg/types"
)

// fourPeptidePool is the two-protein reference pool: one protein pair
// eluting early, one late.
func fourPeptidePool() []types.PeptideCandidate {
	return []types.PeptideCandidate{
		{Sequence: "AAAAK", Accession: "protA", RetentionTimeMin: 2.0},
		{Sequence: "AAACK", Accession: "protA", RetentionTimeMin: 2.1},
		{Sequence: "AAADK", Accession: "protB", RetentionTimeMin: 8.0},
		{Sequence: "AAAEK", Accession: "protB", RetentionTimeMin: 8.2},
	}
}

// buildRequest assembles a Request over a 10-minute gradient split into
// two 5-minute windows.
func buildRequest(t *testing.T, candidates []types.PeptideCandidate, targetsPerMinute float64, budget int, seed int64) Request {
	t.Helper()
	idx, err := pool.NewIndex(candidates)
	require.NoError(t, err)

	windows, err := window.BuildWindows(10, window.DutyCycle{WidthMinutes: 5, TargetsPerMinute: targetsPerMinute})
	require.NoError(t, err)

	elig, err := window.MapCandidates(idx, windows, 0.5)
	require.NoError(t, err)

	return Request{Index: idx, Eligibility: elig, Budget: budget, Seed: seed, MinDepth: 2}
}

// checkFeasible asserts the hard solver contract: budget respected,
// window capacities respected, every assignment eligible.
func checkFeasible(t *testing.T, req Request, sol types.Solution) {
	t.Helper()
	assert.LessOrEqual(t, len(sol.Assignments), req.Budget)

	windows := req.Eligibility.Windows()
	perWindow := make(map[int]int)
	seen := make(map[string]bool)
	for _, a := range sol.Assignments {
		require.False(t, seen[a.Sequence], "peptide %s assigned twice", a.Sequence)
		seen[a.Sequence] = true
		require.GreaterOrEqual(t, a.WindowIndex, 0)
		require.Less(t, a.WindowIndex, len(windows))
		perWindow[a.WindowIndex]++
		assert.True(t, windows[a.WindowIndex].Admits(a.RetentionTimeMin, 0.5),
			"peptide %s (rt %.2f) not eligible for window %d", a.Sequence, a.RetentionTimeMin, a.WindowIndex)
	}
	for wi, n := range perWindow {
		assert.LessOrEqual(t, n, windows[wi].Capacity, "window %d over capacity", wi)
	}
}

func TestSolveFullSelection(t *testing.T) {
	req := buildRequest(t, fourPeptidePool(), 0.4, 4, 1) // capacity 2 per window

	sol, err := CoverEngine{}.Solve(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, types.StatusOptimal, sol.Status)
	assert.Equal(t, 2, sol.Coverage.ProteinsCovered)
	assert.Equal(t, 2, sol.Coverage.ProteinsAtDepth)
	assert.Equal(t, 4, sol.Coverage.PeptidesSelected)
	checkFeasible(t, req, sol)

	// protA's pair lands in window 0, protB's in window 1.
	for _, a := range sol.Assignments {
		if a.Accession == "protA" {
			assert.Equal(t, 0, a.WindowIndex, "peptide %s", a.Sequence)
		} else {
			assert.Equal(t, 1, a.WindowIndex, "peptide %s", a.Sequence)
		}
	}
}

func TestSolveBudgetOne(t *testing.T) {
	req := buildRequest(t, fourPeptidePool(), 0.4, 1, 7)

	sol, err := CoverEngine{}.Solve(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, types.StatusOptimal, sol.Status)
	assert.Equal(t, 1, sol.Coverage.ProteinsCovered)
	require.Len(t, sol.Assignments, 1)
	checkFeasible(t, req, sol)

	// Same seed reproduces the same choice.
	again, err := CoverEngine{}.Solve(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, sol.Assignments, again.Assignments)
}

func TestSolveCapacityOnePerWindow(t *testing.T) {
	req := buildRequest(t, fourPeptidePool(), 0.2, 4, 1) // capacity 1 per window

	sol, err := CoverEngine{}.Solve(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, types.StatusOptimal, sol.Status)
	assert.Equal(t, 2, sol.Coverage.ProteinsCovered)
	assert.Len(t, sol.Assignments, 2, "capacity caps selection below the budget")
	checkFeasible(t, req, sol)
}

func TestSolveZeroBudgetInfeasible(t *testing.T) {
	req := buildRequest(t, fourPeptidePool(), 0.4, 0, 1)

	sol, err := CoverEngine{}.Solve(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, types.StatusInfeasible, sol.Status)
	assert.Empty(t, sol.Assignments)
}

func TestSolveEmptyEligiblePoolInfeasible(t *testing.T) {
	// All retention times beyond the gradient end plus tolerance.
	candidates := []types.PeptideCandidate{
		{Sequence: "AAAAK", Accession: "protA", RetentionTimeMin: 50.0},
		{Sequence: "AAACK", Accession: "protA", RetentionTimeMin: 60.0},
	}
	req := buildRequest(t, candidates, 0.4, 10, 1)

	sol, err := CoverEngine{}.Solve(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, types.StatusInfeasible, sol.Status)
	assert.Empty(t, sol.Assignments)
	assert.Equal(t, 2, sol.Coverage.IneligibleCount)
}

func TestSolveExpiredDeadline(t *testing.T) {
	req := buildRequest(t, fourPeptidePool(), 0.4, 4, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sol, err := CoverEngine{}.Solve(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, types.StatusFeasibleTimeout, sol.Status)
	checkFeasible(t, req, sol)
}

func TestSolveDeterministicPerSeed(t *testing.T) {
	candidates := randomPool(200, 40)
	for _, seed := range []int64{1, 2, 3} {
		req := buildRequest(t, candidates, 2, 30, seed)

		first, err := CoverEngine{}.Solve(context.Background(), req)
		require.NoError(t, err)
		second, err := CoverEngine{}.Solve(context.Background(), req)
		require.NoError(t, err)

		assert.Equal(t, first.Assignments, second.Assignments, "seed %d", seed)
		assert.Equal(t, first.Status, second.Status, "seed %d", seed)
	}
}

func TestSolveCoverageMonotonicInBudget(t *testing.T) {
	candidates := randomPool(200, 40)
	prev := 0
	for _, budget := range []int{1, 5, 10, 20, 40, 80} {
		req := buildRequest(t, candidates, 2, budget, 1)
		sol, err := CoverEngine{}.Solve(context.Background(), req)
		require.NoError(t, err)
		require.Equal(t, types.StatusOptimal, sol.Status)
		checkFeasible(t, req, sol)

		assert.GreaterOrEqual(t, sol.Coverage.ProteinsCovered, prev,
			"coverage shrank at budget %d", budget)
		prev = sol.Coverage.ProteinsCovered
	}
}

func TestSolveRandomPoolsRespectConstraints(t *testing.T) {
	for seed := int64(0); seed < 5; seed++ {
		candidates := randomPool(120, 30)
		req := buildRequest(t, candidates, 1, 25, seed)

		sol, err := CoverEngine{}.Solve(context.Background(), req)
		require.NoError(t, err)
		require.NotEqual(t, types.StatusSolverError, sol.Status)
		checkFeasible(t, req, sol)
		assert.Equal(t, len(sol.Assignments), sol.Coverage.PeptidesSelected)
	}
}

func TestSolveAugmentationRecoversBlockedProtein(t *testing.T) {
	// protB's only peptide fits window 0 alone; protA's only peptide
	// fits either window. Whenever the seeded greedy places protA into
	// window 0 first (capacity 1), covering protB requires relocating
	// protA's peptide to window 1.
	candidates := []types.PeptideCandidate{
		{Sequence: "AAAAK", Accession: "protA", RetentionTimeMin: 4.8},
		{Sequence: "AAADK", Accession: "protB", RetentionTimeMin: 2.0},
	}
	idx, err := pool.NewIndex(candidates)
	require.NoError(t, err)
	windows, err := window.BuildWindows(10, window.DutyCycle{WidthMinutes: 5, TargetsPerMinute: 0.2})
	require.NoError(t, err)
	elig, err := window.MapCandidates(idx, windows, 0.5)
	require.NoError(t, err)

	for seed := int64(0); seed < 10; seed++ {
		req := Request{Index: idx, Eligibility: elig, Budget: 2, Seed: seed, MinDepth: 2}
		sol, err := CoverEngine{}.Solve(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, types.StatusOptimal, sol.Status, "seed %d", seed)
		assert.Equal(t, 2, sol.Coverage.ProteinsCovered, "seed %d", seed)
	}
}

func TestSolveAugmentationSwitchesCoveringPeptide(t *testing.T) {
	// Both of protA's peptides fit window 0 alone; protB has one peptide
	// per window. With capacity 1 each and budget 2, covering both
	// proteins forces protB onto its late peptide, so a search that
	// covered protB early first must re-cover it through the sibling
	// rather than merely relocating the assigned peptide.
	candidates := []types.PeptideCandidate{
		{Sequence: "AAAAK", Accession: "protA", RetentionTimeMin: 2.0},
		{Sequence: "AAACK", Accession: "protA", RetentionTimeMin: 2.5},
		{Sequence: "AAADK", Accession: "protB", RetentionTimeMin: 2.2},
		{Sequence: "AAAEK", Accession: "protB", RetentionTimeMin: 8.0},
	}
	idx, err := pool.NewIndex(candidates)
	require.NoError(t, err)
	windows, err := window.BuildWindows(10, window.DutyCycle{WidthMinutes: 5, TargetsPerMinute: 0.2})
	require.NoError(t, err)
	elig, err := window.MapCandidates(idx, windows, 0.5)
	require.NoError(t, err)

	for seed := int64(0); seed < 16; seed++ {
		req := Request{Index: idx, Eligibility: elig, Budget: 2, Seed: seed, MinDepth: 2}
		sol, err := CoverEngine{}.Solve(context.Background(), req)
		require.NoError(t, err)
		require.Equal(t, 2, sol.Coverage.ProteinsCovered, "seed %d", seed)
		assert.Equal(t, types.StatusOptimal, sol.Status, "seed %d", seed)
		checkFeasible(t, req, sol)
	}
}

// randomPool builds n candidates spread over nProteins proteins with
// retention times inside the 10-minute reference gradient. The local
// PRNG keeps the pool identical across test runs.
func randomPool(n, nProteins int) []types.PeptideCandidate {
	rng := rand.New(rand.NewSource(99))
	res := types.Residues
	candidates := make([]types.PeptideCandidate, 0, n)
	for i := 0; i < n; i++ {
		seq := string([]byte{
			res[i%20], res[(i/20)%20], res[(i/400)%20], 'A', 'K',
		})
		candidates = append(candidates, types.PeptideCandidate{
			Sequence:         seq,
			Accession:        "PR" + string(rune('A'+i%nProteins/26)) + string(rune('A'+i%nProteins%26)),
			RetentionTimeMin: rng.Float64() * 10,
		})
	}
	return candidates
}
