// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package solver selects a peptide subset and assigns it to retention
// windows, maximizing distinct source-protein coverage under the target
// budget and per-window capacities. The search runs under the caller's
// context deadline and always returns the best feasible incumbent.
// See docs/ARCHITECTURE § Optimization Engine.
package solver

import (
	"context"

	"github.com/pdiddy/needler/internal/pool"
	"github.com/pdiddy/needler/internal/window"
	"github.com/pdiddy/needler/pkg/types"
)

// Request carries one solve instance. All referenced structures are
// read-only; a Request may be solved concurrently with others sharing
// the same Index and Eligibility.
type Request struct {
	// Index is the candidate pool.
	Index *pool.Index

	// Eligibility maps candidates to their admissible windows for this
	// gradient length.
	Eligibility *window.Eligibility

	// Budget is the maximum number of peptides to select (target budget T).
	Budget int

	// Seed drives tie-breaking among equal-coverage solutions. The same
	// (pool, budget, seed) always yields the same solution.
	Seed int64

	// MinDepth is the peptides-per-protein threshold for the
	// proteins-at-depth statistic and the depth-fill pass (default 2).
	MinDepth int
}

// Engine is the solver capability interface. Backends must never return
// a solution exceeding the budget or any window capacity, and must
// return at or before the context deadline with the best incumbent.
type Engine interface {
	Solve(ctx context.Context, req Request) (types.Solution, error)
}
