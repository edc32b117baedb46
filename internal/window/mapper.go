// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package window

import (
	"fmt"

	"github.com/pdiddy/needler/internal/pool"
	"github.com/pdiddy/needler/pkg/types"
)

// Eligibility maps each pool candidate to the windows whose
// tolerance-widened interval contains its predicted retention time.
// Immutable once built; shared read-only across all jobs of a gradient
// length.
type Eligibility struct {
	windows []types.RetentionWindow

	// windowsOf[i] lists eligible window indices for pool candidate i,
	// ascending. Empty for ineligible candidates.
	windowsOf [][]int

	eligible   int
	ineligible int
}

// MapCandidates buckets every candidate of the pool into its eligible
// windows. A candidate whose retention time lies outside every widened
// window is excluded and counted, not an error. A negative tolerance is
// a configuration error.
func MapCandidates(idx *pool.Index, windows []types.RetentionWindow, toleranceMin float64) (*Eligibility, error) {
	if toleranceMin < 0 {
		return nil, fmt.Errorf("tolerance must be non-negative, got %.3f", toleranceMin)
	}
	if len(windows) == 0 {
		return nil, fmt.Errorf("no retention windows")
	}

	e := &Eligibility{
		windows:   windows,
		windowsOf: make([][]int, idx.Len()),
	}
	for i := 0; i < idx.Len(); i++ {
		rt := idx.Candidate(i).RetentionTimeMin
		for _, w := range windows {
			if w.Admits(rt, toleranceMin) {
				e.windowsOf[i] = append(e.windowsOf[i], w.Index)
			}
		}
		if len(e.windowsOf[i]) > 0 {
			e.eligible++
		} else {
			e.ineligible++
		}
	}
	return e, nil
}

// Windows returns the gradient's window sequence.
func (e *Eligibility) Windows() []types.RetentionWindow { return e.windows }

// WindowsOf returns the eligible window indices of candidate i.
func (e *Eligibility) WindowsOf(i int) []int { return e.windowsOf[i] }

// EligibleCount returns the number of candidates with at least one
// eligible window.
func (e *Eligibility) EligibleCount() int { return e.eligible }

// IneligibleCount returns the number of excluded candidates.
func (e *Eligibility) IneligibleCount() int { return e.ineligible }
