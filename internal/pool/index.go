// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pool loads the filtered peptide candidate library into an
// immutable in-memory index and manages its SQLite-backed store.
// See docs/ARCHITECTURE § Candidate Pool.
package pool

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/pdiddy/needler/pkg/types"
)

// Index is the read-only candidate pool shared across all jobs. It is
// never mutated after construction.
type Index struct {
	candidates  []types.PeptideCandidate
	byAccession map[string][]int
	accessions  []string
}

// NewIndex validates and indexes a candidate slice. Candidates are
// ordered by sequence so downstream iteration is reproducible; duplicate
// sequences are a pool input error.
func NewIndex(candidates []types.PeptideCandidate) (*Index, error) {
	sorted := make([]types.PeptideCandidate, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Sequence < sorted[j].Sequence })

	byAccession := make(map[string][]int)
	for i, c := range sorted {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if i > 0 && sorted[i-1].Sequence == c.Sequence {
			return nil, fmt.Errorf("duplicate peptide sequence %q", c.Sequence)
		}
		byAccession[c.Accession] = append(byAccession[c.Accession], i)
	}

	accessions := make([]string, 0, len(byAccession))
	for acc := range byAccession {
		accessions = append(accessions, acc)
	}
	sort.Strings(accessions)

	return &Index{candidates: sorted, byAccession: byAccession, accessions: accessions}, nil
}

// Len returns the number of candidates.
func (x *Index) Len() int { return len(x.candidates) }

// Candidate returns the candidate at position i in sequence order.
func (x *Index) Candidate(i int) types.PeptideCandidate { return x.candidates[i] }

// Accessions returns the distinct source proteins in sorted order.
func (x *Index) Accessions() []string { return x.accessions }

// PeptidesOf returns the candidate positions belonging to a protein.
func (x *Index) PeptidesOf(accession string) []int { return x.byAccession[accession] }

// Stats summarizes the pool for reporting.
type Stats struct {
	Peptides       int
	Proteins       int
	BelowDepth     int
	DepthThreshold int
}

// Stats computes pool summary statistics. BelowDepth counts proteins
// with fewer than minDepth candidate peptides; upstream filtering is
// expected to keep this at zero, so a nonzero count is worth surfacing.
func (x *Index) Stats(minDepth int) Stats {
	below := 0
	for _, acc := range x.accessions {
		if len(x.byAccession[acc]) < minDepth {
			below++
		}
	}
	return Stats{
		Peptides:       len(x.candidates),
		Proteins:       len(x.accessions),
		BelowDepth:     below,
		DepthThreshold: minDepth,
	}
}

// Load reads a candidate pool from path: a CSV table for .csv files,
// otherwise a SQLite database produced by ImportCSV. Malformed pool
// input is a configuration error and is fatal to the caller.
func Load(ctx context.Context, path string) (*Index, error) {
	var (
		candidates []types.PeptideCandidate
		err        error
	)
	if filepath.Ext(path) == ".csv" {
		candidates, err = readCSV(path)
	} else {
		candidates, err = readDB(ctx, path)
	}
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("candidate pool %s is empty", path)
	}
	return NewIndex(candidates)
}
