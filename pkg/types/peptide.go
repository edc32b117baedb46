// Package types defines the shared data model for the needler pipeline:
// peptide candidates, retention windows, job configurations, solutions,
// and per-stage configuration.
// See docs/ARCHITECTURE § Data Model.
package types

import (
	"fmt"
	"strings"
)

// Residues is the amino-acid alphabet accepted in candidate sequences.
const Residues = "ACDEFGHIKLMNPQRSTVWY"

// Peptide sequence length bounds for tryptic candidates.
const (
	MinPeptideLen = 5
	MaxPeptideLen = 30
)

// PeptideCandidate is one filtered tryptic peptide from the upstream
// digestion/prediction stages. Candidates are immutable once loaded;
// each maps to exactly one source protein (distinctness enforced
// upstream).
type PeptideCandidate struct {
	// Sequence is the peptide sequence over the Residues alphabet.
	Sequence string `json:"sequence" yaml:"sequence"`

	// Accession identifies the source protein.
	Accession string `json:"protein_accession" yaml:"protein_accession"`

	// RetentionTimeMin is the predicted chromatographic retention time
	// in minutes.
	RetentionTimeMin float64 `json:"predicted_retention_time" yaml:"predicted_retention_time"`
}

// Validate checks the sequence alphabet and length bounds, the accession,
// and the retention time.
func (p PeptideCandidate) Validate() error {
	if n := len(p.Sequence); n < MinPeptideLen || n > MaxPeptideLen {
		return fmt.Errorf("peptide %q: length %d outside [%d,%d]", p.Sequence, n, MinPeptideLen, MaxPeptideLen)
	}
	for _, r := range p.Sequence {
		if !strings.ContainsRune(Residues, r) {
			return fmt.Errorf("peptide %q: invalid residue %q", p.Sequence, r)
		}
	}
	if p.Accession == "" {
		return fmt.Errorf("peptide %q: empty protein accession", p.Sequence)
	}
	if p.RetentionTimeMin < 0 {
		return fmt.Errorf("peptide %q: negative retention time %.3f", p.Sequence, p.RetentionTimeMin)
	}
	return nil
}
