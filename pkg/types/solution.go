package types

// SolveStatus is the terminal state of one optimization run.
type SolveStatus string

const (
	// StatusOptimal means the search completed: coverage is provably
	// maximal for the instance.
	StatusOptimal SolveStatus = "optimal"

	// StatusFeasibleTimeout means the solve budget expired; the solution
	// is the best feasible incumbent found so far.
	StatusFeasibleTimeout SolveStatus = "feasible-timeout"

	// StatusInfeasible means no peptide can be selected at all (zero
	// budget or empty eligible pool).
	StatusInfeasible SolveStatus = "infeasible"

	// StatusSolverError marks an internal solver failure. No artifact is
	// written; the job is safely retryable.
	StatusSolverError SolveStatus = "solver-error"
)

// Assignment places one selected peptide into one retention window.
type Assignment struct {
	Sequence         string  `json:"sequence" yaml:"sequence"`
	Accession        string  `json:"protein_accession" yaml:"protein_accession"`
	RetentionTimeMin float64 `json:"predicted_retention_time" yaml:"predicted_retention_time"`
	WindowIndex      int     `json:"window_index" yaml:"window_index"`
	WindowStartMin   float64 `json:"window_start" yaml:"window_start"`
	WindowEndMin     float64 `json:"window_end" yaml:"window_end"`
}

// CoverageStats summarizes how well a solution covers the proteome.
type CoverageStats struct {
	// ProteinsCovered counts distinct source proteins with at least one
	// selected peptide. This is the solver objective.
	ProteinsCovered int `json:"proteins_covered" yaml:"proteins_covered"`

	// ProteinsAtDepth counts proteins meeting the configured
	// min-peptides-per-protein threshold.
	ProteinsAtDepth int `json:"proteins_at_depth" yaml:"proteins_at_depth"`

	// PeptidesSelected counts selected peptides (≤ target budget).
	PeptidesSelected int `json:"peptides_selected" yaml:"peptides_selected"`

	// PoolSize counts eligible candidates for this gradient length.
	PoolSize int `json:"pool_size" yaml:"pool_size"`

	// IneligibleCount counts candidates whose retention time fell
	// outside every window even after tolerance widening.
	IneligibleCount int `json:"ineligible_count" yaml:"ineligible_count"`
}

// Solution is the immutable outcome of one job.
type Solution struct {
	Status         SolveStatus   `json:"status" yaml:"status"`
	Assignments    []Assignment  `json:"assignments" yaml:"assignments"`
	Coverage       CoverageStats `json:"coverage" yaml:"coverage"`
	ElapsedSeconds float64       `json:"elapsed_seconds" yaml:"elapsed_seconds"`

	// RunID is a fresh UUID identifying the solve invocation that
	// produced this solution.
	RunID string `json:"run_id" yaml:"run_id"`
}
