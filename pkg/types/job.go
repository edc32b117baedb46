package types

import "fmt"

// JobConfig identifies one optimization run of the grid. Immutable; the
// grid is the full cross product of configured gradient lengths, target
// budgets, and replicate indices.
type JobConfig struct {
	// GradientLengthMin is the total LC gradient length in minutes.
	GradientLengthMin int `json:"gradient_length_min" yaml:"gradient_length_min"`

	// TargetBudget is the maximum number of peptides the method may
	// monitor.
	TargetBudget int `json:"target_budget" yaml:"target_budget"`

	// Replicate numbers the run from 1; it seeds solver tie-breaking so
	// replicates explore the search space differently but reproducibly.
	Replicate int `json:"replicate" yaml:"replicate"`

	// SolveBudgetSeconds is the per-job wall-clock solve budget.
	SolveBudgetSeconds int `json:"solve_budget_seconds" yaml:"solve_budget_seconds"`
}

// Key canonically encodes the job identity; it is the artifact filename
// stem, so artifact existence can stand in for job completion.
func (j JobConfig) Key() string {
	return fmt.Sprintf("G%03d_TARG%05d_R%d", j.GradientLengthMin, j.TargetBudget, j.Replicate)
}

// Seed is the solver tie-breaking seed for this job. Replicates of the
// same (gradient, budget) pair differ only in seed.
func (j JobConfig) Seed() int64 {
	return int64(j.Replicate)
}
