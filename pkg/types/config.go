package types

// PoolConfig holds settings for the candidate pool stage.
type PoolConfig struct {
	// Path locates the candidate pool: a CSV table or a SQLite database
	// produced by `needler pool import`.
	Path string `json:"path" yaml:"path"`

	// MinPeptidesPerProtein is the depth threshold used for the
	// proteins-at-depth coverage statistic (default 2).
	MinPeptidesPerProtein int `json:"min_peptides_per_protein" yaml:"min_peptides_per_protein"`
}

// WindowConfig holds the duty-cycle and eligibility parameters of the
// window model. The capacity formula and tolerance margin are deliberate
// configuration, not constants.
type WindowConfig struct {
	// WidthMinutes is the retention-window width (default 1.0).
	WidthMinutes float64 `json:"width_minutes" yaml:"width_minutes"`

	// TargetsPerMinute is the instrument duty-cycle rate: a window of
	// width w holds floor(w * TargetsPerMinute) peptide slots
	// (default 10).
	TargetsPerMinute float64 `json:"targets_per_minute" yaml:"targets_per_minute"`

	// ToleranceMinutes widens each window interval on both sides when
	// deciding candidate eligibility (default 0.5).
	ToleranceMinutes float64 `json:"tolerance_minutes" yaml:"tolerance_minutes"`
}

// GridConfig holds settings for the job grid.
type GridConfig struct {
	// GradientLengthsMin enumerates gradient lengths in minutes.
	GradientLengthsMin []int `json:"gradient_lengths_min" yaml:"gradient_lengths_min"`

	// TargetBudgets enumerates peptide target budgets.
	TargetBudgets []int `json:"target_budgets" yaml:"target_budgets"`

	// Replicates is the number of replicate runs per (gradient, budget)
	// pair, numbered from 1.
	Replicates int `json:"replicates" yaml:"replicates"`

	// SolveBudgetSeconds is the per-job wall-clock solve budget
	// (default 86400).
	SolveBudgetSeconds int `json:"solve_budget_seconds" yaml:"solve_budget_seconds"`

	// Workers sizes the worker pool for `grid run` (default: GOMAXPROCS).
	Workers int `json:"workers" yaml:"workers"`

	// OutputDir is the artifact directory (default "build/methods").
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Pool   PoolConfig   `json:"pool" yaml:"pool"`
	Window WindowConfig `json:"window" yaml:"window"`
	Grid   GridConfig   `json:"grid" yaml:"grid"`
}
