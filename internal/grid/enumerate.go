// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package grid enumerates the job cross product, drives the worker pool
// over it, and emits the Makefile fragment and YAML manifest that make
// each job an independently invocable, idempotent unit.
// See docs/ARCHITECTURE § Job Grid.
package grid

import (
	"fmt"

	"github.com/pdiddy/needler/pkg/types"
)

// Enumerate expands a grid configuration into the full cross product of
// gradient lengths × target budgets × replicate indices, replicates
// numbered from 1. The order is deterministic: gradients outermost,
// then budgets, then replicates. Grid parameter problems are
// configuration errors, surfaced before any job starts.
func Enumerate(cfg types.GridConfig) ([]types.JobConfig, error) {
	if len(cfg.GradientLengthsMin) == 0 {
		return nil, fmt.Errorf("no gradient lengths configured")
	}
	if len(cfg.TargetBudgets) == 0 {
		return nil, fmt.Errorf("no target budgets configured")
	}
	if cfg.Replicates < 1 {
		return nil, fmt.Errorf("replicates must be at least 1, got %d", cfg.Replicates)
	}
	for _, g := range cfg.GradientLengthsMin {
		if g <= 0 {
			return nil, fmt.Errorf("gradient length must be positive, got %d", g)
		}
	}
	for _, t := range cfg.TargetBudgets {
		if t < 0 {
			return nil, fmt.Errorf("target budget must be non-negative, got %d", t)
		}
	}

	jobs := make([]types.JobConfig, 0, len(cfg.GradientLengthsMin)*len(cfg.TargetBudgets)*cfg.Replicates)
	for _, g := range cfg.GradientLengthsMin {
		for _, t := range cfg.TargetBudgets {
			for r := 1; r <= cfg.Replicates; r++ {
				jobs = append(jobs, types.JobConfig{
					GradientLengthMin:  g,
					TargetBudget:       t,
					Replicate:          r,
					SolveBudgetSeconds: cfg.SolveBudgetSeconds,
				})
			}
		}
	}
	return jobs, nil
}
