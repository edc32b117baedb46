// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/needler/internal/pool"
	"github.com/pdiddy/needler/internal/result"
	"github.com/pdiddy/needler/internal/solver"
	"github.com/pdiddy/needler/internal/window"
	"github.com/pdiddy/needler/pkg/types"
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve one (gradient, budget, replicate) optimization job",
	Long: `Solve runs one optimization job: it loads the candidate pool, builds
the window model for the gradient length, selects up to --budget peptides
maximizing distinct protein coverage under per-window capacity, and
writes the method artifact atomically.

If the job's artifact already exists the solve is skipped, so generated
Makefile rules and re-invocations are idempotent. Statuses optimal,
feasible-timeout, and infeasible are terminal job outcomes and produce
artifacts; solver-error leaves no artifact and exits non-zero.`,
	RunE: runSolve,
}

func runSolve(cmd *cobra.Command, args []string) error {
	gradient, _ := cmd.Flags().GetInt("gradient")
	budget, _ := cmd.Flags().GetInt("budget")
	replicate, _ := cmd.Flags().GetInt("replicate")
	timeout := intSetting(cmd, "timeout", "grid.solve_budget_seconds", 86400)
	minDepth := intSetting(cmd, "min-peps", "pool.min_peptides_per_protein", 2)
	outDir := stringSetting(cmd, "out-dir", "grid.output_dir", "build/methods")
	winCfg := windowConfig(cmd)

	job := types.JobConfig{
		GradientLengthMin:  gradient,
		TargetBudget:       budget,
		Replicate:          replicate,
		SolveBudgetSeconds: timeout,
	}

	writer := result.Writer{Dir: outDir}
	if writer.Exists(job) {
		fmt.Printf("skipped %s (artifact exists)\n", job.Key())
		return nil
	}

	idx, err := pool.Load(context.Background(), poolPath(cmd))
	if err != nil {
		return err
	}

	windows, err := window.BuildWindows(gradient, window.DutyCycle{
		WidthMinutes:     winCfg.WidthMinutes,
		TargetsPerMinute: winCfg.TargetsPerMinute,
	})
	if err != nil {
		return err
	}
	elig, err := window.MapCandidates(idx, windows, winCfg.ToleranceMinutes)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
		defer cancel()
	}

	sol, err := solver.CoverEngine{}.Solve(ctx, solver.Request{
		Index:       idx,
		Eligibility: elig,
		Budget:      budget,
		Seed:        job.Seed(),
		MinDepth:    minDepth,
	})
	if err != nil {
		return fmt.Errorf("solving %s: %w", job.Key(), err)
	}

	path, err := writer.Write(job, sol)
	if err != nil {
		return err
	}

	fmt.Printf("%s %s proteins=%d peptides=%d ineligible=%d elapsed=%.1fs\n",
		sol.Status, job.Key(), sol.Coverage.ProteinsCovered,
		sol.Coverage.PeptidesSelected, sol.Coverage.IneligibleCount, sol.ElapsedSeconds)
	fmt.Printf("wrote %s\n", path)
	return nil
}

func init() {
	solveCmd.Flags().String("pool", "", "candidate pool path (.csv or SQLite database)")
	solveCmd.Flags().Int("gradient", 0, "gradient length in minutes")
	solveCmd.Flags().Int("budget", 0, "target budget: maximum peptides in the method")
	solveCmd.Flags().Int("replicate", 1, "replicate index; seeds solver tie-breaking")
	solveCmd.Flags().Int("timeout", 86400, "solve-time budget in seconds (0 = unlimited)")
	solveCmd.Flags().Float64("tolerance", 0.5, "eligibility tolerance in minutes")
	solveCmd.Flags().Float64("width", 1.0, "window width in minutes")
	solveCmd.Flags().Float64("rate", 10.0, "duty-cycle rate in targets per minute")
	solveCmd.Flags().Int("min-peps", 2, "peptides-per-protein depth threshold")
	solveCmd.Flags().String("out-dir", "build/methods", "artifact output directory")
	solveCmd.MarkFlagRequired("gradient")

	rootCmd.AddCommand(solveCmd)
}
