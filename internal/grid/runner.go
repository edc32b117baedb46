// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package grid

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/pdiddy/needler/internal/pool"
	"github.com/pdiddy/needler/internal/result"
	"github.com/pdiddy/needler/internal/solver"
	"github.com/pdiddy/needler/internal/window"
	"github.com/pdiddy/needler/pkg/types"
)

// Summary holds grid run counts by job outcome.
type Summary struct {
	Optimal    int
	Timeout    int
	Infeasible int
	Skipped    int
	Cancelled  int
	Failed     int
}

// Total returns the number of jobs processed.
func (s Summary) Total() int {
	return s.Optimal + s.Timeout + s.Infeasible + s.Skipped + s.Cancelled + s.Failed
}

// Runner executes a job sequence over a fixed-size worker pool. Jobs
// share only the read-only candidate pool and the per-gradient-length
// window/eligibility structures, which are built once before dispatch
// and never mutated afterwards.
type Runner struct {
	// Index is the shared candidate pool.
	Index *pool.Index

	// Duty and ToleranceMin parameterize the window model.
	Duty         window.DutyCycle
	ToleranceMin float64

	// MinDepth is the peptides-per-protein threshold passed to the
	// solver.
	MinDepth int

	// Engine solves individual jobs.
	Engine solver.Engine

	// Writer persists artifacts; artifact existence marks a job done.
	Writer result.Writer

	// Workers sizes the pool; 0 means one worker per available core.
	Workers int
}

// jobOutcome is one worker's report back to the collector.
type jobOutcome struct {
	status    types.SolveStatus
	line      string
	failed    bool
	skip      bool
	cancelled bool
}

// Run dispatches jobs to the worker pool and writes one status line per
// job to w. Per-job failures are isolated: a failed job is counted and
// its siblings continue. Only pre-dispatch configuration errors (window
// model construction) abort the run. Cancelling ctx interrupts the run:
// in-flight jobs are reported cancelled and leave no artifact, so they
// rerun on the next invocation.
func (r *Runner) Run(ctx context.Context, jobs []types.JobConfig, w io.Writer) (Summary, error) {
	eligByGradient, err := r.buildEligibility(jobs)
	if err != nil {
		return Summary{}, err
	}

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(jobs) && len(jobs) > 0 {
		workers = len(jobs)
	}

	jobCh := make(chan types.JobConfig)
	outCh := make(chan jobOutcome)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				outCh <- r.runJob(ctx, job, eligByGradient[job.GradientLengthMin])
			}
		}()
	}

	go func() {
		defer close(jobCh)
		for _, job := range jobs {
			select {
			case jobCh <- job:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outCh)
	}()

	var summary Summary
	for out := range outCh {
		fmt.Fprintln(w, out.line)
		switch {
		case out.skip:
			summary.Skipped++
		case out.cancelled:
			summary.Cancelled++
		case out.failed:
			summary.Failed++
		case out.status == types.StatusOptimal:
			summary.Optimal++
		case out.status == types.StatusFeasibleTimeout:
			summary.Timeout++
		case out.status == types.StatusInfeasible:
			summary.Infeasible++
		}
	}

	fmt.Fprintf(w, "\noptimal: %d, timeout: %d, infeasible: %d, skipped: %d, cancelled: %d, failed: %d\n",
		summary.Optimal, summary.Timeout, summary.Infeasible, summary.Skipped, summary.Cancelled, summary.Failed)
	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("grid run interrupted: %w", err)
	}
	return summary, nil
}

// buildEligibility constructs the window model and eligibility mapping
// once per distinct gradient length, reused across all target-budget
// and replicate variants.
func (r *Runner) buildEligibility(jobs []types.JobConfig) (map[int]*window.Eligibility, error) {
	out := make(map[int]*window.Eligibility)
	for _, job := range jobs {
		if _, ok := out[job.GradientLengthMin]; ok {
			continue
		}
		windows, err := window.BuildWindows(job.GradientLengthMin, r.Duty)
		if err != nil {
			return nil, fmt.Errorf("gradient %d: %w", job.GradientLengthMin, err)
		}
		elig, err := window.MapCandidates(r.Index, windows, r.ToleranceMin)
		if err != nil {
			return nil, fmt.Errorf("gradient %d: %w", job.GradientLengthMin, err)
		}
		out[job.GradientLengthMin] = elig
	}
	return out, nil
}

// runJob solves and persists one job. The solve deadline is enforced by
// the engine through the derived context; a non-positive solve budget
// means unlimited.
func (r *Runner) runJob(ctx context.Context, job types.JobConfig, elig *window.Eligibility) jobOutcome {
	if r.Writer.Exists(job) {
		return jobOutcome{
			skip: true,
			line: fmt.Sprintf("skipped %s (artifact exists)", job.Key()),
		}
	}

	solveCtx := ctx
	if job.SolveBudgetSeconds > 0 {
		var cancel context.CancelFunc
		solveCtx, cancel = context.WithTimeout(ctx, time.Duration(job.SolveBudgetSeconds)*time.Second)
		defer cancel()
	}

	sol, err := r.Engine.Solve(solveCtx, solver.Request{
		Index:       r.Index,
		Eligibility: elig,
		Budget:      job.TargetBudget,
		Seed:        job.Seed(),
		MinDepth:    r.MinDepth,
	})
	// The run context expiring means the grid was interrupted, not that
	// the job spent its solve budget: persist nothing so the job reruns
	// cleanly on resumption.
	if ctx.Err() != nil {
		return jobOutcome{
			cancelled: true,
			line:      fmt.Sprintf("cancelled %s (run interrupted)", job.Key()),
		}
	}
	if err != nil || sol.Status == types.StatusSolverError {
		if err == nil {
			err = fmt.Errorf("solver reported %s", sol.Status)
		}
		return jobOutcome{
			failed: true,
			line:   fmt.Sprintf("failed  %s: %v", job.Key(), err),
		}
	}

	path, err := r.Writer.Write(job, sol)
	if err != nil {
		return jobOutcome{
			failed: true,
			line:   fmt.Sprintf("failed  %s: %v", job.Key(), err),
		}
	}

	return jobOutcome{
		status: sol.Status,
		line: fmt.Sprintf("%-8s %s proteins=%d peptides=%d elapsed=%.1fs -> %s",
			sol.Status, job.Key(), sol.Coverage.ProteinsCovered,
			sol.Coverage.PeptidesSelected, sol.ElapsedSeconds, path),
	}
}
