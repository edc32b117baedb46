// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package grid

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/needler/internal/result"
	"github.com/pdiddy/needler/pkg/types"
)

// MakefileParams carries everything a generated rule needs to re-invoke
// one job through `needler solve`.
type MakefileParams struct {
	// PoolPath is the candidate pool each rule depends on.
	PoolPath string

	// OutputDir is the artifact directory.
	OutputDir string

	// Window parameters forwarded to each solve invocation.
	Window types.WindowConfig

	// MinDepth is the peptides-per-protein threshold.
	MinDepth int
}

// WriteMakefile emits a build-system fragment with one rule per job.
// Each rule depends on the candidate pool and produces the job's
// artifact, so any parallel make (-j) can drive the grid and re-runs
// skip completed jobs through the artifact-existence contract.
func WriteMakefile(params MakefileParams, jobs []types.JobConfig, dst string) error {
	if len(jobs) == 0 {
		return fmt.Errorf("no jobs to write")
	}

	writer := result.Writer{Dir: params.OutputDir}

	var b strings.Builder
	b.WriteString("# Generated by needler grid makefile. One rule per job; artifacts are\n")
	b.WriteString("# atomic, so interrupted jobs re-run cleanly.\n")
	b.WriteString("NEEDLER ?= bin/needler\n\n")

	// Aggregate target listing every artifact, for human review and for
	// `make methods -j N`.
	b.WriteString("methods :")
	for _, job := range jobs {
		b.WriteString(" ")
		b.WriteString(writer.Path(job))
	}
	b.WriteString("\n\n")

	for _, job := range jobs {
		fmt.Fprintf(&b, "%s : %s\n", writer.Path(job), params.PoolPath)
		fmt.Fprintf(&b,
			"\t${NEEDLER} solve --pool %s --gradient %d --budget %d --replicate %d --timeout %d --tolerance %g --width %g --rate %g --min-peps %d --out-dir %s\n\n",
			params.PoolPath, job.GradientLengthMin, job.TargetBudget, job.Replicate,
			job.SolveBudgetSeconds, params.Window.ToleranceMinutes,
			params.Window.WidthMinutes, params.Window.TargetsPerMinute,
			params.MinDepth, params.OutputDir)
	}

	if dir := filepath.Dir(dst); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(dst, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing makefile fragment: %w", err)
	}
	return nil
}
