// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package result persists solved methods as per-job artifacts. The CSV
// artifact is written atomically and its existence is the job's
// completion signal, so the grid can resume by skipping existing
// artifacts.
// See docs/ARCHITECTURE § Result Writer.
package result

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/needler/pkg/types"
)

// artifactColumns is the method artifact header.
var artifactColumns = []string{
	"sequence", "protein_accession", "predicted_retention_time",
	"window_index", "window_start", "window_end",
}

// Summary is the YAML sidecar written next to each artifact.
type Summary struct {
	Job            types.JobConfig     `yaml:"job"`
	Status         types.SolveStatus   `yaml:"status"`
	Coverage       types.CoverageStats `yaml:"coverage"`
	ElapsedSeconds float64             `yaml:"elapsed_seconds"`
	RunID          string              `yaml:"run_id"`
}

// Writer persists solutions under Dir, one CSV artifact plus one summary
// sidecar per job, keyed by the job's canonical identity.
type Writer struct {
	Dir string
}

// Path returns the artifact path for a job.
func (w Writer) Path(job types.JobConfig) string {
	return filepath.Join(w.Dir, job.Key()+".csv")
}

// SummaryPath returns the summary sidecar path for a job.
func (w Writer) SummaryPath(job types.JobConfig) string {
	return filepath.Join(w.Dir, job.Key()+".summary.yaml")
}

// Exists reports whether the job's artifact has been completely written.
func (w Writer) Exists(job types.JobConfig) bool {
	_, err := os.Stat(w.Path(job))
	return err == nil
}

// Write persists the solution: the summary sidecar first, then the CSV
// through a temp file renamed into place. A crash mid-write leaves no
// artifact, so the job re-runs cleanly.
func (w Writer) Write(job types.JobConfig, sol types.Solution) (string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory %s: %w", w.Dir, err)
	}

	summary := Summary{
		Job:            job,
		Status:         sol.Status,
		Coverage:       sol.Coverage,
		ElapsedSeconds: sol.ElapsedSeconds,
		RunID:          sol.RunID,
	}
	data, err := yaml.Marshal(&summary)
	if err != nil {
		return "", fmt.Errorf("marshaling summary for %s: %w", job.Key(), err)
	}
	if err := os.WriteFile(w.SummaryPath(job), data, 0o644); err != nil {
		return "", fmt.Errorf("writing summary for %s: %w", job.Key(), err)
	}

	dst := w.Path(job)
	tmp := dst + ".temp"
	if err := writeCSV(tmp, sol.Assignments); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("writing artifact for %s: %w", job.Key(), err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("finalizing artifact for %s: %w", job.Key(), err)
	}
	return dst, nil
}

// ReadSummary loads the summary sidecar of a completed job.
func (w Writer) ReadSummary(job types.JobConfig) (Summary, error) {
	data, err := os.ReadFile(w.SummaryPath(job))
	if err != nil {
		return Summary{}, fmt.Errorf("reading summary for %s: %w", job.Key(), err)
	}
	var s Summary
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Summary{}, fmt.Errorf("parsing summary for %s: %w", job.Key(), err)
	}
	return s, nil
}

func writeCSV(path string, assignments []types.Assignment) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(f)
	if err := cw.Write(artifactColumns); err != nil {
		f.Close()
		return err
	}
	for _, a := range assignments {
		record := []string{
			a.Sequence,
			a.Accession,
			strconv.FormatFloat(a.RetentionTimeMin, 'f', 3, 64),
			strconv.Itoa(a.WindowIndex),
			strconv.FormatFloat(a.WindowStartMin, 'f', 3, 64),
			strconv.FormatFloat(a.WindowEndMin, 'f', 3, 64),
		}
		if err := cw.Write(record); err != nil {
			f.Close()
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
