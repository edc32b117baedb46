//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

// Pool imports the upstream candidate CSV into the SQLite pool database.
// Set POOL_CSV to override the source table.
func Pool() error {
	mg.Deps(Build)
	src := os.Getenv("POOL_CSV")
	if src == "" {
		src = "build/pool.csv"
	}
	return runNeedler("pool", "import", "--csv", src, "--db", "build/pool.db")
}

// Grid regenerates the job Makefile fragment and manifest from the
// configured grid. Drive the fragment with make -f build/needle.mk -j N.
func Grid() error {
	mg.Deps(Build)
	if err := runNeedler("grid", "makefile", "--dst", "build/needle.mk"); err != nil {
		return err
	}
	return runNeedler("grid", "plan", "--dst", "build/jobs.yaml")
}

func runNeedler(args ...string) error {
	cmd := exec.Command(filepath.Join(binDir, binName), args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("needler %v: %w", args, err)
	}
	return nil
}
