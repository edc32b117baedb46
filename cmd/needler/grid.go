// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/needler/internal/grid"
	"github.com/pdiddy/needler/internal/pool"
	"github.com/pdiddy/needler/internal/result"
	"github.com/pdiddy/needler/internal/solver"
	"github.com/pdiddy/needler/internal/window"
	"github.com/pdiddy/needler/pkg/types"
)

var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Enumerate and run the (gradient, budget, replicate) job grid",
	Long: `Grid expands the cross product of gradient lengths, target budgets,
and replicate indices into independent jobs. Use subcommands to run the
grid over a local worker pool, to emit a Makefile fragment so any
parallel make can drive it, or to write the job manifest.`,
}

// gridConfigFromFlags resolves the grid configuration from flags, the
// config file, and defaults.
func gridConfigFromFlags(cmd *cobra.Command) (types.GridConfig, error) {
	cfg := types.GridConfig{
		SolveBudgetSeconds: intSetting(cmd, "timeout", "grid.solve_budget_seconds", 86400),
		Replicates:         intSetting(cmd, "replicates", "grid.replicates", 1),
		Workers:            intSetting(cmd, "workers", "grid.workers", 0),
		OutputDir:          stringSetting(cmd, "out-dir", "grid.output_dir", "build/methods"),
	}

	gradients, _ := cmd.Flags().GetString("gradients")
	if gradients != "" {
		list, err := parseIntList(gradients)
		if err != nil {
			return cfg, fmt.Errorf("parsing --gradients: %w", err)
		}
		cfg.GradientLengthsMin = list
	} else if viper.IsSet("grid.gradient_lengths_min") {
		cfg.GradientLengthsMin = viper.GetIntSlice("grid.gradient_lengths_min")
	}

	budgets, _ := cmd.Flags().GetString("budgets")
	if budgets != "" {
		list, err := parseIntList(budgets)
		if err != nil {
			return cfg, fmt.Errorf("parsing --budgets: %w", err)
		}
		cfg.TargetBudgets = list
	} else if viper.IsSet("grid.target_budgets") {
		cfg.TargetBudgets = viper.GetIntSlice("grid.target_budgets")
	}

	return cfg, nil
}

// --- run subcommand ---

var gridRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the job grid over a local worker pool",
	Long: `Run solves every job of the grid with a fixed-size worker pool. Jobs
whose artifact already exists are skipped; a failed job is reported and
its siblings continue. The window model and eligibility mapping are
built once per gradient length and shared read-only across workers.`,
	RunE: runGridRun,
}

func runGridRun(cmd *cobra.Command, args []string) error {
	cfg, err := gridConfigFromFlags(cmd)
	if err != nil {
		return err
	}
	jobs, err := grid.Enumerate(cfg)
	if err != nil {
		return err
	}

	idx, err := pool.Load(context.Background(), poolPath(cmd))
	if err != nil {
		return err
	}

	winCfg := windowConfig(cmd)
	runner := &grid.Runner{
		Index: idx,
		Duty: window.DutyCycle{
			WidthMinutes:     winCfg.WidthMinutes,
			TargetsPerMinute: winCfg.TargetsPerMinute,
		},
		ToleranceMin: winCfg.ToleranceMinutes,
		MinDepth:     intSetting(cmd, "min-peps", "pool.min_peptides_per_protein", 2),
		Engine:       solver.CoverEngine{},
		Writer:       result.Writer{Dir: cfg.OutputDir},
		Workers:      cfg.Workers,
	}

	summary, err := runner.Run(context.Background(), jobs, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d job(s) failed; re-invoke to retry them", summary.Failed)
	}
	return nil
}

// --- makefile subcommand ---

var gridMakefileCmd = &cobra.Command{
	Use:   "makefile",
	Short: "Emit a Makefile fragment with one idempotent rule per job",
	Long: `Makefile writes a build-system fragment in which every job is an
independently invocable rule depending on the candidate pool and
producing the job's artifact. Drive it with any parallel make, e.g.
make -f build/needle.mk -j 8 methods.`,
	RunE: runGridMakefile,
}

func runGridMakefile(cmd *cobra.Command, args []string) error {
	cfg, err := gridConfigFromFlags(cmd)
	if err != nil {
		return err
	}
	jobs, err := grid.Enumerate(cfg)
	if err != nil {
		return err
	}

	dst, _ := cmd.Flags().GetString("dst")
	params := grid.MakefileParams{
		PoolPath:  poolPath(cmd),
		OutputDir: cfg.OutputDir,
		Window:    windowConfig(cmd),
		MinDepth:  intSetting(cmd, "min-peps", "pool.min_peptides_per_protein", 2),
	}
	if err := grid.WriteMakefile(params, jobs, dst); err != nil {
		return err
	}
	fmt.Printf("wrote %d job rules to %s\n", len(jobs), dst)
	return nil
}

// --- plan subcommand ---

var gridPlanCmd = &cobra.Command{
	Use:   "plan",
	Short: "Write the enumerated job grid as a YAML manifest",
	RunE:  runGridPlan,
}

func runGridPlan(cmd *cobra.Command, args []string) error {
	cfg, err := gridConfigFromFlags(cmd)
	if err != nil {
		return err
	}
	jobs, err := grid.Enumerate(cfg)
	if err != nil {
		return err
	}

	dst, _ := cmd.Flags().GetString("dst")
	m := grid.Manifest{
		Pool: types.PoolConfig{
			Path:                  poolPath(cmd),
			MinPeptidesPerProtein: intSetting(cmd, "min-peps", "pool.min_peptides_per_protein", 2),
		},
		Window: windowConfig(cmd),
		Grid:   cfg,
		Jobs:   jobs,
	}
	if err := grid.WriteManifest(m, dst); err != nil {
		return err
	}
	fmt.Printf("wrote %d jobs to %s\n", len(jobs), dst)
	return nil
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	gridCmd.PersistentFlags().String("pool", "", "candidate pool path (.csv or SQLite database)")
	gridCmd.PersistentFlags().String("gradients", "", "comma-separated gradient lengths in minutes")
	gridCmd.PersistentFlags().String("budgets", "", "comma-separated target budgets")
	gridCmd.PersistentFlags().Int("replicates", 1, "replicate runs per (gradient, budget) pair")
	gridCmd.PersistentFlags().Int("timeout", 86400, "per-job solve budget in seconds (0 = unlimited)")
	gridCmd.PersistentFlags().Float64("tolerance", 0.5, "eligibility tolerance in minutes")
	gridCmd.PersistentFlags().Float64("width", 1.0, "window width in minutes")
	gridCmd.PersistentFlags().Float64("rate", 10.0, "duty-cycle rate in targets per minute")
	gridCmd.PersistentFlags().Int("min-peps", 2, "peptides-per-protein depth threshold")
	gridCmd.PersistentFlags().String("out-dir", "build/methods", "artifact output directory")

	gridRunCmd.Flags().Int("workers", 0, "worker pool size (0 = one per available core)")

	gridMakefileCmd.Flags().String("dst", "build/needle.mk", "destination Makefile fragment")
	gridPlanCmd.Flags().String("dst", "build/jobs.yaml", "destination manifest file")

	gridCmd.AddCommand(gridRunCmd)
	gridCmd.AddCommand(gridMakefileCmd)
	gridCmd.AddCommand(gridPlanCmd)
	rootCmd.AddCommand(gridCmd)
}
