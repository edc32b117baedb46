// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/needler/internal/pool"
)

var poolCmd = &cobra.Command{
	Use:   "pool",
	Short: "Manage the candidate peptide pool (import, stats)",
	Long: `Pool manages the filtered peptide candidate library produced by the
upstream digestion and retention-time prediction stages. Use subcommands
to import the upstream CSV into a SQLite pool database or to inspect
pool statistics.`,
}

// --- import subcommand ---

var poolImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Ingest the upstream candidate CSV into a SQLite pool database",
	Long: `Import validates every row of the upstream candidate table
(sequence, protein_accession, predicted_retention_time) and loads it
into a SQLite database. Any malformed row fails the whole import: a
partially trusted pool would poison every downstream job.`,
	RunE: runPoolImport,
}

func runPoolImport(cmd *cobra.Command, args []string) error {
	csvPath, _ := cmd.Flags().GetString("csv")
	dbPath, _ := cmd.Flags().GetString("db")
	if csvPath == "" {
		return fmt.Errorf("--csv is required")
	}

	_, err := pool.ImportCSV(context.Background(), csvPath, dbPath, os.Stdout)
	return err
}

// --- stats subcommand ---

var poolStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Report candidate pool statistics",
	RunE:  runPoolStats,
}

func runPoolStats(cmd *cobra.Command, args []string) error {
	path := poolPath(cmd)
	minDepth := intSetting(cmd, "min-peps", "pool.min_peptides_per_protein", 2)

	idx, err := pool.Load(context.Background(), path)
	if err != nil {
		return err
	}

	stats := idx.Stats(minDepth)
	fmt.Printf("pool:     %s\n", path)
	fmt.Printf("peptides: %d\n", stats.Peptides)
	fmt.Printf("proteins: %d\n", stats.Proteins)
	fmt.Printf("proteins below %d peptides: %d\n", stats.DepthThreshold, stats.BelowDepth)
	if stats.BelowDepth > 0 {
		fmt.Println("warning: upstream filtering should leave every protein with at least two peptides")
	}
	return nil
}

func init() {
	poolImportCmd.Flags().String("csv", "", "upstream candidate CSV (sequence, protein_accession, predicted_retention_time)")
	poolImportCmd.Flags().String("db", "build/pool.db", "destination SQLite pool database")

	poolStatsCmd.Flags().String("pool", "", "candidate pool path (.csv or SQLite database)")
	poolStatsCmd.Flags().Int("min-peps", 2, "peptides-per-protein depth threshold")

	poolCmd.AddCommand(poolImportCmd)
	poolCmd.AddCommand(poolStatsCmd)
	rootCmd.AddCommand(poolCmd)
}
