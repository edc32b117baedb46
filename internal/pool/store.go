// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pool

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/needler/pkg/types"
)

// ImportSummary holds counts from a pool import run.
type ImportSummary struct {
	Imported int
	Proteins int
}

// ImportCSV ingests the upstream candidate table into a SQLite database
// at dbPath, replacing any prior contents. Each row is validated before
// the transaction commits; any malformed row fails the whole import,
// since a partially trusted pool would poison every downstream job.
func ImportCSV(ctx context.Context, csvPath, dbPath string, w io.Writer) (ImportSummary, error) {
	candidates, err := readCSV(csvPath)
	if err != nil {
		return ImportSummary{}, err
	}
	if len(candidates) == 0 {
		return ImportSummary{}, fmt.Errorf("pool %s contains no candidates", csvPath)
	}
	// Index construction validates rows and rejects duplicates.
	idx, err := NewIndex(candidates)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("validating pool %s: %w", csvPath, err)
	}

	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return ImportSummary{}, fmt.Errorf("creating pool directory: %w", err)
		}
	}

	db, err := openDB(dbPath)
	if err != nil {
		return ImportSummary{}, err
	}
	defer db.Close()

	if err := createSchema(db); err != nil {
		return ImportSummary{}, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM peptides`); err != nil {
		return ImportSummary{}, fmt.Errorf("clearing previous pool: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO peptides (sequence, accession, rt_min) VALUES (?, ?, ?)`)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < idx.Len(); i++ {
		c := idx.Candidate(i)
		if _, err := stmt.ExecContext(ctx, c.Sequence, c.Accession, c.RetentionTimeMin); err != nil {
			return ImportSummary{}, fmt.Errorf("inserting peptide %s: %w", c.Sequence, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return ImportSummary{}, fmt.Errorf("committing pool import: %w", err)
	}

	summary := ImportSummary{Imported: idx.Len(), Proteins: len(idx.Accessions())}
	fmt.Fprintf(w, "imported %d peptides across %d proteins into %s\n",
		summary.Imported, summary.Proteins, dbPath)
	return summary, nil
}

func openDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening pool database: %w", err)
	}
	return db, nil
}

func createSchema(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS peptides (
			sequence TEXT PRIMARY KEY,
			accession TEXT NOT NULL,
			rt_min REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_peptides_accession ON peptides(accession)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// readDB loads all candidates from a SQLite pool database in sequence
// order.
func readDB(ctx context.Context, dbPath string) ([]types.PeptideCandidate, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("pool database %s: %w", dbPath, err)
	}
	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx,
		`SELECT sequence, accession, rt_min FROM peptides ORDER BY sequence`)
	if err != nil {
		return nil, fmt.Errorf("querying pool: %w", err)
	}
	defer rows.Close()

	var candidates []types.PeptideCandidate
	for rows.Next() {
		var c types.PeptideCandidate
		if err := rows.Scan(&c.Sequence, &c.Accession, &c.RetentionTimeMin); err != nil {
			return nil, fmt.Errorf("scanning peptide row: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pool rows: %w", err)
	}
	return candidates, nil
}
