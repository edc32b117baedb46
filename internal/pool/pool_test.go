package pool

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/needler/pkg/types"
)

// --- test helpers ---

func writePoolCSV(t *testing.T, rows []string) string {
	t.Helper()
	lines := append([]string{"sequence,protein_accession,predicted_retention_time"}, rows...)
	path := filepath.Join(t.TempDir(), "pool.csv")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func validRows() []string {
	return []string{
		"AAAAK,protA,2.0",
		"AAACK,protA,2.1",
		"AAADK,protB,8.0",
		"AAAEK,protB,8.2",
	}
}

func TestLoadCSV(t *testing.T) {
	path := writePoolCSV(t, validRows())

	idx, err := Load(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if idx.Len() != 4 {
		t.Fatalf("got %d candidates, want 4", idx.Len())
	}
	if got := idx.Accessions(); len(got) != 2 || got[0] != "protA" || got[1] != "protB" {
		t.Fatalf("accessions %v, want [protA protB]", got)
	}
	if got := idx.PeptidesOf("protB"); len(got) != 2 {
		t.Fatalf("protB has %d peptides, want 2", len(got))
	}

	// Candidates come back in sequence order regardless of input order.
	for i := 1; i < idx.Len(); i++ {
		if idx.Candidate(i-1).Sequence >= idx.Candidate(i).Sequence {
			t.Fatal("candidates not in sequence order")
		}
	}
}

func TestLoadCSVRejectsMalformedRows(t *testing.T) {
	cases := []struct {
		name string
		row  string
	}{
		{"invalid residue", "AAAZB,protA,2.0"},
		{"too short", "AAK,protA,2.0"},
		{"too long", strings.Repeat("A", 31) + ",protA,2.0"},
		{"bad retention time", "AAAGK,protA,soon"},
		{"negative retention time", "AAAGK,protA,-1.5"},
		{"empty accession", "AAAGK,,2.0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writePoolCSV(t, append(validRows(), tc.row))
			if _, err := Load(context.Background(), path); err == nil {
				t.Error("expected pool input error")
			}
		})
	}
}

func TestLoadCSVRejectsBadHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.csv")
	content := "peptide,accession,rt\nAAAAK,protA,2.0\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(context.Background(), path); err == nil {
		t.Error("expected header error")
	}
}

func TestNewIndexRejectsDuplicateSequences(t *testing.T) {
	_, err := NewIndex([]types.PeptideCandidate{
		{Sequence: "AAAAK", Accession: "protA", RetentionTimeMin: 2.0},
		{Sequence: "AAAAK", Accession: "protB", RetentionTimeMin: 3.0},
	})
	if err == nil {
		t.Error("expected duplicate sequence error")
	}
}

func TestImportAndLoadSQLite(t *testing.T) {
	csvPath := writePoolCSV(t, validRows())
	dbPath := filepath.Join(t.TempDir(), "pool.db")

	summary, err := ImportCSV(context.Background(), csvPath, dbPath, os.Stderr)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Imported != 4 || summary.Proteins != 2 {
		t.Fatalf("summary %+v, want 4 peptides / 2 proteins", summary)
	}

	idx, err := Load(context.Background(), dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if idx.Len() != 4 {
		t.Fatalf("got %d candidates from db, want 4", idx.Len())
	}
	if idx.Candidate(0).Sequence != "AAAAK" {
		t.Fatalf("first candidate %q, want AAAAK", idx.Candidate(0).Sequence)
	}
}

func TestImportReplacesPriorContents(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "pool.db")

	first := writePoolCSV(t, validRows())
	if _, err := ImportCSV(context.Background(), first, dbPath, os.Stderr); err != nil {
		t.Fatal(err)
	}

	second := writePoolCSV(t, []string{
		"AACCK,protC,3.0",
		"AACDK,protC,3.5",
	})
	if _, err := ImportCSV(context.Background(), second, dbPath, os.Stderr); err != nil {
		t.Fatal(err)
	}

	idx, err := Load(context.Background(), dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if idx.Len() != 2 {
		t.Fatalf("got %d candidates after re-import, want 2", idx.Len())
	}
	if got := idx.Accessions(); len(got) != 1 || got[0] != "protC" {
		t.Fatalf("accessions %v, want [protC]", got)
	}
}

func TestImportRejectsMalformedPool(t *testing.T) {
	csvPath := writePoolCSV(t, append(validRows(), "AAAXB,protA,2.0"))
	dbPath := filepath.Join(t.TempDir(), "pool.db")

	if _, err := ImportCSV(context.Background(), csvPath, dbPath, os.Stderr); err == nil {
		t.Error("expected import to fail on malformed row")
	}
}

func TestImportRejectsEmptyPool(t *testing.T) {
	csvPath := writePoolCSV(t, nil) // header only
	dbPath := filepath.Join(t.TempDir(), "pool.db")

	if _, err := ImportCSV(context.Background(), csvPath, dbPath, os.Stderr); err == nil {
		t.Error("expected import to fail on an empty candidate set")
	}
	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Error("empty import must not leave a pool database behind")
	}
}

func TestStats(t *testing.T) {
	idx, err := NewIndex([]types.PeptideCandidate{
		{Sequence: "AAAAK", Accession: "protA", RetentionTimeMin: 2.0},
		{Sequence: "AAACK", Accession: "protA", RetentionTimeMin: 2.1},
		{Sequence: "AAADK", Accession: "protB", RetentionTimeMin: 8.0},
	})
	if err != nil {
		t.Fatal(err)
	}

	stats := idx.Stats(2)
	if stats.Peptides != 3 || stats.Proteins != 2 {
		t.Fatalf("stats %+v, want 3 peptides / 2 proteins", stats)
	}
	if stats.BelowDepth != 1 {
		t.Fatalf("below-depth count %d, want 1 (protB)", stats.BelowDepth)
	}
}
