// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pool

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pdiddy/needler/pkg/types"
)

// poolColumns is the upstream contract for the candidate table.
var poolColumns = []string{"sequence", "protein_accession", "predicted_retention_time"}

// readCSV parses the candidate pool table. The header must match
// poolColumns exactly; extra columns from upstream stages are rejected
// rather than silently ignored.
func readCSV(path string) ([]types.PeptideCandidate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pool %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(poolColumns)

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading pool header: %w", err)
	}
	for i, col := range poolColumns {
		if header[i] != col {
			return nil, fmt.Errorf("pool %s: column %d is %q, want %q", path, i, header[i], col)
		}
	}

	var candidates []types.PeptideCandidate
	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading pool row: %w", err)
		}
		line++

		rt, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, fmt.Errorf("pool %s line %d: bad retention time %q", path, line, record[2])
		}
		candidates = append(candidates, types.PeptideCandidate{
			Sequence:         record[0],
			Accession:        record[1],
			RetentionTimeMin: rt,
		})
	}
	return candidates, nil
}
