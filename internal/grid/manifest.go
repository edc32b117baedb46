// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package grid

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/needler/pkg/types"
)

// Manifest is the serialized job grid: the pure enumeration output plus
// the configuration that produced it, with no hidden state.
type Manifest struct {
	Pool   types.PoolConfig   `yaml:"pool"`
	Window types.WindowConfig `yaml:"window"`
	Grid   types.GridConfig   `yaml:"grid"`
	Jobs   []types.JobConfig  `yaml:"jobs"`
}

// WriteManifest serializes the grid to a YAML file.
func WriteManifest(m Manifest, dst string) error {
	if len(m.Jobs) == 0 {
		return fmt.Errorf("no jobs to write")
	}
	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if dir := filepath.Dir(dst); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}
