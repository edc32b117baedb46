// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/needler/internal/window"
)

var windowsCmd = &cobra.Command{
	Use:   "windows",
	Short: "Preview the retention-window model for a gradient length",
	Long: `Windows derives the retention-time window sequence and per-window
peptide capacity for a gradient length under the configured duty-cycle
model, without running any optimization.`,
	RunE: runWindows,
}

func runWindows(cmd *cobra.Command, args []string) error {
	gradient, _ := cmd.Flags().GetInt("gradient")
	cfg := windowConfig(cmd)

	windows, err := window.BuildWindows(gradient, window.DutyCycle{
		WidthMinutes:     cfg.WidthMinutes,
		TargetsPerMinute: cfg.TargetsPerMinute,
	})
	if err != nil {
		return err
	}

	totalCapacity := 0
	fmt.Printf("%-6s  %-10s  %-10s  %s\n", "Index", "Start", "End", "Capacity")
	for _, w := range windows {
		fmt.Printf("%-6d  %-10.2f  %-10.2f  %d\n", w.Index, w.StartMin, w.EndMin, w.Capacity)
		totalCapacity += w.Capacity
	}
	fmt.Printf("\n%d windows, total capacity %d targets over %d minutes\n",
		len(windows), totalCapacity, gradient)
	return nil
}

func init() {
	windowsCmd.Flags().Int("gradient", 60, "gradient length in minutes")
	windowsCmd.Flags().Float64("width", 1.0, "window width in minutes")
	windowsCmd.Flags().Float64("rate", 10.0, "duty-cycle rate in targets per minute")
	windowsCmd.Flags().Float64("tolerance", 0.5, "eligibility tolerance in minutes")

	rootCmd.AddCommand(windowsCmd)
}
