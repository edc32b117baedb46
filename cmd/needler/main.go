// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the needler CLI.
// See docs/ARCHITECTURE § Pipeline Interface.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	_ "go.uber.org/automaxprocs"

	"github.com/pdiddy/needler/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the needler CLI.
var rootCmd = &cobra.Command{
	Use:   "needler",
	Short: "Design targeted MS monitoring methods from a peptide pool",
	Long: `needler selects a bounded set of candidate peptides and schedules each
into a retention-time window of an LC gradient, maximizing distinct
source-protein coverage under per-window monitoring capacity.

Each stage is a subcommand: pool manages the candidate library, windows
previews the duty-cycle window model, solve runs one optimization job,
and grid enumerates and runs the (gradient, budget, replicate) cross
product with idempotent, independently re-runnable jobs.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./needler.yaml or ~/.config/needler/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("needler")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "needler"))
		}
	}

	viper.SetEnvPrefix("NEEDLER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// windowConfig resolves window-model settings: flag if set, else config
// file / env, else default.
func windowConfig(cmd *cobra.Command) types.WindowConfig {
	cfg := types.WindowConfig{
		WidthMinutes:     floatSetting(cmd, "width", "window.width_minutes", 1.0),
		TargetsPerMinute: floatSetting(cmd, "rate", "window.targets_per_minute", 10.0),
		ToleranceMinutes: floatSetting(cmd, "tolerance", "window.tolerance_minutes", 0.5),
	}
	return cfg
}

// poolPath resolves the candidate pool location.
func poolPath(cmd *cobra.Command) string {
	return stringSetting(cmd, "pool", "pool.path", "build/pool.db")
}

func floatSetting(cmd *cobra.Command, flag, key string, def float64) float64 {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetFloat64(flag)
		return v
	}
	if viper.IsSet(key) {
		return viper.GetFloat64(key)
	}
	return def
}

func intSetting(cmd *cobra.Command, flag, key string, def int) int {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetInt(flag)
		return v
	}
	if viper.IsSet(key) {
		return viper.GetInt(key)
	}
	return def
}

func stringSetting(cmd *cobra.Command, flag, key, def string) string {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetString(flag)
		return v
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return def
}

// parseIntList parses a comma-separated integer list flag value.
func parseIntList(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("bad list element %q: %w", part, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
