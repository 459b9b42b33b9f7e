// =============================================================================
// verilog-scan - Main Entry Point
// =============================================================================
//
// Turns Verilog sources into per-file declaration summaries and flat fact
// tables that downstream tools can query without a Verilog parser.
//
// THE PIPELINE:
//   1. Extractor classifies every line with the regex recognizers
//   2. CUE Validator enforces the summary contract (crash on mismatch)
//   3. Indexer scans many files in parallel, caches summaries, and builds
//      the fact tables
//   4. Facts are validated again, diffed against the previous run, and
//      reported as text or JSON
//
// WHEN A DECLARATION IS MISSING:
//   Run cmd/debug on the file first. It prints which recognizers fired on
//   each line and the clocked-block state.
// =============================================================================

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/robert-at-pretension-io/verilog-scan/internal/config"
	"github.com/robert-at-pretension-io/verilog-scan/internal/report"
)

const version = "0.3.0"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "verilog-scan",
		Short:         "Line-oriented Verilog declaration scanner",
		Long:          `verilog-scan extracts modules, ports, nets and assignments from Verilog sources and emits per-file summaries or relational fact tables.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			setupLogging(verbose)
		},
	}

	root.PersistentFlags().String("config", "", "path to a verilog_scan.json or .toml file")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	root.PersistentFlags().String("color", "", "colorize output (auto|on|off, default from config)")

	root.AddCommand(newScanCmd())
	root.AddCommand(newFactsCmd())
	root.AddCommand(newWatchCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newInitCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging installs a text handler on stderr so stdout stays clean for
// reports and JSON.
func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadConfig honors --config, otherwise searches the default locations
// relative to rootPath.
func loadConfig(cmd *cobra.Command, rootPath string) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
		return cfg, nil
	}
	cfg, err := config.Load(rootPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// reportOptions resolves the color mode: the flag wins over the config file.
func reportOptions(cmd *cobra.Command, cfg *config.Config) report.Options {
	mode, _ := cmd.Flags().GetString("color")
	if mode == "" {
		mode = cfg.Output.Color
	}
	return report.Options{Color: report.ResolveColor(mode, os.Stdout)}
}
