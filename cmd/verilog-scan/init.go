package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/robert-at-pretension-io/verilog-scan/internal/config"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a verilog_scan.json configuration file",
		Long: `Write the default configuration to verilog_scan.json in the current
directory (or [dir]). Use --toml to write verilog_scan.toml instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInit,
	}
	cmd.Flags().Bool("toml", false, "write verilog_scan.toml")
	cmd.Flags().Bool("force", false, "overwrite an existing config file")
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	name := "verilog_scan.json"
	if useTOML, _ := cmd.Flags().GetBool("toml"); useTOML {
		name = "verilog_scan.toml"
	}
	configPath := filepath.Join(dir, name)

	if force, _ := cmd.Flags().GetBool("force"); !force {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", configPath)
		}
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("creating config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s\n", configPath)
	fmt.Fprintln(out, "\nEdit this file to configure:")
	fmt.Fprintln(out, "  - Source include/exclude globs")
	fmt.Fprintln(out, "  - Declaration list handling (last|split)")
	fmt.Fprintln(out, "  - Cache and parallelism")
	return nil
}
