package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/robert-at-pretension-io/verilog-scan/internal/extractor"
	"github.com/robert-at-pretension-io/verilog-scan/internal/report"
	"github.com/robert-at-pretension-io/verilog-scan/internal/validator"
)

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <file>",
		Short: "Extract the declaration summary of one Verilog file",
		Args:  cobra.ExactArgs(1),
		RunE:  runScan,
	}
	cmd.Flags().String("format", "", "output format (text|json, default from config)")
	cmd.Flags().Bool("split-lists", false, "record every identifier of a comma-separated declaration list")
	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	path := args[0]
	cfg, err := loadConfig(cmd, path)
	if err != nil {
		return err
	}

	mode := extractor.ListLast
	if cfg.SplitDeclarationLists() {
		mode = extractor.ListSplit
	}
	if split, _ := cmd.Flags().GetBool("split-lists"); split {
		mode = extractor.ListSplit
	}

	ext := extractor.NewWithOptions(extractor.Options{ListMode: mode, Logger: slog.Default()})
	slog.Debug("scanning", "file", path, "lists", ext.Mode())
	summary, err := ext.Extract(path)
	if err != nil {
		return err
	}

	check, err := validator.New()
	if err != nil {
		return fmt.Errorf("load summary contract: %w", err)
	}
	if err := check.Validate(summary); err != nil {
		for _, msg := range check.ValidationErrors(summary) {
			slog.Error("summary contract violated", "file", path, "error", msg)
		}
		return fmt.Errorf("%s: %w", path, err)
	}

	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		format = cfg.Output.Format
	}
	out := cmd.OutOrStdout()
	switch format {
	case "json":
		return report.WriteJSON(out, summary)
	case "text", "":
		return report.WriteText(out, path, summary, reportOptions(cmd, cfg))
	default:
		return fmt.Errorf("unknown format %q (want text or json)", format)
	}
}
