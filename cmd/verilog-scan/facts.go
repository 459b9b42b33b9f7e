package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/robert-at-pretension-io/verilog-scan/internal/facts"
	"github.com/robert-at-pretension-io/verilog-scan/internal/indexer"
	"github.com/robert-at-pretension-io/verilog-scan/internal/report"
)

func newFactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "facts <path>",
		Short: "Scan a file or directory and emit relational fact tables",
		Long: `Scan every Verilog source under <path> and write the fact tables as JSON.
With --delta-from and --delta-out the row-level difference against a previous
facts file is written as well.`,
		Args: cobra.ExactArgs(1),
		RunE: runFacts,
	}
	cmd.Flags().StringP("output", "o", "", "write facts JSON to file (default: stdout)")
	cmd.Flags().String("delta-from", "", "previous facts JSON to compute delta from")
	cmd.Flags().String("delta-out", "", "write delta JSON to file (requires --delta-from)")
	return cmd
}

func runFacts(cmd *cobra.Command, args []string) error {
	path := args[0]
	output, _ := cmd.Flags().GetString("output")
	deltaFrom, _ := cmd.Flags().GetString("delta-from")
	deltaOut, _ := cmd.Flags().GetString("delta-out")
	if (deltaFrom == "") != (deltaOut == "") {
		return fmt.Errorf("--delta-from and --delta-out must be used together")
	}

	cfg, err := loadConfig(cmd, path)
	if err != nil {
		return err
	}

	idx := indexer.New(cfg)
	idx.Logger = slog.Default()
	res, err := idx.Run(cmd.Context(), path)
	if err != nil {
		return err
	}
	for _, pe := range res.ParseErrors {
		slog.Warn("file skipped", "file", pe.File, "error", pe.Message)
	}
	for _, w := range res.Warnings {
		slog.Warn(w)
	}

	if output != "" {
		if err := writeJSONFile(output, res.Tables); err != nil {
			return fmt.Errorf("writing facts: %w", err)
		}
	} else if err := report.WriteJSON(cmd.OutOrStdout(), res.Tables); err != nil {
		return fmt.Errorf("encoding facts: %w", err)
	}

	if deltaFrom != "" {
		prev, err := readTables(deltaFrom)
		if err != nil {
			return fmt.Errorf("reading delta-from: %w", err)
		}
		delta := facts.ComputeDelta(prev, res.Tables)
		if err := writeJSONFile(deltaOut, delta); err != nil {
			return fmt.Errorf("writing delta: %w", err)
		}
	}

	if len(res.ParseErrors) > 0 {
		return fmt.Errorf("%d file(s) could not be scanned", len(res.ParseErrors))
	}
	return nil
}

func readTables(path string) (facts.Tables, error) {
	f, err := os.Open(path)
	if err != nil {
		return facts.Tables{}, err
	}
	defer func() { _ = f.Close() }()

	var tables facts.Tables
	if err := json.NewDecoder(f).Decode(&tables); err != nil {
		return facts.Tables{}, err
	}
	return tables, nil
}

func writeJSONFile(path string, data interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
