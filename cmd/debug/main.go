package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/robert-at-pretension-io/verilog-scan/internal/extractor"
)

func main() {
	split := flag.Bool("split-lists", false, "record every identifier of a declaration list")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: debug [--split-lists] <file.v>")
		os.Exit(1)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	mode := extractor.ListLast
	if *split {
		mode = extractor.ListSplit
	}
	ext := extractor.NewWithOptions(extractor.Options{ListMode: mode})
	traces, summary := ext.Trace(extractor.SplitLines(string(data)))

	fmt.Printf("%s (lists: %s)\n", flag.Arg(0), ext.Mode())

	for _, tr := range traces {
		state := "    "
		if tr.Inside {
			state = "blk "
		}
		hits := "-"
		if len(tr.Hits) > 0 {
			hits = strings.Join(tr.Hits, ",")
		}
		fmt.Printf("%4d %s%-24s %-16s %q\n", tr.Line, state, hits, tr.Edge, tr.Text)
	}

	fmt.Printf("\n%d modules, %d inputs, %d outputs, %d wires, %d regs, %d assigns, %d clocked, %d diagnostics\n",
		len(summary.ModuleNames), len(summary.Inputs), len(summary.Outputs), len(summary.Wires), len(summary.Regs),
		len(summary.ContinuousAssignments), len(summary.SequentialAssignments), len(summary.Diagnostics))
}
