package rpc

import (
	"github.com/robert-at-pretension-io/verilog-scan/internal/facts"
	"github.com/robert-at-pretension-io/verilog-scan/internal/indexer"
)

// Method names
const (
	MethodAnalyze  = "verilog/analyze"
	MethodIndex    = "verilog/index"
	MethodShutdown = "shutdown"
	MethodExit     = "exit"
)

// AnalyzeParams asks for the summary of one file
type AnalyzeParams struct {
	Path string `json:"path"`

	// SplitLists overrides the configured declaration list mode
	SplitLists *bool `json:"splitLists,omitempty"`
}

// IndexParams asks for fact tables over a tree (or a single file)
type IndexParams struct {
	Root string `json:"root"`
}

// IndexResult is the reply to verilog/index
type IndexResult struct {
	RunID       string               `json:"run_id"`
	Tables      facts.Tables         `json:"tables"`
	Stats       indexer.Stats        `json:"stats"`
	ParseErrors []indexer.ParseError `json:"parse_errors,omitempty"`
}
