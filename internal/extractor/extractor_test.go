package extractor

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const counterSource = `module counter(
    input clk,
    input rst,
    input [7:0] a,
    input [7:0] b,
    output [3:0] y,
    output reg [7:0] q
);
wire w;
reg [1:0] r;
wire [15:0] wide;
    assign y = a & b;
    assign s = a + b;
    assign d = a - b;
    assign e &= b;
always @(posedge clk) begin
    q <= a | b;
    r <= a + b;
end
always @(negedge rst) begin
    q <= a & b;
end
endmodule
`

func writeVerilog(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestExtractCounter(t *testing.T) {
	path := writeVerilog(t, t.TempDir(), "counter.v", counterSource)

	summary, err := New().Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if !reflect.DeepEqual(summary.ModuleNames, []string{"counter"}) {
		t.Fatalf("module names = %v", summary.ModuleNames)
	}

	wantInputs := map[string]int{"clk": 1, "rst": 1, "a": 8, "b": 8}
	if !reflect.DeepEqual(summary.Inputs, wantInputs) {
		t.Fatalf("inputs = %v, want %v", summary.Inputs, wantInputs)
	}
	wantOutputs := map[string]int{"y": 4, "q": 8}
	if !reflect.DeepEqual(summary.Outputs, wantOutputs) {
		t.Fatalf("outputs = %v, want %v", summary.Outputs, wantOutputs)
	}
	if !reflect.DeepEqual(summary.Wires, map[string]int{"w": 1}) {
		t.Fatalf("wires = %v", summary.Wires)
	}
	if !reflect.DeepEqual(summary.Regs, map[string]int{"r": 2}) {
		t.Fatalf("regs = %v", summary.Regs)
	}

	wantAssigns := map[string]OpCode{
		"y = a & b": OpAnd,
		"s = a + b": OpAdd,
		"d = a - b": OpSub,
	}
	if !reflect.DeepEqual(summary.ContinuousAssignments, wantAssigns) {
		t.Fatalf("continuous assignments = %v, want %v", summary.ContinuousAssignments, wantAssigns)
	}

	// the later body line under the same edge wins
	wantSeq := map[string]string{
		"pos clk": "r <= a + b",
		"neg rst": "q <= a & b",
	}
	if !reflect.DeepEqual(summary.SequentialAssignments, wantSeq) {
		t.Fatalf("sequential assignments = %v, want %v", summary.SequentialAssignments, wantSeq)
	}

	kinds := map[string]int{}
	for _, d := range summary.Diagnostics {
		kinds[d.Kind]++
	}
	if kinds[DiagCompoundAssign] != 1 || kinds[DiagUnmeasuredRange] != 1 {
		t.Fatalf("unexpected diagnostics: %+v", summary.Diagnostics)
	}
	for _, d := range summary.Diagnostics {
		if d.Kind == DiagCompoundAssign && d.Line != 15 {
			t.Fatalf("compound assign reported on line %d, want 15", d.Line)
		}
	}
}

func TestExtractCalibrationLines(t *testing.T) {
	tests := []struct {
		line  string
		check func(s Summary) bool
	}{
		{"module M(", func(s Summary) bool { return len(s.ModuleNames) == 1 && s.ModuleNames[0] == "M" }},
		{"input [7:0] a;", func(s Summary) bool { return s.Inputs["a"] == 8 }},
		{"input b;", func(s Summary) bool { return s.Inputs["b"] == 1 }},
		{"output [3:0] y,", func(s Summary) bool { return s.Outputs["y"] == 4 }},
		{"wire w;", func(s Summary) bool { return s.Wires["w"] == 1 }},
		{"reg [1:0] r;", func(s Summary) bool { return s.Regs["r"] == 2 }},
		{"assign c = a & b;", func(s Summary) bool { return s.ContinuousAssignments["c = a & b"] == 4 }},
		{"assign c = a + b;", func(s Summary) bool { return s.ContinuousAssignments["c = a + b"] == 2 }},
		{"assign c = a - b;", func(s Summary) bool { return s.ContinuousAssignments["c = a - b"] == 1 }},
	}

	ext := New()
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			s := ext.ExtractLines([]string{tt.line})
			if !tt.check(s) {
				t.Fatalf("unexpected summary for %q: %+v", tt.line, s)
			}
		})
	}
}

func TestRangedDeclarationDiagnostics(t *testing.T) {
	tests := []struct {
		line string
		kind string
	}{
		{"input [7:0] DATA;", DiagUnrecognizedIdentifier},
		{"wire [3:0] Bus_1;", DiagUnrecognizedIdentifier},
		{"wire [15:0] wide;", DiagUnmeasuredRange},
		{"output [WIDTH-1:0] y;", DiagUnmeasuredRange},
	}

	ext := New()
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			s := ext.ExtractLines([]string{tt.line})
			if len(s.Diagnostics) != 1 || s.Diagnostics[0].Kind != tt.kind || s.Diagnostics[0].Line != 1 {
				t.Fatalf("diagnostics = %+v, want one %s on line 1", s.Diagnostics, tt.kind)
			}
			if len(s.Inputs)+len(s.Outputs)+len(s.Wires)+len(s.Regs) != 0 {
				t.Fatalf("diagnosed line must not declare anything: %+v", s)
			}
		})
	}
}

func TestExtractNonMatchingLinesContributeNothing(t *testing.T) {
	ext := New()
	base := []string{"module top(", "input [7:0] a;", "assign c = a & b;"}
	noise := []string{
		"",
		"// just a comment",
		"`timescale 1ns/1ps",
		"initial begin",
		"parameter WIDTH = 8;",
		"assign c = a;",
	}

	want := ext.ExtractLines(base)
	for _, n := range noise {
		lines := append(append([]string{}, base...), n)
		got := ext.ExtractLines(lines)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("line %q changed the summary: %+v vs %+v", n, got, want)
		}
	}
}

func TestExtractRedeclarationOverwritesWidth(t *testing.T) {
	s := New().ExtractLines([]string{
		"input [7:0] a;",
		"input [3:0] a;",
		"wire [7:0] n;",
		"wire n;",
	})
	if s.Inputs["a"] != 4 {
		t.Fatalf("expected a to be redeclared with width 4, got %d", s.Inputs["a"])
	}
	if s.Wires["n"] != 1 {
		t.Fatalf("expected n to be redeclared with width 1, got %d", s.Wires["n"])
	}
	if len(s.Inputs) != 1 || len(s.Wires) != 1 {
		t.Fatalf("redeclaration must not add keys: %+v", s)
	}
}

func TestExtractModuleNamesKeepDuplicates(t *testing.T) {
	s := New().ExtractLines([]string{"module a(", "endmodule", "module b(", "endmodule", "module a("})
	if !reflect.DeepEqual(s.ModuleNames, []string{"a", "b", "a"}) {
		t.Fatalf("module names = %v", s.ModuleNames)
	}
}

func TestExtractEmptyFile(t *testing.T) {
	path := writeVerilog(t, t.TempDir(), "empty.v", "// nothing to see\n\n`define X 1\n")

	s, err := Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !s.Empty() {
		t.Fatalf("expected empty summary, got %+v", s)
	}
	if s.Inputs == nil || s.ContinuousAssignments == nil || s.SequentialAssignments == nil || s.ModuleNames == nil {
		t.Fatalf("empty summary must still carry empty collections: %+v", s)
	}
}

func TestExtractIsIdempotent(t *testing.T) {
	path := writeVerilog(t, t.TempDir(), "counter.v", counterSource)
	ext := New()

	first, err := ext.Extract(path)
	if err != nil {
		t.Fatalf("first Extract: %v", err)
	}
	second, err := ext.Extract(path)
	if err != nil {
		t.Fatalf("second Extract: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("scans differ:\n%+v\n%+v", first, second)
	}
}

func TestExtractMissingFileIsFatal(t *testing.T) {
	s, err := New().Extract(filepath.Join(t.TempDir(), "missing.v"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected ErrNotExist in chain, got %v", err)
	}
	if s.Inputs != nil || s.ModuleNames != nil {
		t.Fatalf("no partial summary expected, got %+v", s)
	}
}

func TestExtractSequentialStateSpansLines(t *testing.T) {
	s := New().ExtractLines([]string{
		"always @(posedge clk) begin",
		"    count <= count + one;",
		"end",
		"    stray <= a & b;",
	})
	if got := s.SequentialAssignments["pos clk"]; got != "count <= count + one" {
		t.Fatalf("expected body assignment captured, got %q", got)
	}
	if len(s.SequentialAssignments) != 1 {
		t.Fatalf("assignment after end must be ignored: %v", s.SequentialAssignments)
	}
}

func TestExtractHeaderOnlyBlockRecordsNothing(t *testing.T) {
	s := New().ExtractLines([]string{"always @(posedge clk) begin"})
	if len(s.SequentialAssignments) != 0 {
		t.Fatalf("header line alone must not produce an entry: %v", s.SequentialAssignments)
	}
	if _, ok := s.SequentialAssignments[""]; ok {
		t.Fatalf("empty key inserted")
	}
}

func TestExtractCompoundClockedAssignIsFlagged(t *testing.T) {
	s := New().ExtractLines([]string{
		"always_ff @(posedge clk) begin",
		"    acc += din",
		"end",
	})
	if len(s.SequentialAssignments) != 0 {
		t.Fatalf("compound form must not be recorded: %v", s.SequentialAssignments)
	}
	if len(s.Diagnostics) != 1 || s.Diagnostics[0].Kind != DiagCompoundClockedAssign || s.Diagnostics[0].Line != 2 {
		t.Fatalf("unexpected diagnostics: %+v", s.Diagnostics)
	}
}

func TestExtractSplitListMode(t *testing.T) {
	lines := []string{
		"input [7:0] a, b,",
		"wire x, y;",
	}

	last := New().ExtractLines(lines)
	if !reflect.DeepEqual(last.Inputs, map[string]int{"b": 8}) || !reflect.DeepEqual(last.Wires, map[string]int{"y": 1}) {
		t.Fatalf("last mode: %+v", last)
	}

	split := NewWithOptions(Options{ListMode: ListSplit}).ExtractLines(lines)
	if !reflect.DeepEqual(split.Inputs, map[string]int{"a": 8, "b": 8}) {
		t.Fatalf("split mode inputs: %v", split.Inputs)
	}
	if !reflect.DeepEqual(split.Wires, map[string]int{"x": 1, "y": 1}) {
		t.Fatalf("split mode wires: %v", split.Wires)
	}
}

func TestExtractReaderMatchesExtractLines(t *testing.T) {
	ext := New()
	fromReader, err := ext.ExtractReader(strings.NewReader(counterSource))
	if err != nil {
		t.Fatalf("ExtractReader: %v", err)
	}
	fromLines := ext.ExtractLines(SplitLines(counterSource))
	if !reflect.DeepEqual(fromReader, fromLines) {
		t.Fatalf("reader and line scans differ")
	}
}

func TestSummaryCloneIsDeep(t *testing.T) {
	s := New().ExtractLines([]string{"module m(", "input [7:0] a;", "assign c &= b;"})
	c := s.Clone()
	c.Inputs["a"] = 1
	c.ModuleNames[0] = "changed"
	c.Diagnostics[0].Kind = "changed"
	if s.Inputs["a"] != 8 || s.ModuleNames[0] != "m" || s.Diagnostics[0].Kind != DiagCompoundAssign {
		t.Fatalf("clone shares state with original")
	}
}

func TestTraceReportsHitsAndState(t *testing.T) {
	traces, summary := New().Trace([]string{
		"module m(",
		"always @(posedge clk) begin",
		"  q <= a & b;",
		"end",
	})
	if len(traces) != 4 {
		t.Fatalf("expected 4 traces, got %d", len(traces))
	}
	if !reflect.DeepEqual(traces[0].Hits, []string{"module"}) {
		t.Fatalf("line 1 hits = %v", traces[0].Hits)
	}
	if !traces[1].Inside || traces[1].Edge != "pos clk" || len(traces[1].Hits) != 0 {
		t.Fatalf("line 2 trace = %+v", traces[1])
	}
	if !reflect.DeepEqual(traces[2].Hits, []string{"always"}) {
		t.Fatalf("line 3 hits = %v", traces[2].Hits)
	}
	if traces[3].Inside {
		t.Fatalf("line 4 should leave the block")
	}
	if summary.SequentialAssignments["pos clk"] != "q <= a & b" {
		t.Fatalf("trace summary = %+v", summary)
	}
}
