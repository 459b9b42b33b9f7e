package extractor

import (
	"reflect"
	"testing"
)

func TestMatchModule(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    string
		wantNil bool
	}{
		{name: "bare header", line: "module top(", want: "top"},
		{name: "indented with space", line: "  module alu (", want: "alu"},
		{name: "port list on same line", line: "module m(input a, output b);", want: "m"},
		{name: "no parenthesis", line: "module m;", wantNil: true},
		{name: "endmodule", line: "endmodule", wantNil: true},
		{name: "not a module", line: "wire w;", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchModule(tt.line)
			if tt.wantNil {
				if got != nil {
					t.Fatalf("expected nil, got %v", got)
				}
				return
			}
			if len(got) != 1 || got[0] != tt.want {
				t.Fatalf("matchModule(%q) = %v, want [%s]", tt.line, got, tt.want)
			}
		})
	}
}

func TestMatchDeclarationLastIdentifier(t *testing.T) {
	tests := []struct {
		name string
		kind declKind
		line string
		want []Declaration
	}{
		{name: "ranged input", kind: inputDecl, line: "input [7:0] a;", want: []Declaration{{"a", 8}}},
		{name: "scalar input", kind: inputDecl, line: "input b;", want: []Declaration{{"b", 1}}},
		{name: "indented input with comma", kind: inputDecl, line: "    input clk,", want: []Declaration{{"clk", 1}}},
		{name: "ranged output with comma", kind: outputDecl, line: "output [3:0] y,", want: []Declaration{{"y", 4}}},
		{name: "output reg", kind: outputDecl, line: "output reg [3:0] q", want: []Declaration{{"q", 4}}},
		{name: "input wire", kind: inputDecl, line: "input wire [7:0] data_in,", want: []Declaration{{"data_in", 8}}},
		{name: "input list keeps last", kind: inputDecl, line: "input a, b, c,", want: []Declaration{{"c", 1}}},
		{name: "scalar wire", kind: wireDecl, line: "wire w;", want: []Declaration{{"w", 1}}},
		{name: "ranged reg", kind: regDecl, line: "reg [1:0] r;", want: []Declaration{{"r", 2}}},
		{name: "wire list keeps last", kind: wireDecl, line: "wire x, y, z;", want: []Declaration{{"z", 1}}},
		{name: "indented reg", kind: regDecl, line: "  reg [3:0] count;", want: []Declaration{{"count", 4}}},
		{name: "uppercase identifier", kind: inputDecl, line: "input CLK,", want: nil},
		{name: "multi-digit range", kind: wireDecl, line: "wire [15:0] bus;", want: nil},
		{name: "wire without semicolon", kind: wireDecl, line: "wire w", want: nil},
		{name: "output is not input", kind: inputDecl, line: "output y,", want: nil},
		{name: "reg inside output is not a reg line", kind: regDecl, line: "output reg q;", want: nil},
		// comments are not stripped, so the last word of a comment is taken
		{name: "trailing comment", kind: inputDecl, line: "input a; // clock", want: []Declaration{{"clock", 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchDeclaration(tt.kind, tt.line, ListLast)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("matchDeclaration(%s, %q) = %+v, want %+v", tt.kind.name, tt.line, got, tt.want)
			}
		})
	}
}

func TestMatchDeclarationSplitList(t *testing.T) {
	tests := []struct {
		name string
		kind declKind
		line string
		want []Declaration
	}{
		{name: "input list", kind: inputDecl, line: "input [7:0] a, b,", want: []Declaration{{"a", 8}, {"b", 8}}},
		{name: "wire list", kind: wireDecl, line: "wire x, y, z;", want: []Declaration{{"x", 1}, {"y", 1}, {"z", 1}}},
		{name: "single reg", kind: regDecl, line: "reg [1:0] r;", want: []Declaration{{"r", 2}}},
		{name: "mixed case drops uppercase", kind: wireDecl, line: "wire a, B, c;", want: []Declaration{{"a", 1}, {"c", 1}}},
		{name: "no match", kind: wireDecl, line: "assign a = b & c;", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchDeclaration(tt.kind, tt.line, ListSplit)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("matchDeclaration(%s, %q) = %+v, want %+v", tt.kind.name, tt.line, got, tt.want)
			}
		})
	}
}

func TestMatchAssign(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    assignMatch
		matched bool
	}{
		{name: "and", line: "assign c = a & b;", want: assignMatch{Expr: "c = a & b", Op: OpAnd}, matched: true},
		{name: "or indented", line: "  assign c = a | b;", want: assignMatch{Expr: "c = a | b", Op: OpOr}, matched: true},
		{name: "add", line: "assign c = a + b;", want: assignMatch{Expr: "c = a + b", Op: OpAdd}, matched: true},
		{name: "sub", line: "assign c = a - b;", want: assignMatch{Expr: "c = a - b", Op: OpSub}, matched: true},
		{name: "logical and", line: "assign c = a && b;", want: assignMatch{Expr: "c = a && b", Op: OpLogicalAnd}, matched: true},
		{name: "logical or", line: "assign c = a || b;", want: assignMatch{Expr: "c = a || b", Op: OpLogicalOr}, matched: true},
		{name: "odd operator run", line: "assign c = a &| b;", want: assignMatch{Expr: "c = a &| b", Op: OpUnknown}, matched: true},
		{name: "compound", line: "assign c &= b;", want: assignMatch{Compound: true}, matched: true},
		{name: "plain copy", line: "assign c = a;", matched: false},
		{name: "not an assign", line: "wire c;", matched: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := matchAssign(tt.line)
			if ok != tt.matched {
				t.Fatalf("matchAssign(%q) matched = %v, want %v", tt.line, ok, tt.matched)
			}
			if got != tt.want {
				t.Fatalf("matchAssign(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestMatchSequentialStateMachine(t *testing.T) {
	var st seqState

	if _, ok := matchSequential(&st, "q <= a & b;"); ok {
		t.Fatalf("assignment outside a block must not be captured")
	}

	if _, ok := matchSequential(&st, "always @(posedge clk) begin"); ok {
		t.Fatalf("header line must not produce an assignment")
	}
	if !st.inside || st.edge != "pos clk" {
		t.Fatalf("expected inside with edge %q, got %+v", "pos clk", st)
	}

	got, ok := matchSequential(&st, "  q <= a & b;")
	if !ok || got.Expr != "q <= a & b" || got.Edge != "pos clk" {
		t.Fatalf("unexpected body match %+v (ok=%v)", got, ok)
	}

	got, ok = matchSequential(&st, "  q |= b")
	if !ok || !got.Compound || got.Expr != "" {
		t.Fatalf("expected compound detection, got %+v (ok=%v)", got, ok)
	}

	if _, ok := matchSequential(&st, "end"); ok {
		t.Fatalf("end must not produce an assignment")
	}
	if st.inside || st.edge != "" {
		t.Fatalf("expected outside after end, got %+v", st)
	}
}

func TestMatchSequentialHeaders(t *testing.T) {
	tests := []struct {
		line   string
		inside bool
		edge   string
	}{
		{"always @(posedge clk) begin", true, "pos clk"},
		{"  always_ff @(negedge rst_n) begin", true, "neg rst_n"},
		{"always @(posedge clk)", false, ""},
		{"always @(a or b) begin", false, ""},
	}

	for _, tt := range tests {
		var st seqState
		matchSequential(&st, tt.line)
		if st.inside != tt.inside || st.edge != tt.edge {
			t.Fatalf("header %q: got %+v, want inside=%v edge=%q", tt.line, st, tt.inside, tt.edge)
		}
	}
}

func TestParseOpCode(t *testing.T) {
	tests := map[string]OpCode{
		"&&": 6,
		"||": 5,
		"&":  4,
		"|":  3,
		"+":  2,
		"-":  1,
		"+-": 0,
		"":   0,
	}
	for op, want := range tests {
		if got := ParseOpCode(op); got != want {
			t.Fatalf("ParseOpCode(%q) = %d, want %d", op, got, want)
		}
	}
	if OpLogicalAnd.String() != "&&" || OpUnknown.String() != "?" {
		t.Fatalf("unexpected OpCode strings")
	}
}
