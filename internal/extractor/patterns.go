package extractor

import (
	"regexp"
)

// All patterns are compiled once at package init and never mutated.

var (
	// Pattern: module <name>(
	modulePattern = regexp.MustCompile(`^\s*module\s+(\w+)\s*\(`)

	// Pattern: input|output [reg|wire] [h:l] <name>[,]
	inputPattern  = portPattern("input")
	outputPattern = portPattern("output")

	// Pattern: wire|reg [h:l] <name>[, <name>...];
	wirePattern = netPattern("wire")
	regPattern  = netPattern("reg")

	// Same prefixes as above, capturing everything after the range annotation.
	inputListPattern  = portListPattern("input")
	outputListPattern = portListPattern("output")
	wireListPattern   = netListPattern("wire")
	regListPattern    = netListPattern("reg")

	// Single-digit bit range, e.g. [7:0]. Its presence switches on width measurement.
	rangePattern = regexp.MustCompile(`\[[0-9]:[0-9]?\]`)

	// The first decimal digit anywhere in the line.
	digitPattern = regexp.MustCompile(`\d`)

	// The trailing lowercase identifier, optionally followed by "," or ";".
	trailingIdentPattern = regexp.MustCompile(`\b([a-z_][a-z0-9_]*)\s*[,;]?\s*$`)

	// A whole token that is a lowercase identifier.
	identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

	// A declaration keyword followed somewhere by an opening bracket.
	rangedDeclPattern = regexp.MustCompile(`^\s*(?:input|output|wire|reg)\b[^\[]*\[`)

	// Pattern: assign lhs = rhs1 OP rhs2;  or  assign lhs OP= rhs;
	assignPattern = regexp.MustCompile(`^\s*assign\s+(?:(?:\w+ = \w+\s+[&|+-]+\s+\w+)|(?:\w+ [&|+-]+= \w+));\s?`)

	// Expression text of the binary form only.
	assignExprPattern = regexp.MustCompile(`\w+ = \w+\s+[&|+-]+\s+\w+`)

	// The first operator run on the line.
	operatorPattern = regexp.MustCompile(`[&|+-]+`)

	// Pattern: always[_ff] @(posedge|negedge <clk>) begin
	alwaysPattern = regexp.MustCompile(`^\s*always(?:_ff)? @\((pos|neg)edge (\w+)\) begin\s*`)

	// Any line starting with "end" closes the block, including endmodule/endcase.
	endPattern = regexp.MustCompile(`^\s*end`)

	// Pattern: lhs <= rhs1 OP rhs2;  or  lhs OP= rhs
	clockedPattern = regexp.MustCompile(`^\s*(?:(?:\w+ <?= \w+\s+[&|+-]+\s+\w+;\s?)|(?:\w+ [&|+-]+= \w+))`)

	// Expression text of the binary clocked form only.
	clockedExprPattern = regexp.MustCompile(`\w+ <?= \w+\s+[&|+-]+\s+\w+`)
)

func portPattern(keyword string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + keyword + `(?:\s+(?:reg|wire))?\s+(?:\[[0-9]:[0-9]?\]\s*)?\w+`)
}

func netPattern(keyword string) *regexp.Regexp {
	return regexp.MustCompile(`^\s*` + keyword + `\s+(?:\[[0-9]:[0-9]?\]\s*)?\w+(?:\s*,\s*\w+)*\s*;`)
}

func portListPattern(keyword string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + keyword + `(?:\s+(?:reg|wire))?\s+(?:\[[0-9]:[0-9]?\]\s*)?(.*)$`)
}

func netListPattern(keyword string) *regexp.Regexp {
	return regexp.MustCompile(`^\s*` + keyword + `\s+(?:\[[0-9]:[0-9]?\]\s*)?(.*)$`)
}
