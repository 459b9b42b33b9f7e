package extractor

import (
	"regexp"
	"strconv"
	"strings"
)

// Declaration is one identifier/width pair produced by a port, wire or reg line.
type Declaration struct {
	Name  string
	Width int
}

// declKind pairs a detection pattern with its list-capturing counterpart.
type declKind struct {
	name   string
	detect *regexp.Regexp
	list   *regexp.Regexp
}

var (
	inputDecl  = declKind{name: "input", detect: inputPattern, list: inputListPattern}
	outputDecl = declKind{name: "output", detect: outputPattern, list: outputListPattern}
	wireDecl   = declKind{name: "wire", detect: wirePattern, list: wireListPattern}
	regDecl    = declKind{name: "reg", detect: regPattern, list: regListPattern}
)

// matchModule returns [name] if line opens a module header
func matchModule(line string) []string {
	if m := modulePattern.FindStringSubmatch(line); m != nil {
		return []string{m[1]}
	}
	return nil
}

// matchDeclaration returns the declarations on line for the given keyword.
// In ListLast mode only the trailing identifier is returned.
func matchDeclaration(kind declKind, line string, mode ListMode) []Declaration {
	if !kind.detect.MatchString(line) {
		return nil
	}
	width := CalculateWidth(line)

	if mode == ListSplit {
		if names := splitIdentifiers(kind, line); len(names) > 0 {
			decls := make([]Declaration, 0, len(names))
			for _, name := range names {
				decls = append(decls, Declaration{Name: name, Width: width})
			}
			return decls
		}
		return nil
	}

	m := trailingIdentPattern.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	return []Declaration{{Name: m[1], Width: width}}
}

// splitIdentifiers returns every identifier of a comma-separated declaration list
func splitIdentifiers(kind declKind, line string) []string {
	m := kind.list.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	var names []string
	for _, part := range strings.Split(m[1], ",") {
		name := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(part), ";"))
		if identPattern.MatchString(name) {
			names = append(names, name)
		}
	}
	return names
}

// CalculateWidth returns the bit width implied by line.
//
// When a single-digit range such as [7:0] appears anywhere in the line, the
// width is the first decimal digit found in the whole line plus one, so that a
// digit occurring before the range is what gets measured. Otherwise it is 1.
func CalculateWidth(line string) int {
	if !rangePattern.MatchString(line) {
		return 1
	}
	d := digitPattern.FindString(line)
	n, err := strconv.Atoi(d)
	if err != nil {
		return 1
	}
	return n + 1
}

type assignMatch struct {
	Expr     string
	Op       OpCode
	Compound bool
}

// matchAssign detects a continuous assignment. A compound "lhs OP= rhs" line
// is detected but carries no expression.
func matchAssign(line string) (assignMatch, bool) {
	if !assignPattern.MatchString(line) {
		return assignMatch{}, false
	}
	expr := assignExprPattern.FindString(line)
	if expr == "" {
		return assignMatch{Compound: true}, true
	}
	return assignMatch{
		Expr: expr,
		Op:   ParseOpCode(operatorPattern.FindString(line)),
	}, true
}

// seqState is the sequential-block state machine. It is owned by the scan,
// not by a single line.
type seqState struct {
	inside bool
	edge   string
}

type clockedMatch struct {
	Edge     string
	Expr     string
	Compound bool
}

// matchSequential advances st over line and reports a clocked assignment if
// one was found inside a block.
func matchSequential(st *seqState, line string) (clockedMatch, bool) {
	if !st.inside {
		if m := alwaysPattern.FindStringSubmatch(line); m != nil {
			st.inside = true
			st.edge = m[1] + " " + m[2]
		}
		return clockedMatch{}, false
	}

	if endPattern.MatchString(line) {
		st.inside = false
		st.edge = ""
		return clockedMatch{}, false
	}

	if !clockedPattern.MatchString(line) {
		return clockedMatch{}, false
	}
	expr := clockedExprPattern.FindString(line)
	if expr == "" {
		return clockedMatch{Edge: st.edge, Compound: true}, true
	}
	return clockedMatch{Edge: st.edge, Expr: expr}, true
}
