package extractor

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Version identifies the extraction rules. Bump it whenever a pattern or a
// merge rule changes so cached summaries are discarded.
const Version = "4"

// ListMode selects how comma-separated declaration lists are handled.
type ListMode string

const (
	// ListLast records only the last identifier of a declaration list.
	ListLast ListMode = "last"
	// ListSplit records every identifier of a declaration list.
	ListSplit ListMode = "split"
)

// Options configures an Extractor.
type Options struct {
	ListMode ListMode
	Logger   *slog.Logger
}

// Extractor runs the line recognizers over Verilog source
type Extractor struct {
	mode   ListMode
	logger *slog.Logger
}

// New creates an Extractor with the default options
func New() *Extractor {
	return NewWithOptions(Options{})
}

// NewWithOptions creates an Extractor with the given options
func NewWithOptions(opts Options) *Extractor {
	mode := opts.ListMode
	if mode != ListSplit {
		mode = ListLast
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{mode: mode, logger: logger}
}

// Mode returns the declaration list mode in effect
func (e *Extractor) Mode() ListMode {
	return e.mode
}

// Extract reads a Verilog file and extracts its summary.
// Any failure to read the file aborts the scan; no partial summary is returned.
func (e *Extractor) Extract(filePath string) (Summary, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return Summary{}, fmt.Errorf("reading file: %w", err)
	}
	return e.ExtractLines(splitLines(string(content))), nil
}

// ExtractReader extracts a summary from r.
func (e *Extractor) ExtractReader(r io.Reader) (Summary, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return Summary{}, fmt.Errorf("reading source: %w", err)
	}
	return e.ExtractLines(splitLines(string(content))), nil
}

// ExtractLines classifies every line in order and returns the merged summary.
func (e *Extractor) ExtractLines(lines []string) Summary {
	summary := newSummary()
	var st seqState
	for i, line := range lines {
		e.classify(&st, i+1, line, &summary)
	}
	return summary
}

// classify runs every recognizer over one line, merges what they found into
// summary, and returns the names of the recognizers that contributed.
func (e *Extractor) classify(st *seqState, lineNum int, line string, summary *Summary) []string {
	var hits []string

	if m := matchModule(line); m != nil {
		summary.ModuleNames = append(summary.ModuleNames, m[0])
		hits = append(hits, "module")
	}

	declared := false
	for _, target := range []struct {
		kind   declKind
		widths map[string]int
	}{
		{inputDecl, summary.Inputs},
		{outputDecl, summary.Outputs},
		{wireDecl, summary.Wires},
		{regDecl, summary.Regs},
	} {
		decls := matchDeclaration(target.kind, line, e.mode)
		for _, d := range decls {
			target.widths[d.Name] = d.Width
		}
		if len(decls) > 0 {
			declared = true
			hits = append(hits, target.kind.name)
		}
	}
	if !declared && rangedDeclPattern.MatchString(line) {
		if rangePattern.MatchString(line) {
			e.diagnose(summary, lineNum, DiagUnrecognizedIdentifier, line)
		} else {
			e.diagnose(summary, lineNum, DiagUnmeasuredRange, line)
		}
	}

	if m, ok := matchAssign(line); ok {
		if m.Compound {
			e.diagnose(summary, lineNum, DiagCompoundAssign, line)
		} else {
			summary.ContinuousAssignments[m.Expr] = m.Op
			hits = append(hits, "assign")
		}
	}

	if m, ok := matchSequential(st, line); ok {
		if m.Compound {
			e.diagnose(summary, lineNum, DiagCompoundClockedAssign, line)
		} else {
			summary.SequentialAssignments[m.Edge] = m.Expr
			hits = append(hits, "always")
		}
	}

	return hits
}

func (e *Extractor) diagnose(summary *Summary, lineNum int, kind, line string) {
	summary.Diagnostics = append(summary.Diagnostics, Diagnostic{
		Line: lineNum,
		Kind: kind,
		Text: line,
	})
	e.logger.Debug("line detected but not extracted", "line", lineNum, "kind", kind)
}

// Extract reads filePath with a default Extractor.
func Extract(filePath string) (Summary, error) {
	return New().Extract(filePath)
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
