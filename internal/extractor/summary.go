package extractor

// Summary is everything extracted from a single Verilog source file.
// It is the hand-off format consumed by the synthesis stage.
type Summary struct {
	// Module names in order of appearance. Duplicates are kept.
	ModuleNames []string `json:"module_names"`

	// Identifier -> bit width. A later declaration of the same name wins.
	Inputs  map[string]int `json:"inputs"`
	Outputs map[string]int `json:"outputs"`
	Wires   map[string]int `json:"wires"`
	Regs    map[string]int `json:"regs"`

	// Assignment expression -> operator code
	ContinuousAssignments map[string]OpCode `json:"continuous_assignments"`

	// Edge key ("pos clk", "neg rst") -> last clocked assignment seen under it
	SequentialAssignments map[string]string `json:"sequential_assignments"`

	// Lines that were recognized but could not be extracted
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// Diagnostic kinds
const (
	DiagCompoundAssign         = "compound-assign"
	DiagCompoundClockedAssign  = "compound-clocked-assign"
	DiagUnmeasuredRange        = "unmeasured-range"
	DiagUnrecognizedIdentifier = "unrecognized-identifier" // measurable range, name not lowercase
)

// Diagnostic records a line whose shape was detected but which contributed
// nothing to the summary.
type Diagnostic struct {
	Line int    `json:"line"`
	Kind string `json:"kind"`
	Text string `json:"text"`
}

func newSummary() Summary {
	return Summary{
		ModuleNames:           []string{},
		Inputs:                make(map[string]int),
		Outputs:               make(map[string]int),
		Wires:                 make(map[string]int),
		Regs:                  make(map[string]int),
		ContinuousAssignments: make(map[string]OpCode),
		SequentialAssignments: make(map[string]string),
	}
}

// Empty reports whether nothing at all was extracted.
func (s Summary) Empty() bool {
	return len(s.ModuleNames) == 0 &&
		len(s.Inputs) == 0 &&
		len(s.Outputs) == 0 &&
		len(s.Wires) == 0 &&
		len(s.Regs) == 0 &&
		len(s.ContinuousAssignments) == 0 &&
		len(s.SequentialAssignments) == 0
}

// Clone returns a deep copy.
func (s Summary) Clone() Summary {
	out := newSummary()
	out.ModuleNames = append(out.ModuleNames, s.ModuleNames...)
	copyWidths(out.Inputs, s.Inputs)
	copyWidths(out.Outputs, s.Outputs)
	copyWidths(out.Wires, s.Wires)
	copyWidths(out.Regs, s.Regs)
	for k, v := range s.ContinuousAssignments {
		out.ContinuousAssignments[k] = v
	}
	for k, v := range s.SequentialAssignments {
		out.SequentialAssignments[k] = v
	}
	if len(s.Diagnostics) > 0 {
		out.Diagnostics = append([]Diagnostic(nil), s.Diagnostics...)
	}
	return out
}

// normalize replaces nil collections left by a decoder with empty ones.
func (s *Summary) normalize() {
	if s.ModuleNames == nil {
		s.ModuleNames = []string{}
	}
	if s.Inputs == nil {
		s.Inputs = make(map[string]int)
	}
	if s.Outputs == nil {
		s.Outputs = make(map[string]int)
	}
	if s.Wires == nil {
		s.Wires = make(map[string]int)
	}
	if s.Regs == nil {
		s.Regs = make(map[string]int)
	}
	if s.ContinuousAssignments == nil {
		s.ContinuousAssignments = make(map[string]OpCode)
	}
	if s.SequentialAssignments == nil {
		s.SequentialAssignments = make(map[string]string)
	}
}

// Normalize is normalize for callers outside the package that decode summaries.
func Normalize(s Summary) Summary {
	s.normalize()
	return s
}

func copyWidths(dst, src map[string]int) {
	for k, v := range src {
		dst[k] = v
	}
}
