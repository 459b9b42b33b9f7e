package facts

import (
	"sort"

	"github.com/robert-at-pretension-io/verilog-scan/internal/extractor"
)

// Tables is the relational fact model handed to downstream tooling.
// Each slice is a relation (table) with flat rows.
type Tables struct {
	Files             []FileRow             `json:"files"`
	Modules           []ModuleRow           `json:"modules"`
	Ports             []PortRow             `json:"ports"`
	Nets              []NetRow              `json:"nets"`
	ContinuousAssigns []ContinuousAssignRow `json:"continuous_assigns"`
	SequentialAssigns []SequentialAssignRow `json:"sequential_assigns"`
	Diagnostics       []DiagnosticRow       `json:"diagnostics"`
}

type FileRow struct {
	Path    string `json:"path"`
	IsEmpty bool   `json:"is_empty"`
}

// ModuleRow is one module header. Position is the 1-based order of the
// header within its file; duplicate names get distinct positions.
type ModuleRow struct {
	Name     string `json:"name"`
	File     string `json:"file"`
	Position int    `json:"position"`
}

type PortRow struct {
	Name      string `json:"name"`
	Direction string `json:"direction"`
	Width     int    `json:"width"`
	File      string `json:"file"`
}

type NetRow struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Width int    `json:"width"`
	File  string `json:"file"`
}

type ContinuousAssignRow struct {
	Expr   string `json:"expr"`
	Op     int    `json:"op"`
	OpName string `json:"op_name"`
	File   string `json:"file"`
}

type SequentialAssignRow struct {
	Edge string `json:"edge"`
	Expr string `json:"expr"`
	File string `json:"file"`
}

type DiagnosticRow struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// Port directions and net kinds as they appear in the tables
const (
	DirectionInput  = "input"
	DirectionOutput = "output"
	KindWire        = "wire"
	KindReg         = "reg"
)

// BuildTables flattens per-file summaries into relations. Rows are sorted by
// file and then by name so two builds over the same summaries are identical.
func BuildTables(summaries map[string]extractor.Summary) Tables {
	tables := emptyTables()

	paths := make([]string, 0, len(summaries))
	for path := range summaries {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		s := summaries[path]

		tables.Files = append(tables.Files, FileRow{
			Path:    path,
			IsEmpty: s.Empty(),
		})

		for i, name := range s.ModuleNames {
			tables.Modules = append(tables.Modules, ModuleRow{
				Name:     name,
				File:     path,
				Position: i + 1,
			})
		}

		for _, name := range sortedKeys(s.Inputs) {
			tables.Ports = append(tables.Ports, PortRow{Name: name, Direction: DirectionInput, Width: s.Inputs[name], File: path})
		}
		for _, name := range sortedKeys(s.Outputs) {
			tables.Ports = append(tables.Ports, PortRow{Name: name, Direction: DirectionOutput, Width: s.Outputs[name], File: path})
		}

		for _, name := range sortedKeys(s.Wires) {
			tables.Nets = append(tables.Nets, NetRow{Name: name, Kind: KindWire, Width: s.Wires[name], File: path})
		}
		for _, name := range sortedKeys(s.Regs) {
			tables.Nets = append(tables.Nets, NetRow{Name: name, Kind: KindReg, Width: s.Regs[name], File: path})
		}

		for _, expr := range sortedKeys(s.ContinuousAssignments) {
			op := s.ContinuousAssignments[expr]
			tables.ContinuousAssigns = append(tables.ContinuousAssigns, ContinuousAssignRow{
				Expr:   expr,
				Op:     int(op),
				OpName: op.String(),
				File:   path,
			})
		}

		for _, edge := range sortedKeys(s.SequentialAssignments) {
			tables.SequentialAssigns = append(tables.SequentialAssigns, SequentialAssignRow{
				Edge: edge,
				Expr: s.SequentialAssignments[edge],
				File: path,
			})
		}

		for _, d := range s.Diagnostics {
			tables.Diagnostics = append(tables.Diagnostics, DiagnosticRow{
				File: path,
				Line: d.Line,
				Kind: d.Kind,
				Text: d.Text,
			})
		}
	}

	return tables
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func emptyTables() Tables {
	return Tables{
		Files:             []FileRow{},
		Modules:           []ModuleRow{},
		Ports:             []PortRow{},
		Nets:              []NetRow{},
		ContinuousAssigns: []ContinuousAssignRow{},
		SequentialAssigns: []SequentialAssignRow{},
		Diagnostics:       []DiagnosticRow{},
	}
}

// RowCount returns the total number of rows across every relation.
func (t Tables) RowCount() int {
	return len(t.Files) + len(t.Modules) + len(t.Ports) + len(t.Nets) +
		len(t.ContinuousAssigns) + len(t.SequentialAssigns) + len(t.Diagnostics)
}
