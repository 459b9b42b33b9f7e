package indexer

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/robert-at-pretension-io/verilog-scan/internal/facts"
)

func TestFactTablesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap", "facts.json")

	if _, ok, err := LoadFactTables(path); err != nil || ok {
		t.Fatalf("missing snapshot: ok=%v err=%v", ok, err)
	}

	tables := facts.Tables{
		Files:             []facts.FileRow{{Path: "a.v"}},
		Modules:           []facts.ModuleRow{{Name: "a", File: "a.v", Position: 1}},
		Ports:             []facts.PortRow{},
		Nets:              []facts.NetRow{{Name: "w", Kind: facts.KindWire, Width: 1, File: "a.v"}},
		ContinuousAssigns: []facts.ContinuousAssignRow{},
		SequentialAssigns: []facts.SequentialAssignRow{},
		Diagnostics:       []facts.DiagnosticRow{},
	}
	if err := SaveFactTables(path, tables); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := LoadFactTables(path)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(got, tables) {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}
