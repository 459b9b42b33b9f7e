package indexer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/robert-at-pretension-io/verilog-scan/internal/extractor"
	"github.com/robert-at-pretension-io/verilog-scan/internal/observability"
)

// traceEvent is one line of the per-run JSONL trace.
type traceEvent struct {
	RunID        string  `json:"run_id"`
	Stage        string  `json:"stage"`
	File         string  `json:"file,omitempty"`
	Status       string  `json:"status,omitempty"`
	AtMS         float64 `json:"at_ms"`
	TookMS       float64 `json:"took_ms"`
	Declarations int     `json:"declarations,omitempty"`
	Diagnostics  int     `json:"diagnostics,omitempty"`
}

// runTrace feeds the prometheus collectors for every stage and file of a
// run, and mirrors them to a JSONL file when tracing is on.
type runTrace struct {
	runID string
	start time.Time

	mu  sync.Mutex
	f   *os.File
	enc *json.Encoder
	err error
}

func openRunTrace(runID string, start time.Time, path string) *runTrace {
	rt := &runTrace{runID: runID, start: start}
	if path == "" {
		return rt
	}
	f, err := os.Create(path)
	if err != nil {
		rt.err = err
		return rt
	}
	rt.f = f
	rt.enc = json.NewEncoder(f)
	return rt
}

// Err reports why the JSONL file could not be opened.
func (rt *runTrace) Err() error {
	return rt.err
}

func (rt *runTrace) Close() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.f != nil {
		_ = rt.f.Close()
		rt.f, rt.enc = nil, nil
	}
}

func (rt *runTrace) stage(name string, began time.Time, status string) {
	took := time.Since(began)
	observability.RunDuration.WithLabelValues(name).Observe(took.Seconds())
	rt.emit(traceEvent{Stage: name, Status: status}, began, took)
}

// file records one source file. s is nil when the file could not be read.
func (rt *runTrace) file(display, status string, began time.Time, s *extractor.Summary) {
	took := time.Since(began)
	observability.FilesScannedTotal.WithLabelValues(status).Inc()

	ev := traceEvent{Stage: "extract", File: display, Status: status}
	if s != nil {
		ev.Declarations = declarationCount(*s)
		ev.Diagnostics = len(s.Diagnostics)
		if status == statusExtracted {
			observability.ScanDuration.Observe(took.Seconds())
			recordSummaryMetrics(*s)
		}
	}
	rt.emit(ev, began, took)
}

func (rt *runTrace) emit(ev traceEvent, began time.Time, took time.Duration) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.enc == nil {
		return
	}
	ev.RunID = rt.runID
	ev.AtMS = millis(began.Sub(rt.start))
	ev.TookMS = millis(took)
	_ = rt.enc.Encode(ev)
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}

func declarationCount(s extractor.Summary) int {
	return len(s.ModuleNames) + len(s.Inputs) + len(s.Outputs) + len(s.Wires) + len(s.Regs) +
		len(s.ContinuousAssignments) + len(s.SequentialAssignments)
}

func recordSummaryMetrics(s extractor.Summary) {
	counts := map[string]int{
		observability.KindModule:           len(s.ModuleNames),
		observability.KindInput:            len(s.Inputs),
		observability.KindOutput:           len(s.Outputs),
		observability.KindWire:             len(s.Wires),
		observability.KindReg:              len(s.Regs),
		observability.KindContinuousAssign: len(s.ContinuousAssignments),
		observability.KindSequentialAssign: len(s.SequentialAssignments),
	}
	for kind, n := range counts {
		observability.DeclarationsTotal.WithLabelValues(kind).Add(float64(n))
	}
	for _, d := range s.Diagnostics {
		observability.DiagnosticsTotal.WithLabelValues(d.Kind).Inc()
	}
}

// tracePath picks the JSONL destination: VERILOG_SCAN_TIMING_JSONL wins,
// then Timing/TimingPath, then VERILOG_SCAN_TIMING=1 next to the sources.
func (idx *Indexer) tracePath(rootPath string) string {
	if p := os.Getenv("VERILOG_SCAN_TIMING_JSONL"); p != "" {
		return p
	}
	if !idx.Timing && !envBool("VERILOG_SCAN_TIMING") {
		return ""
	}
	if idx.TimingPath != "" {
		return idx.TimingPath
	}
	base := rootPath
	if !isDir(rootPath) {
		base = filepath.Dir(rootPath)
	}
	return filepath.Join(base, "timing.jsonl")
}

func envBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes":
		return true
	}
	return false
}
