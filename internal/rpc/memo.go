package rpc

import (
	"os"
	"sync"
	"time"

	"github.com/robert-at-pretension-io/verilog-scan/internal/extractor"
)

type memoKey struct {
	path string
	mode extractor.ListMode
}

type memoEntry struct {
	size    int64
	modTime time.Time
	summary extractor.Summary
}

// summaryMemo keeps the last summary per file and list mode, valid while the
// file's size and modification time are unchanged.
type summaryMemo struct {
	mu      sync.Mutex
	entries map[memoKey]memoEntry
}

func newSummaryMemo() *summaryMemo {
	return &summaryMemo{entries: make(map[memoKey]memoEntry)}
}

// get returns a private copy of the remembered summary.
func (m *summaryMemo) get(path string, mode extractor.ListMode, info os.FileInfo) (extractor.Summary, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[memoKey{path, mode}]
	if !ok || e.size != info.Size() || !e.modTime.Equal(info.ModTime()) {
		return extractor.Summary{}, false
	}
	return e.summary.Clone(), true
}

func (m *summaryMemo) put(path string, mode extractor.ListMode, info os.FileInfo, s extractor.Summary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[memoKey{path, mode}] = memoEntry{
		size:    info.Size(),
		modTime: info.ModTime(),
		summary: s.Clone(),
	}
}
