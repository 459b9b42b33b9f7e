package watcher

import (
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Debouncer collects file events and hands them to its callback as one
// batch once no new event has arrived for the quiet interval.
type Debouncer struct {
	mu      sync.Mutex
	ops     map[string]fsnotify.Op
	quiet   time.Duration
	timer   *time.Timer
	stopped bool
	fire    ChangeHandler
}

// NewDebouncer creates a debouncer that calls fire after intervalMs of quiet
func NewDebouncer(intervalMs int, fire ChangeHandler) *Debouncer {
	return &Debouncer{
		ops:   make(map[string]fsnotify.Op),
		quiet: time.Duration(intervalMs) * time.Millisecond,
		fire:  fire,
	}
}

// Add merges op into the pending batch and restarts the quiet interval.
func (d *Debouncer) Add(path string, op fsnotify.Op) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.ops[path] |= op
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, d.release)
}

func (d *Debouncer) release() {
	d.mu.Lock()
	if d.stopped || len(d.ops) == 0 {
		d.mu.Unlock()
		return
	}
	batch := d.ops
	d.ops = make(map[string]fsnotify.Op)
	d.mu.Unlock()

	changed, removed := splitBatch(batch)
	if len(changed) > 0 || len(removed) > 0 {
		d.fire(changed, removed)
	}
}

// splitBatch sorts paths into removed (the final word was a remove or a
// rename away) and changed (anything else that wrote or created).
func splitBatch(batch map[string]fsnotify.Op) (changed, removed []string) {
	for path, op := range batch {
		switch {
		case op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename):
			removed = append(removed, path)
		case op.Has(fsnotify.Write) || op.Has(fsnotify.Create):
			changed = append(changed, path)
		}
	}
	sort.Strings(changed)
	sort.Strings(removed)
	return changed, removed
}

// Stop drops the pending batch; later events are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.ops = make(map[string]fsnotify.Op)
}
