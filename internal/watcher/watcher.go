package watcher

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/robert-at-pretension-io/verilog-scan/internal/config"
	"github.com/robert-at-pretension-io/verilog-scan/internal/observability"
)

// ChangeHandler is called when files change
type ChangeHandler func(changed, removed []string)

// Options configures a Watcher
type Options struct {
	DebounceMs int

	// Directory names that are never watched (the cache dir, typically)
	SkipDirs []string

	// Ignore reports sources excluded from the scan; their events are dropped
	Ignore func(path string) bool

	Logger *slog.Logger
}

// Watcher monitors Verilog sources for changes using fsnotify
type Watcher struct {
	watcher   *fsnotify.Watcher
	rootPath  string
	handler   ChangeHandler
	debouncer *Debouncer
	skip      map[string]bool
	ignore    func(string) bool
	logger    *slog.Logger
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a new file watcher for the root path
func New(rootPath string, handler ChangeHandler, opts Options) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if opts.DebounceMs <= 0 {
		opts.DebounceMs = 100
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	skip := make(map[string]bool, len(opts.SkipDirs))
	for _, name := range opts.SkipDirs {
		skip[filepath.Base(name)] = true
	}

	w := &Watcher{
		watcher:  fsw,
		rootPath: rootPath,
		handler:  handler,
		skip:     skip,
		ignore:   opts.Ignore,
		logger:   logger,
		done:     make(chan struct{}),
	}
	w.debouncer = NewDebouncer(opts.DebounceMs, w.dispatch)
	return w, nil
}

// Start begins watching for file changes
func (w *Watcher) Start() error {
	err := filepath.WalkDir(w.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip errors
		}

		if d.IsDir() {
			if path != w.rootPath && w.skipDir(d.Name()) {
				return filepath.SkipDir
			}
			if err := w.watcher.Add(path); err != nil {
				w.logger.Warn("failed to watch directory", "path", path, "error", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	go w.eventLoop()

	w.logger.Info("file watcher started", "root", w.rootPath)
	return nil
}

func (w *Watcher) skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || w.skip[name]
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	observability.WatcherEventsTotal.Inc()
	path := event.Name

	if event.Has(fsnotify.Create) {
		// If a new directory was created, watch it
		if info, err := os.Lstat(path); err == nil && info.IsDir() {
			if !w.skipDir(filepath.Base(path)) {
				if err := w.watcher.Add(path); err != nil {
					w.logger.Warn("failed to watch new directory", "path", path, "error", err)
				}
			}
			return
		}
	}

	if !config.IsVerilogFile(path) {
		return
	}
	if w.ignore != nil && w.ignore(path) {
		w.logger.Debug("ignoring excluded file", "path", path)
		return
	}

	w.debouncer.Add(path, event.Op)
}

func (w *Watcher) dispatch(changed, removed []string) {
	select {
	case <-w.done:
		return
	default:
	}
	w.logger.Debug("file changes", "changed", len(changed), "removed", len(removed))
	w.handler(changed, removed)
}

// Close stops the watcher
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		w.debouncer.Stop()
		err = w.watcher.Close()
	})
	return err
}
