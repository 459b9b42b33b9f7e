package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/robert-at-pretension-io/verilog-scan/internal/config"
	"github.com/robert-at-pretension-io/verilog-scan/internal/facts"
	"github.com/robert-at-pretension-io/verilog-scan/internal/indexer"
	"github.com/robert-at-pretension-io/verilog-scan/internal/observability"
	"github.com/robert-at-pretension-io/verilog-scan/internal/report"
	"github.com/robert-at-pretension-io/verilog-scan/internal/watcher"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <path>",
		Short: "Re-scan on every change and print the fact delta",
		Args:  cobra.ExactArgs(1),
		RunE:  runWatch,
	}
	cmd.Flags().String("metrics-addr", "", "serve /metrics and /health on this address (e.g. :9464)")
	return cmd
}

// rescanner re-runs the indexer and prints what changed since the last run.
// Runs are serialized; the debouncer may fire while a scan is in progress.
type rescanner struct {
	mu   sync.Mutex
	ctx  context.Context
	idx  *indexer.Indexer
	root string
	prev facts.Tables
	out  func(facts.Delta) error
}

// run rescans the root and reports rows of the touched files only. A nil set
// reports every file. Rows of untouched files keep their last reported state,
// so an edit the watcher has not delivered yet still shows up later.
func (r *rescanner) run(touched map[string]bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.idx.Run(r.ctx, r.root)
	if err != nil {
		return err
	}
	for _, pe := range res.ParseErrors {
		slog.Warn("file skipped", "file", pe.File, "error", pe.Message)
	}
	if touched == nil {
		delta := facts.ComputeDelta(r.prev, res.Tables)
		r.prev = res.Tables
		return r.out(delta)
	}
	delta := facts.FilterDeltaByFiles(facts.ComputeDelta(r.prev, res.Tables), touched)
	r.prev = facts.ReplaceFiles(r.prev, res.Tables, touched)
	return r.out(delta)
}

// touched maps watcher paths to the file names the indexer reports.
func (r *rescanner) touched(paths ...[]string) map[string]bool {
	root, err := filepath.Abs(r.root)
	if err != nil {
		root = filepath.Clean(r.root)
	}
	dirRoot := true
	if info, err := os.Stat(r.root); err == nil && !info.IsDir() {
		dirRoot = false
	}

	out := map[string]bool{}
	for _, list := range paths {
		for _, p := range list {
			abs, err := filepath.Abs(p)
			if err != nil {
				abs = filepath.Clean(p)
			}
			if !dirRoot {
				if abs == root {
					out[r.root] = true
				}
				continue
			}
			rel, err := filepath.Rel(root, abs)
			if err != nil {
				continue
			}
			out[filepath.ToSlash(rel)] = true
		}
	}
	return out
}

func runWatch(cmd *cobra.Command, args []string) error {
	path := args[0]
	cfg, err := loadConfig(cmd, path)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
		srv := observability.NewServer(addr)
		if err := srv.Start(ctx); err != nil {
			return fmt.Errorf("start metrics server: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Stop(shutdownCtx)
		}()
	}

	idx := indexer.New(cfg)
	idx.Logger = slog.Default()
	opts := reportOptions(cmd, cfg)
	out := cmd.OutOrStdout()

	rs := &rescanner{
		ctx:  ctx,
		idx:  idx,
		root: path,
		prev: facts.Tables{},
		out:  func(d facts.Delta) error { return report.WriteDelta(out, d, opts) },
	}
	// the first run prints every row as added
	if err := rs.run(nil); err != nil {
		return err
	}

	watchRoot := path
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		watchRoot = filepath.Dir(path)
	}

	w, err := watcher.New(watchRoot, func(changed, removed []string) {
		slog.Debug("sources changed", "changed", len(changed), "removed", len(removed))
		if err := rs.run(rs.touched(changed, removed)); err != nil && ctx.Err() == nil {
			slog.Error("rescan failed", "error", err)
		}
	}, watcher.Options{
		DebounceMs: cfg.Watch.DebounceMs,
		SkipDirs:   []string{cacheDirName(cfg)},
		Ignore: func(p string) bool {
			rel, err := filepath.Rel(watchRoot, p)
			if err != nil {
				rel = p
			}
			return cfg.ShouldIgnoreFile(rel)
		},
		Logger: slog.Default(),
	})
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Start(); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	slog.Info("watching for changes", "root", watchRoot)
	<-ctx.Done()
	return nil
}

func cacheDirName(cfg *config.Config) string {
	if cfg.Analysis.Cache.Dir == "" {
		return ".verilog_scan_cache"
	}
	return filepath.Base(cfg.Analysis.Cache.Dir)
}
