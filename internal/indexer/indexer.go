package indexer

// =============================================================================
// TRUST THE EXTRACTOR, VALIDATE WITH CUE
// =============================================================================
//
// The indexer runs the single-file extractor over a tree of sources and
// aggregates the per-file summaries into relational fact tables.
//
// The indexer must NOT patch up summaries. If a summary looks wrong, the
// recognizer that produced it is wrong. The CUE contracts catch mismatches
// between what we produce and what consumers expect; a contract failure
// aborts the run.
// =============================================================================

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/robert-at-pretension-io/verilog-scan/internal/config"
	"github.com/robert-at-pretension-io/verilog-scan/internal/extractor"
	"github.com/robert-at-pretension-io/verilog-scan/internal/facts"
	"github.com/robert-at-pretension-io/verilog-scan/internal/validator"
)

// Indexer scans many Verilog files and builds fact tables from them.
type Indexer struct {
	// Configuration loaded from verilog_scan.json / .toml
	Config *config.Config

	// Logger receives progress and pipeline warnings
	Logger *slog.Logger

	// Timing output (JSONL)
	Timing     bool
	TimingPath string

	// Optional extractor factory (for tests)
	extractorFactory func() SummaryExtractor

	validatorOnce  sync.Once
	summaryCheck   *validator.Validator
	factsCheck     *validator.FactsValidator
	validatorError error
}

// Result is the structured outcome of one indexer run
type Result struct {
	RunID string `json:"run_id"`
	Root  string `json:"root"`

	// Per-file summaries keyed by display path
	Files map[string]extractor.Summary `json:"files"`

	Tables facts.Tables `json:"tables"`

	// Delta against the previous cached run, when the cache is enabled
	Delta *facts.Delta `json:"delta,omitempty"`

	Stats Stats `json:"stats"`

	// Files that could not be read
	ParseErrors []ParseError `json:"parse_errors,omitempty"`

	// Pipeline problems that did not stop the run (cache, timing)
	Warnings []string `json:"warnings,omitempty"`
}

// Stats provides counts of extracted elements
type Stats struct {
	Files             int `json:"files"`
	Extracted         int `json:"extracted"`
	CacheHits         int `json:"cache_hits"`
	Modules           int `json:"modules"`
	Inputs            int `json:"inputs"`
	Outputs           int `json:"outputs"`
	Wires             int `json:"wires"`
	Regs              int `json:"regs"`
	ContinuousAssigns int `json:"continuous_assigns"`
	SequentialAssigns int `json:"sequential_assigns"`
	Diagnostics       int `json:"diagnostics"`
}

// ParseError represents a file that could not be scanned
type ParseError struct {
	File    string `json:"file"`
	Message string `json:"message"`
}

// SummaryExtractor abstracts extraction for caching tests
type SummaryExtractor interface {
	Extract(path string) (extractor.Summary, error)
}

type fileOutcome struct {
	path    string
	display string
	summary extractor.Summary
	status  string
	err     error
}

// New creates an Indexer. A nil cfg means DefaultConfig.
func New(cfg *config.Config) *Indexer {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Indexer{
		Config: cfg,
		Logger: slog.Default(),
	}
}

func (idx *Indexer) listMode() extractor.ListMode {
	if idx.Config.SplitDeclarationLists() {
		return extractor.ListSplit
	}
	return extractor.ListLast
}

func (idx *Indexer) newExtractor() SummaryExtractor {
	if idx.extractorFactory != nil {
		return idx.extractorFactory()
	}
	return extractor.NewWithOptions(extractor.Options{
		ListMode: idx.listMode(),
		Logger:   idx.Logger,
	})
}

func (idx *Indexer) validators() (*validator.Validator, *validator.FactsValidator, error) {
	idx.validatorOnce.Do(func() {
		idx.summaryCheck, idx.validatorError = validator.New()
		if idx.validatorError != nil {
			return
		}
		idx.factsCheck, idx.validatorError = validator.NewFactsValidator()
	})
	return idx.summaryCheck, idx.factsCheck, idx.validatorError
}

// Run scans every source under rootPath (or rootPath itself when it is a
// file). Unreadable files are reported in Result.ParseErrors; a summary or
// fact table that breaks the CUE contract aborts the run.
func (idx *Indexer) Run(ctx context.Context, rootPath string) (*Result, error) {
	runStart := time.Now()
	result := &Result{
		RunID: uuid.NewString(),
		Root:  rootPath,
		Files: make(map[string]extractor.Summary),
	}
	logger := idx.Logger.With("run_id", result.RunID)
	warn := func(err error) {
		result.Warnings = append(result.Warnings, err.Error())
		logger.Warn("pipeline warning", "error", err)
	}

	trace := openRunTrace(result.RunID, runStart, idx.tracePath(rootPath))
	if err := trace.Err(); err != nil {
		warn(fmt.Errorf("timing output disabled: %w", err))
	}
	defer trace.Close()

	summaryCheck, factsCheck, err := idx.validators()
	if err != nil {
		return nil, fmt.Errorf("load contracts: %w", err)
	}

	// 1. Resolve sources
	stepStart := time.Now()
	files, err := idx.Config.ResolveSources(rootPath)
	if err != nil {
		return nil, err
	}
	logger.Info("sources resolved", "root", rootPath, "files", len(files))
	trace.stage("scan", stepStart, "")

	// 2. Parallel extraction (with optional cache)
	stepStart = time.Now()
	var cache *summaryCache
	var cacheDir string
	if idx.Config.CacheEnabled() {
		cacheDir = resolveCacheDir(rootPath, idx.Config)
		cache = newSummaryCache(cacheDir, extractorCacheVersion(idx.listMode()))
		if err := cache.Load(); err != nil {
			warn(fmt.Errorf("cache disabled: %w", err))
			cache = nil
		}
	}

	outcomes, err := idx.extractAll(ctx, rootPath, files, cache, trace, warn)
	if err != nil {
		return nil, err
	}

	keep := make(map[string]bool, len(outcomes))
	for _, out := range outcomes {
		keep[out.path] = true
		if out.err != nil {
			result.ParseErrors = append(result.ParseErrors, ParseError{
				File:    out.display,
				Message: out.err.Error(),
			})
			continue
		}
		if out.status == statusCacheHit {
			result.Stats.CacheHits++
		} else {
			result.Stats.Extracted++
		}
		result.Files[out.display] = out.summary
	}
	// A single-file run shares its directory's cache; only a tree run knows
	// which entries are stale.
	treeRun := isDir(rootPath)
	if cache != nil {
		if treeRun {
			cache.Prune(keep)
		}
		if err := cache.Save(); err != nil {
			warn(fmt.Errorf("cache save failed: %w", err))
		}
	}
	trace.stage("extract", stepStart, "")

	// 3. Contract check per file
	stepStart = time.Now()
	for _, display := range sortedFiles(result.Files) {
		summary := result.Files[display]
		if err := summaryCheck.Validate(summary); err != nil {
			trace.stage("validate", stepStart, "failed")
			for _, msg := range summaryCheck.ValidationErrors(summary) {
				logger.Error("summary contract violated", "file", display, "error", msg)
			}
			return nil, fmt.Errorf("%s: %w", display, err)
		}
	}
	trace.stage("validate", stepStart, "")

	// 4. Fact tables
	stepStart = time.Now()
	result.Tables = facts.BuildTables(result.Files)
	if err := factsCheck.Validate(result.Tables); err != nil {
		trace.stage("facts", stepStart, "failed")
		return nil, err
	}
	if cacheDir != "" && treeRun {
		prev, ok, err := LoadFactTables(factTablesPath(cacheDir))
		if err != nil {
			warn(err)
		} else if ok {
			delta := facts.ComputeDelta(prev, result.Tables)
			result.Delta = &delta
		}
		if err := SaveFactTables(factTablesPath(cacheDir), result.Tables); err != nil {
			warn(err)
		}
	}
	trace.stage("facts", stepStart, "")

	result.Stats.Files = len(result.Files)
	countTables(&result.Stats, result.Tables)

	trace.stage("total", runStart, "")
	logger.Info("scan complete",
		"files", result.Stats.Files,
		"cache_hits", result.Stats.CacheHits,
		"parse_errors", len(result.ParseErrors),
		"duration", formatDuration(time.Since(runStart)),
	)
	return result, nil
}

const (
	statusExtracted = "extracted"
	statusCacheHit  = "cache_hit"
	statusError     = "error"
)

func (idx *Indexer) extractAll(ctx context.Context, rootPath string, files []string, cache *summaryCache, trace *runTrace, warn func(error)) ([]fileOutcome, error) {
	outcomes := make([]fileOutcome, len(files))
	if len(files) == 0 {
		return outcomes, nil
	}

	jobs := idx.Config.Analysis.MaxParallelFiles
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	var warnMu sync.Mutex
	safeWarn := func(err error) {
		warnMu.Lock()
		warn(err)
		warnMu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			fileStart := time.Now()
			out := fileOutcome{path: path, display: displayPath(rootPath, path)}
			// Index i is owned by this goroutine
			defer func() { outcomes[i] = out }()

			var contentHash string
			if cache != nil {
				h, err := hashFile(path)
				if err != nil {
					out.err = fmt.Errorf("reading file: %w", err)
					trace.file(out.display, statusError, fileStart, nil)
					return nil
				}
				contentHash = h
				summary, ok, err := cache.Get(path, contentHash)
				if err != nil {
					safeWarn(fmt.Errorf("cache read failed for %s: %w", out.display, err))
				} else if ok {
					out.summary = summary
					out.status = statusCacheHit
					trace.file(out.display, statusCacheHit, fileStart, &summary)
					return nil
				}
			}

			summary, err := idx.newExtractor().Extract(path)
			if err != nil {
				out.err = err
				trace.file(out.display, statusError, fileStart, nil)
				return nil
			}

			if cache != nil {
				if err := cache.Put(path, contentHash, summary); err != nil {
					safeWarn(fmt.Errorf("cache write failed for %s: %w", out.display, err))
				}
			}
			out.summary = summary
			out.status = statusExtracted
			trace.file(out.display, statusExtracted, fileStart, &summary)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// displayPath is the slash-separated path relative to a directory root, or
// the path unchanged when a single file is scanned.
func displayPath(rootPath, path string) string {
	if !isDir(rootPath) {
		return path
	}
	rel, err := filepath.Rel(rootPath, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func countTables(stats *Stats, tables facts.Tables) {
	stats.Modules = len(tables.Modules)
	for _, p := range tables.Ports {
		if p.Direction == facts.DirectionInput {
			stats.Inputs++
		} else {
			stats.Outputs++
		}
	}
	for _, n := range tables.Nets {
		if n.Kind == facts.KindWire {
			stats.Wires++
		} else {
			stats.Regs++
		}
	}
	stats.ContinuousAssigns = len(tables.ContinuousAssigns)
	stats.SequentialAssigns = len(tables.SequentialAssigns)
	stats.Diagnostics = len(tables.Diagnostics)
}

func sortedFiles(m map[string]extractor.Summary) []string {
	paths := make([]string, 0, len(m))
	for p := range m {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
