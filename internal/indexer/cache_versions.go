package indexer

import (
	"os"
	"path/filepath"

	"github.com/robert-at-pretension-io/verilog-scan/internal/config"
	"github.com/robert-at-pretension-io/verilog-scan/internal/extractor"
)

// resolveCacheDir places a relative cache dir next to the scanned tree (or
// next to the file when a single file is scanned).
func resolveCacheDir(rootPath string, cfg *config.Config) string {
	baseDir := rootPath
	if info, err := os.Stat(rootPath); err == nil && !info.IsDir() {
		baseDir = filepath.Dir(rootPath)
	}
	cacheDir := cfg.Analysis.Cache.Dir
	if cacheDir == "" {
		cacheDir = ".verilog_scan_cache"
	}
	if !filepath.IsAbs(cacheDir) {
		cacheDir = filepath.Join(baseDir, cacheDir)
	}
	return cacheDir
}

// extractorCacheVersion changes whenever a cached summary could differ from
// a fresh scan: new extraction rules or a different list mode.
func extractorCacheVersion(mode extractor.ListMode) string {
	return extractor.Version + "/" + string(mode)
}
