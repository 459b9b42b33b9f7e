package config

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// ResolveSources expands the include/exclude patterns under rootPath and
// returns the matching files, sorted. A rootPath naming a single file is
// returned as-is, whatever its extension.
func (c *Config) ResolveSources(rootPath string) ([]string, error) {
	info, err := os.Stat(rootPath)
	if err != nil {
		return nil, fmt.Errorf("resolve sources: %w", err)
	}
	if !info.IsDir() {
		return []string{rootPath}, nil
	}

	includes, err := compileGlobs(c.Sources.Include)
	if err != nil {
		return nil, err
	}
	excludes, err := compileGlobs(c.Sources.Exclude)
	if err != nil {
		return nil, err
	}

	var files []string
	err = filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip unreadable entries, continue walking
		}
		if d.IsDir() {
			if path != rootPath && skipDir(d.Name(), c.Analysis.Cache.Dir) {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(rootPath, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if !matchAny(includes, rel) {
			return nil
		}
		if matchAny(excludes, rel) || matchAny(excludes, filepath.Base(path)) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", rootPath, err)
	}

	sort.Strings(files)
	return files, nil
}

// ShouldIgnoreFile checks if a file matches one of the exclude patterns
func (c *Config) ShouldIgnoreFile(filePath string) bool {
	excludes, err := compileGlobs(c.Sources.Exclude)
	if err != nil {
		return false
	}
	return matchAny(excludes, filepath.ToSlash(filePath)) || matchAny(excludes, filepath.Base(filePath))
}

// IsVerilogFile reports whether path has a Verilog or SystemVerilog extension
func IsVerilogFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".v", ".sv", ".vh", ".svh":
		return true
	}
	return false
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(filepath.ToSlash(pattern), '/')
		if err != nil {
			return nil, fmt.Errorf("invalid source pattern %q: %w", pattern, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

func matchAny(globs []glob.Glob, path string) bool {
	for _, g := range globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}

func skipDir(name, cacheDir string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	return name == filepath.Base(cacheDir)
}
