package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the top-level configuration for verilog-scan
type Config struct {
	// Sources selects which files a directory scan picks up
	Sources SourcesConfig `json:"sources,omitempty" toml:"sources"`

	// Extraction tunes the line recognizers
	Extraction ExtractionConfig `json:"extraction,omitempty" toml:"extraction"`

	// Analysis contains multi-file scan options
	Analysis AnalysisConfig `json:"analysis,omitempty" toml:"analysis"`

	// Watch contains watch-mode options
	Watch WatchConfig `json:"watch,omitempty" toml:"watch"`

	// Output contains reporting defaults
	Output OutputConfig `json:"output,omitempty" toml:"output"`
}

// SourcesConfig lists glob patterns relative to the scan root.
// "**" crosses directory boundaries, "*" does not.
type SourcesConfig struct {
	Include []string `json:"include,omitempty" toml:"include"`
	Exclude []string `json:"exclude,omitempty" toml:"exclude"`
}

// ExtractionConfig contains extraction options
type ExtractionConfig struct {
	// DeclarationLists is "last" (only the final identifier of a comma list
	// is recorded) or "split" (every identifier is recorded)
	DeclarationLists string `json:"declarationLists,omitempty" toml:"declaration_lists"`
}

// CacheConfig controls summary cache behavior
type CacheConfig struct {
	// Enabled turns on cache usage
	Enabled *bool `json:"enabled,omitempty" toml:"enabled,omitempty"`

	// Dir is the cache directory (relative to the scan root if not absolute)
	Dir string `json:"dir,omitempty" toml:"dir"`
}

// AnalysisConfig contains analysis options
type AnalysisConfig struct {
	// MaxParallelFiles limits concurrent file processing (0 = auto)
	MaxParallelFiles int `json:"maxParallelFiles,omitempty" toml:"max_parallel_files"`

	// Cache controls summary cache behavior
	Cache CacheConfig `json:"cache,omitempty" toml:"cache"`
}

// WatchConfig contains watch-mode options
type WatchConfig struct {
	// DebounceMs batches file events arriving within this window
	DebounceMs int `json:"debounceMs,omitempty" toml:"debounce_ms"`
}

// OutputConfig contains reporting defaults
type OutputConfig struct {
	// Format is "text" or "json"
	Format string `json:"format,omitempty" toml:"format"`

	// Color is "auto", "on" or "off"
	Color string `json:"color,omitempty" toml:"color"`
}

const (
	ListsLast  = "last"
	ListsSplit = "split"

	defaultCacheDir   = ".verilog_scan_cache"
	defaultDebounceMs = 100
)

var configNames = []string{"verilog_scan.json", ".verilog_scan.json", "verilog_scan.toml"}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() *Config {
	return &Config{
		Sources: SourcesConfig{
			Include: defaultIncludes(),
			Exclude: []string{},
		},
		Extraction: ExtractionConfig{
			DeclarationLists: ListsLast,
		},
		Analysis: AnalysisConfig{
			MaxParallelFiles: 0, // auto
			Cache: CacheConfig{
				Enabled: boolPtr(true),
				Dir:     defaultCacheDir,
			},
		},
		Watch: WatchConfig{
			DebounceMs: defaultDebounceMs,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  "auto",
		},
	}
}

func defaultIncludes() []string {
	return []string{"*.v", "*.sv", "**/*.v", "**/*.sv"}
}

func boolPtr(v bool) *bool {
	return &v
}

// Load finds and loads the configuration file
// Search order:
//  1. ./verilog_scan.json, ./.verilog_scan.json, ./verilog_scan.toml (current working directory)
//  2. the same names under <rootPath> (if it is a directory other than cwd)
//  3. ~/.config/verilog_scan/config.json, then config.toml
//
// Returns DefaultConfig if no config file is found
func Load(rootPath string) (*Config, error) {
	cwd, _ := os.Getwd()

	var searchPaths []string
	for _, name := range configNames {
		searchPaths = append(searchPaths, filepath.Join(cwd, name))
	}

	if info, err := os.Stat(rootPath); err == nil && info.IsDir() {
		absRoot, _ := filepath.Abs(rootPath)
		if absRoot != cwd {
			for _, name := range configNames {
				searchPaths = append(searchPaths, filepath.Join(rootPath, name))
			}
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths,
			filepath.Join(home, ".config", "verilog_scan", "config.json"),
			filepath.Join(home, ".config", "verilog_scan", "config.toml"),
		)
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}

	return DefaultConfig(), nil
}

// LoadFile loads configuration from a specific file. Files ending in .toml
// are decoded as TOML, everything else as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if isTOML(path) {
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &cfg, nil
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	if len(c.Sources.Include) == 0 {
		c.Sources.Include = defaultIncludes()
	}
	if c.Sources.Exclude == nil {
		c.Sources.Exclude = []string{}
	}
	if c.Extraction.DeclarationLists == "" {
		c.Extraction.DeclarationLists = ListsLast
	}
	if c.Analysis.Cache.Dir == "" {
		c.Analysis.Cache.Dir = defaultCacheDir
	}
	if c.Analysis.Cache.Enabled == nil {
		c.Analysis.Cache.Enabled = boolPtr(true)
	}
	if c.Watch.DebounceMs <= 0 {
		c.Watch.DebounceMs = defaultDebounceMs
	}
	if c.Output.Format == "" {
		c.Output.Format = "text"
	}
	if c.Output.Color == "" {
		c.Output.Color = "auto"
	}
}

// Validate rejects values no component understands
func (c *Config) Validate() error {
	switch c.Extraction.DeclarationLists {
	case ListsLast, ListsSplit:
	default:
		return fmt.Errorf("extraction.declarationLists must be %q or %q, got %q", ListsLast, ListsSplit, c.Extraction.DeclarationLists)
	}
	switch c.Output.Format {
	case "text", "json":
	default:
		return fmt.Errorf("output.format must be \"text\" or \"json\", got %q", c.Output.Format)
	}
	switch c.Output.Color {
	case "auto", "on", "off":
	default:
		return fmt.Errorf("output.color must be \"auto\", \"on\" or \"off\", got %q", c.Output.Color)
	}
	if c.Analysis.MaxParallelFiles < 0 {
		return fmt.Errorf("analysis.maxParallelFiles must not be negative")
	}
	return nil
}

// Save writes the configuration to a file, as TOML when the name ends in .toml
func (c *Config) Save(path string) error {
	if isTOML(path) {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}
		defer func() { _ = f.Close() }()
		if err := toml.NewEncoder(f).Encode(c); err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}
		return nil
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// SplitDeclarationLists reports whether every identifier of a declaration
// list should be recorded
func (c *Config) SplitDeclarationLists() bool {
	return c.Extraction.DeclarationLists == ListsSplit
}

// CacheEnabled reports whether the summary cache is switched on
func (c *Config) CacheEnabled() bool {
	if c == nil || c.Analysis.Cache.Enabled == nil {
		return false
	}
	return *c.Analysis.Cache.Enabled
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
