package indexer

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/robert-at-pretension-io/verilog-scan/internal/extractor"
)

const cacheIndexVersion = 1

type cacheEntry struct {
	ContentHash      string `json:"content_hash"`
	SummaryPath      string `json:"summary_path"`
	ExtractorVersion string `json:"extractor_version"`
}

type cacheIndex struct {
	Version int                   `json:"version"`
	Entries map[string]cacheEntry `json:"entries"`
}

// summaryCache keeps one msgpack payload per source file plus a JSON index
// mapping file path -> content hash.
type summaryCache struct {
	dir              string
	extractorVersion string
	mu               sync.Mutex
	index            cacheIndex
}

func newSummaryCache(dir, extractorVersion string) *summaryCache {
	return &summaryCache{
		dir:              dir,
		extractorVersion: extractorVersion,
		index: cacheIndex{
			Version: cacheIndexVersion,
			Entries: make(map[string]cacheEntry),
		},
	}
}

func (c *summaryCache) indexPath() string {
	return filepath.Join(c.dir, "index.json")
}

func (c *summaryCache) summaryPathForFile(filePath string) string {
	h := sha256.Sum256([]byte(filePath))
	return filepath.Join(c.dir, "summaries", hex.EncodeToString(h[:])+".mp")
}

func (c *summaryCache) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("cache mkdir: %w", err)
	}
	data, err := os.ReadFile(c.indexPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cache index: %w", err)
	}
	var idx cacheIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return fmt.Errorf("parse cache index: %w", err)
	}
	if idx.Version != cacheIndexVersion {
		// Reset on version mismatch
		return nil
	}
	if idx.Entries == nil {
		idx.Entries = make(map[string]cacheEntry)
	}
	c.index = idx
	return nil
}

func (c *summaryCache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := json.MarshalIndent(c.index, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache index: %w", err)
	}
	return writeFileAtomic(c.indexPath(), data)
}

func (c *summaryCache) Get(filePath, contentHash string) (extractor.Summary, bool, error) {
	c.mu.Lock()
	entry, ok := c.index.Entries[filePath]
	c.mu.Unlock()
	if !ok || entry.ContentHash != contentHash || entry.ExtractorVersion != c.extractorVersion {
		return extractor.Summary{}, false, nil
	}

	f, err := os.Open(entry.SummaryPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return extractor.Summary{}, false, nil
		}
		return extractor.Summary{}, false, fmt.Errorf("read cached summary: %w", err)
	}
	defer f.Close()

	var summary extractor.Summary
	if err := msgpack.NewDecoder(f).Decode(&summary); err != nil {
		return extractor.Summary{}, false, fmt.Errorf("parse cached summary: %w", err)
	}
	return extractor.Normalize(summary), true, nil
}

func (c *summaryCache) Put(filePath, contentHash string, summary extractor.Summary) error {
	data, err := msgpack.Marshal(&summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	summaryPath := c.summaryPathForFile(filePath)
	if err := writeFileAtomic(summaryPath, data); err != nil {
		return err
	}

	c.mu.Lock()
	c.index.Entries[filePath] = cacheEntry{
		ContentHash:      contentHash,
		SummaryPath:      summaryPath,
		ExtractorVersion: c.extractorVersion,
	}
	c.mu.Unlock()
	return nil
}

// Prune drops index entries for files that are no longer part of the scan.
func (c *summaryCache) Prune(keep map[string]bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for path, entry := range c.index.Entries {
		if !keep[path] {
			_ = os.Remove(entry.SummaryPath)
			delete(c.index.Entries, path)
		}
	}
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("temp cache file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename cache file: %w", err)
	}
	return nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
