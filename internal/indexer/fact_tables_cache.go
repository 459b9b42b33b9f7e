package indexer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/robert-at-pretension-io/verilog-scan/internal/facts"
)

const factTablesCacheVersion = 1

type factTablesCache struct {
	Version int          `json:"version"`
	Tables  facts.Tables `json:"tables"`
}

// LoadFactTables reads a fact table snapshot written by SaveFactTables or by
// a previous cached run. A missing file is not an error.
func LoadFactTables(path string) (facts.Tables, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return facts.Tables{}, false, nil
		}
		return facts.Tables{}, false, fmt.Errorf("read fact tables: %w", err)
	}
	var cache factTablesCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return facts.Tables{}, false, fmt.Errorf("parse fact tables: %w", err)
	}
	if cache.Version != factTablesCacheVersion {
		return facts.Tables{}, false, nil
	}
	return cache.Tables, true, nil
}

// SaveFactTables writes a snapshot that LoadFactTables can read back.
func SaveFactTables(path string, tables facts.Tables) error {
	data, err := json.MarshalIndent(factTablesCache{
		Version: factTablesCacheVersion,
		Tables:  tables,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fact tables: %w", err)
	}
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("write fact tables: %w", err)
	}
	return nil
}

func factTablesPath(cacheDir string) string {
	return filepath.Join(cacheDir, "fact_tables.json")
}
