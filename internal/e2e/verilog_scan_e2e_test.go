package e2e

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"testing"

	"github.com/robert-at-pretension-io/verilog-scan/internal/extractor"
	"github.com/robert-at-pretension-io/verilog-scan/internal/facts"
	"github.com/robert-at-pretension-io/verilog-scan/internal/validator"
)

func TestVerilogScanE2E_Testdata(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the verilog-scan binary")
	}
	repoRoot := findRepoRoot(t)
	bin := buildScanBinary(t, repoRoot)

	home := t.TempDir()
	env := append(os.Environ(),
		"HOME="+home,
		"XDG_CONFIG_HOME="+filepath.Join(home, ".config"),
		"NO_COLOR=1",
	)

	root := filepath.Join(repoRoot, "testdata", "verilog")
	manifest := readManifest(t, filepath.Join(root, "manifest.json"))

	cfgPath := filepath.Join(t.TempDir(), "verilog_scan.json")
	if err := os.WriteFile(cfgPath, []byte(`{"analysis": {"cache": {"enabled": false}}}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Run("facts", func(t *testing.T) {
		stdout := run(t, bin, env, "--config", cfgPath, "facts", root)
		var tables facts.Tables
		if err := json.Unmarshal(stdout, &tables); err != nil {
			t.Fatalf("parse facts JSON: %v\nstdout:\n%s", err, stdout)
		}

		got := map[string][]string{}
		for _, m := range tables.Modules {
			got[m.File] = append(got[m.File], m.Name)
		}
		for file, want := range manifest {
			if !equalStrings(got[file], want) {
				t.Fatalf("modules in %s = %v, want %v", file, got[file], want)
			}
		}
		if len(tables.Files) != len(manifest) {
			t.Fatalf("expected %d files, got %+v", len(manifest), tables.Files)
		}

		check, err := validator.NewFactsValidator()
		if err != nil {
			t.Fatalf("facts validator: %v", err)
		}
		if err := check.Validate(tables); err != nil {
			t.Fatalf("facts output breaks the contract: %v", err)
		}
	})

	check, err := validator.New()
	if err != nil {
		t.Fatalf("summary validator: %v", err)
	}
	files := make([]string, 0, len(manifest))
	for file := range manifest {
		files = append(files, file)
	}
	sort.Strings(files)
	for _, file := range files {
		t.Run(file, func(t *testing.T) {
			stdout := run(t, bin, env, "--config", cfgPath, "scan", "--format", "json", filepath.Join(root, file))
			var summary extractor.Summary
			if err := json.Unmarshal(stdout, &summary); err != nil {
				t.Fatalf("parse scan JSON: %v\nstdout:\n%s", err, stdout)
			}
			if !equalStrings(summary.ModuleNames, manifest[file]) {
				t.Fatalf("ModuleNames = %v, want %v", summary.ModuleNames, manifest[file])
			}
			if err := check.Validate(summary); err != nil {
				t.Fatalf("scan output breaks the contract: %v", err)
			}
		})
	}
}

func run(t *testing.T, bin string, env []string, args ...string) []byte {
	t.Helper()

	cmd := exec.Command(bin, args...)
	cmd.Env = env
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("verilog-scan %v failed: %v\nstderr:\n%s", args, err, stderr.String())
	}
	return stdout.Bytes()
}

func readManifest(t *testing.T, path string) map[string][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var manifest map[string][]string
	if err := json.Unmarshal(data, &manifest); err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	return manifest
}

func buildScanBinary(t *testing.T, repoRoot string) string {
	t.Helper()
	binDir := t.TempDir()
	binPath := filepath.Join(binDir, "verilog-scan")
	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/verilog-scan")
	cmd.Dir = repoRoot
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("build verilog-scan failed: %v\n%s", err, string(out))
	}
	return binPath
}

func findRepoRoot(t *testing.T) string {
	t.Helper()
	start, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}

	dir := start
	for {
		candidate := filepath.Join(dir, "testdata", "verilog", "manifest.json")
		if _, err := os.Stat(candidate); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("repo root not found from %s", start)
		}
		dir = parent
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
