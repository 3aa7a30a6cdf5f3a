package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Analysis.ReplayDir != nil || cfg.Runner.Mode != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfigSections(t *testing.T) {
	path := writeConfig(t, `
[analysis]
replay-dir = "/replays"
player = "Me"
recursive = false
analyzers = ["date", "my-apm"]
output = "json"

[[analysis.filters]]
analyzer = "my-apm"
operator = "greater"
value = "150"

[runner]
mode = "exec"
binary = "/usr/local/bin/sctool"
validator = "dir"

[export]
dir = "/tmp/out"
overwrite = true

[watch]
debounce = "500ms"
min-interval = "1m"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Analysis.ReplayDir == nil || *cfg.Analysis.ReplayDir != "/replays" {
		t.Fatalf("unexpected replay-dir: %v", cfg.Analysis.ReplayDir)
	}
	if cfg.Analysis.Recursive == nil || *cfg.Analysis.Recursive {
		t.Fatalf("expected recursive=false")
	}
	if len(cfg.Analysis.Analyzers) != 2 || cfg.Analysis.Analyzers[1] != "my-apm" {
		t.Fatalf("unexpected analyzers: %v", cfg.Analysis.Analyzers)
	}
	if len(cfg.Analysis.Filters) != 1 || cfg.Analysis.Filters[0].Operator != "greater" {
		t.Fatalf("unexpected filters: %+v", cfg.Analysis.Filters)
	}
	if *cfg.Runner.Mode != RunnerExec || *cfg.Runner.Validator != ValidatorDir {
		t.Fatalf("unexpected runner config: %+v", cfg.Runner)
	}
	if cfg.Export.Overwrite == nil || !*cfg.Export.Overwrite {
		t.Fatalf("expected overwrite=true")
	}
	if got := cfg.DebounceOr(time.Second); got != 500*time.Millisecond {
		t.Fatalf("unexpected debounce: %v", got)
	}
	if got := cfg.MinIntervalOr(0); got != time.Minute {
		t.Fatalf("unexpected min interval: %v", got)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	for _, body := range []string{
		"[runner]\nmode = \"docker\"\n",
		"[runner]\nvalidator = \"guess\"\n",
		"[watch]\ndebounce = \"soon\"\n",
		"[watch]\nmin-interval = \"-1s\"\n",
	} {
		if _, err := LoadConfig(writeConfig(t, body)); err == nil {
			t.Fatalf("expected error for %q", body)
		}
	}
}

func TestCatalogOverride(t *testing.T) {
	path := writeConfig(t, `
[[analyzers]]
key = "date"
label = "Date"
category = "Core"

[[analyzers]]
key = "build-order"
category = "Player"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cat, err := cfg.Catalog()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if len(cat.All()) != 2 {
		t.Fatalf("expected 2 analyzers, got %d", len(cat.All()))
	}
	if _, ok := cat.Lookup("build-order"); !ok {
		t.Fatalf("expected custom analyzer")
	}
}

func TestCatalogDefault(t *testing.T) {
	cat, err := FileConfig{}.Catalog()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if len(cat.All()) != 13 {
		t.Fatalf("expected 13 analyzers, got %d", len(cat.All()))
	}
}

func TestDefaultPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "scdash", "config.toml") {
		t.Fatalf("unexpected config path: %s", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "scdash", "scdash.db") {
		t.Fatalf("unexpected db path: %s", got)
	}
	if got := DefaultExportDir(); got != filepath.Join("/data", "scdash", "exports") {
		t.Fatalf("unexpected export dir: %s", got)
	}
	if got := DefaultLogPath(); got != filepath.Join("/data", "scdash", "scdash.log") {
		t.Fatalf("unexpected log path: %s", got)
	}
}

func TestXDGFallbacks(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("HOME", "/home/sc")
	if got := XDGConfigHome(); got != filepath.Join("/home/sc", ".config") {
		t.Fatalf("unexpected config home: %s", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/home/sc", ".local", "share", "scdash", "scdash.db") {
		t.Fatalf("unexpected db path: %s", got)
	}
}
