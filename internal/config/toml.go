// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/scdash/internal/catalog"
)

// Runner modes.
const (
	RunnerStub = "stub"
	RunnerExec = "exec"
)

// Validator modes.
const (
	ValidatorSimulated = "simulated"
	ValidatorDir       = "dir"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Analysis  AnalysisConfig       `toml:"analysis"`
	Runner    RunnerConfig         `toml:"runner"`
	Export    ExportConfig         `toml:"export"`
	Watch     WatchConfig          `toml:"watch"`
	Analyzers []catalog.Descriptor `toml:"analyzers"`
}

// AnalysisConfig maps the default analysis settings.
type AnalysisConfig struct {
	ReplayDir *string        `toml:"replay-dir"`
	Player    *string        `toml:"player"`
	Recursive *bool          `toml:"recursive"`
	Analyzers []string       `toml:"analyzers"`
	Output    *string        `toml:"output"`
	Filters   []FilterConfig `toml:"filters"`
}

// FilterConfig maps a stored analyzer filter.
type FilterConfig struct {
	Analyzer string `toml:"analyzer"`
	Operator string `toml:"operator"`
	Value    string `toml:"value"`
}

// RunnerConfig selects how sctool is invoked and how paths are checked.
type RunnerConfig struct {
	Mode      *string `toml:"mode"`
	Binary    *string `toml:"binary"`
	Validator *string `toml:"validator"`
}

// ExportConfig maps export settings.
type ExportConfig struct {
	Dir       *string `toml:"dir"`
	Overwrite *bool   `toml:"overwrite"`
}

// WatchConfig maps watch-mode timings. Values use time.ParseDuration syntax.
type WatchConfig struct {
	Debounce    *string `toml:"debounce"`
	MinInterval *string `toml:"min-interval"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return FileConfig{}, err
	}
	return cfg, nil
}

func (c FileConfig) validate() error {
	if m := c.Runner.Mode; m != nil && *m != RunnerStub && *m != RunnerExec {
		return fmt.Errorf("invalid runner.mode %q (want %s or %s)", *m, RunnerStub, RunnerExec)
	}
	if v := c.Runner.Validator; v != nil && *v != ValidatorSimulated && *v != ValidatorDir {
		return fmt.Errorf("invalid runner.validator %q (want %s or %s)", *v, ValidatorSimulated, ValidatorDir)
	}
	if _, err := parseDuration(c.Watch.Debounce); err != nil {
		return fmt.Errorf("invalid watch.debounce: %w", err)
	}
	if _, err := parseDuration(c.Watch.MinInterval); err != nil {
		return fmt.Errorf("invalid watch.min-interval: %w", err)
	}
	return nil
}

// Catalog returns the analyzer catalog, using the config table when present.
func (c FileConfig) Catalog() (*catalog.Catalog, error) {
	if len(c.Analyzers) == 0 {
		return catalog.Default(), nil
	}
	cat, err := catalog.New(c.Analyzers)
	if err != nil {
		return nil, fmt.Errorf("invalid [[analyzers]] table: %w", err)
	}
	return cat, nil
}

// DebounceOr returns watch.debounce or def when unset.
func (c FileConfig) DebounceOr(def time.Duration) time.Duration {
	if d, err := parseDuration(c.Watch.Debounce); err == nil && d > 0 {
		return d
	}
	return def
}

// MinIntervalOr returns watch.min-interval or def when unset.
func (c FileConfig) MinIntervalOr(def time.Duration) time.Duration {
	if c.Watch.MinInterval == nil {
		return def
	}
	if d, err := parseDuration(c.Watch.MinInterval); err == nil {
		return d
	}
	return def
}

func parseDuration(s *string) (time.Duration, error) {
	if s == nil {
		return 0, nil
	}
	d, err := time.ParseDuration(*s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must not be negative: %s", *s)
	}
	return d, nil
}
