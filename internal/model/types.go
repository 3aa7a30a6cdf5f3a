// Package model defines shared data structures.
package model

import (
	"fmt"
	"time"
)

// OutputFormat selects the output encoding requested from sctool.
type OutputFormat string

const (
	// FormatCSV requests comma-separated output.
	FormatCSV OutputFormat = "csv"
	// FormatJSON requests a JSON array of rows.
	FormatJSON OutputFormat = "json"
)

// ParseOutputFormat validates a format name.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case FormatCSV, FormatJSON:
		return OutputFormat(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q (want csv or json)", s)
	}
}

// FilterOperator compares an analyzer value against a filter value.
type FilterOperator string

// Supported filter operators.
const (
	OpIs      FilterOperator = "is"
	OpIsNot   FilterOperator = "is-not"
	OpGreater FilterOperator = "greater"
	OpLower   FilterOperator = "lower"
)

// ParseFilterOperator validates an operator name.
func ParseFilterOperator(s string) (FilterOperator, error) {
	switch FilterOperator(s) {
	case OpIs, OpIsNot, OpGreater, OpLower:
		return FilterOperator(s), nil
	default:
		return "", fmt.Errorf("unknown filter operator %q", s)
	}
}

// FilterConfig is a single analyzer filter. Filters are stored with the
// settings but nothing evaluates them yet.
type FilterConfig struct {
	Analyzer string         `json:"analyzer"`
	Operator FilterOperator `json:"operator"`
	Value    string         `json:"value"`
}

// Settings describes which analysis to request from sctool.
type Settings struct {
	ReplayPath        string         `json:"replayPath"`
	RecursiveSearch   bool           `json:"recursiveSearch"`
	PlayerName        string         `json:"playerName"`
	OutputFormat      OutputFormat   `json:"outputFormat"`
	SelectedAnalyzers []string       `json:"selectedAnalyzers"`
	Filters           []FilterConfig `json:"filters"`
}

// DefaultAnalyzers is the analyzer selection used for new settings.
var DefaultAnalyzers = []string{"date", "duration-minutes", "map-name", "matchup"}

// DefaultSettings returns the settings used before the user changes anything.
func DefaultSettings() Settings {
	return Settings{
		RecursiveSearch:   true,
		OutputFormat:      FormatCSV,
		SelectedAnalyzers: append([]string(nil), DefaultAnalyzers...),
		Filters:           []FilterConfig{},
	}
}

// HasAnalyzer reports whether key is selected.
func (s Settings) HasAnalyzer(key string) bool {
	for _, k := range s.SelectedAnalyzers {
		if k == key {
			return true
		}
	}
	return false
}

// ToggleAnalyzer removes key if selected, otherwise appends it.
func (s *Settings) ToggleAnalyzer(key string) {
	for i, k := range s.SelectedAnalyzers {
		if k == key {
			s.SelectedAnalyzers = append(s.SelectedAnalyzers[:i:i], s.SelectedAnalyzers[i+1:]...)
			return
		}
	}
	s.SelectedAnalyzers = append(s.SelectedAnalyzers, key)
}

// AnalysisResult is the outcome of a single analysis run.
type AnalysisResult struct {
	Success       bool
	Output        string
	Error         string
	ExecutionTime time.Duration
	FileCount     int
}

// ReplayData is one parsed replay row. Optional fields are nil when the
// corresponding analyzer column was not present.
type ReplayData struct {
	Date       string  `json:"date"`
	Duration   int     `json:"duration"`
	MapName    string  `json:"mapName"`
	Matchup    string  `json:"matchup"`
	Is1v1      bool    `json:"is1v1"`
	PlayerAPM  *int    `json:"playerAPM,omitempty"`
	PlayerWin  bool    `json:"playerWin"`
	PlayerRace *string `json:"playerRace,omitempty"`
}

// RunRecord is the metadata kept for each analysis run.
type RunRecord struct {
	ID         string
	StartedAt  time.Time
	DurationMs int64
	Success    bool
	Error      string
	FileCount  int
	Command    string
}
