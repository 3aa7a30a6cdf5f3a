package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if !s.RecursiveSearch || s.OutputFormat != FormatCSV {
		t.Fatalf("unexpected defaults: %+v", s)
	}
	if s.ReplayPath != "" || s.PlayerName != "" || len(s.Filters) != 0 {
		t.Fatalf("expected empty path, player and filters: %+v", s)
	}
	if strings.Join(s.SelectedAnalyzers, ",") != "date,duration-minutes,map-name,matchup" {
		t.Fatalf("unexpected analyzers: %v", s.SelectedAnalyzers)
	}

	s.SelectedAnalyzers[0] = "changed"
	if DefaultAnalyzers[0] != "date" {
		t.Fatalf("defaults must not share the analyzer slice")
	}
}

func TestToggleAnalyzer(t *testing.T) {
	s := Settings{SelectedAnalyzers: []string{"date", "map-name", "matchup"}}
	backing := s.SelectedAnalyzers

	s.ToggleAnalyzer("map-name")
	if strings.Join(s.SelectedAnalyzers, ",") != "date,matchup" {
		t.Fatalf("unexpected after remove: %v", s.SelectedAnalyzers)
	}
	if backing[1] != "map-name" {
		t.Fatalf("removal must not modify the previous slice")
	}

	s.ToggleAnalyzer("my-apm")
	s.ToggleAnalyzer("my-apm")
	s.ToggleAnalyzer("my-apm")
	if strings.Join(s.SelectedAnalyzers, ",") != "date,matchup,my-apm" {
		t.Fatalf("unexpected after toggles: %v", s.SelectedAnalyzers)
	}
	if !s.HasAnalyzer("my-apm") || s.HasAnalyzer("map-name") {
		t.Fatalf("HasAnalyzer disagrees with selection")
	}
}

func TestParseOutputFormat(t *testing.T) {
	if f, err := ParseOutputFormat("json"); err != nil || f != FormatJSON {
		t.Fatalf("unexpected result: %v %v", f, err)
	}
	if _, err := ParseOutputFormat("xml"); err == nil {
		t.Fatalf("expected error for xml")
	}
}

func TestParseFilterOperator(t *testing.T) {
	for _, op := range []string{"is", "is-not", "greater", "lower"} {
		if _, err := ParseFilterOperator(op); err != nil {
			t.Fatalf("operator %s: %v", op, err)
		}
	}
	if _, err := ParseFilterOperator("equals"); err == nil {
		t.Fatalf("expected error for unknown operator")
	}
}

func TestSettingsJSONKeys(t *testing.T) {
	s := DefaultSettings()
	s.ReplayPath = "/r"
	s.Filters = append(s.Filters, FilterConfig{Analyzer: "my-apm", Operator: OpGreater, Value: "150"})
	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"replayPath":"/r","recursiveSearch":true,"playerName":"","outputFormat":"csv",` +
		`"selectedAnalyzers":["date","duration-minutes","map-name","matchup"],` +
		`"filters":[{"analyzer":"my-apm","operator":"greater","value":"150"}]}`
	if string(raw) != want {
		t.Fatalf("unexpected JSON:\n%s", raw)
	}
}
