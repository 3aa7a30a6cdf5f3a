package parse

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/verte-zerg/scdash/internal/model"
)

func TestCSVEmptyInputs(t *testing.T) {
	for _, in := range []string{"", "onlyheader", "\n\n  \n", "date,map-name\n\n"} {
		rows := CSV(in)
		if rows == nil || len(rows) != 0 {
			t.Fatalf("expected empty non-nil slice for %q, got %v", in, rows)
		}
	}
}

func TestCSVScenario(t *testing.T) {
	rows := CSV("date,duration-minutes\n2024-09-01,15\n2024-09-02,30")
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	want := model.ReplayData{Date: "2024-09-01", Duration: 15}
	got := rows[0]
	if got.Date != want.Date || got.Duration != want.Duration || got.MapName != "" || got.Matchup != "" || got.Is1v1 {
		t.Fatalf("unexpected first row: %+v", got)
	}
	if got.PlayerAPM != nil || got.PlayerRace != nil || got.PlayerWin {
		t.Fatalf("unexpected player fields: %+v", got)
	}
	if rows[1].Date != "2024-09-02" || rows[1].Duration != 30 {
		t.Fatalf("unexpected second row: %+v", rows[1])
	}
}

func TestCSVHeaderOrderAndTrim(t *testing.T) {
	in := " matchup , map-name ,date\r\nTvZ, Python ,2024-09-03\r\n"
	rows := CSV(in)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	r := rows[0]
	if r.Matchup != "TvZ" || r.MapName != "Python" || r.Date != "2024-09-03" {
		t.Fatalf("unexpected row: %+v", r)
	}
}

func TestCSVPlayerFields(t *testing.T) {
	in := "my-race,my-apm,my-win,is-1v1\nZerg,250,true,true\n,,false,yes\nTerran,abc,TRUE,false"
	rows := CSV(in)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].PlayerRace == nil || *rows[0].PlayerRace != "Zerg" {
		t.Fatalf("expected race Zerg: %+v", rows[0])
	}
	if rows[0].PlayerAPM == nil || *rows[0].PlayerAPM != 250 {
		t.Fatalf("expected apm 250: %+v", rows[0])
	}
	if !rows[0].PlayerWin || !rows[0].Is1v1 {
		t.Fatalf("expected win and 1v1: %+v", rows[0])
	}
	if rows[1].PlayerRace != nil || rows[1].PlayerAPM != nil || rows[1].PlayerWin || rows[1].Is1v1 {
		t.Fatalf("expected empty player fields: %+v", rows[1])
	}
	if rows[2].PlayerAPM != nil {
		t.Fatalf("expected unparseable apm to be absent")
	}
	if rows[2].PlayerWin {
		t.Fatalf("win must match the literal \"true\" only")
	}
}

func TestCSVShortRows(t *testing.T) {
	rows := CSV("date,duration-minutes,my-apm\n2024-09-01")
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Duration != 0 || rows[0].PlayerAPM != nil {
		t.Fatalf("expected absent trailing fields: %+v", rows[0])
	}
}

func TestCSVDurationLeadingInt(t *testing.T) {
	rows := CSV("duration-minutes\n15m\n1.9\nabc\n-3")
	got := []int{rows[0].Duration, rows[1].Duration, rows[2].Duration, rows[3].Duration}
	want := []int{15, 1, 0, -3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("duration %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	rows := JSON(logger, `[{"date":"2024-09-01","duration":12,"mapName":"Luna","playerAPM":180}]`)
	if len(rows) != 1 || rows[0].MapName != "Luna" || rows[0].PlayerAPM == nil || *rows[0].PlayerAPM != 180 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	if buf.Len() != 0 {
		t.Fatalf("unexpected log output: %s", buf.String())
	}

	for _, in := range []string{`{"date":"x"}`, `not json`, ``, `"text"`} {
		buf.Reset()
		rows := JSON(logger, in)
		if rows == nil || len(rows) != 0 {
			t.Fatalf("expected empty rows for %q", in)
		}
		if !strings.Contains(buf.String(), "JSON output") {
			t.Fatalf("expected a log line for %q, got %q", in, buf.String())
		}
	}
}

func TestJSONSkipsMalformedRows(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	rows := JSON(logger, `[{"date":"2024-09-01","duration":15},{"date":"2024-09-02","duration":"30"},{"date":"2024-09-03","duration":20}]`)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %+v", rows)
	}
	if rows[0].Date != "2024-09-01" || rows[0].Duration != 15 || rows[1].Date != "2024-09-03" || rows[1].Duration != 20 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	if !strings.Contains(buf.String(), "index=1") {
		t.Fatalf("expected skipped row to be logged, got %q", buf.String())
	}
}

func TestByteOrderMark(t *testing.T) {
	rows := CSV("\ufeffdate,duration-minutes\n2024-09-01,15")
	if len(rows) != 1 || rows[0].Date != "2024-09-01" || rows[0].Duration != 15 {
		t.Fatalf("unexpected csv rows: %+v", rows)
	}
	rows = JSON(nil, "\ufeff[{\"date\":\"2024-09-01\"}]")
	if len(rows) != 1 || rows[0].Date != "2024-09-01" {
		t.Fatalf("unexpected json rows: %+v", rows)
	}
}

func TestRowsSelectsParser(t *testing.T) {
	if rows := Rows(nil, model.FormatCSV, "date\n2024-09-01"); len(rows) != 1 {
		t.Fatalf("expected csv row")
	}
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	if rows := Rows(logger, model.FormatJSON, "date\n2024-09-01"); len(rows) != 0 {
		t.Fatalf("expected csv text to fail as json")
	}
}
