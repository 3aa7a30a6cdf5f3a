// Package parse turns sctool output into replay rows.
package parse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/verte-zerg/scdash/internal/model"
)

// bom is the byte-order mark some tools prepend to their output.
const bom = "\ufeff"

// Column names emitted by sctool.
const (
	ColDate     = "date"
	ColDuration = "duration-minutes"
	ColMap      = "map-name"
	ColMatchup  = "matchup"
	ColIs1v1    = "is-1v1"
	ColAPM      = "my-apm"
	ColWin      = "my-win"
	ColRace     = "my-race"
)

// CSV parses comma-separated sctool output. Blank lines are ignored and the
// first remaining line is the header. Input without at least one data row
// yields an empty slice.
func CSV(text string) []model.ReplayData {
	var lines []string
	for _, line := range strings.Split(strings.TrimPrefix(text, bom), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) < 2 {
		return []model.ReplayData{}
	}

	headers := splitTrim(lines[0])
	data := make([]model.ReplayData, 0, len(lines)-1)
	for _, line := range lines[1:] {
		values := splitTrim(line)
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(values) {
				row[h] = values[i]
			} else {
				delete(row, h)
			}
		}
		data = append(data, buildRow(row))
	}
	return data
}

func buildRow(row map[string]string) model.ReplayData {
	rd := model.ReplayData{
		Date:      row[ColDate],
		MapName:   row[ColMap],
		Matchup:   row[ColMatchup],
		Is1v1:     row[ColIs1v1] == "true",
		PlayerWin: row[ColWin] == "true",
	}
	if d, ok := leadingInt(row[ColDuration]); ok {
		rd.Duration = d
	}
	if raw := row[ColAPM]; raw != "" {
		if apm, ok := leadingInt(raw); ok {
			rd.PlayerAPM = &apm
		}
	}
	if race := row[ColRace]; race != "" {
		rd.PlayerRace = &race
	}
	return rd
}

// JSON parses a JSON array of rows. Anything else is logged and yields an
// empty slice.
func JSON(logger *slog.Logger, text string) []model.ReplayData {
	if logger == nil {
		logger = slog.Default()
	}
	trimmed := bytes.TrimSpace([]byte(strings.TrimPrefix(text, bom)))
	if len(trimmed) == 0 || trimmed[0] != '[' {
		if err := checkJSON(trimmed); err != nil {
			logger.Error("failed to parse JSON output", "error", err)
		} else {
			logger.Warn("JSON output is not an array")
		}
		return []model.ReplayData{}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		logger.Error("failed to parse JSON output", "error", err)
		return []model.ReplayData{}
	}
	data := make([]model.ReplayData, 0, len(items))
	for i, item := range items {
		var rd model.ReplayData
		if err := json.Unmarshal(item, &rd); err != nil {
			logger.Warn("skipping malformed JSON row", "index", i, "error", err)
			continue
		}
		data = append(data, rd)
	}
	return data
}

// Rows parses output according to the format it was requested in.
func Rows(logger *slog.Logger, format model.OutputFormat, text string) []model.ReplayData {
	if format == model.FormatJSON {
		return JSON(logger, text)
	}
	return CSV(text)
}

func checkJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

func splitTrim(line string) []string {
	parts := strings.Split(line, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// leadingInt reads an optionally signed run of digits at the start of s,
// ignoring anything after it, so "15m" parses as 15 and "1.5" as 1.
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
