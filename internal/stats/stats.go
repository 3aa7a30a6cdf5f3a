// Package stats contains replay statistics and text reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/scdash/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary aggregates a set of parsed replays.
type Summary struct {
	Games        int
	AvgDuration  int
	UniqueMaps   int
	LongestGame  int
	ShortestGame int
	OneV1Games   int

	// Player figures are only meaningful when HasPlayerData is set.
	HasPlayerData bool
	Wins          int
	WinRate       float64
	AvgAPM        float64
}

// Count is the number of games sharing a label.
type Count struct {
	Label string
	Games int
}

// Summarize computes summary aggregates. The average duration is rounded
// half up, and the unique map count includes an empty map name if present.
func Summarize(rows []model.ReplayData) Summary {
	s := Summary{Games: len(rows)}
	if len(rows) == 0 {
		return s
	}
	maps := map[string]struct{}{}
	totalDuration := 0
	apmSum, apmCount := 0, 0
	s.ShortestGame = rows[0].Duration
	for _, r := range rows {
		totalDuration += r.Duration
		maps[r.MapName] = struct{}{}
		if r.Duration > s.LongestGame {
			s.LongestGame = r.Duration
		}
		if r.Duration < s.ShortestGame {
			s.ShortestGame = r.Duration
		}
		if r.Is1v1 {
			s.OneV1Games++
		}
		if r.PlayerAPM != nil || r.PlayerRace != nil {
			s.HasPlayerData = true
		}
		if r.PlayerWin {
			s.Wins++
		}
		if r.PlayerAPM != nil {
			apmSum += *r.PlayerAPM
			apmCount++
		}
	}
	s.AvgDuration = RoundHalfUp(float64(totalDuration) / float64(len(rows)))
	s.UniqueMaps = len(maps)
	s.WinRate = float64(s.Wins) / float64(len(rows))
	if apmCount > 0 {
		s.AvgAPM = float64(apmSum) / float64(apmCount)
	}
	return s
}

// RoundHalfUp rounds to the nearest integer, with halves going up.
func RoundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// CountBy groups rows by key, most frequent first, then by label.
// Rows with an empty key are skipped.
func CountBy(rows []model.ReplayData, key func(model.ReplayData) string) []Count {
	counts := map[string]int{}
	for _, r := range rows {
		k := key(r)
		if k == "" {
			continue
		}
		counts[k]++
	}
	out := make([]Count, 0, len(counts))
	for label, n := range counts {
		out = append(out, Count{Label: label, Games: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Games == out[j].Games {
			return out[i].Label < out[j].Label
		}
		return out[i].Games > out[j].Games
	})
	return out
}

// MapCounts counts games per map.
func MapCounts(rows []model.ReplayData) []Count {
	return CountBy(rows, func(r model.ReplayData) string { return r.MapName })
}

// MatchupCounts counts games per matchup.
func MatchupCounts(rows []model.ReplayData) []Count {
	return CountBy(rows, func(r model.ReplayData) string { return r.Matchup })
}

// GamesPerDate counts games per date, in date order.
func GamesPerDate(rows []model.ReplayData) []Count {
	counts := CountBy(rows, func(r model.ReplayData) string { return r.Date })
	sort.Slice(counts, func(i, j int) bool { return counts[i].Label < counts[j].Label })
	return counts
}

// Durations returns game durations in row order.
func Durations(rows []model.ReplayData) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = float64(r.Duration)
	}
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints the summary block.
func RenderSummary(w io.Writer, s Summary) error {
	if s.Games == 0 {
		_, err := fmt.Fprintln(w, "No games found.")
		return err
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Total Games: %d", s.Games),
		fmt.Sprintf("Average Duration: %d minutes", s.AvgDuration),
		fmt.Sprintf("Unique Maps: %d", s.UniqueMaps),
		fmt.Sprintf("Longest Game: %dm", s.LongestGame),
		fmt.Sprintf("Shortest Game: %dm", s.ShortestGame),
	}
	if s.HasPlayerData {
		lines = append(lines,
			fmt.Sprintf("Win Rate: %.1f%%", s.WinRate*100),
			fmt.Sprintf("Average APM: %.0f", s.AvgAPM),
		)
	}
	for _, line := range append(lines, "") {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCounts prints a two-column table of counts under title.
func RenderCounts(w io.Writer, title, label string, counts []Count) error {
	if len(counts) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.Label, fmt.Sprintf("%d", c.Games)})
	}
	for _, line := range formatTable([]string{label, "Games"}, rows, map[int]bool{1: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderGames prints up to limit rows as a table. Player columns are shown
// when withPlayer is set.
func RenderGames(w io.Writer, rows []model.ReplayData, limit int, withPlayer bool) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No games found.")
		return err
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	headers := []string{"Date", "Duration", "Map", "Matchup"}
	rightAlign := map[int]bool{1: true}
	if withPlayer {
		headers = append(headers, "Race", "APM", "Result")
		rightAlign[5] = true
	}
	table := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells := []string{r.Date, fmt.Sprintf("%dm", r.Duration), r.MapName, r.Matchup}
		if withPlayer {
			cells = append(cells, RaceLabel(r), APMLabel(r), ResultLabel(r))
		}
		table = append(table, cells)
	}
	for _, line := range formatTable(headers, table, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// APMLabel formats the player APM, or N/A when unknown or zero.
func APMLabel(r model.ReplayData) string {
	if r.PlayerAPM == nil || *r.PlayerAPM == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d", *r.PlayerAPM)
}

// ResultLabel formats the player result.
func ResultLabel(r model.ReplayData) string {
	if r.PlayerWin {
		return "Win"
	}
	return "Loss"
}

// RaceLabel formats the player race.
func RaceLabel(r model.ReplayData) string {
	if r.PlayerRace == nil {
		return "-"
	}
	return *r.PlayerRace
}
