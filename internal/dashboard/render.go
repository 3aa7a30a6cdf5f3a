package dashboard

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/scdash/internal/model"
	"github.com/verte-zerg/scdash/internal/stats"
)

const noResults = "No analysis results yet. Open Settings, then press r to run an analysis."

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	return tabs + "\n" + padLines(m.renderStatus(), m.width)
}

func (m *Model) renderStatus() string {
	path := valueOr(m.settings.ReplayPath, "none")
	status := fmt.Sprintf("Replays: %s  analyzers=%d  format=%s", path, len(m.settings.SelectedAnalyzers), m.settings.OutputFormat)
	if m.running {
		return m.spinner.View() + " " + headerStyle.Render(truncateLine("Analyzing... "+status, m.width-2))
	}
	if !m.lastRunAt.IsZero() {
		status += "  last run " + humanize.Time(m.lastRunAt)
	}
	return headerStyle.Render(truncateLine(status, m.width))
}

func (m *Model) renderHelp() string {
	switch {
	case m.editing:
		return headerStyle.Render("enter: apply  esc: cancel")
	case m.exportMode:
		return headerStyle.Render("Export: c csv  j json  r report  h charts  any other key: cancel")
	case m.activeTab == tabSettings:
		return headerStyle.Render("Nav: left/right  Move: up/down  Toggle/edit: enter  Run: r  Export: e  Quit: q")
	default:
		return headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Run: r  Export: e  Quit: q")
	}
}

func (m *Model) renderFooter() string {
	help := m.renderHelp()
	if m.notice.text == "" {
		return help
	}
	return help + "\n" + noticeStyle(m.notice.level).Render(truncateLine(m.notice.text, m.width))
}

func noticeStyle(level Level) lipgloss.Style {
	switch level {
	case LevelSuccess:
		return successStyle
	case LevelWarning:
		return warningStyle
	case LevelError:
		return errorStyle
	default:
		return infoStyle
	}
}

func (m *Model) renderBody(height int) string {
	switch m.activeTab {
	case tabSettings:
		if m.editing {
			return fitLines(m.input.View(), m.width, height)
		}
		return fitLines(m.renderSettings(height), m.width, height)
	case tabGames:
		if len(m.rows) == 0 {
			return fitLines(noResults, m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.games.View()), m.width, height)
	default:
		return fitLines(m.overview.View(), m.width, height)
	}
}

func (m *Model) renderOverview() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.overview.SetContent(renderOverview(m.rows, m.lastResult, width))
}

func renderOverview(rows []model.ReplayData, last *model.AnalysisResult, width int) string {
	if len(rows) == 0 {
		return noResults
	}
	summary := stats.Summarize(rows)
	parts := []string{renderSummaryCards(summary, width)}
	if last != nil {
		parts = append(parts, headerStyle.Render(fmt.Sprintf("Last run: %s replay files in %s",
			humanize.Comma(int64(last.FileCount)), last.ExecutionTime.Round(time.Millisecond))))
	}
	spark := stats.Sparkline(stats.Durations(rows))
	parts = append(parts, fmt.Sprintf("Durations  %s  (shortest %dm, longest %dm, 1v1 games %d)",
		truncateLine(spark, maxInt(10, width-50)), summary.ShortestGame, summary.LongestGame, summary.OneV1Games))

	var buf bytes.Buffer
	if err := stats.RenderCounts(&buf, "Games per Matchup", "Matchup", stats.MatchupCounts(rows)); err != nil {
		return fmt.Sprintf("Failed to render matchups: %v", err)
	}
	if err := stats.RenderCounts(&buf, "Games per Map", "Map", stats.MapCounts(rows)); err != nil {
		return fmt.Sprintf("Failed to render maps: %v", err)
	}
	parts = append(parts, buf.String())
	return strings.TrimRight(strings.Join(parts, "\n\n"), "\n")
}

func renderSummaryCards(s stats.Summary, width int) string {
	cards := []string{
		metricCard("Total Games", humanize.Comma(int64(s.Games))),
		metricCard("Avg Duration", fmt.Sprintf("%d min", s.AvgDuration)),
		metricCard("Maps Played", humanize.Comma(int64(s.UniqueMaps))),
	}
	if s.HasPlayerData {
		cards = append(cards,
			metricCard("Win Rate", fmt.Sprintf("%.1f%%", s.WinRate*100)),
			metricCard("Avg APM", humanize.Comma(int64(stats.RoundHalfUp(s.AvgAPM)))),
		)
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func buildGamesTable(rows []model.ReplayData, withPlayer bool, width, height int) table.Model {
	cols, data := gamesTableData(rows, withPlayer)
	t := table.New(
		table.WithColumns(cols),
		table.WithRows(data),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(gamesTableStyles())
	return t
}

func (m *Model) applyGamesTable() {
	cols, data := gamesTableData(m.rows, m.withPlayer)
	// Columns must shrink before rows narrow, and rows must match columns.
	m.games.SetRows(nil)
	m.games.SetColumns(cols)
	m.games.SetRows(data)
	m.games.GotoTop()
}

func gamesTableData(rows []model.ReplayData, withPlayer bool) ([]table.Column, []table.Row) {
	cols := []table.Column{
		{Title: "#", Width: 4},
		{Title: "Date", Width: 11},
		{Title: "Duration", Width: 9},
		{Title: "Map", Width: 18},
		{Title: "Matchup", Width: 8},
	}
	if withPlayer {
		cols = append(cols,
			table.Column{Title: "Race", Width: 8},
			table.Column{Title: "APM", Width: 5},
			table.Column{Title: "Result", Width: 6},
		)
	}
	out := make([]table.Row, 0, len(rows))
	for i, r := range rows {
		row := table.Row{
			fmt.Sprintf("%d", i+1),
			r.Date,
			fmt.Sprintf("%dm", r.Duration),
			r.MapName,
			r.Matchup,
		}
		if withPlayer {
			row = append(row, stats.RaceLabel(r), stats.APMLabel(r), stats.ResultLabel(r))
		}
		out = append(out, row)
	}
	return cols, out
}

func gamesTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
