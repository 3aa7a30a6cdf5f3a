// Package dashboard provides the Bubble Tea replay dashboard.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/scdash/internal/analysis"
	"github.com/verte-zerg/scdash/internal/catalog"
	"github.com/verte-zerg/scdash/internal/export"
	"github.com/verte-zerg/scdash/internal/model"
	"github.com/verte-zerg/scdash/internal/parse"
	"github.com/verte-zerg/scdash/internal/pathcheck"
	"github.com/verte-zerg/scdash/internal/store"
)

const (
	tabOverview = iota
	tabGames
	tabSettings
)

const noticeTTL = 5 * time.Second

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E0A030"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FA8D3"))
	cardStyle    = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	selectedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
)

// Level is the severity of a notification.
type Level int

// Notification levels.
const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

type notice struct {
	level Level
	text  string
	id    int
}

// Options wires the dashboard to the analysis backend.
type Options struct {
	Service   *analysis.Service
	Exporter  *export.Exporter
	Catalog   *catalog.Catalog
	Validator pathcheck.Validator
	Settings  model.Settings
	// Latest is the cached result shown before the first run, if any.
	Latest    *store.Latest
	Binary    string
	ExportDir string
	Overwrite bool
	Logger    *slog.Logger
}

type validationMsg struct {
	result pathcheck.Validation
	ok     bool
	seq    int
}

type runDoneMsg struct {
	result   model.AnalysisResult
	settings model.Settings
	err      error
}

type exportDoneMsg struct {
	kind export.Kind
	path string
	err  error
}

type noticeExpiredMsg struct {
	id int
}

// Model implements the Bubble Tea dashboard.
type Model struct {
	service   *analysis.Service
	exporter  *export.Exporter
	catalog   *catalog.Catalog
	validator *pathcheck.Latest
	logger    *slog.Logger
	binary    string
	exportDir string
	overwrite bool

	settings   model.Settings
	validation *pathcheck.Validation
	validating bool
	running    bool
	spinner    spinner.Model

	// validateSeq orders validation commands, which tea may start in any order.
	validateSeq int

	rows       []model.ReplayData
	withPlayer bool
	lastResult *model.AnalysisResult
	lastRunAt  time.Time

	tabs      []string
	activeTab int
	overview  viewport.Model
	games     table.Model

	fields      []field
	fieldIndex  int
	fieldOffset int
	editing     bool
	input       textinput.Model
	exportMode  bool

	notice    notice
	noticeID  int
	noticeTTL time.Duration

	width  int
	height int
}

// New constructs a dashboard model.
func New(opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cat := opts.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	validator := opts.Validator
	if validator == nil {
		validator = pathcheck.Dir{}
	}
	m := &Model{
		service:   opts.Service,
		exporter:  opts.Exporter,
		catalog:   cat,
		validator: pathcheck.NewLatest(validator),
		logger:    logger,
		binary:    opts.Binary,
		exportDir: opts.ExportDir,
		overwrite: opts.Overwrite,
		settings:  opts.Settings,
		tabs:      []string{"Overview", "Games", "Settings"},
		overview:  viewport.New(0, 0),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		noticeTTL: noticeTTL,
	}
	m.fields = buildFields(cat)
	m.input = newInput()
	m.games = buildGamesTable(nil, false, 0, 1)
	if opts.Latest != nil {
		m.setRows(parse.CSV(opts.Latest.Output), opts.Latest.Settings.PlayerName != "")
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.settings.ReplayPath == "" {
		return nil
	}
	m.validating = true
	return m.validateCmd()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case validationMsg:
		if !msg.ok || msg.seq != m.validateSeq {
			return m, nil
		}
		m.validating = false
		res := msg.result
		m.validation = &res
		return m, nil
	case runDoneMsg:
		return m.handleRunDone(msg)
	case exportDoneMsg:
		return m.handleExportDone(msg)
	case noticeExpiredMsg:
		if msg.id == m.notice.id {
			m.notice = notice{}
			m.updateLayout()
		}
		return m, nil
	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.editing {
			return m.updateEdit(msg)
		}
		if m.exportMode {
			return m.updateExport(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "1", "2", "3":
			m.setTab(int(msg.String()[0] - '1'))
			return m, tea.ClearScreen
		case "r":
			return m.startRun()
		case "e":
			m.exportMode = true
			return m, nil
		}
		switch m.activeTab {
		case tabSettings:
			return m.updateSettings(msg)
		case tabGames:
			var cmd tea.Cmd
			m.games, cmd = m.games.Update(msg)
			return m, cmd
		default:
			var cmd tea.Cmd
			m.overview, cmd = m.overview.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

// Settings returns the settings currently shown in the form.
func (m *Model) Settings() model.Settings {
	return m.settings
}

func (m *Model) validateCmd() tea.Cmd {
	m.validateSeq++
	seq := m.validateSeq
	path, recursive := m.settings.ReplayPath, m.settings.RecursiveSearch
	validator := m.validator
	return func() tea.Msg {
		res, ok := validator.Validate(context.Background(), path, recursive)
		return validationMsg{result: res, ok: ok, seq: seq}
	}
}

func (m *Model) notify(level Level, text string) tea.Cmd {
	m.noticeID++
	m.notice = notice{level: level, text: text, id: m.noticeID}
	m.updateLayout()
	id := m.noticeID
	return tea.Tick(m.noticeTTL, func(time.Time) tea.Msg {
		return noticeExpiredMsg{id: id}
	})
}

func (m *Model) startRun() (tea.Model, tea.Cmd) {
	if m.running || m.service == nil {
		return m, nil
	}
	if m.settings.ReplayPath == "" {
		return m, m.notify(LevelError, "Please select a replay directory first")
	}
	if m.validating || m.validation == nil || !m.validation.Valid {
		return m, m.notify(LevelError, "Please fix the replay path validation error first")
	}
	m.running = true
	settings := m.settings
	settings.SelectedAnalyzers = append([]string(nil), settings.SelectedAnalyzers...)
	service := m.service
	run := func() tea.Msg {
		res, err := service.Run(context.Background(), settings)
		return runDoneMsg{result: res, settings: settings, err: err}
	}
	return m, tea.Batch(
		m.notify(LevelInfo, "Starting analysis... This may take a few moments."),
		m.spinner.Tick,
		run,
	)
}

func (m *Model) handleRunDone(msg runDoneMsg) (tea.Model, tea.Cmd) {
	m.running = false
	switch {
	case errors.Is(msg.err, analysis.ErrRunInProgress):
		return m, m.notify(LevelWarning, "An analysis is already running.")
	case msg.result.Success:
		res := msg.result
		m.lastResult = &res
		m.lastRunAt = time.Now()
		m.setRows(m.service.Rows(res, msg.settings.OutputFormat), msg.settings.PlayerName != "")
		if msg.err != nil {
			m.logger.Error("failed to cache analysis result", "err", msg.err)
			return m, m.notify(LevelWarning, "Analysis completed but the result could not be cached.")
		}
		return m, m.notify(LevelSuccess, fmt.Sprintf("Analysis completed successfully! Processed %d files in %dms.",
			res.FileCount, res.ExecutionTime.Milliseconds()))
	case msg.result.Error != "":
		return m, m.notify(LevelError, "Analysis failed: "+msg.result.Error)
	case msg.err != nil:
		m.logger.Error("analysis failed", "err", msg.err)
		return m, m.notify(LevelError, "Analysis failed: "+msg.err.Error())
	}
	return m, nil
}

func (m *Model) exportCmd(kind export.Kind) tea.Cmd {
	exporter := m.exporter
	opts := export.Options{Dir: m.exportDir, Overwrite: m.overwrite}
	return func() tea.Msg {
		path, err := exporter.WriteFile(context.Background(), kind, opts)
		return exportDoneMsg{kind: kind, path: path, err: err}
	}
}

func (m *Model) updateExport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.exportMode = false
	if m.exporter == nil {
		return m, nil
	}
	switch msg.String() {
	case "c":
		return m, m.exportCmd(export.KindCSV)
	case "j":
		return m, m.exportCmd(export.KindJSON)
	case "r":
		return m, m.exportCmd(export.KindReport)
	case "h":
		return m, m.exportCmd(export.KindCharts)
	}
	return m, nil
}

func (m *Model) handleExportDone(msg exportDoneMsg) (tea.Model, tea.Cmd) {
	if errors.Is(msg.err, export.ErrNoResult) {
		return m, m.notify(LevelWarning, "No analysis results available. Please run an analysis first.")
	}
	if msg.err != nil {
		m.logger.Error("export failed", "kind", msg.kind, "err", msg.err)
		return m, m.notify(LevelError, exportFailure(msg.kind))
	}
	return m, m.notify(LevelSuccess, exportSuccess(msg.kind)+" "+msg.path)
}

func exportSuccess(kind export.Kind) string {
	switch kind {
	case export.KindCSV:
		return "CSV export completed successfully!"
	case export.KindJSON:
		return "JSON export completed successfully!"
	case export.KindCharts:
		return "Charts exported successfully!"
	default:
		return "Report exported successfully!"
	}
}

func exportFailure(kind export.Kind) string {
	switch kind {
	case export.KindCSV:
		return "Failed to export CSV file."
	case export.KindJSON:
		return "Failed to export JSON file."
	case export.KindCharts:
		return "Failed to export charts."
	default:
		return "Failed to export report."
	}
}

func (m *Model) setRows(rows []model.ReplayData, withPlayer bool) {
	m.rows = rows
	m.withPlayer = withPlayer
	m.applyGamesTable()
	m.renderOverview()
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.setTab(next)
}

func (m *Model) setTab(idx int) {
	if idx < 0 || idx >= len(m.tabs) {
		return
	}
	m.activeTab = idx
	if m.activeTab == tabGames {
		m.games.Focus()
	} else {
		m.games.Blur()
	}
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.notice.text != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	m.games.SetWidth(m.width)
	m.games.SetHeight(maxInt(1, bodyHeight-1))
	promptWidth := lipgloss.Width(m.input.Prompt)
	m.input.Width = maxInt(10, m.width-promptWidth-2)
	m.renderOverview()
}
