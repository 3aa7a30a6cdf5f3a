package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/scdash/internal/catalog"
	"github.com/verte-zerg/scdash/internal/command"
	"github.com/verte-zerg/scdash/internal/model"
)

type fieldKind int

const (
	fieldPath fieldKind = iota
	fieldPlayer
	fieldRecursive
	fieldFormat
	fieldAnalyzer
	fieldReset
)

type field struct {
	kind     fieldKind
	analyzer catalog.Descriptor
	// category is set on the first analyzer of each category.
	category string
}

func buildFields(cat *catalog.Catalog) []field {
	fields := []field{{kind: fieldPath}, {kind: fieldPlayer}, {kind: fieldRecursive}, {kind: fieldFormat}}
	groups := cat.ByCategory()
	for _, name := range cat.Categories() {
		for i, d := range groups[name] {
			f := field{kind: fieldAnalyzer, analyzer: d}
			if i == 0 {
				f.category = name
			}
			fields = append(fields, f)
		}
	}
	return append(fields, field{kind: fieldReset})
}

func newInput() textinput.Model {
	input := textinput.New()
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k", "shift+tab":
		m.moveField(-1)
		return m, nil
	case "down", "j", "tab":
		m.moveField(1)
		return m, nil
	case "g", "home":
		m.fieldIndex = 0
		return m, nil
	case "G", "end":
		m.fieldIndex = len(m.fields) - 1
		return m, nil
	case "enter", " ":
		return m.activateField()
	}
	return m, nil
}

func (m *Model) moveField(delta int) {
	next := m.fieldIndex + delta
	if next < 0 {
		next = len(m.fields) - 1
	}
	if next >= len(m.fields) {
		next = 0
	}
	m.fieldIndex = next
}

func (m *Model) activateField() (tea.Model, tea.Cmd) {
	f := m.fields[m.fieldIndex]
	switch f.kind {
	case fieldPath:
		return m.startEdit("Replay directory: ", m.settings.ReplayPath, "/path/to/replays")
	case fieldPlayer:
		return m.startEdit("Player name: ", m.settings.PlayerName, "leave empty to skip player analyzers")
	case fieldRecursive:
		m.settings.RecursiveSearch = !m.settings.RecursiveSearch
		if m.settings.ReplayPath != "" {
			m.validating = true
			return m, m.validateCmd()
		}
	case fieldFormat:
		if m.settings.OutputFormat == model.FormatJSON {
			m.settings.OutputFormat = model.FormatCSV
		} else {
			m.settings.OutputFormat = model.FormatJSON
		}
	case fieldAnalyzer:
		m.settings.ToggleAnalyzer(f.analyzer.Key)
	case fieldReset:
		m.settings = model.DefaultSettings()
		m.validation = nil
		m.validating = false
		m.validateSeq++
		return m, m.notify(LevelInfo, "Settings reset to defaults.")
	}
	return m, nil
}

func (m *Model) startEdit(prompt, value, placeholder string) (tea.Model, tea.Cmd) {
	m.editing = true
	m.input.Prompt = prompt
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.updateLayout()
	return m, m.input.Focus()
}

func (m *Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.editing = false
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		m.editing = false
		m.input.Blur()
		return m.applyEdit(strings.TrimSpace(m.input.Value()))
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) applyEdit(value string) (tea.Model, tea.Cmd) {
	switch m.fields[m.fieldIndex].kind {
	case fieldPath:
		if value == m.settings.ReplayPath {
			return m, nil
		}
		m.settings.ReplayPath = value
		m.validating = true
		validate := m.validateCmd()
		if value == "" {
			return m, validate
		}
		return m, tea.Batch(validate, m.notify(LevelInfo, "Replay path updated. Validation in progress..."))
	case fieldPlayer:
		m.settings.PlayerName = value
	}
	return m, nil
}

func (m *Model) renderSettings(height int) string {
	lines := make([]string, 0, len(m.fields)+8)
	cursorLine := 0
	for i, f := range m.fields {
		if f.category != "" {
			lines = append(lines, "", headerStyle.Render(f.category))
		}
		if f.kind == fieldReset {
			lines = append(lines, "")
		}
		if i == m.fieldIndex {
			cursorLine = len(lines)
		}
		lines = append(lines, m.renderField(f, i == m.fieldIndex))
		if f.kind == fieldPath {
			if status := m.renderValidation(); status != "" {
				lines = append(lines, "    "+status)
			}
		}
	}
	preview := command.String(m.binary, command.Build(m.settings))
	lines = append(lines, "", headerStyle.Render("Command preview"), truncateLine(preview, m.width))

	// Keep the selected field on screen.
	if cursorLine < m.fieldOffset {
		m.fieldOffset = cursorLine
	}
	if cursorLine >= m.fieldOffset+height {
		m.fieldOffset = cursorLine - height + 1
	}
	if m.fieldIndex == 0 {
		m.fieldOffset = 0
	}
	if m.fieldOffset > len(lines)-1 {
		m.fieldOffset = maxInt(0, len(lines)-1)
	}
	return strings.Join(lines[m.fieldOffset:], "\n")
}

func (m *Model) renderField(f field, selected bool) string {
	marker := "  "
	if selected {
		marker = "> "
	}
	var line string
	switch f.kind {
	case fieldPath:
		line = "Replay directory: " + valueOr(m.settings.ReplayPath, "(not set)")
	case fieldPlayer:
		line = "Player name: " + valueOr(m.settings.PlayerName, "(not set)")
	case fieldRecursive:
		line = checkbox(m.settings.RecursiveSearch) + " Search subdirectories"
	case fieldFormat:
		line = "Output format: " + strings.ToUpper(string(m.settings.OutputFormat))
	case fieldAnalyzer:
		line = fmt.Sprintf("%s %s (%s)", checkbox(m.settings.HasAnalyzer(f.analyzer.Key)), f.analyzer.Label, f.analyzer.Key)
	case fieldReset:
		line = "Reset to defaults"
	}
	if selected {
		return selectedStyle.Render(marker + line)
	}
	return marker + line
}

func (m *Model) renderValidation() string {
	switch {
	case m.validating && m.settings.ReplayPath != "":
		return headerStyle.Render("Validating...")
	case m.validation == nil:
		return ""
	case m.validation.Valid:
		return successStyle.Render(fmt.Sprintf("Found %d replay files", m.validation.FileCount))
	default:
		return errorStyle.Render(m.validation.Error)
	}
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
