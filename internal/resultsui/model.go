// Package resultsui provides the Bubble Tea results browser.
package resultsui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/hab-project/reauthstat/internal/model"
)

const naCell = "NA"

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
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea results browser over a finished batch.
type Model struct {
	results []model.ComparisonResult

	activeTab int
	tables    []table.Model

	width  int
	height int
}

// NewModel constructs a results browser for the given batch results.
func NewModel(results []model.ComparisonResult) *Model {
	m := &Model{results: results}
	m.tables = make([]table.Model, len(results))
	for i, result := range results {
		m.tables[i] = buildSummaryTable(result, 0, 1)
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "g", "home":
			if m.hasTable() {
				m.tables[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.hasTable() {
				m.tables[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if !m.hasTable() {
				return m, nil
			}
			var cmd tea.Cmd
			m.tables[m.activeTab], cmd = m.tables[m.activeTab].Update(msg)
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
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) hasTable() bool {
	return m.activeTab >= 0 && m.activeTab < len(m.tables) && m.results[m.activeTab].Err == nil
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
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
	for i := range m.tables {
		m.tables[i].SetWidth(m.width)
		m.tables[i].SetHeight(maxInt(1, bodyHeight-1))
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.results)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	if m.hasTable() {
		m.tables[m.activeTab].Blur()
	}
	m.activeTab = next
	if m.hasTable() {
		m.tables[m.activeTab].Focus()
	}
}

func (m *Model) renderHeader() string {
	parts := make([]string, 0, len(m.results))
	for i, result := range m.results {
		label := result.Label
		if label == "" {
			label = fmt.Sprintf("config %d", i+1)
		}
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(label))
		} else {
			parts = append(parts, inactiveNavStyle.Render(label))
		}
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	return tabs + "\n" + m.renderStatus()
}

func (m *Model) renderStatus() string {
	if len(m.results) == 0 {
		return headerStyle.Render("No configurations.")
	}
	result := m.results[m.activeTab]
	status := fmt.Sprintf("Strategy: %s  groups=%d  approx=%d", result.Strategy, len(result.Empirical), len(result.Approx))
	if result.ProbScaleMax > 0 {
		status += fmt.Sprintf("  prob-axis=0..%.4g", result.ProbScaleMax)
	}
	return headerStyle.Render(runewidth.Truncate(status, maxInt(1, m.width), "..."))
}

func (m *Model) renderBody() string {
	if len(m.results) == 0 {
		return "No configurations."
	}
	result := m.results[m.activeTab]
	if result.Err != nil {
		return errorStyle.Render(fmt.Sprintf("Configuration failed: %v", result.Err))
	}
	if len(result.Empirical) == 0 {
		return "No groups found."
	}
	return tableMutedStyle.Render(m.tables[m.activeTab].View())
}

func (m *Model) renderFooter() string {
	return headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Top/Bottom: g/G  Quit: q")
}

func buildSummaryTable(result model.ComparisonResult, width, height int) table.Model {
	columns := []table.Column{
		{Title: "Missed", Width: 6},
		{Title: "Trials", Width: 6},
		{Title: "MissProb", Width: 8},
		{Title: "Mean", Width: 8},
		{Title: "Median", Width: 6},
		{Title: "Q25", Width: 6},
		{Title: "Q75", Width: 6},
		{Title: "~Median", Width: 7},
		{Title: "~Q25", Width: 5},
		{Title: "~Q75", Width: 5},
	}
	approxByKey := make(map[model.GroupKey]model.ApproxSummary, len(result.Approx))
	for _, a := range result.Approx {
		approxByKey[a.Key] = a
	}
	rows := make([]table.Row, 0, len(result.Empirical))
	for _, s := range result.Empirical {
		row := table.Row{
			strconv.Itoa(s.Key.NumMissed),
			strconv.Itoa(s.Count),
			fmt.Sprintf("%.3f", s.MissProb),
		}
		if s.Defined {
			row = append(row,
				fmt.Sprintf("%.2f", s.Mean),
				fmt.Sprintf("%.1f", s.Median),
				fmt.Sprintf("%.1f", s.Q25),
				fmt.Sprintf("%.1f", s.Q75),
			)
		} else {
			row = append(row, naCell, naCell, naCell, naCell)
		}
		if a, ok := approxByKey[s.Key]; ok {
			row = append(row,
				strconv.Itoa(a.Median),
				strconv.Itoa(a.Q25),
				strconv.Itoa(a.Q75),
			)
		} else {
			row = append(row, naCell, naCell, naCell)
		}
		rows = append(rows, row)
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height)),
	)
	t.SetWidth(width)
	t.SetStyles(summaryTableStyles())
	return t
}

func summaryTableStyles() table.Styles {
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
