package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/logic-reflect/internal/campaign"
)

// RankingKeyMap defines the key bindings for the ranking screen.
type RankingKeyMap struct {
	Up   key.Binding
	Down key.Binding
	Back key.Binding
	Quit key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k RankingKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Back, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k RankingKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, {k.Back, k.Quit}}
}

// DefaultRankingKeyMap returns default key bindings.
func DefaultRankingKeyMap() RankingKeyMap {
	return RankingKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b", "enter"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// RankingModel shows the fail ranking in a table. It is embedded in the
// player model rather than run as its own program.
type RankingModel struct {
	entries   []campaign.RankingEntry
	highlight int // row of the entry just submitted, -1 for none
	table     table.Model
	help      help.Model
	keys      RankingKeyMap
	width     int
	height    int
	back      bool
	quitting  bool
}

// NewRankingModel creates a ranking view over entries. highlight is the
// index of the row to select first, or -1.
func NewRankingModel(entries []campaign.RankingEntry, highlight, width, height int) RankingModel {
	h := help.New()
	h.Width = width

	m := RankingModel{
		entries:   entries,
		highlight: highlight,
		help:      h,
		keys:      DefaultRankingKeyMap(),
		width:     width,
		height:    height,
	}
	m.table = m.createTable()
	m.updateTableRows()
	return m
}

// createTable creates a new table with appropriate columns.
func (m *RankingModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Rank", Width: 6},
		{Title: "Name", Width: 6},
		{Title: "Coins", Width: 7},
		{Title: "Level", Width: 20},
		{Title: "Date", Width: 14},
	}

	tableHeight := m.height - 8 // Leave room for header, help, and margins
	if tableHeight < 3 {
		tableHeight = 3
	}
	if n := len(m.entries) + 1; tableHeight > n {
		tableHeight = n
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(tableHeight),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// updateTableRows fills the table from entries.
func (m *RankingModel) updateTableRows() {
	rows := make([]table.Row, len(m.entries))
	for i, e := range m.entries {
		rows[i] = table.Row{
			fmt.Sprintf("#%d", i+1),
			e.Initials,
			fmt.Sprintf("%d", e.Score),
			e.Level,
			e.At.Local().Format("Jan 02 15:04"),
		}
	}
	m.table.SetRows(rows)

	if m.highlight >= 0 && m.highlight < len(rows) {
		m.table.SetCursor(m.highlight)
	} else {
		m.table.GotoTop()
	}
}

// Init initializes the ranking model.
func (m RankingModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the ranking view.
func (m RankingModel) Update(msg tea.Msg) (RankingModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, nil
		case key.Matches(msg, m.keys.Back):
			m.back = true
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the ranking.
func (m RankingModel) View() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)
	b.WriteString(titleStyle.Render(centerText("RANKING", m.width)))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	b.WriteString(centerBlock(tableStyle.Render(m.renderTableContent()), m.width))

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderTableContent renders the table or empty message.
func (m RankingModel) renderTableContent() string {
	if len(m.entries) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		return emptyStyle.Render("No ranking entries yet.\nFail a level to leave your initials!")
	}
	return m.table.View()
}

// WantsBack returns true if the user left the ranking.
func (m RankingModel) WantsBack() bool {
	return m.back
}

// IsQuitting returns true if the user wants to quit entirely.
func (m RankingModel) IsQuitting() bool {
	return m.quitting
}
