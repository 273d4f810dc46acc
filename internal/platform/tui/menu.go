package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/logic-reflect/internal/campaign"
)

// MenuItem is one level in the picker.
type MenuItem struct {
	LevelID  string
	Name     string
	Progress campaign.Progress
}

// MenuModel is the level picker. It is embedded in the player model.
type MenuModel struct {
	items        []MenuItem
	cursor       int
	scrollOffset int
	width        int
	height       int
	theme        Theme
	quitting     bool
	back         bool
	selected     *MenuItem // Set when user selects a level
}

// NewMenuModel builds the picker from the campaign order with the cursor
// on the current level.
func NewMenuModel(c *campaign.Campaign, theme Theme, width, height int) MenuModel {
	lvls := c.Levels()
	items := make([]MenuItem, 0, len(lvls))
	for _, l := range lvls {
		items = append(items, MenuItem{
			LevelID:  l.ID,
			Name:     l.Name,
			Progress: c.Progress(l.ID),
		})
	}

	m := MenuModel{
		items:  items,
		cursor: c.Index(),
		width:  width,
		height: height,
		theme:  theme,
	}
	m.updateScroll()
	return m
}

// Update handles messages for the picker.
func (m MenuModel) Update(msg tea.Msg) (MenuModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateScroll()
	}

	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (MenuModel, tea.Cmd) {
	switch MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		m.quitting = true

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
			m.updateScroll()
		}

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
			m.updateScroll()
		}

	case MenuActionSelect:
		if len(m.items) > 0 {
			selected := m.items[m.cursor]
			m.selected = &selected
		}

	case MenuActionBack:
		m.back = true
	}

	return m, nil
}

func (m MenuModel) visibleItems() int {
	visible := m.height - 10 // Account for header and footer
	if visible < 3 {
		visible = 3
	}
	return visible
}

// updateScroll adjusts scroll offset to keep cursor visible.
func (m *MenuModel) updateScroll() {
	visible := m.visibleItems()
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	} else if m.cursor >= m.scrollOffset+visible {
		m.scrollOffset = m.cursor - visible + 1
	}
}

// View renders the picker.
func (m MenuModel) View() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(m.theme.MenuTitle.Render("L O G I C   R E F L E C T"), m.width))
	b.WriteString("\n\n")

	completed := 0
	for _, it := range m.items {
		if it.Progress.Completed() {
			completed++
		}
	}
	subtitle := fmt.Sprintf("Select a level (%d/%d complete)", completed, len(m.items))
	b.WriteString(centerText(m.theme.MenuDescription.Render(subtitle), m.width))
	b.WriteString("\n\n")

	end := m.scrollOffset + m.visibleItems()
	if end > len(m.items) {
		end = len(m.items)
	}

	if m.scrollOffset > 0 {
		b.WriteString(centerText(m.theme.MenuDescription.Render("... more above ..."), m.width))
		b.WriteString("\n")
	}

	for i := m.scrollOffset; i < end; i++ {
		it := m.items[i]
		cursor := "  "
		style := m.theme.MenuItemNormal
		if i == m.cursor {
			cursor = "> "
			style = m.theme.MenuItemActive
		}

		mark := " "
		best := ""
		if it.Progress.Completed() {
			mark = "*"
			best = fmt.Sprintf("  best %d", it.Progress.HighScore)
		}
		line := fmt.Sprintf("%s%s %-4s %-22s%s", cursor, mark, it.LevelID, it.Name, best)
		b.WriteString(centerText(style.Render(line), m.width))
		b.WriteString("\n")
	}

	if end < len(m.items) {
		b.WriteString(centerText(m.theme.MenuDescription.Render("... more below ..."), m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	controls := m.theme.HUDControls.Render("Up/Down: Navigate  |  Enter: Select  |  Esc: Back  |  Q: Quit")
	b.WriteString(centerText(controls, m.width))
	b.WriteString("\n")

	return b.String()
}

// Selected returns the selected level, or nil if still choosing.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// WantsBack returns true if user pressed back.
func (m MenuModel) WantsBack() bool {
	return m.back
}
