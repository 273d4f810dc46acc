package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/logic-reflect/internal/puzzle"
)

// KeyMap defines the key bindings of the board screen.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	RotateCW key.Binding
	RotateCC key.Binding
	Mirror   key.Binding
	Deselect key.Binding
	Toggle   key.Binding
	Play     key.Binding
	Reset    key.Binding
	Next     key.Binding
	Levels   key.Binding
	Scores   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Play, k.Reset, k.Next, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.RotateCW, k.RotateCC, k.Mirror, k.Deselect, k.Toggle},
		{k.Play, k.Reset, k.Next},
		{k.Levels, k.Scores, k.Help, k.Quit},
	}
}

// DefaultKeyMap returns default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "cursor up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "cursor down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("left/h", "cursor left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("right/l", "cursor right"),
		),
		RotateCW: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "rotator cw"),
		),
		RotateCC: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "rotator ccw"),
		),
		Mirror: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "mirror"),
		),
		Deselect: key.NewBinding(
			key.WithKeys("0", "x"),
			key.WithHelp("0/x", "deselect"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "place/remove"),
		),
		Play: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "play"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset"),
		),
		Next: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next level"),
		),
		Levels: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "levels"),
		),
		Scores: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "ranking"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ToolFor returns the tool bound to msg, if any.
func (k KeyMap) ToolFor(msg tea.KeyMsg) (puzzle.Tool, bool) {
	switch {
	case key.Matches(msg, k.RotateCW):
		return puzzle.ToolRotateCW, true
	case key.Matches(msg, k.RotateCC):
		return puzzle.ToolRotateCCW, true
	case key.Matches(msg, k.Mirror):
		return puzzle.ToolMirror, true
	}
	return 0, false
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionQuit
)

// MapKeyToMenuAction translates a key to a menu action.
func MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "up", "k":
		return MenuActionUp
	case "down", "j":
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "b", "esc":
		return MenuActionBack
	}
	return MenuActionNone
}
