// Package tui provides the Bubble Tea player for Logic Reflect.
// It handles the terminal UI loop, input mapping and the SSH server.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/logic-reflect/internal/run"
)

// EventMsg carries a frame or an outcome pushed by the run controller.
type EventMsg struct {
	Event run.Event
}

// clearNoticeMsg hides the status line message it was scheduled for.
type clearNoticeMsg struct {
	id int
}

// waitForEvent returns a command that blocks until the controller pushes
// the next event. It returns nil once the sink is closed.
func waitForEvent(sink *run.ChanSink) tea.Cmd {
	return func() tea.Msg {
		select {
		case evt := <-sink.Events():
			return EventMsg{Event: evt}
		case <-sink.Done():
			return nil
		}
	}
}

// clearNoticeCmd fires once after d to expire notice id.
func clearNoticeCmd(id int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearNoticeMsg{id: id}
	})
}
