package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// statusTTL is how long a status line stays on screen.
var statusTTL = 5 * time.Second

// clearStatusMsg expires the status line with the matching sequence number.
type clearStatusMsg struct {
	seq int
}

// clearStatusCmd returns a command that expires status seq after statusTTL
func clearStatusCmd(seq int) tea.Cmd {
	return tea.Tick(statusTTL, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}

// setStatus shows msg and schedules its removal. A newer status replaces
// it and makes the pending expiry a no-op.
func (m *Model) setStatus(msg string, isErr bool) tea.Cmd {
	m.statusSeq++
	m.status = msg
	m.statusIsErr = isErr
	return clearStatusCmd(m.statusSeq)
}

// startSpinner returns the spinner tick when no other request is keeping
// it alive already.
func (m Model) startSpinner(wasRunning bool) tea.Cmd {
	if wasRunning {
		return nil
	}
	return m.spinner.Tick
}
