package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the TUI application and blocks until the user quits
func Run(ctx context.Context, deps Deps) error {
	m := NewModel(ctx, deps)

	// Alt screen and mouse support fully isolate the TUI
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
