package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"arrsync/internal/shared"
	"arrsync/internal/tasks"
	"arrsync/internal/ui"
)

// syncUI runs the reconciliation with an interactive progress view.
func (r *Runner) syncUI(ctx context.Context, mode tasks.Mode) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/arrsync-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	engine, err := r.engineFor(mode)
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, engine)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
