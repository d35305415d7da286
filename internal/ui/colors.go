package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// stylesheet holds the [lipgloss.Style] set shared by both views.
type stylesheet struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
}

var styles = stylesheet{
	title: lipgloss.NewStyle().Foreground(lipgloss.Color("#00B8D9")).Bold(true).MarginBottom(1),
	ok:    lipgloss.NewStyle().Foreground(lipgloss.Color("#36B37E")).Bold(true),
	err:   lipgloss.NewStyle().Foreground(lipgloss.Color("#DE350B")).Bold(true),
	warn:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAB00")),
}
