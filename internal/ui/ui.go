// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a two-view workflow for watchlist reconciliation:
//  1. [RunningView] : Monitor real-time progress updates while the run executes
//  2. [ResultView] : Display per-item outcomes and summary counters
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the SyncEngine, providing non-blocking status reporting during the run.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"arrsync/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	RunningView ViewState = iota
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       tasks.SyncEngine
	width        int
	height       int
	spin         spinner.Model
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	result       *tasks.RunResult
	err          error
	help         help.Model
	keys         keyMap
}

// keyMap defines the key bindings for the TUI.
type keyMap struct {
	quit key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.quit}}
}

type progressUpdateMsg tasks.ProgressUpdate

type runCompleteMsg struct {
	result *tasks.RunResult
	err    error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, engine tasks.SyncEngine) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.title

	return &Model{
		ctx:    ctx,
		view:   RunningView,
		engine: engine,
		spin:   s,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init starts the reconciliation run and the spinner.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.startRun(), m.spin.Tick)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case runCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case RunningView:
		return m.renderRunning()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

// startRun launches the engine in a goroutine and begins draining its
// progress channel. The channel is buffered so the engine's non-blocking
// sends are not dropped between frames.
func (m *Model) startRun() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)

	progress := m.progressChan
	go func() {
		result, err := m.engine.Run(m.ctx, progress)
		m.result = result
		m.err = err
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return runCompleteMsg{result: m.result, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return runCompleteMsg{result: m.result, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderRunning() string {
	title := styles.title.Render("Syncing Watchlist")

	var phase string
	switch m.progress.Phase {
	case tasks.FetchWatchlist:
		phase = "Fetching watchlist..."
	case tasks.Partition:
		phase = "Checking sync cache..."
	case tasks.ProcessItem:
		phase = fmt.Sprintf("Processing items (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.SaveCache:
		phase = "Saving sync cache..."
	default:
		phase = "Starting..."
	}

	helpView := m.help.ShortHelpView(m.keys.ShortHelp())
	return fmt.Sprintf("%s\n\n%s %s\n%s\n\n%s", title, m.spin.View(), phase, m.progress.Message, helpView)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView(m.keys.ShortHelp())

	if m.err != nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(fmt.Sprintf("Sync failed: %v", m.err)), helpView)
	}
	if m.result == nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render("No result available"), helpView)
	}

	title := styles.ok.Render("✓ Sync Complete")
	info := fmt.Sprintf(
		"\nWatchlist: %d items\nAlready synced: %d\nSynced this run: %d (%d movies, %d shows)",
		m.result.Total(),
		m.result.Skipped,
		m.result.Synced,
		m.result.Movies,
		m.result.Shows,
	)

	var failed string
	if m.result.Failed > 0 {
		lines := []string{styles.warn.Render(fmt.Sprintf("Failed %d items:", m.result.Failed))}
		for _, item := range m.result.Items {
			if item.Status == tasks.StatusFailed {
				lines = append(lines, fmt.Sprintf("  • %s: %s", item.Item.Title, item.Reason))
			}
		}
		failed = "\n\n" + strings.Join(lines, "\n")
	}

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, failed, helpView)
}
