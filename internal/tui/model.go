// Package tui renders the live watch view: a spinner, the most recent
// moves, and running counters, fed by daemon notifications.
package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"dropsort/pkg/types"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// recentLimit caps the number of moves kept on screen
const recentLimit = 8

// eventMsg wraps a daemon notification for the update loop
type eventMsg types.WatchEvent

// streamClosedMsg signals that the daemon stopped and no more events
// will arrive
type streamClosedMsg struct{}

type Model struct {
	directory string
	dryRun    bool
	events    <-chan types.WatchEvent

	spinner spinner.Model
	status  string
	recent  []types.MoveResult

	scans    int
	moves    int
	failures int
	lastErr  error

	width    int
	quitting bool
}

func New(directory string, dryRun bool, events <-chan types.WatchEvent) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return &Model{
		directory: directory,
		dryRun:    dryRun,
		events:    events,
		spinner:   s,
		status:    "Watching " + directory,
	}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.events))
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case eventMsg:
		m.apply(types.WatchEvent(msg))
		return m, waitForEvent(m.events)
	case streamClosedMsg:
		m.quitting = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) apply(ev types.WatchEvent) {
	switch ev.Kind {
	case types.EventTriggered:
		m.status = "Activity settled, sweeping soon"
	case types.EventMoved:
		if ev.Move == nil {
			return
		}
		if ev.Move.Error != nil {
			m.failures++
			m.lastErr = ev.Move.Error
			return
		}
		m.moves++
		m.recent = append(m.recent, *ev.Move)
		if len(m.recent) > recentLimit {
			m.recent = m.recent[len(m.recent)-recentLimit:]
		}
	case types.EventScanned:
		m.scans++
		m.status = "Watching " + m.directory
	case types.EventError:
		m.failures++
		m.lastErr = ev.Err
	}
}

// View implements tea.Model
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	title := "dropsort"
	if m.dryRun {
		title += " (dry run)"
	}
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n\n")

	b.WriteString(m.spinner.View())
	b.WriteString(StatusStyle.Render(m.status))
	b.WriteString("\n")

	if len(m.recent) > 0 {
		b.WriteString("\n")
		// Newest at the bottom, like a log tail
		for _, mv := range m.recent {
			line := fmt.Sprintf("  %s %s %s",
				filepath.Base(mv.SourcePath),
				ArrowStyle.Render("→"),
				CategoryStyle.Render(mv.Category))
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	if m.lastErr != nil {
		b.WriteString("\n")
		b.WriteString(ErrorStyle.Render("  " + m.lastErr.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(HelpStyle.Render(fmt.Sprintf(
		"%d sweeps · %d moved · %d failed · q to quit",
		m.scans, m.moves, m.failures)))
	b.WriteString("\n")

	return b.String()
}

// Counters returns the running totals shown in the footer
func (m *Model) Counters() (scans, moves, failures int) {
	return m.scans, m.moves, m.failures
}

func waitForEvent(events <-chan types.WatchEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return streamClosedMsg{}
		}
		return eventMsg(ev)
	}
}
