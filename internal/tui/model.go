package tui

import (
	"fmt"
	"math"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	engineprogress "github.com/execfoundry/runpipe/internal/progress"
)

// EventMsg carries one progress observation into the UI.
type EventMsg engineprogress.Event

// FinishedMsg tells the UI the execution is over.
type FinishedMsg struct{}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	lineStyle  = lipgloss.NewStyle().Faint(true)
)

// Model renders a live progress bar for one execution, fed by the engine's
// progress events.
type Model struct {
	title    string
	bar      progress.Model
	events   <-chan engineprogress.Event
	percent  float64
	line     string
	finished bool
}

// NewModel constructs a progress UI reading from events until it is closed.
func NewModel(title string, events <-chan engineprogress.Event) Model {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40
	return Model{title: title, bar: bar, events: events}
}

// Init starts waiting for the first event.
func (m Model) Init() tea.Cmd {
	return m.wait()
}

func (m Model) wait() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return FinishedMsg{}
		}
		return EventMsg(ev)
	}
}

// Update handles Bubbletea messages and updates model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EventMsg:
		m.percent = msg.Percent
		m.line = msg.Line
		return m, m.wait()
	case FinishedMsg:
		m.finished = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.finished = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// View renders the bar, the numeric value, and the line that produced it.
// Values above 100 happen with raw-count patterns; the bar saturates but the
// number stays honest.
func (m Model) View() string {
	if m.finished {
		return ""
	}

	ratio := math.Min(m.percent/100, 1.0)
	row := lipgloss.JoinHorizontal(
		lipgloss.Left,
		titleStyle.Render(m.title),
		" ",
		m.bar.ViewAs(ratio),
		fmt.Sprintf(" %6.2f", m.percent),
	)
	if m.line == "" {
		return row + "\n"
	}
	return row + "\n" + lineStyle.Render(m.line) + "\n"
}

// Percent reports the last observed value.
func (m Model) Percent() float64 {
	return m.percent
}

// Finished reports whether the UI has been told to stop.
func (m Model) Finished() bool {
	return m.finished
}
