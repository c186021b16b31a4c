package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	engineprogress "github.com/execfoundry/runpipe/internal/progress"
)

func TestModelTracksEvents(t *testing.T) {
	t.Parallel()

	events := make(chan engineprogress.Event, 1)
	m := NewModel("transcode", events)

	updated, cmd := m.Update(EventMsg{Percent: 42.5, Line: "42.5%", Elapsed: time.Second})
	model := updated.(Model)
	require.NotNil(t, cmd)
	require.InDelta(t, 42.5, model.Percent(), 0.001)
	require.False(t, model.Finished())

	view := model.View()
	require.Contains(t, view, "transcode")
	require.Contains(t, view, "42.50")
	require.Contains(t, view, "42.5%")
}

func TestModelFinishes(t *testing.T) {
	t.Parallel()

	events := make(chan engineprogress.Event)
	m := NewModel("job", events)

	updated, cmd := m.Update(FinishedMsg{})
	model := updated.(Model)
	require.True(t, model.Finished())
	require.NotNil(t, cmd)
	require.Empty(t, model.View())
}

func TestModelWaitReportsClosedChannel(t *testing.T) {
	t.Parallel()

	events := make(chan engineprogress.Event)
	close(events)

	m := NewModel("job", events)
	msg := m.wait()()
	require.IsType(t, FinishedMsg{}, msg)
}

func TestModelCtrlCQuits(t *testing.T) {
	t.Parallel()

	events := make(chan engineprogress.Event)
	m := NewModel("job", events)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	model := updated.(Model)
	require.True(t, model.Finished())
	require.NotNil(t, cmd)
}

func TestViewSaturatesBarAboveHundred(t *testing.T) {
	t.Parallel()

	events := make(chan engineprogress.Event)
	m := NewModel("frames", events)

	updated, _ := m.Update(EventMsg{Percent: 813, Line: "frame=  813"})
	view := updated.(Model).View()
	require.Contains(t, view, "813.00")
	require.False(t, strings.Contains(view, "NaN"))
}
