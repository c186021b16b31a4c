package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/execfoundry/runpipe/internal/executor"
	engineprogress "github.com/execfoundry/runpipe/internal/progress"
)

// Run executes fn while rendering a live progress bar fed by the sink passed
// to fn. It returns fn's result once both the execution and the UI are done.
func Run(title string, fn func(sink engineprogress.Sink) (executor.Result, error)) (executor.Result, error) {
	events := make(chan engineprogress.Event, 16)
	program := tea.NewProgram(NewModel(title, events))

	var res executor.Result
	var err error
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer close(events)
		res, err = fn(func(ev engineprogress.Event) {
			// The UI is best-effort; never let a stalled terminal block a
			// drain goroutine.
			select {
			case events <- ev:
			default:
			}
		})
	}()

	// A UI failure or an early quit leaves the execution running; the
	// non-blocking sink means it cannot wedge, so just wait it out.
	_, _ = program.Run()
	<-done

	return res, err
}
