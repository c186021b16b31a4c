// Package executor launches OS-level child processes, captures their output,
// derives progress estimates from it, and races completion against wall-clock
// timeouts and caller cancellation.
package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/execfoundry/runpipe/internal/logger"
	"github.com/execfoundry/runpipe/internal/progress"
	runpipeerrors "github.com/execfoundry/runpipe/pkg/errors"
)

// ProcessSpec describes what to run. It is owned by the caller and read-only
// to the engine.
type ProcessSpec struct {
	Path string
	Args []string
	Dir  string
}

// Options configures one execution. The zero value carries the documented
// defaults: capture on, no timeout, no patterns.
type Options struct {
	// WorkDir overrides the spec's own directory when set.
	WorkDir string
	// Timeout is the wall-clock budget measured from launch. Zero means
	// unbounded.
	Timeout time.Duration
	// Patterns are tried in order against every output line.
	Patterns []progress.Pattern
	// CaptureOutput retains the full stdout/stderr text on the Result.
	// Unset means true.
	CaptureOutput *bool
	// Env is merged over the inherited environment, not replacing it.
	Env map[string]string
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() *Options {
	return &Options{}
}

// CaptureEnabled reports the effective capture setting; unset means true.
func (o *Options) CaptureEnabled() bool {
	return o == nil || o.CaptureOutput == nil || *o.CaptureOutput
}

func normalized(opts *Options) *Options {
	if opts == nil {
		return DefaultOptions()
	}
	return opts
}

// Result describes one finished execution. It is assembled once, when the
// call returns, and never mutated. At most one of TimedOut and Cancelled is
// set; Success is true iff the exit code is zero and neither kill flag is set.
type Result struct {
	ExitCode  int
	Stdout    string
	Stderr    string
	Duration  time.Duration
	TimedOut  bool
	Cancelled bool
	Success   bool
}

func newResult(exitCode int, stdout, stderr string, duration time.Duration, timedOut, cancelled bool) Result {
	return Result{
		ExitCode:  exitCode,
		Stdout:    stdout,
		Stderr:    stderr,
		Duration:  duration,
		TimedOut:  timedOut,
		Cancelled: cancelled,
		Success:   exitCode == 0 && !timedOut && !cancelled,
	}
}

// Engine runs child processes. Calls are independent: no state is shared
// between executions and an Engine is safe for concurrent use.
type Engine struct {
	log *logger.Logger
}

// New creates an engine writing diagnostics to log. A nil log is valid and
// silent.
func New(log *logger.Logger) *Engine {
	return &Engine{log: log}
}

// Execute runs a single process to completion and returns its Result.
//
// A process that cannot be spawned at all yields a *errors.StartError and a
// zero Result. A process that runs and exits nonzero is not an error: the
// Result carries Success=false and the exit code. Timeout and cancellation
// kills are likewise data, not errors.
func (e *Engine) Execute(ctx context.Context, spec ProcessSpec, opts *Options, sink progress.Sink) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	o := normalized(opts)
	started := time.Now()

	cmd := newCommand(spec, o)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{}, runpipeerrors.NewStartError(spec.Path, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Result{}, runpipeerrors.NewStartError(spec.Path, err)
	}

	if err := cmd.Start(); err != nil {
		return Result{}, runpipeerrors.NewStartError(spec.Path, err)
	}
	e.log.WithFields(map[string]any{"executable": spec.Path, "pid": cmd.Process.Pid}).Debug("process started")

	capture := o.CaptureEnabled()
	outDrain := newDrain(capture, o.Patterns, sink, started)
	errDrain := newDrain(capture, o.Patterns, sink, started)

	var drains sync.WaitGroup
	drains.Add(2)
	go func() {
		defer drains.Done()
		outDrain.consume(stdout)
	}()
	go func() {
		defer drains.Done()
		errDrain.consume(stderr)
	}()

	// Wait must not run until both pipes hit EOF, or tail output is lost.
	done := make(chan error, 1)
	go func() {
		drains.Wait()
		done <- cmd.Wait()
	}()

	exitCode, timedOut, cancelled := e.awaitExit(ctx, spec.Path, cmd, done, o.Timeout)
	duration := time.Since(started)

	e.log.WithFields(map[string]any{
		"executable": spec.Path,
		"exit_code":  exitCode,
		"timed_out":  timedOut,
		"cancelled":  cancelled,
		"duration":   duration.String(),
	}).Debug("process finished")

	return newResult(exitCode, outDrain.text(), errDrain.text(), duration, timedOut, cancelled), nil
}

// awaitExit suspends until exactly one of three events resolves: natural
// exit, timeout, or cancellation. Both kill paths terminate the process
// forcefully and then still wait for the OS to confirm the exit, so cleanup
// is never in flight when this returns.
func (e *Engine) awaitExit(ctx context.Context, path string, cmd *exec.Cmd, done <-chan error, timeout time.Duration) (exitCode int, timedOut, cancelled bool) {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case err := <-done:
		return exitCodeFrom(err), false, false
	case <-expired:
		e.log.WithFields(map[string]any{"executable": path, "timeout": timeout.String()}).Warn("timeout exceeded, killing process")
		kill(cmd)
		err := <-done
		return exitCodeFrom(err), true, false
	case <-ctx.Done():
		e.log.WithFields(map[string]any{"executable": path}).Debug("cancellation requested, killing process")
		kill(cmd)
		err := <-done
		return exitCodeFrom(err), false, true
	}
}

// exitCodeFrom maps a Wait error to an exit code. Nonzero exits come back as
// *exec.ExitError; anything else after a successful start is reported as -1.
func exitCodeFrom(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func newCommand(spec ProcessSpec, o *Options) *exec.Cmd {
	cmd := exec.Command(spec.Path, spec.Args...)
	if o.WorkDir != "" {
		cmd.Dir = o.WorkDir
	} else if spec.Dir != "" {
		cmd.Dir = spec.Dir
	}
	cmd.Env = mergedEnv(o.Env)
	setSysProcAttr(cmd)
	return cmd
}

func mergedEnv(extra map[string]string) []string {
	env := os.Environ()
	for k, v := range extra {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	return env
}
