package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/execfoundry/runpipe/internal/executor"
	"github.com/execfoundry/runpipe/internal/logger"
	"github.com/execfoundry/runpipe/internal/progress"
	"github.com/execfoundry/runpipe/internal/tui"
	runpipeerrors "github.com/execfoundry/runpipe/pkg/errors"
)

// exitCodeError propagates a child's nonzero exit code to the shell.
type exitCodeError struct {
	code int
}

func (e exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func newLogger(verbose bool) (*logger.Logger, error) {
	level := "info"
	if verbose {
		level = "debug"
	}
	return logger.New(logger.Options{Level: level, HumanReadable: true, Writer: os.Stderr})
}

func parseEnv(entries []string) (map[string]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	env := make(map[string]string, len(entries))
	for _, entry := range entries {
		name, value, ok := strings.Cut(entry, "=")
		if !ok || name == "" {
			return nil, runpipeerrors.NewValidationError("env", fmt.Sprintf("%q is not NAME=VALUE", entry), nil)
		}
		env[name] = value
	}
	return env, nil
}

func resolvePresets(names []string) ([]progress.Pattern, error) {
	var patterns []progress.Pattern
	for _, name := range names {
		preset, ok := progress.Preset(name)
		if !ok {
			return nil, runpipeerrors.NewValidationError("pattern", fmt.Sprintf("unknown pattern preset %q", name), nil)
		}
		patterns = append(patterns, preset...)
	}
	return patterns, nil
}

func splitCommand(raw string) (executor.ProcessSpec, error) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return executor.ProcessSpec{}, runpipeerrors.NewValidationError("command", "command is empty", nil)
	}
	return executor.ProcessSpec{Path: fields[0], Args: fields[1:]}, nil
}

type executeFn func(sink progress.Sink) (executor.Result, error)

// runWithProgress renders a live bar when there are patterns to feed it and
// stdout is a terminal; otherwise events go to the debug log.
func runWithProgress(title string, patterns []progress.Pattern, log *logger.Logger, fn executeFn) (executor.Result, error) {
	if len(patterns) > 0 && term.IsTerminal(int(os.Stdout.Fd())) {
		return tui.Run(title, fn)
	}
	return fn(func(ev progress.Event) {
		log.WithFields(map[string]any{"percent": ev.Percent, "line": ev.Line}).Debug("progress")
	})
}

// report relays captured output and converts the result into the process's
// own exit status.
func report(cmd *cobra.Command, res executor.Result) error {
	fmt.Fprint(cmd.OutOrStdout(), res.Stdout)
	fmt.Fprint(cmd.ErrOrStderr(), res.Stderr)

	switch {
	case res.TimedOut:
		return fmt.Errorf("timed out after %s", res.Duration.Round(time.Millisecond))
	case res.Cancelled:
		return errors.New("cancelled")
	case !res.Success:
		return exitCodeError{code: res.ExitCode}
	}
	return nil
}
