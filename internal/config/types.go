package config

import (
	"time"

	"github.com/execfoundry/runpipe/internal/executor"
	"github.com/execfoundry/runpipe/internal/progress"
	runpipeerrors "github.com/execfoundry/runpipe/pkg/errors"
)

// Job is the top-level document of a runpipe job file. A job runs one
// command, optionally piping its stdout into a second one.
type Job struct {
	Version  string       `yaml:"version" validate:"required"`
	Name     string       `yaml:"name" validate:"required,min=1,max=100"`
	Command  CommandSpec  `yaml:"command"`
	Pipe     *CommandSpec `yaml:"pipe,omitempty"`
	Settings Settings     `yaml:"settings,omitempty"`
}

// CommandSpec names an executable and its invocation.
type CommandSpec struct {
	Path    string   `yaml:"path" validate:"required"`
	Args    []string `yaml:"args,omitempty"`
	WorkDir string   `yaml:"workdir,omitempty"`
}

// Settings holds execution parameters shared by the command and, when
// piping, its destination.
type Settings struct {
	Timeout       string            `yaml:"timeout,omitempty"`
	CaptureOutput *bool             `yaml:"capture_output,omitempty"`
	Env           map[string]string `yaml:"env,omitempty"`
	Patterns      []string          `yaml:"patterns,omitempty"`
}

// SourceSpec converts the job's primary command for the executor.
func (j *Job) SourceSpec() executor.ProcessSpec {
	return toProcessSpec(j.Command)
}

// PipeSpec converts the pipe destination, if any.
func (j *Job) PipeSpec() (executor.ProcessSpec, bool) {
	if j.Pipe == nil {
		return executor.ProcessSpec{}, false
	}
	return toProcessSpec(*j.Pipe), true
}

func toProcessSpec(c CommandSpec) executor.ProcessSpec {
	return executor.ProcessSpec{Path: c.Path, Args: c.Args, Dir: c.WorkDir}
}

// ExecutionOptions materializes the job's settings. Validation has already
// vetted the timeout and pattern names, so failures here indicate a Job that
// bypassed ParseJob.
func (j *Job) ExecutionOptions() (*executor.Options, error) {
	opts := executor.DefaultOptions()

	if j.Settings.Timeout != "" {
		timeout, err := time.ParseDuration(j.Settings.Timeout)
		if err != nil {
			return nil, runpipeerrors.NewValidationError("settings.timeout", "not a duration", err)
		}
		opts.Timeout = timeout
	}

	opts.CaptureOutput = j.Settings.CaptureOutput
	opts.Env = j.Settings.Env

	for _, name := range j.Settings.Patterns {
		preset, ok := progress.Preset(name)
		if !ok {
			return nil, runpipeerrors.NewValidationError("settings.patterns", "unknown pattern preset "+name, nil)
		}
		opts.Patterns = append(opts.Patterns, preset...)
	}

	return opts, nil
}
