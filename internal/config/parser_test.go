package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	runpipeerrors "github.com/execfoundry/runpipe/pkg/errors"
)

func writeJob(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestParseJobFull(t *testing.T) {
	t.Parallel()

	path := writeJob(t, `
version: "1.0"
name: transcode
command:
  path: ffmpeg
  args: ["-i", "in.mp4", "-f", "matroska", "-"]
pipe:
  path: mkvmerge
  args: ["-o", "out.mkv", "-"]
settings:
  timeout: 90s
  capture_output: false
  env:
    FFREPORT: file=report.log
  patterns:
    - ffmpeg-frame
`)

	job, err := ParseJob(path)
	require.NoError(t, err)
	require.Equal(t, "transcode", job.Name)
	require.Equal(t, "ffmpeg", job.Command.Path)
	require.NotNil(t, job.Pipe)
	require.Equal(t, "mkvmerge", job.Pipe.Path)

	src := job.SourceSpec()
	require.Equal(t, "ffmpeg", src.Path)
	require.Len(t, src.Args, 4)

	dst, ok := job.PipeSpec()
	require.True(t, ok)
	require.Equal(t, "mkvmerge", dst.Path)

	opts, err := job.ExecutionOptions()
	require.NoError(t, err)
	require.Equal(t, 90*time.Second, opts.Timeout)
	require.False(t, opts.CaptureEnabled())
	require.Equal(t, "file=report.log", opts.Env["FFREPORT"])
	require.Len(t, opts.Patterns, 1)
}

func TestParseJobDefaults(t *testing.T) {
	t.Parallel()

	path := writeJob(t, `
version: "1.0"
name: quick
command:
  path: "true"
`)

	job, err := ParseJob(path)
	require.NoError(t, err)
	require.Nil(t, job.Pipe)

	_, ok := job.PipeSpec()
	require.False(t, ok)

	opts, err := job.ExecutionOptions()
	require.NoError(t, err)
	require.True(t, opts.CaptureEnabled())
	require.Zero(t, opts.Timeout)
	require.Empty(t, opts.Patterns)
}

func TestParseJobRejectsMalformedYAML(t *testing.T) {
	t.Parallel()

	path := writeJob(t, "version: [broken")

	_, err := ParseJob(path)
	require.Error(t, err)

	var parseErr *runpipeerrors.ParseError
	require.True(t, errors.As(err, &parseErr))
	require.Equal(t, path, parseErr.Path)
}

func TestParseJobRejectsMissingFields(t *testing.T) {
	t.Parallel()

	path := writeJob(t, `
version: "1.0"
command:
  path: "true"
`)

	_, err := ParseJob(path)
	var validationErr *runpipeerrors.ValidationError
	require.True(t, errors.As(err, &validationErr))
	require.Contains(t, validationErr.Field, "Name")
}

func TestParseJobRejectsBadTimeout(t *testing.T) {
	t.Parallel()

	path := writeJob(t, `
version: "1.0"
name: bad-timeout
command:
  path: "true"
settings:
  timeout: ninety seconds
`)

	_, err := ParseJob(path)
	var validationErr *runpipeerrors.ValidationError
	require.True(t, errors.As(err, &validationErr))
	require.Equal(t, "settings.timeout", validationErr.Field)
}

func TestParseJobRejectsUnknownPreset(t *testing.T) {
	t.Parallel()

	path := writeJob(t, `
version: "1.0"
name: bad-preset
command:
  path: "true"
settings:
  patterns: [sparkles]
`)

	_, err := ParseJob(path)
	var validationErr *runpipeerrors.ValidationError
	require.True(t, errors.As(err, &validationErr))
	require.Equal(t, "settings.patterns", validationErr.Field)
}

func TestParseJobMissingFile(t *testing.T) {
	t.Parallel()

	_, err := ParseJob(filepath.Join(t.TempDir(), "absent.yaml"))
	var parseErr *runpipeerrors.ParseError
	require.True(t, errors.As(err, &parseErr))
}
