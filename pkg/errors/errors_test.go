package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStartErrorFormatsPathAndCause(t *testing.T) {
	t.Parallel()

	err := NewStartError("/usr/bin/missing", fs.ErrNotExist)
	require.EqualError(t, err, "start error: /usr/bin/missing: file does not exist")
	require.ErrorIs(t, err, fs.ErrNotExist)

	var startErr *StartError
	require.True(t, errors.As(err, &startErr))
	require.Equal(t, "/usr/bin/missing", startErr.Path)
}

func TestParseErrorIncludesLineWhenKnown(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("bad indentation")
	err := NewParseError("job.yaml", 7, cause)
	require.EqualError(t, err, "parse error: job.yaml:7: bad indentation")
	require.ErrorIs(t, err, cause)

	err = NewParseError("job.yaml", 0, cause)
	require.EqualError(t, err, "parse error: job.yaml: bad indentation")
}

func TestValidationErrorOmitsEmptyField(t *testing.T) {
	t.Parallel()

	err := NewValidationError("settings.timeout", "not a duration", nil)
	require.EqualError(t, err, "validation error: settings.timeout: not a duration")

	err = NewValidationError("", "job is nil", nil)
	require.EqualError(t, err, "validation error: job is nil")
}
