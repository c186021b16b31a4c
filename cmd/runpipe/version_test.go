package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execRoot(t, "version")
	require.NoError(t, err)
	require.Contains(t, stdout, "runpipe dev")
	require.Contains(t, stdout, "commit: none")
}
