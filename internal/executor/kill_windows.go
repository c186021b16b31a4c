//go:build windows

package executor

import (
	"os/exec"
)

func setSysProcAttr(cmd *exec.Cmd) {}

// kill forcefully terminates the process. Descendants are not reaped on
// Windows; TerminateProcess has no group semantics.
func kill(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = cmd.Process.Kill()
}
