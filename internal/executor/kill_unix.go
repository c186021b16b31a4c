//go:build !windows

package executor

import (
	"os/exec"
	"syscall"
)

// setSysProcAttr places the child in its own process group so a later kill
// reaches its descendants too.
func setSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// kill forcefully terminates the process group. There is no graceful phase:
// losing the timeout or cancellation race means immediate SIGKILL.
func kill(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil {
		_ = cmd.Process.Kill()
	}
}
