//go:build !windows

package supervisor

import (
	"os/exec"
	"syscall"
)

// configureSysProcAttr starts the child in a new session (setsid) so it is
// detached from the controlling terminal, survives this process exiting, and
// forms its own process group for group-wide signaling. The session leader's
// pgid equals its pid, which is what terminateGroup relies on.
func configureSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
