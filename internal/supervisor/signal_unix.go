//go:build !windows

package supervisor

import (
	"errors"
	"syscall"
)

// terminateGroup sends SIGTERM to the process group rooted at pid, falling
// back to the single process when the group is already gone.
func terminateGroup(pid int) error { return signalGroup(pid, syscall.SIGTERM) }

// killGroup sends SIGKILL to the process group rooted at pid.
func killGroup(pid int) error { return signalGroup(pid, syscall.SIGKILL) }

func signalGroup(pid int, sig syscall.Signal) error {
	if err := syscall.Kill(-pid, sig); err != nil {
		return syscall.Kill(pid, sig)
	}
	return nil
}

// processGone reports whether a signal error means the target no longer exists.
func processGone(err error) bool { return errors.Is(err, syscall.ESRCH) }
