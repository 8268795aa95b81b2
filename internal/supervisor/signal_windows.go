//go:build windows

package supervisor

import "syscall"

var (
	kernel32             = syscall.NewLazyDLL("kernel32.dll")
	procOpenProcess      = kernel32.NewProc("OpenProcess")
	procTerminateProcess = kernel32.NewProc("TerminateProcess")
	procCloseHandle      = kernel32.NewProc("CloseHandle")
)

const processTerminate = 0x0001

// Windows has no graceful POSIX signal; both paths terminate the process.
func terminateGroup(pid int) error { return terminate(pid) }

func killGroup(pid int) error { return terminate(pid) }

func terminate(pid int) error {
	if pid <= 0 {
		return nil
	}
	handle, _, err := procOpenProcess.Call(uintptr(processTerminate), 0, uintptr(uint32(pid)))
	if handle == 0 {
		// Cannot open: the process most likely already exited.
		_ = err
		return nil
	}
	defer func() { _, _, _ = procCloseHandle.Call(handle) }()
	ret, _, callErr := procTerminateProcess.Call(handle, uintptr(1))
	if ret == 0 {
		return callErr
	}
	return nil
}

func processGone(_ error) bool { return true }
