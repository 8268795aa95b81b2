//go:build !windows

package store

import (
	"os"
	"syscall"
)

// lockFile takes an exclusive advisory flock on f, blocking until acquired.
func lockFile(f *os.File) error {
	return syscall.Flock(int(f.Fd()), syscall.LOCK_EX)
}

func unlockFile(f *os.File) error {
	return syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
}
