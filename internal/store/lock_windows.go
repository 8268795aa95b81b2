//go:build windows

package store

import "os"

// Windows has no flock; the atomic rename in Save already prevents partial
// documents, so the advisory lock degrades to a no-op here.
func lockFile(_ *os.File) error { return nil }

func unlockFile(_ *os.File) error { return nil }
