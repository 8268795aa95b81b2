// Package detector decides whether a recorded PID still denotes the process
// that was originally launched. A PID alone is not a handle: once the
// supervising command exits nothing holds the process open, the kernel may
// reuse the number, and the registry entry goes stale. The start-time of the
// process, captured at launch, serves as the identity signal.
package detector

// Identity pairs a PID with the launch-time signal persisted in the registry.
type Identity struct {
	PID       int
	StartUnix int64 // process start time as Unix seconds; 0 when unknown
}

// Alive reports whether a process with the given identity is currently
// running. When the identity carries a start-time signal and the live
// process's start time differs, the PID has been reused by an unrelated
// process and the result is false.
func (id Identity) Alive() bool {
	if id.PID <= 0 {
		return false
	}
	if !pidAlive(id.PID) {
		return false
	}
	if id.StartUnix > 0 {
		cur := getProcStartUnix(id.PID)
		// Clock-tick rounding between capture and probe can differ by one
		// second; anything beyond that is a different process.
		if cur > 0 && !within(cur, id.StartUnix, 1) {
			return false
		}
	}
	return true
}

// Capture builds the identity for a just-launched PID.
func Capture(pid int) Identity {
	return Identity{PID: pid, StartUnix: getProcStartUnix(pid)}
}

func within(a, b, tol int64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}
