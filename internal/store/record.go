package store

import (
	"regexp"
	"time"

	"github.com/loykin/mcpctl/internal/errdef"
)

// Status is the persisted lifecycle state of a server record. The value on
// disk is advisory: reconciliation against the live process table is what
// decides whether a server is actually running.
type Status string

const (
	StatusStopped  Status = "stopped"
	StatusStarting Status = "starting"
	StatusRunning  Status = "running"
	StatusStopping Status = "stopping"
	StatusError    Status = "error"
)

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusStopped, StatusStarting, StatusRunning, StatusStopping, StatusError:
		return true
	}
	return false
}

// Record is one server entry in the registry document.
type Record struct {
	Name        string    `json:"name"`
	Command     string    `json:"command"`
	ConfigFile  string    `json:"config_file,omitempty"`
	PID         int       `json:"pid"`
	Status      Status    `json:"status"`
	Created     time.Time `json:"created"`
	Started     time.Time `json:"started,omitzero"`
	Ports       []string  `json:"ports"`
	HealthCheck string    `json:"health_check,omitempty"`
	// StartedUnix is the kernel start time of the launched process, used to
	// tell the original process apart from an unrelated one that reused its
	// PID after a reboot or wraparound.
	StartedUnix int64 `json:"started_unix,omitempty"`
}

// Running reports whether the record claims a live process.
func (r *Record) Running() bool {
	return r.PID > 0 && (r.Status == StatusRunning || r.Status == StatusStarting || r.Status == StatusStopping)
}

// ClearRuntime resets the runtime fields after the process is gone. The
// record itself survives so the server can be started again.
func (r *Record) ClearRuntime() {
	r.PID = 0
	r.Status = StatusStopped
	r.Started = time.Time{}
	r.StartedUnix = 0
}

var nameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// ValidateName rejects names that would be unsafe as log file names or
// ambiguous on the command line.
func ValidateName(name string) error {
	if name == "" {
		return errdef.Configf("server name must not be empty")
	}
	if len(name) > 128 {
		return errdef.Configf("server name %q is too long (max 128 characters)", name)
	}
	if !nameRe.MatchString(name) {
		return errdef.Configf("server name %q contains invalid characters (allowed: letters, digits, '_', '-', '.')", name)
	}
	return nil
}
