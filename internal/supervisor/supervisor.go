// Package supervisor owns the start/stop state machine for managed server
// processes. The supervising command is not resident, so a launched child is
// fully detached: its output goes to an inherited append-mode file descriptor
// and its identity (PID plus start-time signal) is persisted rather than held
// as a live process handle.
package supervisor

import (
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/loykin/mcpctl/internal/detector"
	"github.com/loykin/mcpctl/internal/errdef"
	"github.com/loykin/mcpctl/internal/store"
)

const (
	// DefaultStopTimeout bounds the graceful-termination wait before SIGKILL.
	DefaultStopTimeout = 10 * time.Second
	// DefaultSettle is how long a process must stay up after launch to be
	// considered started rather than failed.
	DefaultSettle = 1 * time.Second

	defaultPollInterval = 100 * time.Millisecond
	defaultKillGrace    = 3 * time.Second
)

type Supervisor struct {
	Settle       time.Duration // post-launch liveness window
	PollInterval time.Duration // liveness poll step while waiting for exit
	KillGrace    time.Duration // wait after SIGKILL escalation
	Logger       *slog.Logger
}

func New(logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{
		Settle:       DefaultSettle,
		PollInterval: defaultPollInterval,
		KillGrace:    defaultKillGrace,
		Logger:       logger,
	}
}

// Start launches the record's command with stdout and stderr redirected to
// sink, confirms the process survives the settle window, and returns the
// record updated to running with its captured identity signal. The caller is
// expected to have reconciled the record first; a record still claiming
// running is rejected unless idempotent is set.
func (s *Supervisor) Start(rec store.Record, sink *os.File, idempotent bool) (store.Record, error) {
	if rec.Running() {
		if idempotent {
			return rec, nil
		}
		return rec, errdef.StartFailedf(rec.Name, "already running (pid %d)", rec.PID)
	}

	cmd := buildCommand(rec.Command)
	cmd.Stdout = sink
	cmd.Stderr = sink
	if rec.ConfigFile != "" {
		cmd.Env = append(os.Environ(), "MCP_CONFIG_FILE="+rec.ConfigFile)
	}
	configureSysProcAttr(cmd)

	rec.Status = store.StatusStarting
	if err := cmd.Start(); err != nil {
		rec.PID = 0
		rec.StartedUnix = 0
		rec.Status = store.StatusError
		return rec, errdef.StartFailed(rec.Name, err)
	}
	pid := cmd.Process.Pid
	id := detector.Capture(pid)
	s.Logger.Debug("launched", "name", rec.Name, "pid", pid, "start_unix", id.StartUnix)

	// Reap the child if it dies while we are still around; also drives the
	// settle check below.
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	settle := s.Settle
	if settle <= 0 {
		settle = DefaultSettle
	}
	select {
	case werr := <-done:
		rec.PID = 0
		rec.StartedUnix = 0
		rec.Status = store.StatusError
		var ee *exec.ExitError
		if errors.As(werr, &ee) {
			return rec, errdef.StartFailedf(rec.Name, "process exited immediately with code %d", ee.ExitCode())
		}
		return rec, errdef.StartFailedf(rec.Name, "process exited immediately: %v", werr)
	case <-time.After(settle):
	}

	rec.PID = pid
	rec.StartedUnix = id.StartUnix
	rec.Status = store.StatusRunning
	rec.Started = time.Now()
	return rec, nil
}

// Stop requests graceful termination of the record's process group, polls
// liveness until timeout, and escalates to a forced kill. persist, when
// non-nil, is invoked as soon as the record transitions to stopping so an
// interrupt mid-stop never leaves a stale running claim on disk. On any exit
// path where the process is gone the record comes back stopped with no PID.
func (s *Supervisor) Stop(rec store.Record, timeout time.Duration, persist func(store.Record)) (store.Record, error) {
	if rec.PID <= 0 || rec.Status == store.StatusStopped {
		return rec, errdef.StopFailedf(rec.Name, "not running")
	}
	if timeout <= 0 {
		timeout = DefaultStopTimeout
	}

	pid := rec.PID
	id := detector.Identity{PID: pid, StartUnix: rec.StartedUnix}

	rec.Status = store.StatusStopping
	if persist != nil {
		persist(rec)
	}

	if err := terminateGroup(pid); err != nil {
		// Signal delivery failing with "no such process" means it is already
		// gone; anything else is a real stop failure.
		if !processGone(err) {
			return rec, errdef.StopFailed(rec.Name, err)
		}
	}
	if s.waitGone(id, timeout) {
		rec.ClearRuntime()
		return rec, nil
	}

	s.Logger.Warn("graceful stop timed out, killing", "name", rec.Name, "pid", pid, "timeout", timeout)
	_ = killGroup(pid)
	if s.waitGone(id, s.killGrace()) {
		rec.ClearRuntime()
		return rec, nil
	}
	return rec, errdef.StopFailedf(rec.Name, "process %d could not be terminated", pid)
}

func (s *Supervisor) killGrace() time.Duration {
	if s.KillGrace > 0 {
		return s.KillGrace
	}
	return defaultKillGrace
}

// waitGone polls until the identity no longer denotes a live process or the
// timeout elapses.
func (s *Supervisor) waitGone(id detector.Identity, timeout time.Duration) bool {
	poll := s.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if !id.Alive() {
			return true
		}
		time.Sleep(poll)
	}
	return !id.Alive()
}
