// Package mcpctl supervises long-running MCP server processes through a
// docker-like CLI. Every command is a fresh, short-lived invocation: state is
// recovered from the on-disk registry, reconciled against live OS processes,
// mutated, and persisted back atomically. No daemon stays resident.
package mcpctl

import (
	"context"
	"log/slog"
	"time"

	"github.com/loykin/mcpctl/internal/config"
	"github.com/loykin/mcpctl/internal/detector"
	"github.com/loykin/mcpctl/internal/errdef"
	"github.com/loykin/mcpctl/internal/health"
	"github.com/loykin/mcpctl/internal/history"
	"github.com/loykin/mcpctl/internal/logger"
	"github.com/loykin/mcpctl/internal/logtail"
	"github.com/loykin/mcpctl/internal/reconcile"
	"github.com/loykin/mcpctl/internal/registry"
	"github.com/loykin/mcpctl/internal/store"
	"github.com/loykin/mcpctl/internal/supervisor"
)

// Re-export core types for external consumers. These are aliases so
// conversions are zero-cost.

type Record = store.Record

type Status = store.Status

const (
	StatusStopped  = store.StatusStopped
	StatusStarting = store.StatusStarting
	StatusRunning  = store.StatusRunning
	StatusStopping = store.StatusStopping
	StatusError    = store.StatusError
)

type Event = history.Event

type EventType = history.EventType

const (
	EventCreated = history.EventCreated
	EventStarted = history.EventStarted
	EventStopped = history.EventStopped
	EventRemoved = history.EventRemoved
	EventFailed  = history.EventFailed
)

type ProcInfo = detector.Info

type HealthResult = health.Result

type Settings = config.Settings

// CreateOptions carries optional fields of a new server record.
type CreateOptions = registry.CreateOptions

// Error-kind predicates for callers that branch on the failure taxonomy.

func IsNotFound(err error) bool      { return errdef.KindOf(err) == errdef.KindNotFound }
func IsAlreadyExists(err error) bool { return errdef.KindOf(err) == errdef.KindAlreadyExists }
func IsStartFailed(err error) bool   { return errdef.KindOf(err) == errdef.KindStartFailed }
func IsStopFailed(err error) bool    { return errdef.KindOf(err) == errdef.KindStopFailed }
func IsConfigError(err error) bool   { return errdef.KindOf(err) == errdef.KindConfig }
func IsProcessError(err error) bool  { return errdef.KindOf(err) == errdef.KindProcess }
func IsLogError(err error) bool      { return errdef.KindOf(err) == errdef.KindLog }

// UpdateOptions names the mutable fields of an existing record. Nil fields
// are left unchanged.
type UpdateOptions struct {
	Command     *string
	ConfigFile  *string
	HealthCheck *string
	Ports       *[]string
}

// InspectResult is the full picture for one server: the reconciled record,
// live process info when running, and the advisory health-check outcome.
type InspectResult struct {
	Record  Record        `json:"record"`
	LogFile string        `json:"log_file"`
	Proc    *ProcInfo     `json:"process,omitempty"`
	Health  *HealthResult `json:"health,omitempty"`
}

// Manager ties the registry, reconciler, supervisor and log reader together
// for the duration of one command invocation.
type Manager struct {
	settings config.Settings
	registry *registry.Registry
	logs     *logtail.Dir
	sup      *supervisor.Supervisor
	hist     history.Sink
	logger   *slog.Logger
}

// Option adjusts the effective settings before the Manager is built.
type Option func(*Settings)

// WithLogLevel overrides the diagnostics log level from the settings file.
func WithLogLevel(level string) Option {
	return func(s *Settings) {
		if level != "" {
			s.Log.Level = level
		}
	}
}

// New builds a Manager rooted at baseDir ("" means ~/.mcp), creating the
// state and logs directories on first use.
func New(baseDir string, opts ...Option) (*Manager, error) {
	settings, err := config.Load(baseDir)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(&settings)
	}
	log := logger.New(settings.Log)

	st, err := store.New(settings.BaseDir)
	if err != nil {
		return nil, err
	}
	logs, err := logtail.New(config.LogsDir(settings.BaseDir))
	if err != nil {
		return nil, err
	}
	sup := supervisor.New(log)
	sup.Settle = settings.Settle

	var hist history.Sink = history.NopSink{}
	if settings.HistoryDSN != "" {
		s, err := history.NewSQLite(settings.HistoryDSN)
		if err != nil {
			return nil, errdef.Config(err)
		}
		hist = s
	}

	return &Manager{
		settings: settings,
		registry: registry.New(st),
		logs:     logs,
		sup:      sup,
		hist:     hist,
		logger:   log,
	}, nil
}

// Close releases the history sink.
func (m *Manager) Close() error { return m.hist.Close() }

// Settings returns the effective tool settings.
func (m *Manager) Settings() Settings { return m.settings }

// Logger returns the diagnostics logger.
func (m *Manager) Logger() *slog.Logger { return m.logger }

// LogPath returns the log file location for a server.
func (m *Manager) LogPath(name string) string { return m.logs.Path(name) }

func (m *Manager) event(t history.EventType, rec Record, detail string) {
	e := history.Event{
		Type:       t,
		OccurredAt: time.Now(),
		Name:       rec.Name,
		PID:        rec.PID,
		Status:     string(rec.Status),
		Detail:     detail,
	}
	if err := m.hist.Send(context.Background(), e); err != nil {
		m.logger.Warn("history event dropped", "type", t, "name", rec.Name, "error", err)
	}
}

// reconciled returns the record refreshed against live OS state, persisting
// the corrected truth immediately when it changed so concurrent invocations
// see it as soon as possible.
func (m *Manager) reconciled(name string) (Record, error) {
	rec, err := m.registry.Get(name)
	if err != nil {
		return rec, err
	}
	next, changed := reconcile.Record(rec)
	if changed {
		if err := m.registry.Update(next); err != nil {
			return next, err
		}
	}
	return next, nil
}

// Create registers a new server. With autoStart the server is launched right
// after creation.
func (m *Manager) Create(name, command string, opts CreateOptions, autoStart bool) (Record, error) {
	rec, err := m.registry.Create(name, command, opts)
	if err != nil {
		return rec, err
	}
	m.event(history.EventCreated, rec, "")
	if autoStart {
		return m.Start(name, false)
	}
	return rec, nil
}

// Get returns the reconciled record for name.
func (m *Manager) Get(name string) (Record, error) { return m.reconciled(name) }

// List reconciles every record, persists corrections in one atomic save, and
// returns the records in creation order. When all is false, servers whose
// status is stopped are filtered out.
func (m *Manager) List(all bool) ([]Record, error) {
	st := m.registry.Store()
	err := st.WithLock(func() error {
		recs, err := st.Load()
		if err != nil {
			return err
		}
		if reconcile.All(recs) > 0 {
			return st.Save(recs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m.registry.List(all)
}

// Start launches a server. The record is reconciled first so a stale running
// claim does not block the start, and the final state is persisted whether
// the launch succeeded or landed in error.
func (m *Manager) Start(name string, idempotent bool) (Record, error) {
	rec, err := m.reconciled(name)
	if err != nil {
		return rec, err
	}
	if rec.Running() {
		if idempotent {
			return rec, nil
		}
		// Reject before opening the sink so the failed attempt does not
		// append a launch banner to the log.
		return rec, errdef.StartFailedf(name, "already running (pid %d)", rec.PID)
	}

	sink, err := m.logs.OpenSink(name)
	if err != nil {
		return rec, err
	}
	defer func() { _ = sink.Close() }()

	next, startErr := m.sup.Start(rec, sink, idempotent)
	if err := m.registry.Update(next); err != nil {
		return next, err
	}
	if startErr != nil {
		m.event(history.EventFailed, next, startErr.Error())
		return next, startErr
	}
	m.event(history.EventStarted, next, "")
	return next, nil
}

// Stop gracefully terminates a server within timeout, escalating to a forced
// kill. The stopping transition is persisted promptly so an interrupt cannot
// leave a stale running claim, and the final stopped state is persisted on
// the way out.
func (m *Manager) Stop(name string, timeout time.Duration) (Record, error) {
	rec, err := m.reconciled(name)
	if err != nil {
		return rec, err
	}
	if timeout <= 0 {
		timeout = m.settings.StopTimeout
	}

	persist := func(r Record) {
		if err := m.registry.Update(r); err != nil {
			m.logger.Warn("persist stopping state", "name", name, "error", err)
		}
	}
	next, stopErr := m.sup.Stop(rec, timeout, persist)
	if err := m.registry.Update(next); err != nil {
		return next, err
	}
	if stopErr != nil {
		m.event(history.EventFailed, next, stopErr.Error())
		return next, stopErr
	}
	m.event(history.EventStopped, next, "")
	return next, nil
}

// Restart stops the server when it is running (tolerant of already-stopped)
// and starts it again. Failure of either half surfaces as that half's error,
// leaving the record in whatever state the failing half persisted.
func (m *Manager) Restart(name string, timeout time.Duration) (Record, error) {
	rec, err := m.reconciled(name)
	if err != nil {
		return rec, err
	}
	if rec.Running() {
		if rec, err = m.Stop(name, timeout); err != nil {
			return rec, err
		}
	}
	return m.Start(name, false)
}

// Remove deletes a server's record and, unless keepLogs, its log file. A
// running server is protected unless force is set; with force the process is
// killed first.
func (m *Manager) Remove(name string, force, keepLogs bool) error {
	rec, err := m.reconciled(name)
	if err != nil {
		return err
	}
	if rec.Running() && force {
		if _, err := m.Stop(name, m.settings.StopTimeout); err != nil {
			return err
		}
	}
	if err := m.registry.Remove(name, force); err != nil {
		return err
	}
	m.event(history.EventRemoved, rec, "")
	if !keepLogs {
		if err := m.logs.Delete(name); err != nil {
			// Log cleanup is not critical; the record is already gone.
			m.logger.Warn("delete log file", "name", name, "error", err)
		}
		// Also prune logs left behind by earlier removals with --keep-logs
		// or interrupted runs.
		if active, err := m.registry.Names(); err == nil {
			if n := m.logs.CleanupOrphans(active); n > 0 {
				m.logger.Debug("pruned orphaned log files", "count", n)
			}
		}
	}
	return nil
}

// Update mutates the editable fields of an existing record.
func (m *Manager) Update(name string, opts UpdateOptions) (Record, error) {
	return m.registry.Mutate(name, func(rec *store.Record) error {
		if opts.Command != nil {
			if *opts.Command == "" {
				return errdef.Configf("server command cannot be empty")
			}
			rec.Command = *opts.Command
		}
		if opts.ConfigFile != nil {
			rec.ConfigFile = *opts.ConfigFile
		}
		if opts.HealthCheck != nil {
			rec.HealthCheck = *opts.HealthCheck
		}
		if opts.Ports != nil {
			rec.Ports = *opts.Ports
		}
		return nil
	})
}

// Inspect returns the reconciled record plus live process info and the
// advisory health-check result. The health check never changes the record's
// status.
func (m *Manager) Inspect(ctx context.Context, name string, runHealth bool) (InspectResult, error) {
	rec, err := m.reconciled(name)
	if err != nil {
		return InspectResult{}, err
	}
	res := InspectResult{Record: rec, LogFile: m.logs.Path(name)}
	if rec.Running() {
		if info, err := detector.ProcInfo(rec.PID); err == nil {
			res.Proc = info
		}
	}
	if runHealth && rec.HealthCheck != "" {
		hr := health.Run(ctx, rec.HealthCheck, m.settings.HealthTimeout)
		res.Health = &hr
	}
	return res, nil
}

// Tail returns the last n log lines for a server.
func (m *Manager) Tail(name string, n int) ([]string, error) {
	if _, err := m.registry.Get(name); err != nil {
		return nil, err
	}
	if n <= 0 {
		n = m.settings.TailLines
	}
	return m.logs.Tail(name, n)
}

// Follow streams newly appended log lines to fn until ctx is cancelled.
func (m *Manager) Follow(ctx context.Context, name string, fn func(line string) error) error {
	if _, err := m.registry.Get(name); err != nil {
		return err
	}
	return m.logs.Follow(ctx, name, fn)
}

// ClearLog truncates a server's log file.
func (m *Manager) ClearLog(name string) error {
	if _, err := m.registry.Get(name); err != nil {
		return err
	}
	return m.logs.Clear(name)
}

// Backup copies the registry document to a timestamped sibling file and
// returns the backup path.
func (m *Manager) Backup() (string, error) { return m.registry.Store().Backup("") }

// Events lists recorded lifecycle events, newest first. Requires a history
// sink to be configured.
func (m *Manager) Events(ctx context.Context, name string, limit int) ([]Event, error) {
	if _, ok := m.hist.(history.NopSink); ok {
		return nil, errdef.Configf("history is not configured; set history_dsn in config.toml")
	}
	return m.hist.List(ctx, name, limit)
}
