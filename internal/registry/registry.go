// Package registry provides CRUD over server records backed by the registry
// store. Every mutation is a full load-apply-save of the document under the
// store's advisory lock; no partial-record updates are exposed.
package registry

import (
	"sort"
	"strings"
	"time"

	"github.com/loykin/mcpctl/internal/errdef"
	"github.com/loykin/mcpctl/internal/store"
)

type Registry struct {
	store *store.Store
}

func New(st *store.Store) *Registry { return &Registry{store: st} }

// Store exposes the backing store for callers that need Backup or WithLock.
func (r *Registry) Store() *store.Store { return r.store }

// CreateOptions carries the optional fields of a new record.
type CreateOptions struct {
	ConfigFile  string
	HealthCheck string
	Ports       []string
}

// Create registers a new server record with status stopped and no PID.
func (r *Registry) Create(name, command string, opts CreateOptions) (store.Record, error) {
	name = strings.TrimSpace(name)
	command = strings.TrimSpace(command)
	var rec store.Record
	if err := store.ValidateName(name); err != nil {
		return rec, err
	}
	if command == "" {
		return rec, errdef.Configf("server command cannot be empty")
	}
	err := r.store.WithLock(func() error {
		recs, err := r.store.Load()
		if err != nil {
			return err
		}
		if _, exists := recs[name]; exists {
			return errdef.AlreadyExists(name)
		}
		rec = store.Record{
			Name:        name,
			Command:     command,
			ConfigFile:  strings.TrimSpace(opts.ConfigFile),
			HealthCheck: strings.TrimSpace(opts.HealthCheck),
			Ports:       opts.Ports,
			Status:      store.StatusStopped,
			Created:     time.Now(),
		}
		if rec.Ports == nil {
			rec.Ports = []string{}
		}
		recs[name] = rec
		return r.store.Save(recs)
	})
	return rec, err
}

// Get returns the record for name.
func (r *Registry) Get(name string) (store.Record, error) {
	recs, err := r.store.Load()
	if err != nil {
		return store.Record{}, err
	}
	rec, ok := recs[name]
	if !ok {
		return store.Record{}, errdef.NotFound(name)
	}
	return rec, nil
}

// List returns records ordered by creation time (the document's insertion
// order). When includeStopped is false the filter uses the last persisted
// status, before any reconciliation; callers needing live truth reconcile
// first.
func (r *Registry) List(includeStopped bool) ([]store.Record, error) {
	recs, err := r.store.Load()
	if err != nil {
		return nil, err
	}
	out := make([]store.Record, 0, len(recs))
	for _, rec := range recs {
		if !includeStopped && rec.Status == store.StatusStopped {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Created.Equal(out[j].Created) {
			return out[i].Name < out[j].Name
		}
		return out[i].Created.Before(out[j].Created)
	})
	return out, nil
}

// Names returns all registered server names.
func (r *Registry) Names() (map[string]bool, error) {
	recs, err := r.store.Load()
	if err != nil {
		return nil, err
	}
	names := make(map[string]bool, len(recs))
	for n := range recs {
		names[n] = true
	}
	return names, nil
}

// Update replaces a record wholesale under the document lock.
func (r *Registry) Update(rec store.Record) error {
	return r.store.WithLock(func() error {
		recs, err := r.store.Load()
		if err != nil {
			return err
		}
		if _, ok := recs[rec.Name]; !ok {
			return errdef.NotFound(rec.Name)
		}
		recs[rec.Name] = rec
		return r.store.Save(recs)
	})
}

// Mutate loads the named record, applies fn, and saves the document, all
// under the lock. fn receives a pointer to the in-document record.
func (r *Registry) Mutate(name string, fn func(rec *store.Record) error) (store.Record, error) {
	var out store.Record
	err := r.store.WithLock(func() error {
		recs, err := r.store.Load()
		if err != nil {
			return err
		}
		rec, ok := recs[name]
		if !ok {
			return errdef.NotFound(name)
		}
		if err := fn(&rec); err != nil {
			return err
		}
		recs[name] = rec
		out = rec
		return r.store.Save(recs)
	})
	return out, err
}

// Remove deletes a record. A record whose last known status is running is
// protected unless force is set. The registry document is backed up before
// the destructive save.
func (r *Registry) Remove(name string, force bool) error {
	return r.store.WithLock(func() error {
		recs, err := r.store.Load()
		if err != nil {
			return err
		}
		rec, ok := recs[name]
		if !ok {
			return errdef.NotFound(name)
		}
		if rec.Running() && !force {
			return errdef.Processf(name, "still running (pid %d); stop it first or use --force", rec.PID)
		}
		if _, err := r.store.Backup(""); err != nil {
			// A missing document cannot happen here (we just loaded it), so
			// any failure is a real IO problem worth surfacing.
			return err
		}
		delete(recs, name)
		return r.store.Save(recs)
	})
}
