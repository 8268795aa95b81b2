// Package reconcile refreshes a record's status against live OS process
// state. Because no resident watcher exists, a record is only trustworthy at
// the moment it is re-checked; every command that reports or acts on status
// runs this first.
package reconcile

import (
	"github.com/loykin/mcpctl/internal/detector"
	"github.com/loykin/mcpctl/internal/store"
)

// Record returns the reconciled record and whether it changed. A record with
// no PID always reconciles to stopped (already-stopped records are a no-op,
// so reconciliation is idempotent); otherwise the PID is probed and its
// identity signal compared, so a reused PID is reported stopped rather than
// running.
func Record(rec store.Record) (store.Record, bool) {
	if rec.PID <= 0 {
		if rec.Status == store.StatusStopped {
			return rec, false
		}
		rec.Status = store.StatusStopped
		return rec, true
	}
	id := detector.Identity{PID: rec.PID, StartUnix: rec.StartedUnix}
	if id.Alive() {
		if rec.Status == store.StatusRunning {
			return rec, false
		}
		rec.Status = store.StatusRunning
		return rec, true
	}
	rec.ClearRuntime()
	return rec, true
}

// All reconciles every record in the document, returning the number that
// changed. The caller persists when changed > 0.
func All(recs map[string]store.Record) int {
	changed := 0
	for name, rec := range recs {
		next, dirty := Record(rec)
		if dirty {
			recs[name] = next
			changed++
		}
	}
	return changed
}
