package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/loykin/mcpctl/internal/errdef"
)

const serversFileName = "servers.json"

// Store owns the on-disk registry document. Saves are atomic: the document is
// written to a temporary file in the same directory and renamed over the
// target, so a crash or a concurrent writer never leaves a partial document.
type Store struct {
	dir  string
	path string
}

// New creates a Store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, errdef.Config(fmt.Errorf("create state dir %s: %w", dir, err))
	}
	return &Store{dir: dir, path: filepath.Join(dir, serversFileName)}, nil
}

// Dir returns the state directory the store is rooted at.
func (s *Store) Dir() string { return s.dir }

// Path returns the location of the registry document.
func (s *Store) Path() string { return s.path }

// Load reads the full document. A missing file is the first-run case and
// yields an empty map; a malformed file is a configuration error, never a
// silent discard.
func (s *Store) Load() (map[string]Record, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Record{}, nil
		}
		return nil, errdef.Config(fmt.Errorf("read %s: %w", s.path, err))
	}
	recs := make(map[string]Record)
	if len(b) == 0 {
		return recs, nil
	}
	if err := json.Unmarshal(b, &recs); err != nil {
		return nil, errdef.Config(fmt.Errorf("parse %s: %w", s.path, err))
	}
	return recs, nil
}

// Save atomically replaces the full document.
func (s *Store) Save(recs map[string]Record) error {
	b, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return errdef.Config(fmt.Errorf("encode registry: %w", err))
	}
	tmp, err := os.CreateTemp(s.dir, serversFileName+".tmp-*")
	if err != nil {
		return errdef.Config(fmt.Errorf("create temp file: %w", err))
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(append(b, '\n')); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errdef.Config(fmt.Errorf("write %s: %w", tmpName, err))
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errdef.Config(fmt.Errorf("sync %s: %w", tmpName, err))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errdef.Config(fmt.Errorf("close %s: %w", tmpName, err))
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return errdef.Config(fmt.Errorf("rename %s: %w", tmpName, err))
	}
	return nil
}

// Backup copies the current document to a timestamped sibling and returns its
// path. Called before destructive saves so the operator can recover by hand.
func (s *Store) Backup(suffix string) (string, error) {
	if suffix == "" {
		suffix = time.Now().Format("20060102_150405")
	}
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errdef.Configf("no registry document to back up")
		}
		return "", errdef.Config(fmt.Errorf("read %s: %w", s.path, err))
	}
	dst := filepath.Join(s.dir, fmt.Sprintf("servers.%s.json", suffix))
	if err := os.WriteFile(dst, b, 0o600); err != nil {
		return "", errdef.Config(fmt.Errorf("write backup %s: %w", dst, err))
	}
	return dst, nil
}

// WithLock runs fn while holding the advisory cross-process lock. Two
// concurrent invocations still race at whole-document granularity once both
// saves complete, but the lock narrows the load-modify-save window.
func (s *Store) WithLock(fn func() error) error {
	lockPath := filepath.Join(s.dir, ".registry.lock")
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o600) // #nosec G304
	if err != nil {
		return errdef.Config(fmt.Errorf("open lock file: %w", err))
	}
	defer func() { _ = f.Close() }()
	if err := lockFile(f); err != nil {
		return errdef.Config(fmt.Errorf("acquire registry lock: %w", err))
	}
	defer func() { _ = unlockFile(f) }()
	return fn()
}
