package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/loykin/mcpctl/internal/errdef"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	s := newTestStore(t)
	recs, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected empty map, got %d records", len(recs))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	recs := map[string]Record{
		"web": {
			Name:        "web",
			Command:     "python app.py",
			PID:         4321,
			Status:      StatusRunning,
			Created:     created,
			Started:     created.Add(time.Minute),
			Ports:       []string{"8080:80"},
			HealthCheck: "curl -fs localhost:8080/health",
			StartedUnix: 1748779260,
		},
	}
	if err := s.Save(recs); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	r, ok := got["web"]
	if !ok {
		t.Fatalf("record missing after round trip")
	}
	if r.Command != "python app.py" || r.PID != 4321 || r.Status != StatusRunning {
		t.Fatalf("fields lost: %+v", r)
	}
	if !r.Created.Equal(created) || r.StartedUnix != 1748779260 {
		t.Fatalf("timestamps lost: %+v", r)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	s := newTestStore(t)
	if err := s.Save(map[string]Record{"a": {Name: "a", Command: "true"}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	entries, err := os.ReadDir(s.Dir())
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestLoadMalformedDocument(t *testing.T) {
	s := newTestStore(t)
	if err := os.WriteFile(s.Path(), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := s.Load()
	if err == nil {
		t.Fatalf("expected error for malformed document")
	}
	if !errors.Is(err, errdef.ErrConfig) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestBackup(t *testing.T) {
	s := newTestStore(t)
	if err := s.Save(map[string]Record{"a": {Name: "a", Command: "true"}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	dst, err := s.Backup("unit")
	if err != nil {
		t.Fatalf("backup: %v", err)
	}
	if filepath.Base(dst) != "servers.unit.json" {
		t.Fatalf("unexpected backup name: %s", dst)
	}
	orig, _ := os.ReadFile(s.Path())
	copied, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(orig) != string(copied) {
		t.Fatalf("backup content differs from original")
	}
}

func TestBackupWithoutDocument(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Backup(""); !errors.Is(err, errdef.ErrConfig) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestWithLockRunsFn(t *testing.T) {
	s := newTestStore(t)
	called := false
	if err := s.WithLock(func() error {
		called = true
		return nil
	}); err != nil {
		t.Fatalf("with lock: %v", err)
	}
	if !called {
		t.Fatalf("fn not invoked")
	}
	sentinel := errors.New("boom")
	if err := s.WithLock(func() error { return sentinel }); !errors.Is(err, sentinel) {
		t.Fatalf("fn error not propagated: %v", err)
	}
}
