package logtail

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/loykin/mcpctl/internal/errdef"
)

func newTestDir(t *testing.T) *Dir {
	t.Helper()
	d, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new logs dir: %v", err)
	}
	return d
}

func writeLog(t *testing.T, d *Dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(d.Path(name), []byte(content), 0o640); err != nil {
		t.Fatalf("write log: %v", err)
	}
}

func TestOpenSinkWritesBanner(t *testing.T) {
	d := newTestDir(t)
	f, err := d.OpenSink("web")
	if err != nil {
		t.Fatalf("open sink: %v", err)
	}
	if _, err := f.WriteString("hello\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = f.Close()

	b, err := os.ReadFile(d.Path("web"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), "=== Starting web at ") {
		t.Fatalf("banner missing: %q", b)
	}
	if !strings.HasSuffix(string(b), "hello\n") {
		t.Fatalf("appended output missing: %q", b)
	}

	// A second sink appends; nothing is truncated.
	f2, err := d.OpenSink("web")
	if err != nil {
		t.Fatalf("reopen sink: %v", err)
	}
	_ = f2.Close()
	b2, _ := os.ReadFile(d.Path("web"))
	if !strings.Contains(string(b2), "hello\n") {
		t.Fatalf("previous content lost on reopen")
	}
}

func TestTailReturnsTrailingLinesInOrder(t *testing.T) {
	d := newTestDir(t)
	var sb strings.Builder
	for i := 1; i <= 100; i++ {
		fmt.Fprintf(&sb, "line %d\n", i)
	}
	writeLog(t, d, "web", sb.String())

	lines, err := d.Tail("web", 5)
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	want := []string{"line 96", "line 97", "line 98", "line 99", "line 100"}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %v", len(want), len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: got %q want %q", i, lines[i], want[i])
		}
	}
}

func TestTailFewerLinesThanRequested(t *testing.T) {
	d := newTestDir(t)
	writeLog(t, d, "web", "only\n")
	lines, err := d.Tail("web", 50)
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if len(lines) != 1 || lines[0] != "only" {
		t.Fatalf("unexpected result: %v", lines)
	}
}

func TestTailLargeFileCrossesBlocks(t *testing.T) {
	d := newTestDir(t)
	// Lines long enough that the tail spans multiple 8 KiB read blocks.
	pad := strings.Repeat("x", 1000)
	var sb strings.Builder
	for i := 0; i < 200; i++ {
		fmt.Fprintf(&sb, "%03d %s\n", i, pad)
	}
	writeLog(t, d, "big", sb.String())

	lines, err := d.Tail("big", 20)
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if len(lines) != 20 {
		t.Fatalf("expected 20 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "180 ") || !strings.HasPrefix(lines[19], "199 ") {
		t.Fatalf("wrong window: first=%q last=%q", lines[0][:4], lines[19][:4])
	}
}

func TestTailMissingLog(t *testing.T) {
	d := newTestDir(t)
	if _, err := d.Tail("ghost", 10); !errors.Is(err, errdef.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestTailEmptyAndZero(t *testing.T) {
	d := newTestDir(t)
	writeLog(t, d, "web", "")
	lines, err := d.Tail("web", 10)
	if err != nil || lines != nil {
		t.Fatalf("empty file should yield nil, got %v %v", lines, err)
	}
	if lines, _ := d.Tail("web", 0); lines != nil {
		t.Fatalf("n<=0 should yield nil")
	}
}

func TestClearTruncates(t *testing.T) {
	d := newTestDir(t)
	writeLog(t, d, "web", "old content\n")
	if err := d.Clear("web"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	st, err := os.Stat(d.Path("web"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if st.Size() != 0 {
		t.Fatalf("log not truncated, size %d", st.Size())
	}
	// Clearing a missing log is fine.
	if err := d.Clear("ghost"); err != nil {
		t.Fatalf("clear missing: %v", err)
	}
}

func TestDeleteAndNames(t *testing.T) {
	d := newTestDir(t)
	writeLog(t, d, "a", "x\n")
	writeLog(t, d, "b", "x\n")

	names, err := d.Names()
	if err != nil {
		t.Fatalf("names: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 names, got %v", names)
	}

	if err := d.Delete("a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := d.Delete("a"); err != nil {
		t.Fatalf("delete missing should be nil, got %v", err)
	}
	names, _ = d.Names()
	if len(names) != 1 || names[0] != "b" {
		t.Fatalf("unexpected names after delete: %v", names)
	}
}

func TestCleanupOrphans(t *testing.T) {
	d := newTestDir(t)
	writeLog(t, d, "kept", "x\n")
	writeLog(t, d, "orphan1", "x\n")
	writeLog(t, d, "orphan2", "x\n")

	removed := d.CleanupOrphans(map[string]bool{"kept": true})
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	names, _ := d.Names()
	if len(names) != 1 || names[0] != "kept" {
		t.Fatalf("unexpected survivors: %v", names)
	}
}
