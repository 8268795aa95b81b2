// Package logtail manages the per-server append-only log files: the sink the
// supervisor redirects process output into, bounded tail reads, live follow,
// and truncation.
package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/loykin/mcpctl/internal/errdef"
)

const logExt = ".log"

// Dir is the per-user logs directory, one file per server name.
type Dir struct {
	path string
}

// New creates the logs directory if needed.
func New(path string) (*Dir, error) {
	if err := os.MkdirAll(path, 0o750); err != nil {
		return nil, errdef.Config(fmt.Errorf("create logs dir %s: %w", path, err))
	}
	return &Dir{path: path}, nil
}

// Path returns the log file location for a server name.
func (d *Dir) Path(name string) string {
	return filepath.Join(d.path, name+logExt)
}

// OpenSink opens (creating lazily) the append-mode sink for a server and
// writes the launch banner. The returned *os.File is handed to the child as
// stdout/stderr directly: an inherited descriptor is the only sink that
// survives this process exiting.
func (d *Dir) OpenSink(name string) (*os.File, error) {
	f, err := os.OpenFile(d.Path(name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640) // #nosec G304
	if err != nil {
		return nil, errdef.Log(name, err)
	}
	banner := fmt.Sprintf("\n=== Starting %s at %s ===\n", name, time.Now().Format("2006-01-02 15:04:05"))
	if _, err := f.WriteString(banner); err != nil {
		_ = f.Close()
		return nil, errdef.Log(name, err)
	}
	return f, nil
}

// Tail returns at most n trailing lines in original order. The file is
// scanned backward in fixed-size blocks so large logs are never loaded whole.
func (d *Dir) Tail(name string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	f, err := os.Open(d.Path(name)) // #nosec G304
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errdef.NotFound(name)
		}
		return nil, errdef.Log(name, err)
	}
	defer func() { _ = f.Close() }()

	st, err := f.Stat()
	if err != nil {
		return nil, errdef.Log(name, err)
	}
	size := st.Size()
	if size == 0 {
		return nil, nil
	}

	const block = 8 << 10
	var acc []byte
	newlines := 0
	for off := size; off > 0 && newlines <= n; {
		chunk := int64(block)
		if off < chunk {
			chunk = off
		}
		off -= chunk
		buf := make([]byte, chunk)
		if _, err := f.ReadAt(buf, off); err != nil {
			return nil, errdef.Log(name, err)
		}
		acc = append(buf, acc...)
		newlines = strings.Count(string(acc), "\n")
	}

	lines := strings.Split(strings.TrimSuffix(string(acc), "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}

// Clear truncates a server's log to zero length. Followers detect the
// point-in-time cut by offset and resume from the start of the file.
func (d *Dir) Clear(name string) error {
	err := os.Truncate(d.Path(name), 0)
	if err != nil && !os.IsNotExist(err) {
		return errdef.Log(name, err)
	}
	return nil
}

// Delete removes a server's log file. Missing files are not an error.
func (d *Dir) Delete(name string) error {
	err := os.Remove(d.Path(name))
	if err != nil && !os.IsNotExist(err) {
		return errdef.Log(name, err)
	}
	return nil
}

// Names lists server names that currently have a log file.
func (d *Dir) Names() ([]string, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, errdef.Log("", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), logExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), logExt))
	}
	return names, nil
}

// CleanupOrphans deletes log files whose server no longer exists in the
// registry. Returns the number removed.
func (d *Dir) CleanupOrphans(active map[string]bool) int {
	names, err := d.Names()
	if err != nil {
		return 0
	}
	removed := 0
	for _, n := range names {
		if !active[n] {
			if d.Delete(n) == nil {
				removed++
			}
		}
	}
	return removed
}
