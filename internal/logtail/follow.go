package logtail

import (
	"bytes"
	"context"
	"io"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/loykin/mcpctl/internal/errdef"
)

// followPollInterval bounds how long a follower waits when file-change
// notifications are unavailable or dropped.
const followPollInterval = 500 * time.Millisecond

// Follow streams newly appended lines to fn until ctx is cancelled or fn
// returns an error. It never terminates on end-of-file: the writing process
// may still be alive. Growth is observed through fsnotify with a polling
// fallback, and truncation (size shrinking below the read offset) restarts
// the read from offset zero.
func (d *Dir) Follow(ctx context.Context, name string, fn func(line string) error) error {
	path := d.Path(name)
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		if os.IsNotExist(err) {
			return errdef.NotFound(name)
		}
		return errdef.Log(name, err)
	}
	defer func() { _ = f.Close() }()

	offset, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return errdef.Log(name, err)
	}

	var events chan fsnotify.Event
	if w, werr := fsnotify.NewWatcher(); werr == nil {
		if werr = w.Add(path); werr == nil {
			events = make(chan fsnotify.Event, 16)
			go func() {
				defer close(events)
				for {
					select {
					case ev, ok := <-w.Events:
						if !ok {
							return
						}
						select {
						case events <- ev:
						default: // drop; the poll ticker covers us
						}
					case <-ctx.Done():
						return
					}
				}
			}()
			defer func() { _ = w.Close() }()
		} else {
			_ = w.Close()
		}
	}

	ticker := time.NewTicker(followPollInterval)
	defer ticker.Stop()

	var pending []byte
	for {
		st, err := f.Stat()
		if err != nil {
			return errdef.Log(name, err)
		}
		if st.Size() < offset {
			// Truncated behind us; resume from the start.
			if _, err := f.Seek(0, io.SeekStart); err != nil {
				return errdef.Log(name, err)
			}
			offset = 0
			pending = pending[:0]
		}
		if st.Size() > offset {
			buf := make([]byte, st.Size()-offset)
			nread, err := f.ReadAt(buf, offset)
			if err != nil && err != io.EOF {
				return errdef.Log(name, err)
			}
			offset += int64(nread)
			pending = append(pending, buf[:nread]...)
			for {
				i := bytes.IndexByte(pending, '\n')
				if i < 0 {
					break
				}
				line := string(pending[:i])
				pending = pending[i+1:]
				if err := fn(line); err != nil {
					return err
				}
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-events:
		case <-ticker.C:
		}
	}
}
