package nflschedule

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
)

// SnapshotWriter keeps the last fetched page on disk so a bad parse can be
// replayed with FileSource.
type SnapshotWriter struct {
	path string
	now  func() time.Time
}

func NewSnapshotWriter(path string) *SnapshotWriter {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	return &SnapshotWriter{path: path, now: time.Now}
}

// Write replaces the snapshot atomically. The page is prefixed with an HTML
// comment naming the source and fetch time.
func (w *SnapshotWriter) Write(source string, page []byte) error {
	if w == nil {
		return nil
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	_, _ = buf.WriteString("<!-- source=" + source + " fetched_at=" + w.now().UTC().Format(time.RFC3339) + " -->\n")
	_, _ = buf.Write(page)

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return crerr.Wrapf(err, "create snapshot dir %s", dir)
	}
	tmp, err := os.CreateTemp(dir, ".schedule-*.html")
	if err != nil {
		return crerr.Wrap(err, "create snapshot temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.B); err != nil {
		_ = tmp.Close()
		return crerr.Wrapf(err, "write snapshot %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return crerr.Wrapf(err, "close snapshot %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return crerr.Wrapf(err, "move snapshot to %s", w.path)
	}
	return nil
}

func (w *SnapshotWriter) Path() string {
	if w == nil {
		return ""
	}
	return w.path
}
