package nflschedule

import (
	"context"
	"os"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
)

// FileSource replays a saved page, used to reconcile past weeks and in tests.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: strings.TrimSpace(path)}
}

func (s *FileSource) Name() string { return "file" }

func (s *FileSource) Fetch(_ context.Context) ([]byte, error) {
	if s.path == "" {
		return nil, crerr.New("schedule file path is empty")
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, crerr.Wrapf(err, "open %s", s.path)
	}
	defer f.Close()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := buf.ReadFrom(f); err != nil {
		return nil, crerr.Wrapf(err, "read %s", s.path)
	}
	return append([]byte(nil), buf.B...), nil
}
