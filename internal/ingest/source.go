package ingest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	billy "github.com/go-git/go-billy/v5"

	"github.com/agentic-research/idsieve/api"
)

// maxLineSize bounds a single primary-stream line.
const maxLineSize = 1 << 20

// Source produces the records of a primary stream in order.
type Source interface {
	// Stream calls fn for every record. An error from fn stops the stream and
	// is returned unchanged; any other error is a read failure.
	Stream(ctx context.Context, fn func(rec string) error) error
	// Header reports whether the first record is a header line.
	Header() bool
}

// TextSource reads newline-delimited text. The first line is a header.
type TextSource struct {
	name string
	open func() (io.ReadCloser, error)
}

// NewTextSource reads lines from r.
func NewTextSource(r io.Reader) *TextSource {
	return &TextSource{
		name: "stream",
		open: func() (io.ReadCloser, error) { return io.NopCloser(r), nil },
	}
}

func (s *TextSource) Header() bool { return true }

// Stream implements Source. Line terminators (\n or \r\n) are removed.
func (s *TextSource) Stream(ctx context.Context, fn func(rec string) error) error {
	rc, err := s.open()
	if err != nil {
		return fmt.Errorf("open %s: %w", s.name, err)
	}
	defer func() { _ = rc.Close() }() // safe to ignore

	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		if err := fn(strings.TrimSuffix(sc.Text(), "\r")); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read %s: %w", s.name, err)
	}
	return nil
}

// Open returns the Source for path on fs, chosen by extension:
// .db/.sqlite/.sqlite3 stream a SQLite query, .jsonl/.ndjson select a field
// from JSON documents, anything else is read as delimited text.
//
// Nothing is opened until Stream runs, so a missing file surfaces as a read
// failure of the load.
func Open(fs billy.Filesystem, path string, p api.Profile) Source {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return &SQLiteSource{Path: fs.Join(fs.Root(), path), Query: p.SQLiteQuery}
	case ".jsonl", ".ndjson":
		return &JSONLinesSource{name: path, open: billyOpener(fs, path), Selector: p.JSONPath}
	default:
		return &TextSource{name: path, open: billyOpener(fs, path)}
	}
}

func billyOpener(fs billy.Filesystem, path string) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		f, err := fs.Open(path)
		if err != nil {
			return nil, err
		}
		fadviseSequential(f)
		return f, nil
	}
}
