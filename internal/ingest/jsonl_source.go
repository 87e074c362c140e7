package ingest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// JSONLinesSource reads one JSON document per line and yields the string
// found at Selector (a JSONPath such as "$.id"). There is no header.
type JSONLinesSource struct {
	Selector string

	name string
	open func() (io.ReadCloser, error)
}

// NewJSONLinesSource reads documents from r.
func NewJSONLinesSource(r io.Reader, selector string) *JSONLinesSource {
	return &JSONLinesSource{
		Selector: selector,
		name:     "stream",
		open:     func() (io.ReadCloser, error) { return io.NopCloser(r), nil },
	}
}

func (s *JSONLinesSource) Header() bool { return false }

// Stream implements Source. Lines that do not parse, or whose selected value
// is not a string, are passed on as empty records so the loader counts them
// as skipped.
func (s *JSONLinesSource) Stream(ctx context.Context, fn func(rec string) error) error {
	x, err := jp.ParseString(s.Selector)
	if err != nil {
		return fmt.Errorf("invalid jsonpath '%s': %w", s.Selector, err)
	}

	rc, err := s.open()
	if err != nil {
		return fmt.Errorf("open %s: %w", s.name, err)
	}
	defer func() { _ = rc.Close() }() // safe to ignore

	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		if err := fn(s.selectID(x, text, line)); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read %s: %w", s.name, err)
	}
	return nil
}

func (s *JSONLinesSource) selectID(x jp.Expr, text string, line int) string {
	doc, err := oj.ParseString(text)
	if err != nil {
		log.Printf("%s:%d: skip unparsable record: %v", s.name, line, err)
		return ""
	}
	for _, v := range x.Get(doc) {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
