// Package bulk filters a line stream by identifier membership.
//
// Every line is matched against the identifier pattern. The first line is a
// header when it carries no identifier and is always kept. Other lines
// without an identifier are dropped; lines with one are kept or dropped by
// membership according to the selected Mode. Kept lines are written
// unchanged, in input order, each followed by the configured terminator.
package bulk

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"runtime"
	"strings"

	"github.com/RoaringBitmap/roaring"

	"github.com/agentic-research/idsieve/internal/query"
)

// ErrIndexNotReady is returned when a candidate cannot be answered
// definitively. Filtering needs a fully loaded index.
var ErrIndexNotReady = errors.New("bulk: index not ready")

// Mode selects which candidate lines are retained.
type Mode int

const (
	KeepMatches Mode = iota
	KeepNonMatches
)

func (m Mode) String() string {
	switch m {
	case KeepMatches:
		return "matches"
	case KeepNonMatches:
		return "non-matches"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts the names produced by Mode.String.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "matches", "match":
		return KeepMatches, nil
	case "non-matches", "nonmatches", "non-match":
		return KeepNonMatches, nil
	default:
		return 0, fmt.Errorf("bulk: unknown mode %q (want matches or non-matches)", s)
	}
}

const identifierPattern = `[0-9A-Fa-f]{8}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{12}`

// Pattern returns the line pattern: an optional single character from
// marker followed by an identifier, anchored at the line start. The
// identifier is submatch 1. An empty marker allows no prefix.
func Pattern(marker string) *regexp.Regexp {
	if marker == "" {
		return regexp.MustCompile(`^(` + identifierPattern + `)`)
	}
	// Code point escapes keep class metacharacters such as '-' literal.
	var class strings.Builder
	for _, r := range marker {
		_, _ = fmt.Fprintf(&class, `\x{%x}`, r)
	}
	return regexp.MustCompile(`^[` + class.String() + `]?(` + identifierPattern + `)`)
}

// Checker answers membership for a single identifier.
// *query.Service implements it.
type Checker interface {
	Check(id string) query.Outcome
}

// Decision describes what happened to one candidate line.
type Decision struct {
	Line    int // zero-based input line number
	ID      string
	Outcome query.Outcome
	Kept    bool
}

// Options configure Filter. The zero value keeps matches, uses "\n" and
// yields every 1000 lines.
type Options struct {
	Mode       Mode
	Pattern    *regexp.Regexp
	Terminator string
	YieldEvery int
	// OnDecision receives every candidate decision. It is informational and
	// cannot affect the output.
	OnDecision func(Decision)
	// OnProgress receives the number of lines read at every yield point.
	OnProgress func(lines int)
}

func (o *Options) defaults() {
	if o.Pattern == nil {
		o.Pattern = Pattern(`"`)
	}
	if o.Terminator == "" {
		o.Terminator = "\n"
	}
	if o.YieldEvery <= 0 {
		o.YieldEvery = 1000
	}
}

// Report summarizes one Filter run.
type Report struct {
	Lines         int
	Header        bool // first line kept as header
	Candidates    int
	Matches       int
	NonMatches    int
	NonCandidates int
	// Kept holds the zero-based input line numbers written to the output.
	Kept *roaring.Bitmap
}

// Filter copies the retained lines of r to w. Input lines may end in "\n" or
// "\r\n"; output lines all end in opts.Terminator.
func Filter(ctx context.Context, r io.Reader, w io.Writer, q Checker, opts Options) (*Report, error) {
	opts.defaults()
	rep := &Report{Kept: roaring.New()}
	br := bufio.NewReaderSize(r, 64*1024)
	bw := bufio.NewWriterSize(w, 64*1024)

	emit := func(n int, line string) error {
		rep.Kept.Add(uint32(n))
		if _, err := bw.WriteString(line); err != nil {
			return err
		}
		_, err := bw.WriteString(opts.Terminator)
		return err
	}

	for n := 0; ; n++ {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return rep, fmt.Errorf("read line %d: %w", n+1, err)
		}
		if line == "" && err == io.EOF {
			break
		}
		line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
		rep.Lines++

		if err := filterLine(n, line, q, &opts, rep, emit); err != nil {
			return rep, err
		}

		if rep.Lines%opts.YieldEvery == 0 {
			runtime.Gosched()
			if err := ctx.Err(); err != nil {
				return rep, err
			}
			if opts.OnProgress != nil {
				opts.OnProgress(rep.Lines)
			}
		}
		if err == io.EOF {
			break
		}
	}

	if err := bw.Flush(); err != nil {
		return rep, fmt.Errorf("write output: %w", err)
	}
	return rep, nil
}

func filterLine(n int, line string, q Checker, opts *Options, rep *Report, emit func(int, string) error) error {
	m := opts.Pattern.FindStringSubmatch(line)
	if m == nil {
		if n == 0 {
			rep.Header = true
			return emit(n, line)
		}
		rep.NonCandidates++
		return nil
	}

	rep.Candidates++
	id := m[1]
	outcome := q.Check(id)
	if !outcome.Definitive() {
		return fmt.Errorf("%w: line %d: %s is %s", ErrIndexNotReady, n+1, id, outcome)
	}
	if outcome == query.Match {
		rep.Matches++
	} else {
		rep.NonMatches++
	}

	keep := (outcome == query.Match) == (opts.Mode == KeepMatches)
	if opts.OnDecision != nil {
		opts.OnDecision(Decision{Line: n, ID: id, Outcome: outcome, Kept: keep})
	}
	if !keep {
		return nil
	}
	return emit(n, line)
}
