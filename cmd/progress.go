package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/agentic-research/idsieve/internal/ingest"
)

// progressPrinter renders load progress. Intermediate reports are redrawn in
// place only when the writer is a terminal; the summary is always printed.
type progressPrinter struct {
	w     io.Writer
	live  bool
	label string
}

func newProgressPrinter(w io.Writer, label string) *progressPrinter {
	live := false
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		live = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &progressPrinter{w: w, live: live, label: label}
}

// watch consumes run's progress until the load ends and returns its error.
func (p *progressPrinter) watch(run *ingest.Run) error {
	start := time.Now()
	var last ingest.Progress
	for pr := range run.Progress() {
		last = pr
		if p.live && !pr.Done {
			_, _ = fmt.Fprintf(p.w, "\rloading %s: %s records", p.label, humanize.Comma(pr.Processed))
		}
	}
	if p.live {
		_, _ = fmt.Fprint(p.w, "\r\033[K")
	}
	err := run.Wait()
	if err != nil {
		return fmt.Errorf("load %s: %w", p.label, err)
	}
	_, _ = fmt.Fprintf(p.w, "loaded %s identifiers from %s (%s duplicates, %s skipped) in %v\n",
		humanize.Comma(last.Inserted), p.label,
		humanize.Comma(last.Duplicates), humanize.Comma(last.Skipped),
		time.Since(start).Round(time.Millisecond))
	return nil
}
