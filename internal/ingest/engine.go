// Package ingest loads a primary identifier stream into an index.Handle.
//
// Records are inserted in batches. After every batch the engine reports
// progress, yields the processor and checks whether the load is still wanted,
// so queries keep being answered while millions of identifiers stream in.
package ingest

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/agentic-research/idsieve/api"
	"github.com/agentic-research/idsieve/internal/index"
	"github.com/agentic-research/idsieve/internal/trie"
)

// ErrSuperseded stops a load whose handle is no longer the current one.
var ErrSuperseded = errors.New("ingest: load superseded by a newer load")

// Progress is reported after every batch.
type Progress struct {
	Generation uint64
	Processed  int64 // records consumed, header excluded
	Inserted   int64
	Duplicates int64
	Skipped    int64 // malformed or empty identifiers
	Batches    int64
	Done       bool
}

// Engine drives loads.
type Engine struct {
	Profile api.Profile
	// Swap, when set, lets a running load notice it has been replaced.
	Swap *index.HotSwap
	// OnProgress is called from the loading goroutine after every batch and
	// once more when the load ends cleanly.
	OnProgress func(Progress)
}

func NewEngine(profile api.Profile, swap *index.HotSwap) *Engine {
	return &Engine{Profile: profile, Swap: swap}
}

// tally accumulates per-load counts. Fields are atomic because partitioned
// workers update them concurrently.
type tally struct {
	inserted   atomic.Int64
	duplicates atomic.Int64
	skipped    atomic.Int64
	batches    atomic.Int64
}

func (t *tally) record(inserted, duplicates, malformed int) {
	t.inserted.Add(int64(inserted))
	t.duplicates.Add(int64(duplicates))
	t.skipped.Add(int64(malformed))
}

// Load consumes src into h on the calling goroutine. On a read failure h
// moves to error and Load returns the failure; on success h moves to ready.
func (e *Engine) Load(ctx context.Context, h *index.Handle, src Source) error {
	if err := h.Start(); err != nil {
		return err
	}
	var t tally
	batch := make([]string, 0, e.Profile.BatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		t.record(h.Trie().InsertBatch(batch))
		h.AddProcessed(int64(len(batch)))
		batch = batch[:0]
		t.batches.Add(1)
		e.report(h, &t, false)
		return e.checkpoint(ctx, h)
	}

	err := e.stream(ctx, h, src, func(id string) error {
		batch = append(batch, id)
		if len(batch) >= e.Profile.BatchSize {
			return flush()
		}
		return nil
	})
	if err == nil {
		err = flush()
	}
	return e.finish(h, &t, err)
}

// stream applies header handling and identifier extraction to src and hands
// each identifier to fn.
func (e *Engine) stream(ctx context.Context, h *index.Handle, src Source, fn func(id string) error) error {
	header := src.Header()
	return src.Stream(ctx, func(rec string) error {
		if header {
			header = false
			h.SetLabel(SniffLabel(rec, e.Profile.Delimiter, e.Profile.Quotes))
			return nil
		}
		id := ExtractIdentifier(rec, e.Profile.Delimiter, e.Profile.Quotes)
		// Clone so the stored record does not pin the whole source line.
		return fn(strings.Clone(trie.Fold(id, e.Profile.CaseFold)))
	})
}

func (e *Engine) finish(h *index.Handle, t *tally, err error) error {
	if err != nil {
		_ = h.Fail(err)
		return err
	}
	if err := h.Complete(); err != nil {
		return err
	}
	e.report(h, t, true)
	return nil
}

// checkpoint runs at batch boundaries only, never mid-insertion.
func (e *Engine) checkpoint(ctx context.Context, h *index.Handle) error {
	runtime.Gosched()
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.Swap != nil && !e.Swap.IsCurrent(h) {
		return ErrSuperseded
	}
	return nil
}

func (e *Engine) report(h *index.Handle, t *tally, done bool) {
	if e.OnProgress == nil {
		return
	}
	e.OnProgress(Progress{
		Generation: h.Generation(),
		Processed:  h.Processed(),
		Inserted:   t.inserted.Load(),
		Duplicates: t.duplicates.Load(),
		Skipped:    t.skipped.Load(),
		Batches:    t.batches.Load(),
		Done:       done,
	})
}
