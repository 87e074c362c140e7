package ingest

import (
	"context"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/agentic-research/idsieve/internal/index"
	"github.com/agentic-research/idsieve/internal/trie"
)

// LoadPartitioned builds the index with workers parallel inserters. The
// reading goroutine routes every identifier by a hash of its first segment,
// so each root key belongs to exactly one worker's private trie; a final
// trie.Merge joins them and the result is installed on h before it becomes
// ready. Queries made meanwhile see an empty trie and status loading.
func (e *Engine) LoadPartitioned(ctx context.Context, h *index.Handle, src Source, workers int) error {
	if workers < 2 {
		return e.Load(ctx, h, src)
	}
	if err := h.Start(); err != nil {
		return err
	}

	var t tally
	size := e.Profile.BatchSize
	parts := make([]*trie.Trie, workers)
	feeds := make([]chan []string, workers)

	g, gctx := errgroup.WithContext(ctx)
	for i := range parts {
		parts[i] = trie.New()
		feeds[i] = make(chan []string, 2)
		part, feed := parts[i], feeds[i]
		g.Go(func() error {
			for batch := range feed {
				t.record(part.InsertBatch(batch))
			}
			return nil
		})
	}

	g.Go(func() error {
		defer func() {
			for _, f := range feeds {
				close(f)
			}
		}()

		pending := make([][]string, workers)
		send := func(w int) error {
			if len(pending[w]) == 0 {
				return nil
			}
			select {
			case feeds[w] <- pending[w]:
			case <-gctx.Done():
				return gctx.Err()
			}
			pending[w] = make([]string, 0, size)
			return nil
		}

		var unreported int64
		err := e.stream(gctx, h, src, func(id string) error {
			w := route(id, workers)
			pending[w] = append(pending[w], id)
			if len(pending[w]) >= size {
				if err := send(w); err != nil {
					return err
				}
			}
			unreported++
			if unreported < int64(size) {
				return nil
			}
			h.AddProcessed(unreported)
			unreported = 0
			t.batches.Add(1)
			e.report(h, &t, false)
			return e.checkpoint(gctx, h)
		})
		if err != nil {
			return err
		}
		for w := range pending {
			if err := send(w); err != nil {
				return err
			}
		}
		h.AddProcessed(unreported)
		return nil
	})

	if err := g.Wait(); err != nil {
		return e.finish(h, &t, err)
	}
	if err := h.SetTrie(trie.Merge(parts...)); err != nil {
		return err
	}
	return e.finish(h, &t, nil)
}

// route picks the worker owning id's root key. Malformed identifiers all go
// to worker 0, which counts them as skipped.
func route(id string, workers int) int {
	if !trie.Valid(id) {
		return 0
	}
	return int(xxhash.Sum64String(id[:4]) % uint64(workers))
}
