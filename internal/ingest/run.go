package ingest

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/agentic-research/idsieve/internal/index"
)

// Run is a load executing in the background.
type Run struct {
	h        *index.Handle
	progress chan Progress
	g        *errgroup.Group
}

// Start runs the load on its own goroutine, using the partitioned builder
// when the profile asks for more than one worker. Progress is published on a
// channel holding only the latest report, so a slow consumer never holds the
// load back.
func (e *Engine) Start(ctx context.Context, h *index.Handle, src Source) *Run {
	r := &Run{h: h, progress: make(chan Progress, 1)}

	eng := *e
	eng.OnProgress = func(p Progress) {
		if e.OnProgress != nil {
			e.OnProgress(p)
		}
		r.publish(p)
	}

	r.g, ctx = errgroup.WithContext(ctx)
	r.g.Go(func() error {
		defer close(r.progress)
		return eng.LoadPartitioned(ctx, h, src, eng.Profile.Workers)
	})
	return r
}

// publish replaces any unread report with p. Only the load goroutine sends.
func (r *Run) publish(p Progress) {
	select {
	case r.progress <- p:
		return
	default:
	}
	select {
	case <-r.progress:
	default:
	}
	select {
	case r.progress <- p:
	default:
	}
}

// Handle returns the handle being loaded.
func (r *Run) Handle() *index.Handle { return r.h }

// Progress delivers progress reports. It is closed when the load ends.
func (r *Run) Progress() <-chan Progress { return r.progress }

// Wait blocks until the load ends and returns its error.
func (r *Run) Wait() error { return r.g.Wait() }
