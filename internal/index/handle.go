// Package index tracks the lifecycle of one loaded identifier set and the
// process-wide reference to the current one.
package index

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/agentic-research/idsieve/internal/trie"
)

// ErrInvalidTransition is returned when a handle is moved out of order.
var ErrInvalidTransition = errors.New("index: invalid status transition")

// Status is the load state of a Handle.
type Status int32

const (
	Empty Status = iota
	Loading
	Ready
	Error
)

func (s Status) String() string {
	switch s {
	case Empty:
		return "empty"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", int32(s))
	}
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool { return s == Ready || s == Error }

// Handle is one load: the trie being built, its status and progress.
//
// Transitions are empty -> loading -> ready | error. Ready and error are
// terminal; a new load always starts from a fresh Handle.
type Handle struct {
	gen       uint64
	trie      atomic.Pointer[trie.Trie]
	status    atomic.Int32
	processed atomic.Int64

	mu    sync.Mutex
	label string
	err   error
}

// NewHandle returns an empty handle backed by an empty trie.
func NewHandle(gen uint64) *Handle {
	h := &Handle{gen: gen}
	h.trie.Store(trie.New())
	return h
}

// Generation identifies the load among all loads of one HotSwap.
func (h *Handle) Generation() uint64 { return h.gen }

// Trie returns the index being built or already built.
func (h *Handle) Trie() *trie.Trie { return h.trie.Load() }

// SetTrie installs a trie built elsewhere. Only valid while loading.
func (h *Handle) SetTrie(t *trie.Trie) error {
	if h.Status() != Loading {
		return fmt.Errorf("%w: set trie while %s", ErrInvalidTransition, h.Status())
	}
	h.trie.Store(t)
	return nil
}

// Status returns the current load state.
func (h *Handle) Status() Status { return Status(h.status.Load()) }

// Start moves empty -> loading.
func (h *Handle) Start() error { return h.transition(Empty, Loading, nil) }

// Complete moves loading -> ready.
func (h *Handle) Complete() error { return h.transition(Loading, Ready, nil) }

// Fail moves loading -> error and records cause.
func (h *Handle) Fail(cause error) error { return h.transition(Loading, Error, cause) }

func (h *Handle) transition(from, to Status, cause error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.status.CompareAndSwap(int32(from), int32(to)) {
		return fmt.Errorf("%w: %s -> %s from %s", ErrInvalidTransition, from, to, h.Status())
	}
	if cause != nil {
		h.err = cause
	}
	return nil
}

// Err returns the failure recorded by Fail, nil otherwise.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Processed returns the number of records consumed from the source so far.
func (h *Handle) Processed() int64 { return h.processed.Load() }

// AddProcessed advances the processed-record count.
func (h *Handle) AddProcessed(n int64) { h.processed.Add(n) }

// Label is the display label sniffed from the source header, if any.
func (h *Handle) Label() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.label
}

func (h *Handle) SetLabel(label string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.label = label
}

// Snapshot is a point-in-time view of a handle for presentation.
type Snapshot struct {
	Generation uint64
	Status     Status
	Processed  int64
	Stored     int
	Label      string
	Err        error
}

func (h *Handle) Snapshot() Snapshot {
	return Snapshot{
		Generation: h.gen,
		Status:     h.Status(),
		Processed:  h.Processed(),
		Stored:     h.Trie().Len(),
		Label:      h.Label(),
		Err:        h.Err(),
	}
}
