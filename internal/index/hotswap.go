package index

import (
	"sync"
)

// HotSwap is a thread-safe holder for the current Handle. Starting a new load
// swaps in a fresh handle; the previous one is abandoned, not torn down.
type HotSwap struct {
	mu      sync.RWMutex
	current *Handle
	nextGen uint64
}

// NewHotSwap returns a holder whose current handle is empty.
func NewHotSwap() *HotSwap {
	h := &HotSwap{}
	h.current = NewHandle(h.nextGen)
	return h
}

// Begin replaces the current handle with a fresh empty one and returns it.
func (h *HotSwap) Begin() *Handle {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextGen++
	h.current = NewHandle(h.nextGen)
	return h.current
}

// Current returns the handle of the most recent load.
func (h *HotSwap) Current() *Handle {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// IsCurrent reports whether hd is still the current handle. Stale loads use
// it to stop early.
func (h *HotSwap) IsCurrent(hd *Handle) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current == hd
}
