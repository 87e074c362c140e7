// Package query answers single-identifier membership questions against the
// current index, with a cache of earlier answers.
package query

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/agentic-research/idsieve/internal/index"
	"github.com/agentic-research/idsieve/internal/trie"
)

// Outcome is the tri-state answer to a membership query.
type Outcome int

const (
	// Indeterminate is returned while the index is not ready. A failed load
	// stays indeterminate: it is never authoritative for a no-match.
	Indeterminate Outcome = iota
	Match
	NoMatch
)

func (o Outcome) String() string {
	switch o {
	case Indeterminate:
		return "indeterminate"
	case Match:
		return "match"
	case NoMatch:
		return "no-match"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Definitive reports whether o is Match or NoMatch.
func (o Outcome) Definitive() bool { return o == Match || o == NoMatch }

// Result is the answer for one queried identifier.
type Result struct {
	ID         string // as queried
	Outcome    Outcome
	Status     index.Status
	Generation uint64
	Record     *trie.Record // set on Match
}

// Provider exposes the current index handle. *index.HotSwap implements it.
type Provider interface {
	Current() *index.Handle
}

// Service answers membership queries. It is safe for concurrent use.
type Service struct {
	provider Provider
	fold     bool

	mu    sync.Mutex
	cache *lru.Cache[string, *Result]
}

// NewService returns a service caching up to cacheSize results. With fold
// set, queried identifiers are lowercased before lookup.
func NewService(p Provider, cacheSize int, fold bool) (*Service, error) {
	c, err := lru.New[string, *Result](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("query cache: %w", err)
	}
	return &Service{provider: p, fold: fold, cache: c}, nil
}

// Check evaluates id against the current index without touching the cache.
func (s *Service) Check(id string) Outcome {
	r := Result{ID: id}
	s.evaluate(s.provider.Current(), &r)
	return r.Outcome
}

// Search answers id. A cached definitive answer from the current load is
// returned as is; otherwise the cached slot for id is re-evaluated in place.
func (s *Service) Search(id string) Result {
	h := s.provider.Current()

	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.cache.Get(id)
	if !ok {
		r = &Result{ID: id}
		s.cache.Add(id, r)
	} else if r.Outcome.Definitive() && r.Generation == h.Generation() {
		return *r
	}
	s.evaluate(h, r)
	return *r
}

func (s *Service) evaluate(h *index.Handle, r *Result) {
	r.Status = h.Status()
	r.Generation = h.Generation()
	r.Record = nil
	if r.Status != index.Ready {
		r.Outcome = Indeterminate
		return
	}
	if rec, ok := h.Trie().Lookup(trie.Fold(r.ID, s.fold)); ok {
		r.Outcome = Match
		r.Record = rec
		return
	}
	r.Outcome = NoMatch
}

// Poll re-evaluates every cached indeterminate result and returns the new
// answers, most recently used first.
func (s *Service) Poll() []Result {
	h := s.provider.Current()
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Result
	for _, r := range s.results() {
		if r.Outcome.Definitive() && r.Generation == h.Generation() {
			continue
		}
		s.evaluate(h, r)
		out = append(out, *r)
	}
	return out
}

// Pending returns the cached identifiers whose answer is still indeterminate.
func (s *Service) Pending() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, r := range s.results() {
		if !r.Outcome.Definitive() {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// Refresh re-issues every cached query against the current index, typically
// after a new load replaced the previous one.
func (s *Service) Refresh() []Result {
	h := s.provider.Current()
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Result, 0, s.cache.Len())
	for _, r := range s.results() {
		s.evaluate(h, r)
		out = append(out, *r)
	}
	return out
}

// Clear discards all cached results.
func (s *Service) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Purge()
}

// Len returns the number of cached results.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}

// results lists cached entries most recently used first without changing
// their recency. Must be called with s.mu held.
func (s *Service) results() []*Result {
	keys := s.cache.Keys()
	out := make([]*Result, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		if r, ok := s.cache.Peek(keys[i]); ok {
			out = append(out, r)
		}
	}
	return out
}
