// Package trie implements an append-only prefix trie over canonical
// 36-character identifiers.
//
// Each level branches on one fixed 4-character window of the identifier. A
// slot holds a single leaf record until a second identifier lands on the same
// key, at which point the leaf is pushed one level down into a new child node.
// Lookups therefore cost at most eight map probes regardless of set size.
//
// A Trie has a single writer and any number of readers. Writes hold the write
// lock for one insertion or one batch, so a reader always observes either the
// pre-split leaf or the fully built child node, never anything in between.
package trie

import (
	"errors"
	"fmt"
	"sync"
)

// ErrMalformedIdentifier rejects an identifier that is not canonical 8-4-4-4-12 hex.
var ErrMalformedIdentifier = errors.New("trie: malformed identifier")

// Trie is the identifier index. The zero value is not usable; call New.
type Trie struct {
	mu       sync.RWMutex
	root     *Node
	counters Counters
}

// New returns an empty trie.
func New() *Trie {
	t := &Trie{}
	t.root = newNode(0, &t.counters)
	return t
}

// Insert adds id. It reports false for an identifier already present.
func (t *Trie) Insert(id string) (bool, error) {
	if !Valid(id) {
		return false, fmt.Errorf("%w: %q", ErrMalformedIdentifier, id)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.insertLocked(id), nil
}

// InsertBatch adds ids under a single write lock. Malformed identifiers are
// counted and skipped.
func (t *Trie) InsertBatch(ids []string) (inserted, duplicates, malformed int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, id := range ids {
		switch {
		case !Valid(id):
			malformed++
		case t.insertLocked(id):
			inserted++
		default:
			duplicates++
		}
	}
	return inserted, duplicates, malformed
}

func (t *Trie) insertLocked(id string) bool {
	if !t.root.insert(&Record{ID: id}, &t.counters) {
		return false
	}
	t.counters.Inserted++
	return true
}

// Lookup returns the record stored for id.
func (t *Trie) Lookup(id string) (*Record, bool) {
	if !Valid(id) {
		return nil, false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec := t.root.lookup(id)
	return rec, rec != nil
}

// Contains reports whether id is stored.
func (t *Trie) Contains(id string) bool {
	_, ok := t.Lookup(id)
	return ok
}

// PathStep is one slot visited by LookupWithPath.
type PathStep struct {
	Depth int
	Key   string
	Kind  SlotKind
	// RecordID is the identifier held by a leaf slot, empty otherwise.
	RecordID string
}

// LookupWithPath returns the slots visited while looking up id, root first.
// The final step is a leaf or an empty slot. It never modifies the trie.
func (t *Trie) LookupWithPath(id string) []PathStep {
	if !Valid(id) {
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	var path []PathStep
	n := t.root
	for {
		k := KeyFor(id, int(n.depth))
		step := PathStep{Depth: int(n.depth), Key: k.String()}
		s, ok := n.slots[k]
		if !ok {
			step.Kind = SlotEmpty
			return append(path, step)
		}
		step.Kind = s.Kind
		switch s.Kind {
		case SlotLeaf:
			step.RecordID = s.Record.ID
			return append(path, step)
		case SlotInternal:
			path = append(path, step)
			n = s.Child
		default:
			panic(fmt.Sprintf("trie: unknown slot kind %v", s.Kind))
		}
	}
}

// Len returns the number of distinct identifiers stored.
func (t *Trie) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return int(t.counters.Inserted)
}

// Stats returns a snapshot of the trie counters.
func (t *Trie) Stats() Counters {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.counters
}

// MaxDepth returns the depth of the deepest node, 0 for a trie without splits.
func (t *Trie) MaxDepth() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.root.maxDepth()
}

// Walk calls fn for every stored record in unspecified order until fn
// returns false.
func (t *Trie) Walk(fn func(*Record) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	t.root.walk(fn)
}
