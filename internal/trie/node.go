package trie

import "fmt"

// Record is the stored form of one distinct identifier.
type Record struct {
	ID string
}

// SlotKind tags what a Slot holds.
type SlotKind uint8

const (
	// SlotEmpty only appears in PathStep traces; stored slots are never empty.
	SlotEmpty SlotKind = iota
	// SlotLeaf holds a single Record.
	SlotLeaf
	// SlotInternal delegates to a deeper Node after a collision split.
	SlotInternal
)

func (k SlotKind) String() string {
	switch k {
	case SlotEmpty:
		return "empty"
	case SlotLeaf:
		return "leaf"
	case SlotInternal:
		return "internal"
	default:
		return fmt.Sprintf("SlotKind(%d)", uint8(k))
	}
}

// Slot is the tagged union stored under a segment key: either a leaf Record or
// a child Node. Exactly one of Record and Child is set, according to Kind.
type Slot struct {
	Kind   SlotKind
	Record *Record
	Child  *Node
}

// Counters are shared by every node of one trie during insertion. They are
// threaded explicitly through node construction and insertion.
type Counters struct {
	Inserted uint64 // distinct identifiers stored
	Splits   uint64 // leaf slots replaced by child nodes
	Nodes    uint64 // nodes allocated, root included
}

func (c *Counters) add(o Counters) {
	c.Inserted += o.Inserted
	c.Splits += o.Splits
	c.Nodes += o.Nodes
}

// Node maps the segment keys at its depth to slots.
type Node struct {
	depth uint8
	slots map[SegmentKey]Slot
}

func newNode(depth uint8, c *Counters) *Node {
	c.Nodes++
	return &Node{depth: depth, slots: make(map[SegmentKey]Slot)}
}

// Depth returns the node level, 0 for the root.
func (n *Node) Depth() int { return int(n.depth) }

// Len returns the number of occupied slots.
func (n *Node) Len() int { return len(n.slots) }

// insert stores rec below n. It returns false when an equal identifier is
// already present. Leaf records moved during a split are not counted as new.
func (n *Node) insert(rec *Record, c *Counters) bool {
	k := KeyFor(rec.ID, int(n.depth))
	s, ok := n.slots[k]
	if !ok {
		n.slots[k] = Slot{Kind: SlotLeaf, Record: rec}
		return true
	}
	switch s.Kind {
	case SlotLeaf:
		if s.Record.ID == rec.ID {
			return false
		}
		if n.depth == MaxDepth {
			// All eight segments equal means the identifiers are equal.
			panic(fmt.Sprintf("trie: distinct identifiers %q and %q share every segment", s.Record.ID, rec.ID))
		}
		// The child is complete before it replaces the leaf.
		child := newNode(n.depth+1, c)
		child.insert(s.Record, c)
		n.slots[k] = Slot{Kind: SlotInternal, Child: child}
		c.Splits++
		return child.insert(rec, c)
	case SlotInternal:
		return s.Child.insert(rec, c)
	default:
		panic(fmt.Sprintf("trie: unknown slot kind %v", s.Kind))
	}
}

// lookup descends by segment key and confirms the match on the full string.
func (n *Node) lookup(id string) *Record {
	for {
		s, ok := n.slots[KeyFor(id, int(n.depth))]
		if !ok {
			return nil
		}
		switch s.Kind {
		case SlotLeaf:
			if s.Record.ID == id {
				return s.Record
			}
			return nil
		case SlotInternal:
			n = s.Child
		default:
			panic(fmt.Sprintf("trie: unknown slot kind %v", s.Kind))
		}
	}
}

// walk visits every record below n until fn returns false.
func (n *Node) walk(fn func(*Record) bool) bool {
	for _, s := range n.slots {
		if !s.walk(fn) {
			return false
		}
	}
	return true
}

func (s Slot) walk(fn func(*Record) bool) bool {
	switch s.Kind {
	case SlotLeaf:
		return fn(s.Record)
	case SlotInternal:
		return s.Child.walk(fn)
	default:
		panic(fmt.Sprintf("trie: unknown slot kind %v", s.Kind))
	}
}

// stats counts what a slot's subtree contributed to its trie's Counters.
func (s Slot) stats() Counters {
	switch s.Kind {
	case SlotLeaf:
		return Counters{Inserted: 1}
	case SlotInternal:
		// The split that created the child accounts for one split and one node.
		c := Counters{Splits: 1, Nodes: 1}
		for _, cs := range s.Child.slots {
			c.add(cs.stats())
		}
		return c
	default:
		panic(fmt.Sprintf("trie: unknown slot kind %v", s.Kind))
	}
}

func (n *Node) maxDepth() int {
	d := int(n.depth)
	for _, s := range n.slots {
		if s.Kind == SlotInternal {
			if cd := s.Child.maxDepth(); cd > d {
				d = cd
			}
		}
	}
	return d
}
