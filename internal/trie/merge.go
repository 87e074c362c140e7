package trie

// Merge combines independently built tries into one. Root slots whose key is
// not yet present in the result are adopted whole; colliding slots are
// reconciled by re-inserting their records, which applies any collision split
// the combined set needs.
//
// Merge takes ownership of parts: their nodes are shared with the result and
// they must not be modified afterwards.
func Merge(parts ...*Trie) *Trie {
	dst := New()
	for _, p := range parts {
		if p == nil {
			continue
		}
		p.mu.RLock()
		for k, s := range p.root.slots {
			if _, taken := dst.root.slots[k]; !taken {
				dst.root.slots[k] = s
				dst.counters.add(s.stats())
				continue
			}
			s.walk(func(rec *Record) bool {
				if dst.root.insert(rec, &dst.counters) {
					dst.counters.Inserted++
				}
				return true
			})
		}
		p.mu.RUnlock()
	}
	return dst
}
