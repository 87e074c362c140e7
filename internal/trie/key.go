package trie

import "strings"

// IdentifierLen is the length of a canonical hyphenated identifier.
const IdentifierLen = 36

// MaxDepth is the deepest node level. Eight segments cover all 32 hex digits.
const MaxDepth = 7

// segmentOffsets are the start positions of the 4-character windows used at
// each depth. None of them straddles a hyphen (8, 13, 18, 23).
var segmentOffsets = [MaxDepth + 1]int{0, 4, 9, 14, 19, 24, 28, 32}

// SegmentKey is the literal 4-byte window of an identifier at one depth.
type SegmentKey [4]byte

func (k SegmentKey) String() string { return string(k[:]) }

// KeyFor returns the segment key of id at depth. No case normalization is
// applied: "ABCD" and "abcd" are different keys.
//
// id must have passed Valid.
func KeyFor(id string, depth int) SegmentKey {
	off := segmentOffsets[depth]
	var k SegmentKey
	copy(k[:], id[off:off+4])
	return k
}

// Valid reports whether id is a canonical 8-4-4-4-12 hex identifier.
// Hex digits of either case are accepted.
func Valid(id string) bool {
	if len(id) != IdentifierLen {
		return false
	}
	for i := 0; i < IdentifierLen; i++ {
		c := id[i]
		switch i {
		case 8, 13, 18, 23:
			if c != '-' {
				return false
			}
		default:
			if !isHex(c) {
				return false
			}
		}
	}
	return true
}

// Fold lowercases an identifier when fold is set and returns it unchanged otherwise.
func Fold(id string, fold bool) string {
	if !fold {
		return id
	}
	return strings.ToLower(id)
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
