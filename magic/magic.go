// Package magic converts identifiers into the 4-byte tags used as keys in
// munged binary output.
//
// A tag is the 32-bit FNV-1a hash of the identifier's bytes, where each byte
// is OR'd with 0x20 before it is mixed in. For ASCII letters this folds case,
// so "Foo", "fOO" and "FOO" all produce the same tag. The result is stored
// little-endian.
package magic

import (
	"encoding/binary"
	"encoding/hex"
)

const (
	offsetBasis uint32 = 2166136261
	prime       uint32 = 16777619
	fold        byte   = 0x20
)

// Tag is the little-endian encoding of an identifier hash.
type Tag [4]byte

// Sum32 returns the case-folded FNV-1a hash of name.
func Sum32(name string) uint32 {
	h := offsetBasis

	for i := range len(name) {
		h ^= uint32(name[i] | fold)
		h *= prime
	}

	return h
}

// Hash returns the tag for name.
func Hash(name string) Tag {
	var t Tag

	binary.LittleEndian.PutUint32(t[:], Sum32(name))

	return t
}

// Uint32 returns the hash value stored in t.
func (t Tag) Uint32() uint32 { return binary.LittleEndian.Uint32(t[:]) }

// String returns the tag bytes in hex, in wire order.
func (t Tag) String() string { return hex.EncodeToString(t[:]) }

// Equal reports whether name hashes to t.
func (t Tag) Equal(name string) bool { return Hash(name) == t }

// Same reports whether a and b hash to the same tag.
func Same(a, b string) bool { return Sum32(a) == Sum32(b) }
