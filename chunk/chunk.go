// Package chunk writes and reads the tagged, length-prefixed container format
// produced by the munger.
//
// Every chunk is a 4-byte ASCII tag, a little-endian uint32 payload size, the
// payload, and zero padding up to the next 4-byte boundary. The size field
// never counts the padding.
package chunk

import (
	"log/slog"
	"strings"
)

// Align is the boundary every chunk is padded to.
const Align = 4

// HeaderSize is the length of a chunk's tag and size fields.
const HeaderSize = 8

// ID is a 4-byte chunk tag.
type ID [4]byte

// Common container and field tags.
var (
	UCFB = MustID("ucfb")
	DATA = MustID("DATA")
	SCOP = MustID("SCOP")
	NAME = MustID("NAME")
	INFO = MustID("INFO")
	TYPE = MustID("TYPE")
	XFRM = MustID("XFRM")
	SIZE = MustID("SIZE")
	FLAG = MustID("FLAG")
	PROP = MustID("PROP")
)

// MakeID returns the tag for s, padded with '_' to four bytes.
// Tags longer than four bytes or containing non-ASCII bytes are rejected.
func MakeID(s string) (ID, error) {
	var id ID

	if len(s) == 0 || len(s) > len(id) {
		return id, ErrInvalidID.With(slog.String("id", s))
	}

	for i := range len(s) {
		if s[i] < 0x20 || s[i] > 0x7e {
			return id, ErrInvalidID.With(
				slog.String("id", s),
				slog.Int("offset", i),
			)
		}
	}

	copy(id[:], s+strings.Repeat("_", len(id)-len(s)))

	return id, nil
}

// MustID is like [MakeID] but panics on an invalid tag.
// It is intended for package-level tag constants.
func MustID(s string) ID {
	id, err := MakeID(s)
	if err != nil {
		panic(err)
	}

	return id
}

// String returns the tag as text.
func (id ID) String() string { return string(id[:]) }

// padLen returns n rounded up to a multiple of [Align].
func padLen(n int) int {
	return (n + Align - 1) / Align * Align
}
