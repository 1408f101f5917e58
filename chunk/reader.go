package chunk

import (
	"encoding/binary"
	"log/slog"
)

// Node is a chunk decoded from a byte stream.
type Node struct {
	ID      ID     `json:"id"      yaml:"id"`
	Offset  int    `json:"offset"  yaml:"offset"`
	Size    uint32 `json:"size"    yaml:"size"`
	Payload []byte `json:"-"       yaml:"-"`
}

// Parse decodes a sequence of sibling chunks from b.
// Trailing padding after the final chunk is permitted.
func Parse(b []byte) ([]*Node, error) {
	return parseAt(b, 0)
}

func parseAt(b []byte, base int) ([]*Node, error) {
	var nodes []*Node

	pos := 0
	for pos < len(b) {
		if len(b)-pos < HeaderSize {
			if isZero(b[pos:]) {
				break
			}

			return nil, ErrTruncated.With(
				slog.Int("offset", base+pos),
				slog.Int("remaining", len(b)-pos),
			)
		}

		var n Node

		copy(n.ID[:], b[pos:pos+4])
		n.Offset = base + pos
		n.Size = binary.LittleEndian.Uint32(b[pos+4 : pos+HeaderSize])

		end := pos + HeaderSize + int(n.Size)
		if end > len(b) || end < pos {
			return nil, ErrTruncated.With(
				slog.String("id", n.ID.String()),
				slog.Int("offset", n.Offset),
				slog.Int("size", int(n.Size)),
			)
		}

		n.Payload = b[pos+HeaderSize : end]
		nodes = append(nodes, &n)

		pos = min(padLen(end), len(b))
	}

	return nodes, nil
}

// Children decodes the payload of n as nested chunks.
// It fails if the payload is not a well-formed chunk sequence.
func (n *Node) Children() ([]*Node, error) {
	return parseAt(n.Payload, n.Offset+HeaderSize)
}

// IsContainer reports whether the payload of n looks like a sequence of
// chunks: every tag is printable ASCII and every size lands inside the
// payload with the final chunk ending exactly at the end of it.
func (n *Node) IsContainer() bool {
	if len(n.Payload) < HeaderSize {
		return false
	}

	pos := 0
	for pos < len(n.Payload) {
		if len(n.Payload)-pos < HeaderSize {
			return false
		}

		for _, c := range n.Payload[pos : pos+4] {
			if c < 0x20 || c > 0x7e {
				return false
			}
		}

		size := int(binary.LittleEndian.Uint32(n.Payload[pos+4 : pos+HeaderSize]))

		end := pos + HeaderSize + size
		if end > len(n.Payload) || end < pos {
			return false
		}

		if end == len(n.Payload) {
			return true
		}

		pos = padLen(end)
	}

	return pos == len(n.Payload)
}

// Find returns the first direct child of n with the given tag.
func (n *Node) Find(id ID) (*Node, bool) {
	children, err := n.Children()
	if err != nil {
		return nil, false
	}

	for _, c := range children {
		if c.ID == id {
			return c, true
		}
	}

	return nil, false
}

func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}

	return true
}
