package chunk

import (
	"encoding/binary"
	"log/slog"
	"math"
)

// Writer builds a single chunk in memory.
//
// A Writer is created either as a root with [New] or as a child with
// [Writer.Open]. Closing a child patches its size field, pads it to [Align],
// and appends it to the parent. Closing a root only patches and pads.
//
// Writers are not safe for concurrent use. A parent must not be written to
// while one of its children is open, otherwise the child lands after the
// parent's later bytes.
type Writer struct {
	id     ID
	buf    []byte
	parent *Writer
	closed bool
}

// New opens a root chunk with the given tag.
func New(id ID) *Writer {
	w := &Writer{id: id}
	w.buf = append(w.buf, id[:]...)
	w.buf = append(w.buf, 0, 0, 0, 0)

	return w
}

// Open opens a child chunk of w.
func (w *Writer) Open(id ID) *Writer {
	c := New(id)
	c.parent = w

	return c
}

// Nest opens a child chunk, calls fn to fill it, and closes it.
// The child is not appended if fn returns an error.
func (w *Writer) Nest(id ID, fn func(*Writer) error) error {
	c := w.Open(id)

	if fn != nil {
		err := fn(c)
		if err != nil {
			return err
		}
	}

	return c.Close()
}

// Close patches the size field, pads the chunk, and appends it to the parent
// if there is one.
func (w *Writer) Close() error {
	if w.closed {
		return ErrClosed.With(slog.String("id", w.id.String()))
	}

	w.closed = true

	binary.LittleEndian.PutUint32(w.buf[4:HeaderSize], uint32(len(w.buf)-HeaderSize))

	for len(w.buf)%Align != 0 {
		w.buf = append(w.buf, 0)
	}

	if w.parent != nil {
		w.parent.buf = append(w.parent.buf, w.buf...)
	}

	return nil
}

// ID returns the chunk tag.
func (w *Writer) ID() ID { return w.id }

// Bytes returns the chunk contents, including its header.
// The size field is only valid after [Writer.Close].
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of payload bytes written so far.
func (w *Writer) Len() int { return len(w.buf) - HeaderSize }

// Write appends p to the payload. It implements [io.Writer] and never fails.
func (w *Writer) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)

	return len(p), nil
}

// WriteByte appends a single byte. It implements [io.ByteWriter].
func (w *Writer) WriteByte(b byte) error {
	w.buf = append(w.buf, b)

	return nil
}

// WriteUint16 appends a little-endian uint16.
func (w *Writer) WriteUint16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

// WriteUint32 appends a little-endian uint32.
func (w *Writer) WriteUint32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// WriteFloat appends v as a little-endian IEEE-754 single.
func (w *Writer) WriteFloat(v float64) {
	w.WriteUint32(math.Float32bits(float32(v)))
}

// WriteFloats appends each value with [Writer.WriteFloat].
func (w *Writer) WriteFloats(v ...float64) {
	for _, f := range v {
		w.WriteFloat(f)
	}
}

// WriteCString appends s followed by a NUL terminator.
func (w *Writer) WriteCString(s string) {
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, 0)
}

// WriteFixedString appends s truncated or zero-filled to exactly n bytes.
func (w *Writer) WriteFixedString(s string, n int) {
	if len(s) > n {
		s = s[:n]
	}

	w.buf = append(w.buf, s...)

	for range n - len(s) {
		w.buf = append(w.buf, 0)
	}
}
