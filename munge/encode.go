package munge

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/ardnew/munge/chunk"
	"github.com/ardnew/munge/lang"
	"github.com/ardnew/munge/magic"
)

// World entity tags.
var (
	REGN = chunk.MustID("regn")
	INST = chunk.MustID("inst")
	HINT = chunk.MustID("Hint")
	BARR = chunk.MustID("BARR")
)

// Encode writes inst into w as a DATA chunk. A scoped instance is followed by
// a sibling SCOP chunk holding its encoded body, which may be empty.
//
// The DATA payload is the hashed name, the argument count, each argument's
// encoding, and four zero bytes when there are no arguments or the last one
// is numeric.
func Encode(w *chunk.Writer, inst *lang.Instance) error {
	if len(inst.Args) > math.MaxUint8 {
		return ErrEncode.Wrap(ErrIndexRange.With(
			slog.String("name", inst.Name),
			slog.Int("args", len(inst.Args)),
		))
	}

	err := w.Nest(chunk.DATA, func(c *chunk.Writer) error {
		name := magic.Hash(inst.Name)
		_, _ = c.Write(name[:])
		_ = c.WriteByte(byte(len(inst.Args)))

		var args []byte
		for _, a := range inst.Args {
			args = a.AppendArg(args)
		}

		_, _ = c.Write(args)

		if n := len(inst.Args); n == 0 || inst.Args[n-1].IsNumeric() {
			c.WriteUint32(0)
		}

		return nil
	})
	if err != nil || !inst.Scoped {
		return err
	}

	return w.Nest(chunk.SCOP, func(c *chunk.Writer) error {
		for _, child := range inst.Body {
			if err := Encode(c, child); err != nil {
				return err
			}
		}

		return nil
	})
}

// EncodeEntity writes any document entity into w.
//
// Generic instances and navigation entities use the DATA/SCOP form of their
// source statement. Objects, regions, hints, and barriers use their world
// chunk layouts. A keyword entity missing a required field is reported as
// [ErrEncode] wrapping [ErrMissingField].
func EncodeEntity(w *chunk.Writer, e lang.Entity) error {
	switch e := e.(type) {
	case *lang.Instance:
		return Encode(w, e)
	case *lang.Hub, *lang.Connection:
		if err := validate(e); err != nil {
			return err
		}

		return Encode(w, lang.Raw(e))
	case *lang.Object:
		return encodeObject(w, e)
	case *lang.Region:
		return encodeRegion(w, e)
	case *lang.Hint:
		return encodeHint(w, e)
	case *lang.Barrier:
		return encodeBarrier(w, e)
	default:
		return ErrEncode.Wrap(ErrUnsupportedEntity.With(
			slog.String("type", fmt.Sprintf("%T", e)),
		))
	}
}

func validate(e lang.Entity) error {
	v, ok := e.(interface{ Validate() error })
	if !ok {
		return nil
	}

	if err := v.Validate(); err != nil {
		return ErrEncode.Wrap(err).With(slog.Any("position", e.Location()))
	}

	return nil
}

func encodeObject(w *chunk.Writer, o *lang.Object) error {
	if err := validate(o); err != nil {
		return err
	}

	return w.Nest(INST, func(c *chunk.Writer) error {
		err := c.Nest(chunk.INFO, func(info *chunk.Writer) error {
			return writeFields(info,
				cstring(chunk.TYPE, o.Class),
				cstring(chunk.NAME, o.Label),
				xform(o.Transform()),
			)
		})
		if err != nil {
			return err
		}

		return writeProps(c, o.Body)
	})
}

func encodeRegion(w *chunk.Writer, r *lang.Region) error {
	if err := validate(r); err != nil {
		return err
	}

	return w.Nest(REGN, func(c *chunk.Writer) error {
		err := c.Nest(chunk.INFO, func(info *chunk.Writer) error {
			return writeFields(info,
				cstring(chunk.TYPE, string(r.Shape)),
				cstring(chunk.NAME, r.Class),
				xform(r.Transform()),
				floats(chunk.SIZE, r.Size.Slice()...),
			)
		})
		if err != nil {
			return err
		}

		return writeProps(c, r.Body)
	})
}

func encodeHint(w *chunk.Writer, h *lang.Hint) error {
	if err := validate(h); err != nil {
		return err
	}

	return w.Nest(HINT, func(c *chunk.Writer) error {
		err := c.Nest(chunk.INFO, func(info *chunk.Writer) error {
			return writeFields(info,
				cstring(chunk.TYPE, h.Type),
				cstring(chunk.NAME, h.Name),
				xform(h.Transform()),
			)
		})
		if err != nil {
			return err
		}

		return writeProps(c, h.Body)
	})
}

func encodeBarrier(w *chunk.Writer, b *lang.Barrier) error {
	if err := validate(b); err != nil {
		return err
	}

	return w.Nest(BARR, func(c *chunk.Writer) error {
		return c.Nest(chunk.INFO, func(info *chunk.Writer) error {
			return writeFields(info,
				cstring(chunk.NAME, b.Name),
				xform(b.Transform()),
				floats(chunk.SIZE, b.Size.Slice()...),
				uint32s(chunk.FLAG, b.Flag),
			)
		})
	})
}

// writeProps writes a PROP chunk for each property of body holding the
// property's name hash and its first argument as a C string. Properties
// without a non-empty first argument are skipped.
func writeProps(w *chunk.Writer, body []*lang.Instance) error {
	for _, p := range body {
		a, ok := p.Arg(0)
		if !ok || a.Text() == "" {
			continue
		}

		err := w.Nest(chunk.PROP, func(c *chunk.Writer) error {
			name := magic.Hash(p.Name)
			_, _ = c.Write(name[:])
			c.WriteCString(a.Text())

			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// field is a leaf chunk with a fixed layout.
type field struct {
	id    chunk.ID
	write func(*chunk.Writer)
}

func cstring(id chunk.ID, s string) field {
	return field{id, func(w *chunk.Writer) { w.WriteCString(s) }}
}

func floats(id chunk.ID, v ...float64) field {
	return field{id, func(w *chunk.Writer) { w.WriteFloats(v...) }}
}

// xform writes a row-major 3x4 transform as an XFRM field.
func xform(m [12]float64) field { return floats(chunk.XFRM, m[:]...) }

func uint32s(id chunk.ID, v ...uint32) field {
	return field{id, func(w *chunk.Writer) {
		for _, u := range v {
			w.WriteUint32(u)
		}
	}}
}

func hashed(id chunk.ID, name string) field {
	return field{id, func(w *chunk.Writer) {
		tag := magic.Hash(name)
		_, _ = w.Write(tag[:])
	}}
}

// writeFields writes each field as a child chunk of w, in order.
func writeFields(w *chunk.Writer, fields ...field) error {
	for _, f := range fields {
		err := w.Nest(f.id, func(c *chunk.Writer) error {
			f.write(c)

			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}
