package munge

import (
	"github.com/ardnew/munge/chunk"
	"github.com/ardnew/munge/magic"
	"github.com/ardnew/munge/odf"
)

// Class tags.
var (
	ENTC = chunk.MustID("entc")
	BASE = chunk.MustID("BASE")
)

// EncodeClass encodes an object definition as a ucfb > entc tree. name is
// the definition's file stem.
//
// The entc chunk holds BASE, the base class, and TYPE, the name, followed by
// a PROP for each pair of the Properties section: the key hash and the value
// as a C string.
func EncodeClass(name string, c *odf.Class) ([]byte, error) {
	root := chunk.New(chunk.UCFB)

	err := root.Nest(ENTC, func(w *chunk.Writer) error {
		err := writeFields(w,
			cstring(BASE, c.Base),
			cstring(chunk.TYPE, name),
		)
		if err != nil {
			return err
		}

		for _, p := range c.Properties() {
			err := w.Nest(chunk.PROP, func(prop *chunk.Writer) error {
				key := magic.Hash(p.Key)
				_, _ = prop.Write(key[:])
				prop.WriteCString(p.Value)

				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, ErrEncode.Wrap(err)
	}

	if err := root.Close(); err != nil {
		return nil, ErrEncode.Wrap(err)
	}

	return root.Bytes(), nil
}
