package munge

import (
	"log/slog"

	"github.com/ardnew/munge/chunk"
	"github.com/ardnew/munge/lang"
)

// Default document chunk tags.
var (
	CNFG = chunk.MustID("cnfg")
	PATH = chunk.MustID("path")
)

// Source is a parsed input document and the file it was read from.
type Source struct {
	Path string
	Doc  *lang.Document
}

// EncodeConfig encodes every source under a single ucfb root.
//
// Each source becomes a chunk tagged id holding NAME, the hash of the file
// stem, followed by the encoding of each entity.
func EncodeConfig(id chunk.ID, sources ...Source) ([]byte, error) {
	root := chunk.New(chunk.UCFB)

	for _, src := range sources {
		err := root.Nest(id, func(c *chunk.Writer) error {
			err := writeFields(c, hashed(chunk.NAME, lang.Stem(src.Path)))
			if err != nil {
				return err
			}

			for e := range src.Doc.All() {
				if err := EncodeEntity(c, e); err != nil {
					return err
				}
			}

			return nil
		})
		if err != nil {
			return nil, WrapError(err).With(slog.String("path", src.Path))
		}
	}

	if err := root.Close(); err != nil {
		return nil, ErrEncode.Wrap(err)
	}

	return root.Bytes(), nil
}
