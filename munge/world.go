package munge

import (
	"strings"

	"github.com/ardnew/munge/chunk"
	"github.com/ardnew/munge/lang"
	"github.com/ardnew/munge/req"
)

// World tags.
var (
	WRLD = chunk.MustID("wrld")
	TNAM = chunk.MustID("TNAM")
	SNAM = chunk.MustID("SNAM")
)

// Requirement sections populated by a world.
const (
	ReqLight   = "light"
	ReqTerrain = "terrain"
	ReqConfig  = "config"
	ReqPath    = "path"
	ReqClass   = "class"
)

// EncodeWorld encodes w as a ucfb > wrld tree. name is the world's file stem.
//
// The wrld chunk holds NAME, then TNAM and SNAM when the terrain and sky are
// set, then INFO with the region and object counts as uint32. Regions,
// objects, hints, and barriers follow, in that order.
func EncodeWorld(name string, w *lang.World) ([]byte, error) {
	root := chunk.New(chunk.UCFB)

	err := root.Nest(WRLD, func(c *chunk.Writer) error {
		header := []field{cstring(chunk.NAME, strings.ToLower(name))}

		if w.TerrainName != "" {
			header = append(header, cstring(TNAM, w.TerrainName))
		}

		if w.SkyName != "" {
			header = append(header, cstring(SNAM, w.SkyName))
		}

		header = append(header,
			uint32s(chunk.INFO, uint32(len(w.Regions)), uint32(len(w.Objects))))

		if err := writeFields(c, header...); err != nil {
			return err
		}

		for _, r := range w.Regions {
			if err := encodeRegion(c, r); err != nil {
				return err
			}
		}

		for _, o := range w.Objects {
			if err := encodeObject(c, o); err != nil {
				return err
			}
		}

		for _, h := range w.Hints {
			if err := encodeHint(c, h); err != nil {
				return err
			}
		}

		for _, b := range w.Barriers {
			if err := encodeBarrier(c, b); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := root.Close(); err != nil {
		return nil, ErrEncode.Wrap(err)
	}

	return root.Bytes(), nil
}

// WorldRequirements returns the requirement database of w: its light,
// terrain, sky configuration, and path, then the class of every object.
// An unset name is listed as an empty entry.
func WorldRequirements(w *lang.World) *req.Database {
	db := new(req.Database)

	db.Section(ReqLight).AppendName(w.LightName)
	db.Section(ReqTerrain).AppendName(w.TerrainName)
	db.Section(ReqConfig).AppendName(w.SkyName)
	db.Section(ReqPath).AppendName(w.PathName)
	db.Section(ReqClass).Append(w.Classes()...)

	return db
}
