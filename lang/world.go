package lang

import (
	"path"
	"slices"
	"strings"
)

// World is a world document with its region, hint, and barrier sidecars
// attached.
//
// The name fields hold file stems. Empty means unset.
type World struct {
	LightName   string
	TerrainName string
	SkyName     string
	PathName    string

	Objects  []*Object
	Regions  []*Region
	Hints    []*Hint
	Barriers []*Barrier
}

// NewWorld extracts the world-level names and the objects of doc.
// Every other entity of doc is dropped: regions, hints, and barriers are
// supplied by sidecar documents through [World.Attach].
func NewWorld(doc *Document) *World {
	w := new(World)

	for _, e := range doc.Entities {
		inst, ok := e.(*Instance)
		if !ok {
			continue
		}

		arg := ""
		if a, ok := inst.Arg(0); ok {
			arg = Stem(a.Text())
		}

		switch {
		case inst.Is("LightName"):
			w.LightName = arg
		case inst.Is("TerrainName"):
			w.TerrainName = arg
		case inst.Is("SkyName"):
			w.SkyName = arg
		case inst.Is("PathName"):
			w.PathName = arg
		}
	}

	w.Objects = slices.Collect(doc.Objects())

	return w
}

// Attach replaces the entities of w that a sidecar of the given kind
// provides with those of doc: regions for [KindRegion], hints for [KindHint],
// and barriers for [KindBarrier]. Other kinds are ignored.
func (w *World) Attach(kind Kind, doc *Document) {
	switch kind {
	case KindRegion:
		w.Regions = slices.Collect(doc.Regions())
	case KindHint:
		w.Hints = slices.Collect(doc.Hints())
	case KindBarrier:
		w.Barriers = slices.Collect(doc.Barriers())
	}
}

// Classes returns the class of every object in order.
func (w *World) Classes() []string {
	out := make([]string, 0, len(w.Objects))

	for _, o := range w.Objects {
		out = append(out, o.Class)
	}

	return out
}

// Stem returns the final element of a slash or backslash separated path
// with its extension removed.
func Stem(name string) string {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	if base == "." || base == "/" {
		return ""
	}

	if ext := path.Ext(base); ext != base {
		base = strings.TrimSuffix(base, ext)
	}

	return base
}
