package munge

import (
	"log/slog"

	"github.com/ardnew/munge/chunk"
	"github.com/ardnew/munge/lang"
)

// Planning tags.
var (
	PLAN = chunk.MustID("plan")
	NODE = chunk.MustID("NODE")
	ARCS = chunk.MustID("ARCS")
)

// Planning record layout.
const (
	HubNameSize        = 16
	ConnectionNameSize = 16
	HubSlots           = 8

	unusedSlot = 0xFF
	reachable  = 0xF8
	rankMask   = 0x07
)

// EncodePlanning resolves the navigation graph of doc and encodes it with
// [EncodeGraph].
func EncodePlanning(doc *lang.Document) ([]byte, error) {
	for _, e := range doc.Entities {
		switch e.(type) {
		case *lang.Hub, *lang.Connection:
			if err := validate(e); err != nil {
				return nil, err
			}
		}
	}

	g, err := lang.NewGraph(doc)
	if err != nil {
		return nil, ErrEncode.Wrap(err)
	}

	return EncodeGraph(g)
}

// EncodeGraph encodes g as a ucfb > plan tree holding INFO, NODE, and ARCS.
//
// INFO holds the hub count, the connection count, and the number of unit
// types, each as a uint16. NODE holds one record per hub and ARCS one record
// per connection, both in declaration order.
func EncodeGraph(g *lang.Graph) ([]byte, error) {
	root := chunk.New(chunk.UCFB)

	err := root.Nest(PLAN, func(plan *chunk.Writer) error {
		err := plan.Nest(chunk.INFO, func(info *chunk.Writer) error {
			info.WriteUint16(uint16(len(g.Hubs)))
			info.WriteUint16(uint16(len(g.Connections)))
			info.WriteUint16(lang.NumTypes)

			return nil
		})
		if err != nil {
			return err
		}

		err = plan.Nest(NODE, func(node *chunk.Writer) error {
			for i := range g.Hubs {
				if err := encodeHub(node, g, i); err != nil {
					return err
				}
			}

			return nil
		})
		if err != nil {
			return err
		}

		return plan.Nest(ARCS, func(arcs *chunk.Writer) error {
			for i := range g.Connections {
				if err := encodeConnection(arcs, g, i); err != nil {
					return err
				}
			}

			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if err := root.Close(); err != nil {
		return nil, ErrEncode.Wrap(err)
	}

	return root.Bytes(), nil
}

// encodeHub writes the record of hub i:
//
//	name      [16]byte
//	position  [3]float32
//	radius    float32
//	slots     [8]uint8    incident connection indices, 0xFF when unused
//	types     [5]uint8    1 if an incident connection carries the type
//	reach     per set type, one byte per hub in declaration order
func encodeHub(w *chunk.Writer, g *lang.Graph, i int) error {
	h := g.Hubs[i]

	w.WriteFixedString(h.Name, HubNameSize)
	w.WriteFloats(h.Position.X, h.Position.Y, h.Position.Z, h.Radius)

	incident := g.Incident(h.Name)

	for k := range HubSlots {
		if k >= len(incident) {
			_ = w.WriteByte(unusedSlot)

			continue
		}

		if incident[k] >= unusedSlot {
			return ErrEncode.Wrap(ErrIndexRange.With(
				slog.String("hub", h.Name),
				slog.Int("connection", incident[k]),
			))
		}

		_ = w.WriteByte(byte(incident[k]))
	}

	var types [lang.NumTypes]bool

	for t := range lang.NumTypes {
		types[t] = g.HasType(h.Name, t)

		if types[t] {
			_ = w.WriteByte(1)
		} else {
			_ = w.WriteByte(0)
		}
	}

	for t, set := range types {
		if !set {
			continue
		}

		neighbours := g.Neighbours(h.Name, t)

		for j := range g.Hubs {
			_ = w.WriteByte(reachability(g, i, j, t, neighbours))
		}
	}

	return nil
}

// reachability returns the connectivity byte from hub i to hub j for unit
// type t. neighbours is the result of [lang.Graph.Neighbours] for hub i.
//
// A direct, traversable connection yields 0xF8 with its rank in the low
// three bits: the number of connections incident to hub i that are declared
// before it and carry type t or higher. An unconnected hub yields 0xF8 if it
// carries type t at all.
func reachability(g *lang.Graph, i, j, t int, neighbours map[int]int) byte {
	if i == j {
		return 0
	}

	arc, ok := neighbours[j]
	if !ok {
		if g.HasType(g.Hubs[j].Name, t) {
			return reachable
		}

		return 0
	}

	self := g.Hubs[i].Name
	c := g.Connections[arc]

	if c.Flag < 1<<t {
		return 0
	}

	if c.OneWay && c.Start != self {
		return 0
	}

	rank := 0

	for k := range arc {
		other := g.Connections[k]
		if other.Start != self && other.End != self {
			continue
		}

		if other.HasTypeOrHigher(t) {
			rank++
		}
	}

	return reachable | byte(rank&rankMask)
}

// encodeConnection writes the record of connection i:
//
//	name        [16]byte
//	start, end  uint8    hub indices
//	flag        uint32
//	attributes  uint32   one-way | jump<<1 | jet jump<<2
func encodeConnection(w *chunk.Writer, g *lang.Graph, i int) error {
	c := g.Connections[i]
	start, end := g.Endpoints(i)

	for _, hub := range []int{start, end} {
		if hub > 0xFF {
			return ErrEncode.Wrap(ErrIndexRange.With(
				slog.String("connection", c.Name),
				slog.Int("hub", hub),
			))
		}
	}

	w.WriteFixedString(c.Name, ConnectionNameSize)
	_ = w.WriteByte(byte(start))
	_ = w.WriteByte(byte(end))
	w.WriteUint32(c.Flag)
	w.WriteUint32(c.Attributes())

	return nil
}
