package lang

import (
	"log/slog"
	"slices"
)

// Graph is the navigation graph of a planning document, with connection
// endpoints resolved against the hub list.
type Graph struct {
	Hubs        []*Hub
	Connections []*Connection

	// first and last index of each hub name; duplicate names resolve to the
	// first hub for endpoints and to the last for neighbour lookup.
	first map[string]int
	last  map[string]int

	// connection indices incident to each hub name, in declaration order.
	// A self-loop appears twice.
	incident map[string][]int

	endpoints [][2]int
	types     [NumTypes]bool
}

// NewGraph resolves the hubs and connections of doc.
// Connections may reference hubs declared after them. A reference to an
// undeclared hub is [ErrUnknownHub].
func NewGraph(doc *Document) (*Graph, error) {
	g := &Graph{
		Hubs:        slices.Collect(doc.Hubs()),
		Connections: slices.Collect(doc.Connections()),
		first:       make(map[string]int),
		last:        make(map[string]int),
		incident:    make(map[string][]int),
	}

	for i, h := range g.Hubs {
		if _, ok := g.first[h.Name]; !ok {
			g.first[h.Name] = i
		}

		g.last[h.Name] = i
	}

	g.endpoints = make([][2]int, len(g.Connections))

	for i, c := range g.Connections {
		start, ok := g.first[c.Start]
		if !ok {
			return nil, ErrUnknownHub.With(
				slog.String("connection", c.Name),
				slog.String("hub", c.Start),
			)
		}

		end, ok := g.first[c.End]
		if !ok {
			return nil, ErrUnknownHub.With(
				slog.String("connection", c.Name),
				slog.String("hub", c.End),
			)
		}

		g.endpoints[i] = [2]int{start, end}
		g.incident[c.Start] = append(g.incident[c.Start], i)
		g.incident[c.End] = append(g.incident[c.End], i)

		for t := range NumTypes {
			g.types[t] = g.types[t] || c.HasType(t)
		}
	}

	return g, nil
}

// HubIndex returns the index of the first hub with the given name.
func (g *Graph) HubIndex(name string) (int, bool) {
	i, ok := g.first[name]

	return i, ok
}

// Endpoints returns the hub indices of connection i.
func (g *Graph) Endpoints(i int) (start, end int) {
	return g.endpoints[i][0], g.endpoints[i][1]
}

// Incident returns the indices of connections that start or end at the named
// hub, in declaration order. A self-loop is listed twice.
func (g *Graph) Incident(hub string) []int { return g.incident[hub] }

// Types reports which unit types any connection in the graph carries.
func (g *Graph) Types() [NumTypes]bool { return g.types }

// HasType reports whether any connection incident to hub carries type t.
func (g *Graph) HasType(hub string, t int) bool {
	for _, i := range g.incident[hub] {
		if g.Connections[i].HasType(t) {
			return true
		}
	}

	return false
}

// Neighbours maps each hub index adjacent to hub over a connection with a
// type of t or lower to that connection's index. When several connections
// reach the same hub, the last one declared wins.
func (g *Graph) Neighbours(hub string, t int) map[int]int {
	out := make(map[int]int)

	for _, i := range g.incident[hub] {
		c := g.Connections[i]
		if !c.HasTypeOrLower(t) {
			continue
		}

		other, _ := c.Opposite(hub)
		if j, ok := g.last[other]; ok {
			out[j] = i
		}
	}

	return out
}
