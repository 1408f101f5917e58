package lang

import (
	"errors"
	"maps"
	"slices"
	"testing"
)

func parseGraph(t *testing.T, input string) (*Graph, error) {
	t.Helper()

	doc, err := ParseString(t.Context(), input, WithKind(KindPlanning))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	return NewGraph(doc)
}

func TestNewGraph(t *testing.T) {
	g, err := parseGraph(t, `
Connection("ab") { Start("A"); End("B"); Flag(1); }
Hub("A") { Pos(0, 0, 0); Radius(1); }
Hub("B") { Pos(1, 0, 0); Radius(1); }
Hub("C") { Pos(2, 0, 0); Radius(1); }
`)
	if err != nil {
		t.Fatalf("NewGraph: %v", err)
	}

	if i, ok := g.HubIndex("C"); !ok || i != 2 {
		t.Errorf("HubIndex(C) = (%d, %v), want (2, true)", i, ok)
	}

	if s, e := g.Endpoints(0); s != 0 || e != 1 {
		t.Errorf("Endpoints(0) = (%d, %d), want (0, 1)", s, e)
	}

	if got := g.Incident("A"); !slices.Equal(got, []int{0}) {
		t.Errorf("Incident(A) = %v", got)
	}

	if got := g.Incident("C"); len(got) != 0 {
		t.Errorf("Incident(C) = %v, want none", got)
	}

	if types := g.Types(); !types[0] || types[1] {
		t.Errorf("Types() = %v", types)
	}

	if !g.HasType("B", 0) || g.HasType("C", 0) {
		t.Error("HasType mismatch for B or C")
	}

	if got := g.Neighbours("A", 0); !maps.Equal(got, map[int]int{1: 0}) {
		t.Errorf("Neighbours(A, 0) = %v", got)
	}
}

func TestNewGraph_SelfLoop(t *testing.T) {
	g, err := parseGraph(t, `
Hub("A") { }
Connection("aa") { Start("A"); End("A"); Flag(1); }
`)
	if err != nil {
		t.Fatalf("NewGraph: %v", err)
	}

	if got := g.Incident("A"); !slices.Equal(got, []int{0, 0}) {
		t.Errorf("Incident(A) = %v, want [0 0]", got)
	}
}

func TestNewGraph_UnknownHub(t *testing.T) {
	_, err := parseGraph(t, `
Hub("A") { }
Connection("ax") { Start("A"); End("X"); Flag(1); }
`)
	if !errors.Is(err, ErrUnknownHub) {
		t.Errorf("NewGraph error = %v, want ErrUnknownHub", err)
	}
}
