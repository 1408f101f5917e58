package munge

import (
	"bytes"
	"encoding/binary"
	"math"
	"slices"
	"testing"

	"github.com/ardnew/munge/chunk"
	"github.com/ardnew/munge/lang"
)

func parseDoc(t *testing.T, kind lang.Kind, input string) *lang.Document {
	t.Helper()

	doc, err := lang.ParseString(t.Context(), input, lang.WithKind(kind))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	return doc
}

func testWorld(t *testing.T) *lang.World {
	t.Helper()

	w := lang.NewWorld(parseDoc(t, lang.KindWorld, `
LightName("Test.LGT");
TerrainName("terrain/Terr.ter");
PathName("test.pth");
Object("crate", "Prop_Crate") { ChildPosition(1, 2, 3); }
Object("door", "prop_door") { }
`))

	w.Attach(lang.KindRegion, parseDoc(t, lang.KindRegion, `
Region("trigger", 1) { Position(1, 2, 3); Size(2, 2, 2); Power("on"); }
`))

	w.Attach(lang.KindHint, parseDoc(t, lang.KindHint, `
Hint("snipe", "3") { Position(0, 0, 1); Radius("5"); }
`))

	w.Attach(lang.KindBarrier, parseDoc(t, lang.KindBarrier, `
Barrier("Wall") {
	Corner(0, 0, 0);
	Corner(10, 0, 0);
	Corner(10, 0, 5);
	Corner(0, 0, 5);
	Flag(1);
}`))

	return w
}

func children(t *testing.T, n *chunk.Node) []*chunk.Node {
	t.Helper()

	c, err := n.Children()
	if err != nil {
		t.Fatalf("children of %s: %v", n.ID, err)
	}

	return c
}

func ids(nodes []*chunk.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID.String())
	}

	return out
}

func floatsOf(b []byte) []float32 {
	out := make([]float32, 0, len(b)/4)
	for i := 0; i+4 <= len(b); i += 4 {
		out = append(out, math.Float32frombits(binary.LittleEndian.Uint32(b[i:])))
	}

	return out
}

func TestEncodeWorld(t *testing.T) {
	data, err := EncodeWorld("Test", testWorld(t))
	if err != nil {
		t.Fatalf("EncodeWorld: %v", err)
	}

	roots, err := chunk.Parse(data)
	if err != nil || len(roots) != 1 {
		t.Fatalf("Parse: %v", err)
	}

	wrld, ok := roots[0].Find(WRLD)
	if !ok {
		t.Fatal("ucfb has no wrld chunk")
	}

	top := children(t, wrld)

	want := []string{"NAME", "TNAM", "INFO", "regn", "inst", "inst", "Hint", "BARR"}
	if got := ids(top); !slices.Equal(got, want) {
		t.Fatalf("wrld children = %v, want %v", got, want)
	}

	if got := string(top[0].Payload); got != "test\x00" {
		t.Errorf("NAME = %q, want %q", got, "test\x00")
	}

	if got := string(top[1].Payload); got != "Terr\x00" {
		t.Errorf("TNAM = %q, want %q", got, "Terr\x00")
	}

	info := binary.LittleEndian.AppendUint32(binary.LittleEndian.AppendUint32(nil, 1), 2)
	if !bytes.Equal(top[2].Payload, info) {
		t.Errorf("INFO = %x, want %x", top[2].Payload, info)
	}

	t.Run("region", func(t *testing.T) {
		regn := children(t, top[3])
		if got := ids(regn); !slices.Equal(got, []string{"INFO", "PROP"}) {
			t.Fatalf("regn children = %v", got)
		}

		fields := children(t, regn[0])
		if got := ids(fields); !slices.Equal(got, []string{"TYPE", "NAME", "XFRM", "SIZE"}) {
			t.Fatalf("regn INFO children = %v", got)
		}

		if got := string(fields[0].Payload); got != "sphere\x00" {
			t.Errorf("TYPE = %q", got)
		}

		if got := floatsOf(fields[3].Payload); !slices.Equal(got, []float32{2, 2, 2}) {
			t.Errorf("SIZE = %v", got)
		}
	})

	t.Run("barrier", func(t *testing.T) {
		barr := children(t, top[7])
		if len(barr) != 1 || barr[0].ID != chunk.INFO {
			t.Fatalf("BARR children = %v", ids(barr))
		}

		fields := children(t, barr[0])
		if got := ids(fields); !slices.Equal(got, []string{"NAME", "XFRM", "SIZE", "FLAG"}) {
			t.Fatalf("BARR INFO children = %v", got)
		}

		if got := string(fields[0].Payload); got != "wall\x00" {
			t.Errorf("NAME = %q", got)
		}

		xfrm := floatsOf(fields[1].Payload)
		if got := xfrm[9:]; !slices.Equal(got, []float32{5, 0, 2.5}) {
			t.Errorf("XFRM position = %v, want [5 0 2.5]", got)
		}

		if got := floatsOf(fields[2].Payload); !slices.Equal(got, []float32{5, 0, 2.5}) {
			t.Errorf("SIZE = %v, want [5 0 2.5]", got)
		}

		if got := binary.LittleEndian.Uint32(fields[3].Payload); got != 1 {
			t.Errorf("FLAG = %d, want 1", got)
		}
	})

	t.Run("transforms", func(t *testing.T) {
		for _, entity := range top[3:] {
			info, ok := entity.Find(chunk.INFO)
			if !ok {
				t.Fatalf("%s has no INFO", entity.ID)
			}

			xfrm, ok := info.Find(chunk.XFRM)
			if !ok {
				t.Fatalf("%s INFO has no XFRM", entity.ID)
			}

			if len(xfrm.Payload) != 12*4 {
				t.Errorf("%s XFRM is %d bytes, want 48", entity.ID, len(xfrm.Payload))
			}
		}
	})
}

func TestEncodeWorld_NoSky(t *testing.T) {
	data, err := EncodeWorld("empty", lang.NewWorld(&lang.Document{}))
	if err != nil {
		t.Fatalf("EncodeWorld: %v", err)
	}

	roots, err := chunk.Parse(data)
	if err != nil || len(roots) != 1 {
		t.Fatalf("Parse: %v", err)
	}

	wrld, ok := roots[0].Find(WRLD)
	if !ok {
		t.Fatal("ucfb has no wrld chunk")
	}

	if got := ids(children(t, wrld)); !slices.Equal(got, []string{"NAME", "INFO"}) {
		t.Errorf("wrld children = %v, want [NAME INFO]", got)
	}
}

func TestWorldRequirements(t *testing.T) {
	db := WorldRequirements(testWorld(t))

	tests := []struct {
		section string
		want    []string
	}{
		{ReqLight, []string{"test"}},
		{ReqTerrain, []string{"terr"}},
		{ReqConfig, []string{""}},
		{ReqPath, []string{"test"}},
		{ReqClass, []string{"prop_crate", "prop_door"}},
	}

	if db.Len() != len(tests) {
		t.Errorf("Len() = %d, want %d", db.Len(), len(tests))
	}

	for i, tt := range tests {
		t.Run(tt.section, func(t *testing.T) {
			s := db.Sections()[i]
			if s.Name != tt.section {
				t.Fatalf("section %d = %q, want %q", i, s.Name, tt.section)
			}

			if !slices.Equal(s.Entries, tt.want) {
				t.Errorf("entries = %v, want %v", s.Entries, tt.want)
			}
		})
	}
}
