package munge

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/munge/chunk"
	"github.com/ardnew/munge/lang"
	"github.com/ardnew/munge/magic"
	"github.com/ardnew/munge/odf"
)

func TestEncodeConfig(t *testing.T) {
	alpha := parseDoc(t, lang.KindConfig, `Effect("rain") { Density(1); } Speed(2);`)
	beta := parseDoc(t, lang.KindConfig, ``)

	tests := []struct {
		name string
		id   chunk.ID
	}{
		{"default", CNFG},
		{"override", chunk.MustID("fx")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeConfig(tt.id,
				Source{Path: "effects/Alpha.fx", Doc: alpha},
				Source{Path: "effects/beta.fx", Doc: beta},
			)
			if err != nil {
				t.Fatalf("EncodeConfig: %v", err)
			}

			roots, err := chunk.Parse(data)
			if err != nil || len(roots) != 1 || roots[0].ID != chunk.UCFB {
				t.Fatalf("output is not a single ucfb chunk: %v", err)
			}

			docs := children(t, roots[0])
			if len(docs) != 2 || docs[0].ID != tt.id || docs[1].ID != tt.id {
				t.Fatalf("ucfb children = %v, want two %s", ids(docs), tt.id)
			}

			first := children(t, docs[0])
			if got := ids(first); !slices.Equal(got, []string{"NAME", "DATA", "SCOP", "DATA"}) {
				t.Errorf("first document = %v", got)
			}

			name := magic.Hash("alpha")
			if !bytes.Equal(first[0].Payload, name[:]) {
				t.Errorf("NAME = %x, want %x", first[0].Payload, name)
			}

			if got := ids(children(t, docs[1])); !slices.Equal(got, []string{"NAME"}) {
				t.Errorf("second document = %v, want [NAME]", got)
			}
		})
	}
}

func TestEncodeConfig_Error(t *testing.T) {
	bad := parseDoc(t, lang.KindConfig, `Hub() { }`)

	_, err := EncodeConfig(CNFG, Source{Path: "bad.fx", Doc: bad})
	if !errors.Is(err, ErrMissingField) {
		t.Errorf("EncodeConfig error = %v, want ErrMissingField", err)
	}
}

func TestEncodeClass(t *testing.T) {
	c, err := odf.Parse(strings.NewReader(`
[GameObjectClass]
ClassLabel = "prop"
GeometryName = "tree.msh"

[Properties]
GeometryName = "tree"   // trailing comment
MaxHealth = 100
Empty = ""
`))
	if err != nil {
		t.Fatalf("odf.Parse: %v", err)
	}

	data, err := EncodeClass("Tree", c)
	if err != nil {
		t.Fatalf("EncodeClass: %v", err)
	}

	roots, err := chunk.Parse(data)
	if err != nil || len(roots) != 1 {
		t.Fatalf("Parse: %v", err)
	}

	entc, ok := roots[0].Find(ENTC)
	if !ok {
		t.Fatal("ucfb has no entc chunk")
	}

	fields := children(t, entc)
	if got := ids(fields); !slices.Equal(got, []string{"BASE", "TYPE", "PROP", "PROP"}) {
		t.Fatalf("entc children = %v", got)
	}

	if got := string(fields[0].Payload); got != "prop\x00" {
		t.Errorf("BASE = %q", got)
	}

	if got := string(fields[1].Payload); got != "Tree\x00" {
		t.Errorf("TYPE = %q", got)
	}

	key := magic.Hash("MaxHealth")
	want := append(key[:], "100\x00"...)

	if !bytes.Equal(fields[3].Payload, want) {
		t.Errorf("PROP = %x, want %x", fields[3].Payload, want)
	}
}
