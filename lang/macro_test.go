package lang

import (
	"errors"
	"slices"
	"testing"
)

func names(body []*Instance) []string {
	out := make([]string, 0, len(body))
	for _, inst := range body {
		out = append(out, inst.Name)
	}

	return out
}

func TestExpand_Platforms(t *testing.T) {
	input := `
Root()
{
	A();
	pc() { B(); ps2() { C(); } }
	ps2() { D(); }
	xbox() { E(); }
	F();
}
`

	tests := []struct {
		platform Platform
		want     []string
	}{
		{PlatformPC, []string{"A", "B", "F"}},
		{PlatformPS2, []string{"A", "D", "F"}},
		{PlatformXbox, []string{"A", "E", "F"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.platform), func(t *testing.T) {
			doc, err := ParseString(t.Context(), input, WithPlatform(tt.platform))
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			root := doc.Entities[0].(*Instance)
			if got := names(root.Body); !slices.Equal(got, tt.want) {
				t.Errorf("body = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpand_Cases(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"default platform is pc", `Root() { pc() { X(); } xbox() { Y(); } }`, []string{"X"}},
		{"case insensitive", `Root() { PC() { X(); } }`, []string{"X"}},
		{"property is not a block", `Root() { pc(); }`, []string{"pc"}},
		{"empty block", `Root() { pc() { } Z(); }`, []string{"Z"}},
		{"nested inlined block", `Root() { pc() { pc() { X(); } } }`, []string{"X"}},
		{"no blocks", `Root() { X(); Y() { } }`, []string{"X", "Y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseString(t.Context(), tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			root := doc.Entities[0].(*Instance)
			if got := names(root.Body); !slices.Equal(got, tt.want) {
				t.Errorf("body = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpand_TopLevel(t *testing.T) {
	input := `pc() { A(); } xbox() { B(); } Object("o", "c") { } C();`

	doc, err := ParseString(t.Context(), input, WithPlatform(PlatformPC))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var got []string
	for e := range doc.All() {
		got = append(got, e.Ident())
	}

	want := []string{"A", "Object", "C"}
	if !slices.Equal(got, want) {
		t.Errorf("entities = %v, want %v", got, want)
	}
}

func TestParsePlatform(t *testing.T) {
	tests := []struct {
		in      string
		want    Platform
		wantErr bool
	}{
		{"pc", PlatformPC, false},
		{"PS2", PlatformPS2, false},
		{"Xbox", PlatformXbox, false},
		{"switch", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePlatform(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPlatform) {
					t.Errorf("error = %v, want ErrInvalidPlatform", err)
				}

				return
			}

			if err != nil || got != tt.want {
				t.Errorf("ParsePlatform(%q) = (%q, %v), want %q", tt.in, got, err, tt.want)
			}
		})
	}
}
