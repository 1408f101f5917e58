package req

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestDatabase_Write(t *testing.T) {
	var db Database

	db.Section("light").Append("Test")
	db.Section("class").Append("cls_A", "CLS_a", "", "cls_b")
	db.Section("light").Append("test")

	want := strings.Join([]string{
		"",
		"ucft",
		"{",
		"\tREQN",
		"\t{",
		"\t\t\"light\"",
		"\t\t\"test\"",
		"\t}",
		"\tREQN",
		"\t{",
		"\t\t\"class\"",
		"\t\t\"cls_a\"",
		"\t\t\"cls_b\"",
		"\t}",
		"}",
	}, "\r\n")

	if got := db.String(); got != want {
		t.Errorf("String() =\n%q\nwant\n%q", got, want)
	}
}

func TestSection_AppendName(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		want  []string
	}{
		{"set", []string{"Sunny"}, []string{"sunny"}},
		{"unset", []string{""}, []string{""}},
		{"quoted unset", []string{`""`}, []string{""}},
		{"repeated unset", []string{"", ""}, []string{""}},
		{"mixed", []string{"", "Sky", "sky"}, []string{"", "sky"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Section

			for _, n := range tt.names {
				s.AppendName(n)
			}

			if !slices.Equal(s.Entries, tt.want) {
				t.Errorf("Entries = %q, want %q", s.Entries, tt.want)
			}
		})
	}

	var db Database

	db.Section("config").AppendName("")

	if got := db.String(); !strings.Contains(got, "\t\t\"config\"\r\n\t\t\"\"\r\n\t}") {
		t.Errorf("String() = %q, want an empty config entry", got)
	}
}

func TestDatabase_Empty(t *testing.T) {
	var db Database

	if got, want := db.String(), "\r\nucft\r\n{\r\n}"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestParse_RoundTrip(t *testing.T) {
	var db Database

	db.Section("config").Append("sky")

	s := db.Section("texture")
	s.Platform = "pc"
	s.Append("grass", "rock")

	got, err := ParseString(db.String())
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}

	if got.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", got.Len())
	}

	tex, ok := got.Lookup("texture")
	if !ok {
		t.Fatal("missing texture section")
	}

	if tex.Platform != "pc" {
		t.Errorf("Platform = %q, want pc", tex.Platform)
	}

	if !slices.Equal(tex.Entries, []string{"grass", "rock"}) {
		t.Errorf("Entries = %v", tex.Entries)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		entries map[string][]string
		wantErr bool
	}{
		{
			name:    "empty",
			input:   "ucft { }",
			entries: map[string][]string{},
		},
		{
			name:  "compact",
			input: `ucft{REQN{"class" "A" "b"}REQN{"model"}}`,
			entries: map[string][]string{
				"class": {"A", "b"},
				"model": nil,
			},
		},
		{
			name:    "missing header",
			input:   "REQN { }",
			wantErr: true,
		},
		{
			name:    "unterminated string",
			input:   "ucft { REQN { \"class\n } }",
			wantErr: true,
		},
		{
			name:    "missing section name",
			input:   "ucft { REQN { } }",
			wantErr: true,
		},
		{
			name:    "trailing input",
			input:   "ucft { } ucft",
			wantErr: true,
		},
		{
			name:    "unclosed",
			input:   `ucft { REQN { "a"`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := Parse(strings.NewReader(tt.input))
			if tt.wantErr {
				if !errors.Is(err, ErrSyntax) {
					t.Fatalf("error = %v, want ErrSyntax", err)
				}

				return
			}

			if err != nil {
				t.Fatalf("Parse: %v", err)
			}

			if db.Len() != len(tt.entries) {
				t.Fatalf("Len() = %d, want %d", db.Len(), len(tt.entries))
			}

			for name, want := range tt.entries {
				s, ok := db.Lookup(name)
				if !ok {
					t.Fatalf("missing section %q", name)
				}

				if !slices.Equal(s.Entries, want) {
					t.Errorf("%s entries = %v, want %v", name, s.Entries, want)
				}
			}
		})
	}
}
