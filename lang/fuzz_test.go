package lang

import (
	"bytes"
	"errors"
	"testing"
	"unicode/utf8"
)

// FuzzParseString checks that the parser never panics, that every failure is
// a positioned ParseError, and that a parsed document can be formatted.
func FuzzParseString(f *testing.F) {
	f.Add("")
	f.Add("Foo();")
	f.Add(`Foo(1, -2.5, "x", 'y');`)
	f.Add("Scope() { Inner() { Leaf(1e3); } }")
	f.Add(`Object("a", "b") { ChildPosition(1, 2, 3); }`)
	f.Add(`Barrier("b") { Corner(0, 0, 0); Flag(1); }`)
	f.Add("Root() { pc() { A(); } xbox() { B(); } }")
	f.Add("// comment\nFoo(")
	f.Add(`Foo("unterminated`)

	f.Fuzz(func(t *testing.T, input string) {
		if !utf8.ValidString(input) {
			t.Skip("invalid UTF-8")
		}

		doc, err := ParseString(t.Context(), input)
		if err != nil {
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error %T is not *ParseError: %v", err, err)
			}

			if pe.Pos.Line < 1 || pe.Pos.Column < 1 {
				t.Errorf("invalid position %+v", pe.Pos)
			}

			return
		}

		var buf bytes.Buffer
		if err := doc.Format(t.Context(), &buf, 2); err != nil {
			t.Fatalf("Format: %v", err)
		}
	})
}
