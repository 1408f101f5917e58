package lang

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

const formatSource = `
Version(10);
Path("cp4_spawn", 'say "hi"')
{
	Nodes(1)
	{
		Node() { Position(-131.5, 0, 2e-05); }
		Empty() { }
	}
}
Object("lbl", "cls") { ChildRotation(1, 0, 0, 0); ChildPosition(1, 2, 3); Team(2); }
Connection("ab") { Start("a"); End("b"); Flag(3); OneWay(); }
`

func TestFormat_RoundTrip(t *testing.T) {
	for _, indent := range []int{0, 4} {
		doc, err := ParseString(t.Context(), formatSource)
		if err != nil {
			t.Fatalf("parse error: %v", err)
		}

		var buf bytes.Buffer
		if err := doc.Format(t.Context(), &buf, indent); err != nil {
			t.Fatalf("Format: %v", err)
		}

		again, err := ParseString(t.Context(), buf.String())
		if err != nil {
			t.Fatalf("reparse (indent %d) error: %v\n%s", indent, err, buf.String())
		}

		if !reflect.DeepEqual(doc.ToMap(), again.ToMap()) {
			t.Errorf("round trip (indent %d) changed document:\n%s", indent, buf.String())
		}
	}
}

func TestFormat_Layout(t *testing.T) {
	doc, err := ParseString(t.Context(), `A() { B(1); }`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var buf bytes.Buffer
	if err := doc.Format(t.Context(), &buf, 2); err != nil {
		t.Fatalf("Format: %v", err)
	}

	want := "A()\n{\n  B(1);\n}\n"
	if buf.String() != want {
		t.Errorf("Format() = %q, want %q", buf.String(), want)
	}

	buf.Reset()

	if err := doc.Format(t.Context(), &buf, 0); err != nil {
		t.Fatalf("Format: %v", err)
	}

	if want := "A() { B(1); }\n"; buf.String() != want {
		t.Errorf("Format() = %q, want %q", buf.String(), want)
	}
}

func TestFormatJSON(t *testing.T) {
	doc, err := ParseString(t.Context(), formatSource)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var buf bytes.Buffer
	if err := doc.FormatJSON(t.Context(), &buf, 2); err != nil {
		t.Fatalf("FormatJSON: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if got["kind"] != "generic" || got["platform"] != "pc" {
		t.Errorf("kind/platform = %v/%v", got["kind"], got["platform"])
	}

	entities, ok := got["entities"].([]any)
	if !ok || len(entities) != 4 {
		t.Fatalf("entities = %v", got["entities"])
	}
}

func TestFormatYAML(t *testing.T) {
	doc, err := ParseString(t.Context(), formatSource)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var buf bytes.Buffer
	if err := doc.FormatYAML(t.Context(), &buf, 2); err != nil {
		t.Fatalf("FormatYAML: %v", err)
	}

	for _, want := range []string{"kind: generic", "label: lbl", "name: Path"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("YAML output missing %q:\n%s", want, buf.String())
		}
	}
}

func TestPrint(t *testing.T) {
	doc, err := ParseString(t.Context(), formatSource)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var buf bytes.Buffer
	if err := doc.Print(&buf); err != nil {
		t.Fatalf("Print: %v", err)
	}

	for _, want := range []string{
		"Document kind=generic platform=pc",
		"*lang.Object Object @11:1",
		"Scope Nodes @5:2",
		"Integer 10",
		`String "cp4_spawn"`,
	} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("Print output missing %q:\n%s", want, buf.String())
		}
	}
}
