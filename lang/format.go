package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format writes the document in native syntax to the writer.
// Scoped bodies are indented by indent spaces per level, with braces on their
// own lines. With indent 0, each statement is written on a single line.
func (d *Document) Format(_ context.Context, w io.Writer, indent int) error {
	for _, e := range d.Entities {
		if err := formatInstance(w, Raw(e), indent, 0); err != nil {
			return err
		}
	}

	return nil
}

// Raw returns the statement an entity was built from.
func Raw(e Entity) *Instance {
	switch v := e.(type) {
	case *Instance:
		return v
	case *Object:
		return v.Raw
	case *Region:
		return v.Raw
	case *Hint:
		return v.Raw
	case *Barrier:
		return v.Raw
	case *Hub:
		return v.Raw
	case *Connection:
		return v.Raw
	default:
		return nil
	}
}

func formatInstance(w io.Writer, inst *Instance, indent, depth int) error {
	if inst == nil {
		return nil
	}

	pad := strings.Repeat(" ", depth*indent)

	args := make([]string, len(inst.Args))
	for i, a := range inst.Args {
		args[i] = a.String()
	}

	head := pad + inst.Name + "(" + strings.Join(args, ", ") + ")"

	if !inst.Scoped {
		_, err := fmt.Fprintln(w, head+";")

		return err
	}

	if indent == 0 {
		if _, err := fmt.Fprint(w, head+" { "); err != nil {
			return err
		}

		for _, c := range inst.Body {
			if err := formatInline(w, c); err != nil {
				return err
			}
		}

		_, err := fmt.Fprintln(w, "}")

		return err
	}

	if _, err := fmt.Fprintln(w, head); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, pad+"{"); err != nil {
		return err
	}

	for _, c := range inst.Body {
		if err := formatInstance(w, c, indent, depth+1); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(w, pad+"}")

	return err
}

func formatInline(w io.Writer, inst *Instance) error {
	args := make([]string, len(inst.Args))
	for i, a := range inst.Args {
		args[i] = a.String()
	}

	if _, err := fmt.Fprint(w, inst.Name, "(", strings.Join(args, ", "), ")"); err != nil {
		return err
	}

	if !inst.Scoped {
		_, err := fmt.Fprint(w, "; ")

		return err
	}

	if _, err := fmt.Fprint(w, " { "); err != nil {
		return err
	}

	for _, c := range inst.Body {
		if err := formatInline(w, c); err != nil {
			return err
		}
	}

	_, err := fmt.Fprint(w, "} ")

	return err
}

// FormatJSON writes the document as JSON to the writer.
func (d *Document) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(d.ToMap(), "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(d.ToMap())
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes the document as YAML to the writer.
func (d *Document) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, d.ToMap(), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}

// ToMap converts the document to a map for structured encoding.
func (d *Document) ToMap() map[string]any {
	entities := make([]any, 0, len(d.Entities))
	for _, e := range d.Entities {
		entities = append(entities, entityMap(e))
	}

	return map[string]any{
		"kind":     d.Kind.String(),
		"platform": string(d.Platform),
		"entities": entities,
	}
}

func entityMap(e Entity) map[string]any {
	switch v := e.(type) {
	case *Instance:
		return instanceMap(v)

	case *Object:
		return map[string]any{
			"keyword":  v.Ident(),
			"label":    v.Label,
			"class":    v.Class,
			"rotation": v.Rotation[:],
			"position": v.Position.Slice(),
			"body":     bodyMaps(v.Body),
		}

	case *Region:
		return map[string]any{
			"keyword":  v.Ident(),
			"class":    v.Class,
			"shape":    string(v.Shape),
			"rotation": v.Rotation[:],
			"position": v.Position.Slice(),
			"size":     v.Size.Slice(),
			"body":     bodyMaps(v.Body),
		}

	case *Hint:
		return map[string]any{
			"keyword":  v.Ident(),
			"name":     v.Name,
			"type":     v.Type,
			"rotation": v.Rotation[:],
			"position": v.Position.Slice(),
			"size":     v.Size.Slice(),
			"body":     bodyMaps(v.Body),
		}

	case *Barrier:
		corners := make([]any, len(v.Corners))
		for i, c := range v.Corners {
			corners[i] = c.Slice()
		}

		return map[string]any{
			"keyword":  v.Ident(),
			"name":     v.Name,
			"corners":  corners,
			"flag":     v.Flag,
			"size":     v.Size.Slice(),
			"position": v.Position.Slice(),
		}

	case *Hub:
		return map[string]any{
			"keyword":  v.Ident(),
			"name":     v.Name,
			"position": v.Position.Slice(),
			"radius":   v.Radius,
		}

	case *Connection:
		m := map[string]any{
			"keyword":  v.Ident(),
			"name":     v.Name,
			"start":    v.Start,
			"end":      v.End,
			"flag":     v.Flag,
			"one_way":  v.OneWay,
			"jump":     v.Jump,
			"jet_jump": v.JetJump,
		}

		if v.HasDynamic {
			m["dynamic"] = v.Dynamic
		}

		return m

	default:
		return nil
	}
}

func instanceMap(inst *Instance) map[string]any {
	args := make([]any, len(inst.Args))
	for i, a := range inst.Args {
		args[i] = literalValue(a)
	}

	m := map[string]any{
		"name": inst.Name,
		"args": args,
	}

	if inst.Scoped {
		m["body"] = bodyMaps(inst.Body)
	}

	return m
}

func bodyMaps(body []*Instance) []any {
	out := make([]any, len(body))
	for i, c := range body {
		out[i] = instanceMap(c)
	}

	return out
}

func literalValue(l Literal) any {
	switch l.Type {
	case TypeInteger:
		return l.Int
	case TypeFloat:
		return l.Float
	default:
		return l.Str
	}
}

// Print writes an indented tree of the document's entities, their literal
// types, and source positions.
func (d *Document) Print(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Document kind=%s platform=%s\n", d.Kind, d.Platform); err != nil {
		return err
	}

	for _, e := range d.Entities {
		raw := Raw(e)

		if _, err := fmt.Fprintf(w, "  %T %s @%d:%d\n", e, e.Ident(), raw.Pos.Line, raw.Pos.Column); err != nil {
			return err
		}

		if err := printInstance(w, raw, 2); err != nil {
			return err
		}
	}

	return nil
}

func printInstance(w io.Writer, inst *Instance, depth int) error {
	pad := strings.Repeat("  ", depth)

	for _, a := range inst.Args {
		if _, err := fmt.Fprintf(w, "%s%s %s\n", pad, a.Type, a.String()); err != nil {
			return err
		}
	}

	for _, c := range inst.Body {
		kind := "Property"
		if c.Scoped {
			kind = "Scope"
		}

		if _, err := fmt.Fprintf(w, "%s%s %s @%d:%d\n", pad, kind, c.Name, c.Pos.Line, c.Pos.Column); err != nil {
			return err
		}

		if err := printInstance(w, c, depth+1); err != nil {
			return err
		}
	}

	return nil
}
