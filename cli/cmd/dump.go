package cmd

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/munge/chunk"
)

// Dump prints the chunk tree of a compiled file.
type Dump struct {
	Depth int  `default:"0"  help:"Maximum nesting depth to descend (0 for no limit)." short:"d"`
	Bytes int  `default:"16" help:"Number of payload bytes shown for leaf chunks."        short:"b"`
	YAML  bool `             help:"Print the tree as YAML."                               short:"y"`

	File string `arg:"" help:"Compiled file, or '-' for stdin." name:"file"`
}

// dumpNode is one chunk of the printed tree.
type dumpNode struct {
	ID       string      `yaml:"id"`
	Offset   int         `yaml:"offset"`
	Size     uint32      `yaml:"size"`
	Text     string      `yaml:"text,omitempty"`
	Data     string      `yaml:"data,omitempty"`
	Children []*dumpNode `yaml:"children,omitempty"`
}

// Run executes the dump command.
func (d *Dump) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	data, err := readSource(d.File)
	if err != nil {
		return err
	}

	nodes, err := chunk.Parse(data)
	if err != nil {
		return ErrNotChunked.Wrap(err).With(slog.String("file", d.File))
	}

	root := make([]*dumpNode, 0, len(nodes))
	for _, n := range nodes {
		root = append(root, d.build(n, 1))
	}

	w := outputFrom(ctx)

	if d.YAML {
		b, err := yaml.Marshal(root)
		if err != nil {
			return err
		}

		_, err = w.Write(b)

		return err
	}

	r := lipgloss.NewRenderer(w)
	styles := dumpStyles{
		id:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		meta: r.NewStyle().Foreground(lipgloss.Color("8")),
		text: r.NewStyle().Foreground(lipgloss.Color("2")),
		data: r.NewStyle().Foreground(lipgloss.Color("3")),
	}

	for _, n := range root {
		t := styles.tree(n).EnumeratorStyle(styles.meta)
		if _, err := fmt.Fprintln(w, t.String()); err != nil {
			return err
		}
	}

	return nil
}

// build converts n and, up to the depth limit, its nested chunks.
func (d *Dump) build(n *chunk.Node, depth int) *dumpNode {
	out := &dumpNode{ID: n.ID.String(), Offset: n.Offset, Size: n.Size}

	if n.IsContainer() && (d.Depth <= 0 || depth < d.Depth) {
		if children, err := n.Children(); err == nil {
			for _, c := range children {
				out.Children = append(out.Children, d.build(c, depth+1))
			}

			return out
		}
	}

	if s, ok := cstring(n.Payload); ok {
		out.Text = s
	} else {
		out.Data = preview(n.Payload, d.Bytes)
	}

	return out
}

type dumpStyles struct {
	id, meta, text, data lipgloss.Style
}

func (s dumpStyles) label(n *dumpNode) string {
	label := s.id.Render(n.ID) + " " +
		s.meta.Render(fmt.Sprintf("@%d size=%d", n.Offset, n.Size))

	switch {
	case n.Text != "":
		label += " " + s.text.Render(strconv.Quote(n.Text))
	case n.Data != "":
		label += " " + s.data.Render(n.Data)
	}

	return label
}

func (s dumpStyles) tree(n *dumpNode) *tree.Tree {
	t := tree.Root(s.label(n))

	for _, c := range n.Children {
		if len(c.Children) > 0 {
			t.Child(s.tree(c))
		} else {
			t.Child(s.label(c))
		}
	}

	return t
}

// cstring returns the text of a payload holding a single printable
// NUL-terminated string.
func cstring(b []byte) (string, bool) {
	i := bytes.IndexByte(b, 0)
	if i <= 0 || !isZeroed(b[i:]) {
		return "", false
	}

	for _, c := range b[:i] {
		if c < 0x20 || c > 0x7e {
			return "", false
		}
	}

	return string(b[:i]), true
}

func isZeroed(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}

	return true
}

// preview returns the hex encoding of at most n bytes of b.
func preview(b []byte, n int) string {
	if n <= 0 || len(b) <= n {
		return hex.EncodeToString(b)
	}

	return hex.EncodeToString(b[:n]) + "..."
}
