package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/munge/lang"
)

// Fmt parses a source file and prints it in the chosen format.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as canonical source (default)."`
	JSON   JSON   `cmd:""                    help:"Format as JSON."`
	YAML   YAML   `cmd:""                    help:"Format as YAML."`
	AST    AST    `cmd:""                    help:"Format as abstract syntax tree."`
}

// Input holds the flags and argument common to the fmt subcommands.
type Input struct {
	Kind lang.Kind `default:"generic" help:"Document kind the source is parsed as (${kinds})." short:"k"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// render parses the source and passes the document to fn.
func (f *Input) render(
	ctx context.Context,
	g *Globals,
	format string,
	fn func(*lang.Document, io.Writer) error,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	doc, err := g.parse(ctx, f.Source, f.Kind)
	if err != nil {
		return err
	}

	if err := fn(doc, outputFrom(ctx)); err != nil {
		return lang.WrapError(err).With(slog.String("format", format))
	}

	return nil
}

// Native formats input as canonical source.
type Native struct {
	Indent int `default:"2" help:"Indent width for formatted output" short:"i"`

	Input `embed:""`
}

// Run executes the native command.
func (n *Native) Run(ctx context.Context, g *Globals) error {
	return n.render(ctx, g, "native", func(doc *lang.Document, w io.Writer) error {
		return doc.Format(ctx, w, n.Indent)
	})
}

// JSON formats input as JSON.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output" short:"i"`

	Input `embed:""`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context, g *Globals) error {
	return j.render(ctx, g, "json", func(doc *lang.Document, w io.Writer) error {
		return doc.FormatJSON(ctx, w, j.Indent)
	})
}

// YAML formats input as YAML.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output" short:"i"`

	Input `embed:""`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context, g *Globals) error {
	return y.render(ctx, g, "yaml", func(doc *lang.Document, w io.Writer) error {
		return doc.FormatYAML(ctx, w, y.Indent)
	})
}

// AST prints the parsed entities as a tree.
type AST struct {
	Input `embed:""`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context, g *Globals) error {
	return a.render(ctx, g, "ast", func(doc *lang.Document, w io.Writer) error {
		return doc.Print(w)
	})
}
