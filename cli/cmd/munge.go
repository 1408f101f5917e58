package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/munge/log"
	"github.com/ardnew/munge/munge"
)

// Sources is the positional argument of every munge command.
type Sources struct {
	Sources []string `arg:"" help:"Source files to compile." name:"source" type:"existingfile"`
}

// Merged holds the flags of munge commands that merge their sources into a
// single output file.
type Merged struct {
	OutputName string `help:"Base name of the output file (default: name of the first source's directory)." short:"n"`
	ChunkID    string `help:"Tag of each document chunk, at most four characters."                            name:"chunk-id"`
	Extension  string `help:"Extension of the output file."                                                    short:"e"`
}

func (m Merged) options() []munge.Option {
	return []munge.Option{
		munge.WithOutputName(m.OutputName),
		munge.WithChunkID(m.ChunkID),
		munge.WithExtension(m.Extension),
	}
}

// Config compiles config sources into one chunked config file.
type Config struct {
	Merged  `embed:""`
	Sources `embed:""`
}

// Run executes the config command.
func (c *Config) Run(ctx context.Context, g *Globals) error {
	return run(ctx, munge.KindConfig, c.Sources.Sources, append(g.options(), c.Merged.options()...)...)
}

// Path compiles path sources into one chunked path file.
type Path struct {
	Merged  `embed:""`
	Sources `embed:""`
}

// Run executes the path command.
func (p *Path) Run(ctx context.Context, g *Globals) error {
	return run(ctx, munge.KindPath, p.Sources.Sources, append(g.options(), p.Merged.options()...)...)
}

// Planning compiles each planning source into a navigation graph file.
type Planning struct {
	Sources `embed:""`
}

// Run executes the planning command.
func (p *Planning) Run(ctx context.Context, g *Globals) error {
	return run(ctx, munge.KindPlanning, p.Sources.Sources, g.options()...)
}

// World compiles each world source, with its region, hint, and barrier
// sidecars, into a world file and its requirements file.
type World struct {
	Sources `embed:""`
}

// Run executes the world command.
func (w *World) Run(ctx context.Context, g *Globals) error {
	return run(ctx, munge.KindWorld, w.Sources.Sources, g.options()...)
}

// ODF compiles each object definition into a class file.
type ODF struct {
	Sources `embed:""`
}

// Run executes the odf command.
func (o *ODF) Run(ctx context.Context, g *Globals) error {
	return run(ctx, munge.KindODF, o.Sources.Sources, g.options()...)
}

// run compiles inputs with a munger of the given kind and lists the files it
// wrote.
func run(ctx context.Context, kind munge.Kind, inputs []string, opts ...munge.Option) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	m, err := munge.New(kind, opts...)
	if err != nil {
		return err
	}

	arts, err := m.Run(ctx, inputs...)

	printArtifacts(ctx, arts)

	if err != nil {
		return err
	}

	log.DebugContext(ctx, "munge complete",
		slog.String("kind", kind.String()),
		slog.Int("inputs", len(inputs)),
		slog.Int("outputs", len(arts)))

	return nil
}

func printArtifacts(ctx context.Context, arts []munge.Artifact) {
	w := outputFrom(ctx)

	for _, a := range arts {
		fmt.Fprintln(w, a.Path)
	}
}
