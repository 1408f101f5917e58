package cmd

import (
	"context"
	"io"

	"github.com/ardnew/munge/cli/cmd/repl"
	"github.com/ardnew/munge/lang"
	"github.com/ardnew/munge/log"
)

// Repl compiles statements interactively.
type Repl struct {
	Kind lang.Kind `default:"generic" help:"Document kind statements are parsed as (${kinds})." short:"k"`

	Source string `arg:"" help:"Source file whose statements start the session." name:"source" optional:"" type:"existingfile"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context, g *Globals) error {
	var cacheDir string
	if ktx := kongContextFrom(ctx); ktx != nil {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	var source io.Reader

	if r.Source != "" {
		f, err := openSource(r.Source)
		if err != nil {
			return err
		}
		defer f.Close()

		source = f
	}

	return repl.Run(ctx, source, repl.Config{
		Kind:     r.Kind,
		Platform: g.Platform,
		CacheDir: cacheDir,
		Logger:   log.Default(),
	})
}
