package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ardnew/munge/lang"
	"github.com/ardnew/munge/log"
	"github.com/ardnew/munge/munge"
)

// Globals are the flags shared by every command.
type Globals struct {
	Platform  lang.Platform `default:"pc" help:"Target platform whose macro blocks are inlined (${platforms})." short:"P"`
	OutputDir string        `default:"."  help:"Directory output files are written to."                        short:"o" type:"path"`
}

// options returns the munger options selected by g.
func (g *Globals) options() []munge.Option {
	return []munge.Option{
		munge.WithPlatform(g.Platform),
		munge.WithOutputDir(g.OutputDir),
		munge.WithLogger(log.Default()),
	}
}

// parse reads and parses the source at path, or stdin for "-".
func (g *Globals) parse(ctx context.Context, path string, kind lang.Kind) (*lang.Document, error) {
	r, err := openSource(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	doc, err := lang.ParseReader(ctx, r,
		lang.WithKind(kind),
		lang.WithPlatform(g.Platform),
		lang.WithLogger(log.Default()),
	)
	if err != nil {
		return nil, munge.SourceError{Path: path, Err: err}
	}

	return doc, nil
}

type (
	contextKey struct{}
	outputKey  struct{}
)

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, _ := ctx.Value(contextKey{}).(*kong.Context)

	return ktx
}

// WithOutput returns a new context.Context whose commands write to w.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stdout
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// openSource opens the file at path, or stdin for "-".
func openSource(path string) (io.ReadCloser, error) {
	if path == stdinSource {
		return io.NopCloser(os.Stdin), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, ErrOpenSource.Wrap(err).With(slog.String("path", path))
	}

	return f, nil
}

// readSource returns the contents of the file at path, or of stdin for "-".
func readSource(path string) ([]byte, error) {
	r, err := openSource(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrReadSource.Wrap(err).With(slog.String("path", path))
	}

	return data, nil
}
