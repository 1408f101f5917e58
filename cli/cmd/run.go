package cmd

import (
	"context"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ardnew/munge/log"
	"github.com/ardnew/munge/munge"
)

// Manifest is the positional argument of the manifest commands.
type Manifest struct {
	Manifest string `arg:"" help:"Build manifest (.yaml, .yml, or .hcl)." name:"manifest" type:"existingfile"`
}

// load reads the manifest and returns it with the munger options selected by
// g. A non-default output directory is made absolute so that it is not
// resolved against the manifest directory.
func (m *Manifest) load(ctx context.Context, g *Globals) (*munge.Manifest, []munge.Option, error) {
	man, err := munge.LoadManifest(ctx, m.Manifest, g.Platform)
	if err != nil {
		return nil, nil, err
	}

	opts := []munge.Option{
		munge.WithPlatform(g.Platform),
		munge.WithLogger(log.Default()),
	}

	if g.OutputDir != "" && g.OutputDir != "." {
		dir, err := filepath.Abs(g.OutputDir)
		if err != nil {
			return nil, nil, err
		}

		opts = append(opts, munge.WithOutputDir(dir))
	}

	return man, opts, nil
}

// Run compiles the jobs of a build manifest.
type Run struct {
	Manifest `embed:""`

	Jobs []string `arg:"" help:"Jobs to run (default: all, in order)." name:"job" optional:""`
}

// Run executes the run command.
func (r *Run) Run(ctx context.Context, g *Globals) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	man, opts, err := r.load(ctx, g)
	if err != nil {
		return err
	}

	if len(r.Jobs) == 0 {
		arts, err := man.Run(ctx, opts...)
		printArtifacts(ctx, arts)

		return err
	}

	for _, name := range r.Jobs {
		job, ok := man.Job(name)
		if !ok {
			return ErrNoJob.With(
				slog.String("job", name),
				slog.String("manifest", r.Manifest.Manifest),
			)
		}

		arts, err := man.RunJob(ctx, job, opts...)
		printArtifacts(ctx, arts)

		if err != nil {
			return err
		}
	}

	return nil
}

// Watch compiles the jobs of a build manifest, then recompiles the jobs whose
// sources change until interrupted.
type Watch struct {
	Manifest `embed:""`

	Debounce time.Duration `help:"Quiet period after a change before rebuilding." short:"d" default:"${debounce}"`
}

// Run executes the watch command.
func (w *Watch) Run(ctx context.Context, g *Globals) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	man, opts, err := w.load(ctx, g)
	if err != nil {
		return err
	}

	log.InfoContext(ctx, "watching",
		slog.String("manifest", w.Manifest.Manifest),
		slog.Any("dirs", man.WatchDirs()),
		slog.Duration("debounce", w.Debounce))

	return man.Watch(ctx, w.Debounce, opts...)
}
