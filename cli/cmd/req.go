package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ardnew/munge/pkg"
	"github.com/ardnew/munge/req"
)

// Req parses a requirements file and prints it normalized.
type Req struct {
	File string `arg:"" default:"-" help:"Requirements file, or '-' for stdin." name:"file"`
}

// Run executes the req command.
func (r *Req) Run(ctx context.Context) error {
	src, err := openSource(r.File)
	if err != nil {
		return err
	}
	defer src.Close()

	db, err := req.Parse(src)
	if err != nil {
		return pkg.WrapError(err).With(slog.String("file", r.File))
	}

	w := outputFrom(ctx)

	if _, err := io.WriteString(w, db.String()); err != nil {
		return err
	}

	_, err = fmt.Fprint(w, req.Newline)

	return err
}
