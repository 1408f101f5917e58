package cmd

import "github.com/ardnew/munge/pkg"

// Error is the error type returned by commands.
type Error = pkg.Error

// Predefined errors (sentinel values).
var (
	ErrOpenSource  = pkg.NewError("open source")
	ErrReadSource  = pkg.NewError("read source")
	ErrWriteConfig = pkg.NewError("write configuration file")
	ErrFileExists  = pkg.NewError("file exists (use --force to overwrite)")
	ErrNotChunked  = pkg.NewError("not a chunked file")
	ErrNoJob       = pkg.NewError("no such job")
)
