package repl

import "github.com/ardnew/munge/pkg"

// Sentinel errors.
var (
	ErrOutOfBounds  = pkg.NewError("index out of range")
	ErrEditDeclined = pkg.NewError("decline edit")
	ErrUnknownCmd   = pkg.NewError("unknown command")
)
