package chunk

import "github.com/ardnew/munge/pkg"

// Predefined errors (sentinel values).
var (
	ErrInvalidID = pkg.NewError("invalid chunk id")
	ErrTruncated = pkg.NewError("truncated chunk")
	ErrClosed    = pkg.NewError("chunk already closed")
)
