package munge

import (
	"github.com/ardnew/munge/lang"
	"github.com/ardnew/munge/pkg"
)

// Error is the error type returned by this package.
type Error = pkg.Error

// Predefined errors (sentinel values).
//
// Every failure to produce output bytes wraps [ErrEncode]. The cause it wraps
// tells which entity or field was at fault.
var (
	ErrEncode            = pkg.NewError("encode error")
	ErrMissingField      = lang.ErrMissingField
	ErrUnknownHub        = lang.ErrUnknownHub
	ErrUnsupportedEntity = pkg.NewError("unsupported entity")
	ErrChunkID           = pkg.NewError("invalid chunk id")
	ErrIndexRange        = pkg.NewError("index out of range")
	ErrWriteOutput       = pkg.NewError("failed to write output")
	ErrNoInput           = pkg.NewError("no input files")
	ErrManifest          = pkg.NewError("invalid manifest")
	ErrUnknownKind       = pkg.NewError("unknown munge kind")
)

// WrapError converts err into an [Error], returning the first one in its
// chain if there is one.
func WrapError(err error) *Error { return pkg.WrapError(err) }
