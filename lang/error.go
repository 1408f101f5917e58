package lang

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/ardnew/munge/pkg"
)

// Error is the structured error type returned by this package.
type Error = pkg.Error

// Predefined errors (sentinel values).
var (
	ErrParse              = pkg.NewError("parse error")
	ErrReadInput          = pkg.NewError("failed to read input")
	ErrUnexpectedEOF      = pkg.NewError("unexpected end of input")
	ErrUnexpectedChar     = pkg.NewError("unexpected character")
	ErrReservedKeyword    = pkg.NewError("reserved keyword")
	ErrUnterminatedString = pkg.NewError("unterminated string")
	ErrInvalidNumber      = pkg.NewError("invalid number")
	ErrInvalidPlatform    = pkg.NewError("invalid platform")
	ErrInvalidKind        = pkg.NewError("invalid document kind")
	ErrMissingField       = pkg.NewError("missing required field")
	ErrUnknownHub         = pkg.NewError("unknown hub")
)

// WrapError converts err into an [Error].
func WrapError(err error) *Error { return pkg.WrapError(err) }

// ParseError reports where parsing stopped and why.
// When Source is set, the message includes the offending line and a caret
// under the failing column.
type ParseError struct {
	Err    error
	Source string
	Pos    Position
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	var buf strings.Builder

	buf.WriteString("parse error at line ")
	buf.WriteString(strconv.Itoa(e.Pos.Line))
	buf.WriteString(", column ")
	buf.WriteString(strconv.Itoa(e.Pos.Column))

	if e.Err != nil {
		buf.WriteString(": ")
		buf.WriteString(e.Err.Error())
	}

	if snippet := e.Snippet(); snippet != "" {
		buf.WriteByte('\n')
		buf.WriteString(snippet)
	}

	return buf.String()
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error { return e.Err }

// Is reports whether target is [ErrParse].
func (e *ParseError) Is(target error) bool { return ErrParse.Is(target) }

// LogValue implements slog.LogValuer.
func (e *ParseError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("error", ErrParse.Error()),
		slog.Int("line", e.Pos.Line),
		slog.Int("column", e.Pos.Column),
	}

	if e.Err != nil {
		attrs = append(attrs, slog.Any("cause", e.Err))
	}

	return slog.GroupValue(attrs...)
}

// Snippet returns the source line containing the error followed by a caret
// marking the column, or "" if the source is unavailable.
func (e *ParseError) Snippet() string {
	if e.Source == "" || e.Pos.Line <= 0 {
		return ""
	}

	lines := strings.Split(e.Source, "\n")
	if e.Pos.Line > len(lines) {
		return ""
	}

	line := strings.TrimRight(lines[e.Pos.Line-1], "\r")
	num := strconv.Itoa(e.Pos.Line)

	var src strings.Builder

	src.WriteString("  ")
	src.WriteString(num)
	src.WriteString(" | ")
	src.WriteString(line)
	src.WriteByte('\n')

	// 2 leading spaces + " | "
	src.WriteString(strings.Repeat(" ", len(num)+5))

	if e.Pos.Column > 1 {
		src.WriteString(strings.Repeat(" ", e.Pos.Column-1))
	}

	src.WriteString("^")

	return src.String()
}
