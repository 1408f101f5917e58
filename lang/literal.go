package lang

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"
)

// Type indicates the type of a literal argument.
type Type int

const (
	// TypeInteger is a number written without a fraction or exponent, kept as
	// an integer because neither float nor string coercion applied.
	TypeInteger Type = iota

	// TypeFloat is a number coerced to, or written as, a float.
	TypeFloat

	// TypeString is a quoted string, or a number coerced to its canonical
	// text.
	TypeString
)

// String returns the name of the literal type.
func (t Type) String() string {
	switch t {
	case TypeInteger:
		return "Integer"
	case TypeFloat:
		return "Float"
	case TypeString:
		return "String"
	default:
		return "Unknown"
	}
}

// Literal is a single argument of an instance.
// Exactly one of Int, Float, Str is meaningful, selected by Type.
type Literal struct {
	Type  Type
	Int   int64
	Float float64
	Str   string
}

// NewInteger returns an integer literal.
func NewInteger(v int64) Literal { return Literal{Type: TypeInteger, Int: v} }

// NewFloat returns a float literal.
func NewFloat(v float64) Literal { return Literal{Type: TypeFloat, Float: v} }

// NewString returns a string literal.
func NewString(s string) Literal { return Literal{Type: TypeString, Str: s} }

// IsNumeric reports whether l is an integer or a float.
func (l Literal) IsNumeric() bool { return l.Type != TypeString }

// Number returns l as a float64.
// String literals holding a decimal number are converted as well, so that
// documents parsed in string mode still yield their numeric fields.
func (l Literal) Number() (float64, bool) {
	switch l.Type {
	case TypeInteger:
		return float64(l.Int), true
	case TypeFloat:
		return l.Float, true
	case TypeString:
		f, err := strconv.ParseFloat(strings.TrimSpace(l.Str), 64)
		if err != nil {
			return 0, false
		}

		return f, true
	default:
		return 0, false
	}
}

// Text returns the canonical text of l: the string itself, the decimal form
// of an integer, or the shortest round-trip form of a float.
func (l Literal) Text() string {
	switch l.Type {
	case TypeInteger:
		return strconv.FormatInt(l.Int, 10)
	case TypeFloat:
		return FormatFloat(l.Float)
	default:
		return l.Str
	}
}

// String returns l as it would be written in source.
// Strings containing a double quote are written with single quotes.
func (l Literal) String() string {
	if l.Type == TypeString {
		if strings.ContainsRune(l.Str, '"') {
			return "'" + l.Str + "'"
		}

		return `"` + l.Str + `"`
	}

	return l.Text()
}

// AppendArg appends the binary encoding of l used in DATA chunks.
//
// Numbers are written as a little-endian float32. Strings are written as
// u32 4, u32 len+1, the bytes, and a NUL terminator.
func (l Literal) AppendArg(b []byte) []byte {
	if l.Type == TypeString {
		b = binary.LittleEndian.AppendUint32(b, 4)
		b = binary.LittleEndian.AppendUint32(b, uint32(len(l.Str)+1))
		b = append(b, l.Str...)

		return append(b, 0)
	}

	f, _ := l.Number()

	return binary.LittleEndian.AppendUint32(b, math.Float32bits(float32(f)))
}

// FormatFloat returns the shortest text that parses back to f, always
// including a decimal point or exponent so it re-reads as a float.
//
// Magnitudes below 1e-4 or at least 1e16 use exponent notation with at least
// two exponent digits, e.g. 1e-05 and 1e+16.
func FormatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}

	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}

	return s
}
