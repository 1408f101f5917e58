package lang

import (
	"iter"
	"log/slog"
	"strings"

	"github.com/ardnew/munge/log"
)

// Kind identifies the type of source document being parsed.
// It selects the default number coercion and which entities the document is
// expected to hold.
type Kind int

const (
	// KindGeneric accepts every construct and keeps numbers as written.
	KindGeneric Kind = iota
	KindConfig
	KindPath
	KindPlanning
	KindWorld
	KindRegion
	KindHint
	KindBarrier
)

var kindNames = [...]string{
	KindGeneric:  "generic",
	KindConfig:   "config",
	KindPath:     "path",
	KindPlanning: "planning",
	KindWorld:    "world",
	KindRegion:   "region",
	KindHint:     "hint",
	KindBarrier:  "barrier",
}

// String returns the name of the document kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}

	return kindNames[k]
}

// Kinds returns an iterator over the names of all document kinds.
func Kinds() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, name := range kindNames {
			if !yield(name) {
				return
			}
		}
	}
}

// ParseKind returns the document kind with the given name (case-insensitive).
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(k), nil
		}
	}

	return KindGeneric, ErrInvalidKind.With(slog.String("kind", s))
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	v, err := ParseKind(string(text))
	if err != nil {
		return err
	}

	*k = v

	return nil
}

// coercion returns the default float and string coercion of the kind.
func (k Kind) coercion() (floats, strs bool) {
	switch k {
	case KindConfig, KindPath, KindPlanning:
		return true, false
	case KindWorld, KindHint:
		return false, true
	default:
		return false, false
	}
}

// options holds the settings that affect parse output.
// The logger and cache are kept outside the cache key.
type options struct {
	kind     Kind
	floats   bool
	strings  bool
	platform Platform

	floatsSet  bool
	stringsSet bool
	logger     log.Logger
	cache      *Cache
	cacheName  string
}

// Option configures parsing behavior.
type Option func(*options)

// WithKind selects the document kind and its default number coercion.
func WithKind(kind Kind) Option {
	return func(o *options) {
		o.kind = kind
	}
}

// WithFloats overrides whether numbers are coerced to floats.
func WithFloats(enable bool) Option {
	return func(o *options) {
		o.floats = enable
		o.floatsSet = true
	}
}

// WithStrings overrides whether numbers are coerced to their canonical text.
// String coercion takes precedence over float coercion.
func WithStrings(enable bool) Option {
	return func(o *options) {
		o.strings = enable
		o.stringsSet = true
	}
}

// WithPlatform selects which platform macro blocks are inlined.
func WithPlatform(platform Platform) Option {
	return func(o *options) {
		o.platform = platform
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithCache parses through c, caching the document under name.
// A nil cache disables caching.
func WithCache(c *Cache, name string) Option {
	return func(o *options) {
		o.cache = c
		o.cacheName = name
	}
}

// makeOptions applies opts over the defaults of the selected kind.
func makeOptions(opts ...Option) options {
	o := options{platform: DefaultPlatform}

	for _, opt := range opts {
		opt(&o)
	}

	floats, strs := o.kind.coercion()

	if !o.floatsSet {
		o.floats = floats
	}

	if !o.stringsSet {
		o.strings = strs
	}

	return o
}

// LogValue implements slog.LogValuer.
func (o options) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", o.kind.String()),
		slog.Bool("floats", o.floats),
		slog.Bool("strings", o.strings),
		slog.String("platform", string(o.platform)),
	)
}
