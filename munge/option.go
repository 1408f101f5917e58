package munge

import (
	"log/slog"
	"strings"

	"github.com/ardnew/munge/lang"
	"github.com/ardnew/munge/log"
)

// options holds the settings of a [Munger].
type options struct {
	outputDir  string
	outputName string
	chunkID    string
	extension  string
	platform   lang.Platform
	logger     log.Logger
	cache      *lang.Cache
}

// Option configures a [Munger].
type Option func(*options)

// WithOutputDir sets the directory output files are written to.
// The default is the current directory.
func WithOutputDir(dir string) Option {
	return func(o *options) {
		o.outputDir = dir
	}
}

// WithOutputName sets the base name of the merged config or path output.
// The default is the lowercased name of the first input's directory.
func WithOutputName(name string) Option {
	return func(o *options) {
		o.outputName = name
	}
}

// WithChunkID overrides the tag of each document chunk in a config or path
// output. The tag is at most four ASCII characters.
func WithChunkID(id string) Option {
	return func(o *options) {
		o.chunkID = id
	}
}

// WithExtension overrides the extension of a config or path output.
// A leading dot is optional.
func WithExtension(ext string) Option {
	return func(o *options) {
		o.extension = strings.TrimPrefix(ext, ".")
	}
}

// WithPlatform selects which platform macro blocks are inlined.
func WithPlatform(platform lang.Platform) Option {
	return func(o *options) {
		o.platform = platform
	}
}

// WithLogger sets the structured logger.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithCache keeps parsed documents in cache, keyed by input path, so that
// unchanged inputs are not parsed again across runs.
func WithCache(cache *lang.Cache) Option {
	return func(o *options) {
		o.cache = cache
	}
}

func makeOptions(opts ...Option) options {
	o := options{
		outputDir: ".",
		platform:  lang.DefaultPlatform,
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// LogValue implements slog.LogValuer.
func (o options) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("output_dir", o.outputDir),
		slog.String("output_name", o.outputName),
		slog.String("chunk_id", o.chunkID),
		slog.String("extension", o.extension),
		slog.String("platform", string(o.platform)),
	)
}
