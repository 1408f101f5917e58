// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// Settings are applied with functional options when a [Logger] is made and
// never change afterwards. [Logger.Wrap] derives a logger with different
// settings.
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("kitchen"),
//		log.WithCaller(true))
//
//	logger.Info("munged", slog.String("job", "effects"))
//
// # Levels
//
// [LevelTrace] sits below [LevelDebug]. [ParseLevel] accepts the level
// names in any case, with an optional offset such as "info+2".
//
// # Formats
//
// [FormatText] writes key=value pairs and [FormatJSON] writes objects.
// With [WithPretty] (the default), records are colorized when the output is
// a terminal that supports it; otherwise the same layout is written without
// escape sequences. Pretty JSON is indented for reading, not parsing, so
// disable pretty output where records are consumed by programs.
//
// # Package Logger
//
// The package-level functions log through [Default], which writes to
// standard error until replaced by [SetDefault] or reconfigured by
// [Config]. Context-unaware functions use [DefaultContextProvider].
package log
