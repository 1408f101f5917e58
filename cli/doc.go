// Package cli contains the command line interface for munge.
//
// # Usage
//
// Each munge command compiles sources of one kind:
//
//	munge config -n weather sky.cfg fog.cfg
//	munge world -P ps2 -o build level.wld
//	munge run jobs.hcl fx sky
//
// # Configuration
//
// Flag defaults are read from files in the configuration directory, in
// order of precedence:
//
//   - config.json: flag names as JSON keys
//   - config.yaml or config.yml: nested mappings join their keys
//   - config: a Munge scope written in the munge language
//
// The munge language form is generated by the init command:
//
//	Munge()
//	{
//	  Platform("ps2");
//	  LogLevel("debug");
//	}
//
// Environment variables prefixed with MUNGE_ override file values, and
// command-line flags override both.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp layout (RFC3339, Kitchen, none, etc.)
//   - --log-caller: Include caller information in log output
//   - --[no-]log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o munge .
//
// The --pprof-mode flag selects a profile (allocs, block, clock, cpu,
// goroutine, heap, mem, mutex, thread, trace) and --pprof-dir its output
// directory, by default the pprof directory under the cache directory.
package cli
