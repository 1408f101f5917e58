// Package profile provides optional runtime profiling for munge.
//
// Profiling wraps [github.com/pkg/profile] and is compiled in only with the
// pprof build tag:
//
//	go build -tags pprof .
//
// Without the tag, [Modes] is empty and [Profiler.Start] does nothing, so
// callers need no build constraints of their own.
//
//	stop := profile.Profiler{Mode: "cpu", Dir: "/tmp/munge"}.Start()
//	defer stop.Stop()
//
// Profiles are written to Dir, named after the mode (cpu.pprof, mem.pprof,
// and so on), and read with go tool pprof:
//
//	go tool pprof -http=: /tmp/munge/cpu.pprof
//
// Built with the tag, the package also registers the [net/http/pprof]
// handlers on the default mux.
package profile
