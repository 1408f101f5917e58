package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`

// Profiler selects a profiling mode and where its output is written.
// The zero Profiler does nothing.
type Profiler struct {
	Mode  string
	Dir   string
	Quiet bool
}

// Stopper ends a profiling session and flushes its output.
type Stopper interface{ Stop() }

// Start begins profiling. It returns a no-op [Stopper] when Mode is empty,
// when Mode is not one of [Modes], or when built without the pprof tag.
// Stop is always safe to call.
func (p Profiler) Start() Stopper {
	if p.Mode == "" {
		return ignore{}
	}

	return start(p)
}

type ignore struct{}

func (ignore) Stop() {}
