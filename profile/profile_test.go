package profile

import (
	"slices"
	"testing"
)

func TestProfiler_Start(t *testing.T) {
	tests := []struct {
		name string
		p    Profiler
	}{
		{"zero", Profiler{}},
		{"unknown mode", Profiler{Mode: "sundial", Dir: t.TempDir(), Quiet: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.p.Start()
			if _, ok := s.(ignore); !ok {
				t.Errorf("Start() = %T, want no-op", s)
			}

			s.Stop()
		})
	}
}

func TestModes(t *testing.T) {
	modes := Modes()

	if !Enabled {
		if len(modes) != 0 {
			t.Errorf("Modes() = %v without profiling support", modes)
		}

		return
	}

	if !slices.IsSorted(modes) || !slices.Contains(modes, "cpu") {
		t.Errorf("Modes() = %v", modes)
	}
}
