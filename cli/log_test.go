package cli

import (
	"testing"

	"github.com/ardnew/munge/log"
)

func TestLogConfig_Scan(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		want   logConfig
		level  log.Level
		format log.Format
	}{
		{
			name:   "separate values",
			args:   []string{"config", "--log-level", "debug", "--log-format", "json", "a.cfg"},
			want:   logConfig{Level: "debug", Format: "json", Pretty: true},
			level:  log.LevelDebug,
			format: log.FormatJSON,
		},
		{
			name:   "assigned values",
			args:   []string{"--log-level=warn", "--log-caller", "--no-log-pretty"},
			want:   logConfig{Level: "warn", Caller: true},
			level:  log.LevelWarn,
			format: log.FormatText,
		},
		{
			name:   "assigned booleans",
			args:   []string{"--log-pretty=false", "--no-log-caller=false"},
			want:   logConfig{Caller: true},
			level:  log.LevelInfo,
			format: log.FormatText,
		},
		{
			name:   "flag value is not consumed",
			args:   []string{"--log-level", "--log-caller"},
			want:   logConfig{Level: "", Caller: true, Pretty: true},
			level:  log.LevelInfo,
			format: log.FormatText,
		},
		{
			name:   "after terminator",
			args:   []string{"fmt", "--", "--log-level=error"},
			want:   logConfig{Pretty: true},
			level:  log.LevelInfo,
			format: log.FormatText,
		},
		{
			name:   "invalid boolean",
			args:   []string{"--log-caller=maybe", "--logger=x"},
			want:   logConfig{Pretty: true},
			level:  log.LevelInfo,
			format: log.FormatText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saved := log.Default()
			t.Cleanup(func() { log.SetDefault(saved) })

			log.SetDefault(log.Make(nil))

			got := logConfig{Pretty: true}
			got.scan(tt.args)

			if got != tt.want {
				t.Errorf("scan = %+v, want %+v", got, tt.want)
			}

			if l := log.Default(); l.Level() != tt.level || l.Format() != tt.format {
				t.Errorf("logger level=%v format=%v, want %v %v", l.Level(), l.Format(), tt.level, tt.format)
			}
		})
	}
}

func TestBoolFlag(t *testing.T) {
	tests := []struct {
		value    string
		assigned bool
		negated  bool
		want     bool
		ok       bool
	}{
		{"", false, false, true, true},
		{"", false, true, false, true},
		{"false", true, false, false, true},
		{"false", true, true, true, true},
		{"1", true, false, true, true},
		{"nope", true, false, false, false},
	}

	for _, tt := range tests {
		got, ok := boolFlag(tt.value, tt.assigned, tt.negated)
		if got != tt.want || ok != tt.ok {
			t.Errorf("boolFlag(%q, %v, %v) = %v, %v; want %v, %v",
				tt.value, tt.assigned, tt.negated, got, ok, tt.want, tt.ok)
		}
	}
}
