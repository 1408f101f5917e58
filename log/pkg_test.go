package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// useDefault replaces the package logger for the duration of the test.
func useDefault(t *testing.T, l Logger) {
	t.Helper()

	saved := Default()
	SetDefault(l)
	t.Cleanup(func() { SetDefault(saved) })
}

func TestPackage_UsesDefault(t *testing.T) {
	var buf bytes.Buffer

	useDefault(t, Make(&buf, WithLevel(LevelTrace), WithFormat(FormatJSON), WithPretty(false)))

	tests := []struct {
		name  string
		log   func(string, ...slog.Attr)
		level string
	}{
		{"trace", Trace, "TRACE"},
		{"debug", Debug, "DEBUG"},
		{"info", Info, "INFO"},
		{"warn", Warn, "WARN"},
		{"error", Error, "ERROR"},
		{"info context", func(m string, a ...slog.Attr) { InfoContext(t.Context(), m, a...) }, "INFO"},
		{"error context", func(m string, a ...slog.Attr) { ErrorContext(t.Context(), m, a...) }, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.log("message", slog.String("key", "value"))

			entry := decode(t, &buf)
			if entry["level"] != tt.level || entry["msg"] != "message" || entry["key"] != "value" {
				t.Errorf("entry = %v", entry)
			}
		})
	}
}

func TestPackage_Config(t *testing.T) {
	var buf bytes.Buffer

	useDefault(t, Make(nil))

	Config(WithOutput(&buf), WithLevel(LevelDebug), WithTimeLayout("none"), WithCaller(true))

	if Default().Level() != LevelDebug {
		t.Errorf("level = %v", Default().Level())
	}

	With(slog.String("job", "fx")).Debug("configured")

	out := buf.String()
	for _, want := range []string{"level=DEBUG", "msg=configured", "job=fx", "pkg_test.go"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestPackage_Caller(t *testing.T) {
	var buf bytes.Buffer

	useDefault(t, Make(&buf, WithCaller(true), WithPretty(false)))

	Warn("here")

	if !strings.Contains(buf.String(), "pkg_test.go") {
		t.Errorf("caller is not the test file: %s", buf.String())
	}
}
