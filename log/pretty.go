package log

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles of a pretty handler, bound to its output so that
// colors are dropped when the output is not a color terminal.
type palette struct {
	key, str, num, yes, no, dur, when, null, fault lipgloss.Style
	levels                                         [4]lipgloss.Style
}

func newPalette(cfg config) palette {
	r := lipgloss.NewRenderer(cfg.output)
	base := r.NewStyle().TabWidth(lipgloss.NoTabConversion)
	fg := func(c string) lipgloss.Style { return base.Foreground(lipgloss.Color(c)) }

	return palette{
		key:   fg("8"),
		str:   fg("6"),
		num:   fg("3"),
		yes:   fg("2"),
		no:    fg("1"),
		dur:   fg("5"),
		when:  fg("4"),
		null:  fg("8"),
		fault: fg("9"),
		levels: [4]lipgloss.Style{
			fg("4").Bold(true), // trace, debug
			fg("2").Bold(true), // info
			fg("3").Bold(true), // warn
			fg("1").Bold(true), // error
		},
	}
}

func (p palette) level(l Level) lipgloss.Style {
	switch {
	case l >= LevelError:
		return p.levels[3]
	case l >= LevelWarn:
		return p.levels[2]
	case l >= LevelInfo:
		return p.levels[1]
	default:
		return p.levels[0]
	}
}

// field is a rendered key and value.
type field struct{ key, value string }

// prettyHandler writes colorized records for a terminal: one line of
// key=value pairs for [FormatText], or an indented object for [FormatJSON].
type prettyHandler struct {
	cfg     config
	palette palette
	mu      *sync.Mutex
	attrs   []field
	groups  []string
}

func newPrettyHandler(cfg config) *prettyHandler {
	return &prettyHandler{
		cfg:     cfg,
		palette: newPalette(cfg),
		mu:      &sync.Mutex{},
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.Level(h.cfg.level)
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	p := h.palette
	fields := make([]field, 0, 4+len(h.attrs)+r.NumAttrs())

	if !r.Time.IsZero() {
		if t := h.cfg.formatTime(r.Time); t != "" {
			fields = append(fields, field{slog.TimeKey, p.when.Render(t)})
		}
	}

	level := Level(r.Level)
	fields = append(fields, field{slog.LevelKey, p.level(level).Render(strings.ToUpper(level.String()))})

	if h.cfg.caller && r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		src := fmt.Sprintf("%s:%d", filepath.Base(frame.File), frame.Line)
		fields = append(fields, field{slog.SourceKey, p.str.Render(src)})
	}

	fields = append(fields, field{slog.MessageKey, p.str.Render(r.Message)})
	fields = append(fields, h.attrs...)

	prefix := h.prefix()

	r.Attrs(func(a slog.Attr) bool {
		fields = h.appendAttr(fields, prefix, a)

		return true
	})

	var buf bytes.Buffer

	if h.cfg.format == FormatJSON {
		h.writeObject(&buf, fields)
	} else {
		h.writeLine(&buf, fields)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.cfg.output.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	c := *h
	c.attrs = slices.Clip(h.attrs)

	for _, a := range attrs {
		c.attrs = c.appendAttr(c.attrs, h.prefix(), a)
	}

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.groups = append(slices.Clip(h.groups), name)

	return &c
}

// prefix returns the dotted group path prepended to attribute keys.
func (h *prettyHandler) prefix() string {
	if len(h.groups) == 0 {
		return ""
	}

	return strings.Join(h.groups, ".") + "."
}

// appendAttr renders a, flattening groups into dotted keys.
func (h *prettyHandler) appendAttr(fields []field, prefix string, a slog.Attr) []field {
	a.Value = a.Value.Resolve()

	if a.Equal(slog.Attr{}) {
		return fields
	}

	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}

		for _, g := range a.Value.Group() {
			fields = h.appendAttr(fields, prefix, g)
		}

		return fields
	}

	return append(fields, field{prefix + a.Key, h.value(a.Value)})
}

func (h *prettyHandler) value(v slog.Value) string {
	p := h.palette

	switch v.Kind() {
	case slog.KindString:
		return p.str.Render(v.String())

	case slog.KindInt64, slog.KindUint64, slog.KindFloat64:
		return p.num.Render(v.String())

	case slog.KindBool:
		if v.Bool() {
			return p.yes.Render("true")
		}

		return p.no.Render("false")

	case slog.KindDuration:
		return p.dur.Render(v.Duration().String())

	case slog.KindTime:
		return p.when.Render(v.Time().Format(time.RFC3339))

	case slog.KindAny:
		switch x := v.Any().(type) {
		case nil:
			return p.null.Render("null")
		case error:
			return p.fault.Render(x.Error())
		default:
			return p.str.Render(fmt.Sprint(x))
		}

	default:
		return p.str.Render(v.String())
	}
}

func (h *prettyHandler) writeLine(buf *bytes.Buffer, fields []field) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(h.palette.key.Render(f.key))
		buf.WriteByte('=')
		buf.WriteString(f.value)
	}

	buf.WriteByte('\n')
}

func (h *prettyHandler) writeObject(buf *bytes.Buffer, fields []field) {
	buf.WriteString("{\n")

	for i, f := range fields {
		if i > 0 {
			buf.WriteString(",\n")
		}

		buf.WriteString("  ")
		buf.WriteString(h.palette.key.Render(f.key))
		buf.WriteString(": ")
		buf.WriteString(f.value)
	}

	buf.WriteString("\n}\n")
}
