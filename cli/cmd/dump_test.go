package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardnew/munge/chunk"
)

func writeChunks(t *testing.T) string {
	t.Helper()

	root := chunk.New(chunk.UCFB)

	err := root.Nest(chunk.MustID("skyf"), func(w *chunk.Writer) error {
		if err := w.Nest(chunk.NAME, func(c *chunk.Writer) error {
			c.WriteCString("sky")

			return nil
		}); err != nil {
			return err
		}

		return w.Nest(chunk.DATA, func(c *chunk.Writer) error {
			_, _ = c.Write([]byte{0xde, 0xad, 0xbe, 0xef, 0x01})

			return nil
		})
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := root.Close(); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "sky.config")
	if err := os.WriteFile(path, root.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestDump_Run(t *testing.T) {
	path := writeChunks(t)

	tests := []struct {
		name   string
		dump   Dump
		want   []string
		absent []string
	}{
		{
			name: "tree",
			dump: Dump{Bytes: 16},
			want: []string{"ucfb @0", "skyf @8", "NAME @16 size=4", `"sky"`, "DATA", "deadbeef01"},
		},
		{
			name: "truncated",
			dump: Dump{Bytes: 2},
			want: []string{"dead..."},
		},
		{
			name:   "depth",
			dump:   Dump{Depth: 2, Bytes: 16},
			want:   []string{"skyf"},
			absent: []string{"NAME"},
		},
		{
			name: "yaml",
			dump: Dump{YAML: true, Bytes: 16},
			want: []string{"id: ucfb", "id: NAME", "offset: 16", "text: sky", "data: deadbeef01"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			d := tt.dump
			d.File = path

			if err := d.Run(WithOutput(t.Context(), &buf)); err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("output does not contain %q:\n%s", w, buf.String())
				}
			}

			for _, a := range tt.absent {
				if strings.Contains(buf.String(), a) {
					t.Errorf("output contains %q:\n%s", a, buf.String())
				}
			}
		})
	}
}

func TestDump_NotChunked(t *testing.T) {
	path := writeSource(t, "text.cfg", "Color(1, 2, 3);")

	d := &Dump{File: path}
	if err := d.Run(t.Context()); !errors.Is(err, ErrNotChunked) {
		t.Errorf("Run() error = %v, want ErrNotChunked", err)
	}
}

func TestCString(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
		ok   bool
	}{
		{"terminated", []byte("sky\x00"), "sky", true},
		{"padded", []byte("sky\x00\x00\x00\x00"), "sky", true},
		{"unterminated", []byte("sky"), "", false},
		{"empty", []byte{0}, "", false},
		{"binary", []byte{0x01, 0x02, 0x00}, "", false},
		{"trailing data", []byte("a\x00b"), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := cstring(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("cstring(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}
