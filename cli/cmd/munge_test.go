package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardnew/munge/lang"
	"github.com/ardnew/munge/munge"
)

func TestConfig_Run(t *testing.T) {
	tests := []struct {
		name    string
		merged  Merged
		want    []string
		wantErr error
	}{
		{
			name:   "named",
			merged: Merged{OutputName: "weather"},
			want:   []string{"weather.config", "weather.config.req"},
		},
		{
			name:   "extension",
			merged: Merged{OutputName: "sky", Extension: ".fx"},
			want:   []string{"sky.fx", "sky.fx.req"},
		},
		{
			name:    "bad chunk id",
			merged:  Merged{OutputName: "sky", ChunkID: "toolong"},
			wantErr: munge.ErrChunkID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			out := t.TempDir()
			src := writeSource(t, "sky.fx", "Color(1, 2, 3); Rain() { Density(0.5); }")

			c := &Config{Merged: tt.merged, Sources: Sources{Sources: []string{src}}}
			err := c.Run(WithOutput(t.Context(), &buf), &Globals{Platform: lang.PlatformPC, OutputDir: out})

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Run() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			lines := strings.Fields(buf.String())
			if len(lines) != len(tt.want) {
				t.Fatalf("printed %q, want %d paths", buf.String(), len(tt.want))
			}

			for i, name := range tt.want {
				path := filepath.Join(out, name)
				if lines[i] != path {
					t.Errorf("line %d = %q, want %q", i, lines[i], path)
				}

				if _, err := os.Stat(path); err != nil {
					t.Errorf("missing output: %v", err)
				}
			}
		})
	}
}

func TestPath_NoInput(t *testing.T) {
	p := &Path{}

	err := p.Run(t.Context(), &Globals{Platform: lang.PlatformPC, OutputDir: t.TempDir()})
	if !errors.Is(err, munge.ErrNoInput) {
		t.Errorf("Run() error = %v, want ErrNoInput", err)
	}
}

func TestRun_Manifest(t *testing.T) {
	dir := t.TempDir()

	files := map[string]string{
		"fx/sky.fx":  "Color(1, 2, 3);",
		"fx/rain.fx": "Density(0.5);",
		"munge.yaml": "jobs:\n  - name: effects\n    kind: config\n    sources: [\"fx/*.fx\"]\n    output_dir: out\n",
	}

	for name, content := range files {
		path := filepath.Join(dir, name)

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}

		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	manifest := Manifest{Manifest: filepath.Join(dir, "munge.yaml")}

	t.Run("all", func(t *testing.T) {
		var buf bytes.Buffer

		r := &Run{Manifest: manifest}
		if err := r.Run(WithOutput(t.Context(), &buf), &Globals{Platform: lang.PlatformPC, OutputDir: "."}); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		want := filepath.Join(dir, "out", "fx.config")
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output %q does not list %s", buf.String(), want)
		}
	})

	t.Run("named", func(t *testing.T) {
		var buf bytes.Buffer

		r := &Run{Manifest: manifest, Jobs: []string{"effects"}}
		if err := r.Run(WithOutput(t.Context(), &buf), &Globals{Platform: lang.PlatformPC, OutputDir: "."}); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		if buf.Len() == 0 {
			t.Error("no artifacts printed")
		}
	})

	t.Run("unknown job", func(t *testing.T) {
		r := &Run{Manifest: manifest, Jobs: []string{"missing"}}

		err := r.Run(t.Context(), &Globals{Platform: lang.PlatformPC, OutputDir: "."})
		if !errors.Is(err, ErrNoJob) {
			t.Errorf("Run() error = %v, want ErrNoJob", err)
		}
	})
}
