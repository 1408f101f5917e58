package munge

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/munge/chunk"
	"github.com/ardnew/munge/lang"
)

// writeFiles creates each named file under dir with the given contents.
func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}

		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func artifactNames(arts []Artifact) []string {
	out := make([]string, 0, len(arts))
	for _, a := range arts {
		out = append(out, filepath.Base(a.Path))
	}

	return out
}

func readChunks(t *testing.T, path string) *chunk.Node {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}

	roots, err := chunk.Parse(data)
	if err != nil || len(roots) != 1 || roots[0].ID != chunk.UCFB {
		t.Fatalf("%s is not a single ucfb chunk: %v", path, err)
	}

	return roots[0]
}

func TestMunger_Config(t *testing.T) {
	src := t.TempDir()
	writeFiles(t, src, map[string]string{
		"Effects/rain.fx": `Effect("rain") { Density(1); }`,
		"Effects/snow.fx": `Effect("snow") { Density(2); }`,
	})

	inputs := []string{
		filepath.Join(src, "Effects", "rain.fx"),
		filepath.Join(src, "Effects", "snow.fx"),
	}

	tests := []struct {
		name  string
		kind  Kind
		opts  []Option
		files []string
		id    chunk.ID
	}{
		{
			name:  "defaults",
			kind:  KindConfig,
			files: []string{"effects.config", "effects.config.req"},
			id:    CNFG,
		},
		{
			name:  "path defaults",
			kind:  KindPath,
			files: []string{"effects.path", "effects.path.req"},
			id:    PATH,
		},
		{
			name:  "overrides",
			kind:  KindConfig,
			opts:  []Option{WithOutputName("fx"), WithExtension(".fxc"), WithChunkID("fx")},
			files: []string{"fx.fxc", "fx.fxc.req"},
			id:    chunk.MustID("fx"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := t.TempDir()

			m, err := New(tt.kind, append(tt.opts, WithOutputDir(out))...)
			if err != nil {
				t.Fatalf("New: %v", err)
			}

			arts, err := m.Run(t.Context(), inputs...)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}

			if got := artifactNames(arts); !slices.Equal(got, tt.files) {
				t.Fatalf("artifacts = %v, want %v", got, tt.files)
			}

			docs := children(t, readChunks(t, arts[0].Path))
			if len(docs) != 2 || docs[0].ID != tt.id {
				t.Errorf("documents = %v, want two %s", ids(docs), tt.id)
			}

			reqs, err := os.ReadFile(arts[1].Path)
			if err != nil {
				t.Fatal(err)
			}

			if got, want := string(reqs), "\r\nucft\r\n{\r\n}"; got != want {
				t.Errorf("req = %q, want %q", got, want)
			}
		})
	}
}

func TestMunger_Cache(t *testing.T) {
	src := t.TempDir()
	writeFiles(t, src, map[string]string{
		"Effects/rain.fx": `Effect("rain") { Density(1); }`,
		"Effects/snow.fx": `Effect("snow") { Density(2); }`,
	})

	inputs := []string{
		filepath.Join(src, "Effects", "rain.fx"),
		filepath.Join(src, "Effects", "snow.fx"),
	}

	cache := lang.NewCache()

	m, err := New(KindConfig, WithOutputDir(t.TempDir()), WithCache(cache))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	run := func() *chunk.Node {
		t.Helper()

		arts, err := m.Run(t.Context(), inputs...)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}

		return readChunks(t, arts[0].Path)
	}

	first := run()

	if cache.Len() != len(inputs) {
		t.Fatalf("cache holds %d documents, want %d", cache.Len(), len(inputs))
	}

	writeFiles(t, src, map[string]string{
		"Effects/rain.fx": `Effect("rain") { Density(1); Wind(3); }`,
	})

	second := run()

	if cache.Len() != len(inputs) {
		t.Errorf("cache holds %d documents after an edit, want %d", cache.Len(), len(inputs))
	}

	if first.Size >= second.Size {
		t.Errorf("edited source was not parsed again: size %d, then %d", first.Size, second.Size)
	}
}

func TestMunger_World(t *testing.T) {
	src := t.TempDir()
	writeFiles(t, src, map[string]string{
		"test.wld": `
LightName("test.lgt");
TerrainName("test.ter");
SkyName("sunny.sky");
Object("crate", "prop_crate") { ChildPosition(1, 2, 3); }
`,
		"test.RGN": `Region("trigger", 0) { Size(1, 1, 1); }`,
		"test.bar": `Barrier("wall") { Corner(0,0,0); Corner(10,0,0); Corner(10,0,5); Corner(0,0,5); Flag(1); }`,
		"other.hnt": `Hint("stray", "1") { }`,
	})

	out := t.TempDir()

	m, err := New(KindWorld, WithOutputDir(out))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	arts, err := m.Run(t.Context(), filepath.Join(src, "test.wld"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := artifactNames(arts); !slices.Equal(got, []string{"test.world", "test.world.req"}) {
		t.Fatalf("artifacts = %v", got)
	}

	wrld, ok := readChunks(t, arts[0].Path).Find(WRLD)
	if !ok {
		t.Fatal("no wrld chunk")
	}

	want := []string{"NAME", "TNAM", "SNAM", "INFO", "regn", "inst", "BARR"}
	if got := ids(children(t, wrld)); !slices.Equal(got, want) {
		t.Errorf("wrld children = %v, want %v", got, want)
	}

	reqs, err := os.ReadFile(arts[1].Path)
	if err != nil {
		t.Fatal(err)
	}

	for _, line := range []string{`"light"`, `"sunny"`, `"prop_crate"`} {
		if !strings.Contains(string(reqs), "\t\t"+line+"\r\n") {
			t.Errorf("req is missing %s:\n%s", line, reqs)
		}
	}
}

func TestMunger_PlanningAndClass(t *testing.T) {
	src := t.TempDir()
	writeFiles(t, src, map[string]string{
		"Level.pln": `
Hub("A") { Pos(0, 0, 1); Radius(1); }
Hub("B") { Pos(1, 0, 1); Radius(1); }
Connection("ab") { Start("A"); End("B"); Flag(1); }
`,
		"tree.odf": "[GameObjectClass]\nClassLabel = \"prop\"\n",
	})

	tests := []struct {
		kind  Kind
		input string
		want  string
		root  chunk.ID
	}{
		{KindPlanning, "Level.pln", "Level.congraph", PLAN},
		{KindODF, "tree.odf", "tree.class", ENTC},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			out := t.TempDir()

			m, err := New(tt.kind, WithOutputDir(out))
			if err != nil {
				t.Fatalf("New: %v", err)
			}

			arts, err := m.Run(t.Context(), filepath.Join(src, tt.input))
			if err != nil {
				t.Fatalf("Run: %v", err)
			}

			if got := artifactNames(arts); !slices.Equal(got, []string{tt.want}) {
				t.Fatalf("artifacts = %v, want [%s]", got, tt.want)
			}

			if _, ok := readChunks(t, arts[0].Path).Find(tt.root); !ok {
				t.Errorf("output has no %s chunk", tt.root)
			}

			if arts[0].Kind != tt.kind {
				t.Errorf("artifact kind = %s, want %s", arts[0].Kind, tt.kind)
			}
		})
	}
}

func TestMunger_Errors(t *testing.T) {
	src := t.TempDir()
	writeFiles(t, src, map[string]string{
		"bad.fx":  `Effect("rain" {`,
		"good.fx": `Effect("rain") { }`,
	})

	t.Run("no input", func(t *testing.T) {
		m, err := New(KindConfig)
		if err != nil {
			t.Fatal(err)
		}

		if _, err := m.Run(t.Context()); !errors.Is(err, ErrNoInput) {
			t.Errorf("Run() error = %v, want ErrNoInput", err)
		}
	})

	t.Run("chunk id", func(t *testing.T) {
		if _, err := New(KindConfig, WithChunkID("toolong")); !errors.Is(err, ErrChunkID) {
			t.Errorf("New error = %v, want ErrChunkID", err)
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		if _, err := New(Kind("mesh")); !errors.Is(err, ErrUnknownKind) {
			t.Errorf("New error = %v, want ErrUnknownKind", err)
		}
	})

	t.Run("parse", func(t *testing.T) {
		out := t.TempDir()

		m, err := New(KindConfig, WithOutputDir(out))
		if err != nil {
			t.Fatal(err)
		}

		bad := filepath.Join(src, "bad.fx")

		_, err = m.Run(t.Context(), filepath.Join(src, "good.fx"), bad)

		var se SourceError
		if !errors.As(err, &se) || se.Path != bad {
			t.Fatalf("Run error = %v, want SourceError for %s", err, bad)
		}

		if !errors.Is(err, lang.ErrParse) {
			t.Errorf("Run error = %v, want ErrParse", err)
		}

		if entries, _ := os.ReadDir(out); len(entries) != 0 {
			t.Errorf("failed run wrote %d files", len(entries))
		}
	})

	t.Run("missing file", func(t *testing.T) {
		m, err := New(KindPlanning, WithOutputDir(t.TempDir()))
		if err != nil {
			t.Fatal(err)
		}

		_, err = m.Run(t.Context(), filepath.Join(src, "missing.pln"))
		if !errors.Is(err, lang.ErrReadInput) {
			t.Errorf("Run error = %v, want ErrReadInput", err)
		}
	})
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.bin")

	for _, content := range []string{"first", "second"} {
		if err := WriteFile(path, []byte(content)); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}

		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}

		if string(got) != content {
			t.Errorf("content = %q, want %q", got, content)
		}
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}

	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, want only the output", len(entries))
	}
}

func TestSidecars(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"map.wld": "",
		"map.RGN": "",
		"map.hnt": "",
		"mapx.bar": "",
		"other.bar": "",
	})

	got, err := Sidecars(filepath.Join(dir, "map.wld"))
	if err != nil {
		t.Fatalf("Sidecars: %v", err)
	}

	want := map[lang.Kind]string{
		lang.KindRegion: filepath.Join(dir, "map.RGN"),
		lang.KindHint:   filepath.Join(dir, "map.hnt"),
	}

	if len(got) != len(want) {
		t.Fatalf("Sidecars = %v, want %v", got, want)
	}

	for k, v := range want {
		if got[k] != v {
			t.Errorf("Sidecars[%s] = %q, want %q", k, got[k], v)
		}
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		input      string
		want       Kind
		suggestion string
	}{
		{"world", KindWorld, ""},
		{"ODF", KindODF, ""},
		{" Planning ", KindPlanning, ""},
		{"wrld", "", "world"},
		{"cnfg", "", "config"},
		{"zzz", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			if tt.want != "" {
				if err != nil || got != tt.want {
					t.Errorf("ParseKind(%q) = (%q, %v), want %q", tt.input, got, err, tt.want)
				}

				return
			}

			if !errors.Is(err, ErrUnknownKind) {
				t.Fatalf("ParseKind(%q) error = %v, want ErrUnknownKind", tt.input, err)
			}

			suggestion := ""

			for _, a := range WrapError(err).Attrs() {
				if a.Key == "suggestion" {
					suggestion = a.Value.String()
				}
			}

			if suggestion != tt.suggestion {
				t.Errorf("suggestion = %q, want %q", suggestion, tt.suggestion)
			}
		})
	}
}

func TestKind_Extension(t *testing.T) {
	tests := map[Kind]string{
		KindConfig:   "config",
		KindPath:     "path",
		KindPlanning: "congraph",
		KindWorld:    "world",
		KindODF:      "class",
	}

	for k, want := range tests {
		if got := k.Extension(); got != want {
			t.Errorf("%s.Extension() = %q, want %q", k, got, want)
		}
	}
}
