package munge

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/goccy/go-yaml"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/ardnew/munge/lang"
)

// Manifest is an ordered list of munge jobs.
//
// A manifest is written in YAML:
//
//	jobs:
//	  - name: common
//	    kind: config
//	    sources: ["common/*.fx"]
//	    output_dir: out
//	    when: platform == "pc"
//
// or in HCL, where the active platform is available as a variable:
//
//	job "common" {
//	  kind       = "config"
//	  sources    = ["common/*.fx"]
//	  output_dir = "out/${platform}"
//	}
//
// Relative source patterns and output directories resolve against the
// directory holding the manifest.
type Manifest struct {
	Jobs []*Job `hcl:"job,block" yaml:"jobs"`

	dir string
}

// Job is one munger invocation over a set of source files.
//
// When is an optional expression over [Env] that each source file must
// satisfy.
type Job struct {
	Name       string   `hcl:"name,label"           yaml:"name"`
	Kind       string   `hcl:"kind"                 yaml:"kind"`
	Sources    []string `hcl:"sources"              yaml:"sources"`
	OutputDir  string   `hcl:"output_dir,optional"  yaml:"output_dir"`
	OutputName string   `hcl:"output_name,optional" yaml:"output_name"`
	ChunkID    string   `hcl:"chunk_id,optional"    yaml:"chunk_id"`
	Extension  string   `hcl:"extension,optional"   yaml:"extension"`
	When       string   `hcl:"when,optional"        yaml:"when"`

	kind    Kind
	program *vm.Program
}

// Env is the environment a job's When expression is evaluated against, once
// per matched source file. File is the path of the source and Ext its
// lowercased extension without the dot.
type Env struct {
	Platform string `expr:"platform"`
	Kind     string `expr:"kind"`
	File     string `expr:"file"`
	Ext      string `expr:"ext"`
	Stem     string `expr:"stem"`
}

// LoadManifest reads the manifest at path. The file extension selects the
// format: .yaml or .yml for YAML, .hcl for HCL. platform is visible to HCL
// expressions as the variable platform.
func LoadManifest(ctx context.Context, path string, platform lang.Platform) (*Manifest, error) {
	var (
		m   Manifest
		err error
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = decodeYAML(ctx, path, &m)
	case ".hcl":
		err = decodeHCL(path, platform, &m)
	default:
		return nil, ErrManifest.With(
			slog.String("path", path),
			slog.String("error", "unsupported extension "+ext),
		)
	}

	if err != nil {
		return nil, err
	}

	m.dir = filepath.Dir(path)

	if err := m.compile(); err != nil {
		return nil, WrapError(err).With(slog.String("path", path))
	}

	return &m, nil
}

func decodeYAML(ctx context.Context, path string, m *Manifest) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return ErrManifest.Wrap(err).With(slog.String("path", path))
	}

	if err := yaml.UnmarshalContext(ctx, b, m, yaml.Strict()); err != nil {
		return ErrManifest.Wrap(err).With(slog.String("path", path))
	}

	return nil
}

func decodeHCL(path string, platform lang.Platform, m *Manifest) error {
	file, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return ErrManifest.Wrap(diags).With(slog.String("path", path))
	}

	platforms := make([]cty.Value, 0, len(lang.Platforms()))
	for _, p := range lang.Platforms() {
		platforms = append(platforms, cty.StringVal(string(p)))
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"platform":  cty.StringVal(string(platform)),
			"platforms": cty.ListVal(platforms),
		},
	}

	if diags := gohcl.DecodeBody(file.Body, evalCtx, m); diags.HasErrors() {
		return ErrManifest.Wrap(diags).With(slog.String("path", path))
	}

	return nil
}

// compile validates every job and compiles its predicate.
func (m *Manifest) compile() error {
	for i, j := range m.Jobs {
		if j.Name == "" {
			j.Name = "job" + strconv.Itoa(i+1)
		}

		k, err := ParseKind(j.Kind)
		if err != nil {
			return ErrManifest.Wrap(err).With(slog.String("job", j.Name))
		}

		j.kind = k

		if len(j.Sources) == 0 {
			return ErrManifest.With(
				slog.String("job", j.Name),
				slog.String("error", "no sources"),
			)
		}

		if j.When == "" {
			continue
		}

		j.program, err = expr.Compile(j.When, expr.Env(Env{}), expr.AsBool())
		if err != nil {
			return ErrManifest.Wrap(err).With(
				slog.String("job", j.Name),
				slog.String("when", j.When),
			)
		}
	}

	return nil
}

// Dir returns the directory relative paths resolve against.
func (m *Manifest) Dir() string { return m.dir }

// Job returns the job with the given name.
func (m *Manifest) Job(name string) (*Job, bool) {
	for _, j := range m.Jobs {
		if j.Name == name {
			return j, true
		}
	}

	return nil, false
}

// Run runs every job in order with opts applied before each job's own
// settings. It stops at the first failing job.
func (m *Manifest) Run(ctx context.Context, opts ...Option) ([]Artifact, error) {
	var out []Artifact

	for _, j := range m.Jobs {
		arts, err := m.RunJob(ctx, j, opts...)
		out = append(out, arts...)

		if err != nil {
			return out, err
		}
	}

	return out, nil
}

// RunJob runs a single job of m. A job whose sources match no files is
// skipped.
func (m *Manifest) RunJob(ctx context.Context, j *Job, opts ...Option) ([]Artifact, error) {
	o := makeOptions(opts...)

	files, err := m.Files(j, o.platform)
	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		o.logger.WarnContext(ctx, "no input files",
			slog.String("job", j.Name),
			slog.Any("sources", j.Sources))

		return nil, nil
	}

	o.logger.DebugContext(ctx, "run job",
		slog.String("job", j.Name),
		slog.String("kind", j.kind.String()),
		slog.Int("files", len(files)))

	outDir := j.OutputDir
	if outDir == "" {
		outDir = o.outputDir
	}

	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(m.dir, outDir)
	}

	mg, err := New(j.kind, slices.Concat(opts, []Option{
		WithOutputDir(outDir),
		WithOutputName(j.OutputName),
		WithChunkID(j.ChunkID),
		WithExtension(j.Extension),
	})...)
	if err != nil {
		return nil, WrapError(err).With(slog.String("job", j.Name))
	}

	return mg.Run(ctx, files...)
}

// Files returns the source files of j that satisfy its predicate on the
// given platform, in pattern order without duplicates.
func (m *Manifest) Files(j *Job, platform lang.Platform) ([]string, error) {
	var files []string

	for _, pattern := range j.Sources {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(m.dir, pattern)
		}

		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, ErrManifest.Wrap(err).With(
				slog.String("job", j.Name),
				slog.String("pattern", pattern),
			)
		}

		for _, f := range matches {
			if slices.Contains(files, f) {
				continue
			}

			ok, err := j.Match(f, platform)
			if err != nil {
				return nil, err
			}

			if ok {
				files = append(files, f)
			}
		}
	}

	return files, nil
}

// Match reports whether file satisfies the job's predicate on platform.
// A job without a predicate matches every file.
func (j *Job) Match(file string, platform lang.Platform) (bool, error) {
	if j.program == nil {
		return true, nil
	}

	env := Env{
		Platform: string(platform),
		Kind:     j.kind.String(),
		File:     file,
		Ext:      strings.ToLower(strings.TrimPrefix(filepath.Ext(file), ".")),
		Stem:     lang.Stem(file),
	}

	out, err := vm.Run(j.program, env)
	if err != nil {
		return false, ErrManifest.Wrap(err).With(
			slog.String("job", j.Name),
			slog.String("file", file),
		)
	}

	ok, _ := out.(bool)

	return ok, nil
}

// Owns reports whether file is one of the job's sources on platform, or a
// sidecar of one when j munges worlds.
func (m *Manifest) Owns(j *Job, file string, platform lang.Platform) bool {
	files, err := m.Files(j, platform)
	if err != nil {
		return false
	}

	abs, err := filepath.Abs(file)
	if err != nil {
		return false
	}

	for _, f := range files {
		fa, err := filepath.Abs(f)
		if err != nil {
			continue
		}

		if fa == abs {
			return true
		}

		if j.kind == KindWorld &&
			filepath.Dir(fa) == filepath.Dir(abs) &&
			strings.HasPrefix(filepath.Base(abs), lang.Stem(fa)+".") {
			return true
		}
	}

	return false
}
