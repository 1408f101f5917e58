package munge

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ardnew/munge/chunk"
	"github.com/ardnew/munge/lang"
	"github.com/ardnew/munge/odf"
	"github.com/ardnew/munge/req"
)

// Sidecar extensions attached to a world, matched case-insensitively.
var sidecars = []struct {
	ext  string
	kind lang.Kind
}{
	{".rgn", lang.KindRegion},
	{".hnt", lang.KindHint},
	{".bar", lang.KindBarrier},
}

// Artifact is a file written by a [Munger].
type Artifact struct {
	Kind Kind
	Path string
	Size int
}

// LogValue implements slog.LogValuer.
func (a Artifact) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", a.Kind.String()),
		slog.String("path", a.Path),
		slog.Int("size", a.Size),
	)
}

// Munger compiles input files of one kind into output files.
//
// A Munger holds no state between runs unless given a parse cache with
// [WithCache]. Each file is parsed and encoded in memory; nothing is written
// for a file that fails.
type Munger struct {
	kind Kind
	id   chunk.ID
	opts options
}

// New returns a munger of the given kind.
// An invalid chunk id override is [ErrChunkID].
func New(kind Kind, opts ...Option) (*Munger, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}

	m := &Munger{kind: kind, opts: makeOptions(opts...)}

	switch kind {
	case KindConfig:
		m.id = CNFG
	case KindPath:
		m.id = PATH
	}

	if m.opts.chunkID != "" {
		id, err := chunk.MakeID(m.opts.chunkID)
		if err != nil {
			return nil, ErrChunkID.Wrap(err).With(slog.String("id", m.opts.chunkID))
		}

		m.id = id
	}

	return m, nil
}

// Kind returns the munger kind.
func (m *Munger) Kind() Kind { return m.kind }

// Run munges inputs and returns the files written, in order.
//
// Config and path inputs are merged into one output. Every other kind writes
// one output per input. Run stops at the first failing file, leaving earlier
// outputs in place.
func (m *Munger) Run(ctx context.Context, inputs ...string) ([]Artifact, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInput.With(slog.String("kind", m.kind.String()))
	}

	m.opts.logger.DebugContext(ctx, "munge",
		slog.String("kind", m.kind.String()),
		slog.Int("inputs", len(inputs)),
		slog.Any("options", m.opts))

	if m.kind == KindConfig || m.kind == KindPath {
		return m.runConfig(ctx, inputs)
	}

	var out []Artifact

	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		m.opts.logger.InfoContext(ctx, "munging", slog.String("file", in))

		var (
			arts []Artifact
			err  error
		)

		switch m.kind {
		case KindPlanning:
			arts, err = m.runPlanning(ctx, in)
		case KindWorld:
			arts, err = m.runWorld(ctx, in)
		case KindODF:
			arts, err = m.runClass(ctx, in)
		}

		out = append(out, arts...)

		if err != nil {
			return out, err
		}
	}

	return out, nil
}

func (m *Munger) runConfig(ctx context.Context, inputs []string) ([]Artifact, error) {
	sources := make([]Source, 0, len(inputs))

	for _, in := range inputs {
		m.opts.logger.InfoContext(ctx, "munging", slog.String("file", in))

		doc, err := m.parse(ctx, in, m.kind.Document())
		if err != nil {
			return nil, err
		}

		sources = append(sources, Source{Path: in, Doc: doc})
	}

	data, err := EncodeConfig(m.id, sources...)
	if err != nil {
		return nil, err
	}

	name := m.opts.outputName
	if name == "" {
		name = defaultOutputName(inputs[0])
	}

	ext := m.opts.extension
	if ext == "" {
		ext = m.kind.Extension()
	}

	return m.writeWithRequirements(ctx, name+"."+ext, data, new(req.Database))
}

func (m *Munger) runPlanning(ctx context.Context, in string) ([]Artifact, error) {
	doc, err := m.parse(ctx, in, lang.KindPlanning)
	if err != nil {
		return nil, err
	}

	data, err := EncodePlanning(doc)
	if err != nil {
		return nil, WrapError(err).With(slog.String("path", in))
	}

	art, err := m.write(ctx, lang.Stem(in)+"."+m.kind.Extension(), data)
	if err != nil {
		return nil, err
	}

	return []Artifact{art}, nil
}

func (m *Munger) runWorld(ctx context.Context, in string) ([]Artifact, error) {
	doc, err := m.parse(ctx, in, lang.KindWorld)
	if err != nil {
		return nil, err
	}

	w := lang.NewWorld(doc)

	found, err := Sidecars(in)
	if err != nil {
		return nil, err
	}

	for _, s := range sidecars {
		kind := s.kind

		path, ok := found[kind]
		if !ok {
			continue
		}

		m.opts.logger.DebugContext(ctx, "attach sidecar",
			slog.String("world", in),
			slog.String("kind", kind.String()),
			slog.String("file", path))

		side, err := m.parse(ctx, path, kind)
		if err != nil {
			return nil, err
		}

		w.Attach(kind, side)
	}

	stem := lang.Stem(in)

	data, err := EncodeWorld(stem, w)
	if err != nil {
		return nil, WrapError(err).With(slog.String("path", in))
	}

	return m.writeWithRequirements(ctx, stem+"."+m.kind.Extension(), data, WorldRequirements(w))
}

func (m *Munger) runClass(ctx context.Context, in string) ([]Artifact, error) {
	f, err := os.Open(in)
	if err != nil {
		return nil, lang.ErrReadInput.Wrap(err).With(slog.String("path", in))
	}
	defer f.Close()

	c, err := odf.Parse(f)
	if err != nil {
		return nil, WrapError(err).With(slog.String("path", in))
	}

	stem := lang.Stem(in)

	data, err := EncodeClass(stem, c)
	if err != nil {
		return nil, WrapError(err).With(slog.String("path", in))
	}

	art, err := m.write(ctx, stem+"."+m.kind.Extension(), data)
	if err != nil {
		return nil, err
	}

	return []Artifact{art}, nil
}

// parse reads and parses the file at path as a document of the given kind.
func (m *Munger) parse(ctx context.Context, path string, kind lang.Kind) (*lang.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, lang.ErrReadInput.Wrap(err).With(slog.String("path", path))
	}
	defer f.Close()

	doc, err := lang.ParseReader(ctx, f,
		lang.WithKind(kind),
		lang.WithPlatform(m.opts.platform),
		lang.WithLogger(m.opts.logger),
		lang.WithCache(m.opts.cache, path),
	)
	if err != nil {
		return nil, SourceError{Path: path, Err: err}
	}

	return doc, nil
}

// Sidecars returns the region, hint, and barrier files that accompany the
// world file at path: files in the same directory named after the world's
// stem with a .rgn, .hnt, or .bar suffix in any case.
func Sidecars(path string) (map[lang.Kind]string, error) {
	dir := filepath.Dir(path)
	prefix := lang.Stem(path) + "."

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, lang.ErrReadInput.Wrap(err).With(slog.String("path", dir))
	}

	found := make(map[lang.Kind]string)

	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}

		for _, s := range sidecars {
			if strings.EqualFold(filepath.Ext(e.Name()), s.ext) {
				found[s.kind] = filepath.Join(dir, e.Name())
			}
		}
	}

	return found, nil
}

// defaultOutputName returns the lowercased stem of the directory holding
// path.
func defaultOutputName(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	return strings.ToLower(lang.Stem(filepath.Dir(path)))
}

func (m *Munger) writeWithRequirements(
	ctx context.Context,
	name string,
	data []byte,
	db *req.Database,
) ([]Artifact, error) {
	art, err := m.write(ctx, name, data)
	if err != nil {
		return nil, err
	}

	reqArt, err := m.write(ctx, name+".req", []byte(db.String()))
	if err != nil {
		return []Artifact{art}, err
	}

	return []Artifact{art, reqArt}, nil
}

// write stores data as name in the output directory.
func (m *Munger) write(ctx context.Context, name string, data []byte) (Artifact, error) {
	path := filepath.Join(m.opts.outputDir, name)

	if err := WriteFile(path, data); err != nil {
		return Artifact{}, err
	}

	art := Artifact{Kind: m.kind, Path: path, Size: len(data)}

	m.opts.logger.InfoContext(ctx, "wrote output", slog.Any("artifact", art))

	return art, nil
}

// WriteFile writes data to path atomically: it writes a temporary file in the
// same directory and renames it into place, creating the directory first.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)

	fail := func(err error) error {
		return ErrWriteOutput.Wrap(err).With(slog.String("path", path))
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fail(err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fail(err)
	}

	tmp := f.Name()

	_, err = f.Write(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}

	if err == nil {
		err = os.Chmod(tmp, 0o644)
	}

	if err == nil {
		err = os.Rename(tmp, path)
	}

	if err != nil {
		_ = os.Remove(tmp)

		return fail(err)
	}

	return nil
}

// SourceError reports a failure to parse an input file.
type SourceError struct {
	Path string
	Err  error
}

func (e SourceError) Error() string { return e.Path + ": " + e.Err.Error() }

func (e SourceError) Unwrap() error { return e.Err }

// LogValue implements slog.LogValuer.
func (e SourceError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("path", e.Path),
		slog.Any("error", e.Err),
	)
}
