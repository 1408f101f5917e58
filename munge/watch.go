package munge

import (
	"context"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ardnew/munge/lang"
)

// DefaultDebounce is how long a watch waits for changes to settle before
// rebuilding.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reports files created, written, renamed, or removed in a set of
// directories. Hidden files, including the temporary files written by
// [WriteFile], are ignored.
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
}

// NewWatcher watches each of dirs.
func NewWatcher(dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()

			return nil, err
		}
	}

	watcher := &Watcher{
		watcher: w,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}

	go watcher.run()

	return watcher, nil
}

// Close stops the watcher and closes its channels.
func (w *Watcher) Close() error {
	var err error

	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})

	return err
}

func (w *Watcher) run() {
	defer close(w.Events)
	defer close(w.Errors)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}

			if strings.HasPrefix(filepath.Base(event.Name), ".") {
				continue
			}

			select {
			case w.Events <- event.Name:
			case <-w.closeCh:
				return
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}

			select {
			case w.Errors <- err:
			default:
			}

		case <-w.closeCh:
			return
		}
	}
}

// WatchDirs returns the directories holding the sources of every job: the
// longest leading part of each pattern without glob metacharacters.
func (m *Manifest) WatchDirs() []string {
	seen := make(map[string]bool)

	for _, j := range m.Jobs {
		for _, pattern := range j.Sources {
			if !filepath.IsAbs(pattern) {
				pattern = filepath.Join(m.dir, pattern)
			}

			dir := filepath.Dir(pattern)
			for strings.ContainsAny(dir, `*?[\`) && dir != filepath.Dir(dir) {
				dir = filepath.Dir(dir)
			}

			seen[dir] = true
		}
	}

	return slices.Sorted(maps.Keys(seen))
}

// Watch runs every job, then reruns the jobs owning each changed source
// until ctx is done. Changes are collected until none arrive for debounce.
// Job failures are logged and do not stop the watch.
//
// Parsed sources are cached for the life of the watch, and each changed file
// is evicted before its jobs rerun.
func (m *Manifest) Watch(ctx context.Context, debounce time.Duration, opts ...Option) error {
	cache := lang.NewCache()
	opts = append(slices.Clip(opts), WithCache(cache))
	o := makeOptions(opts...)

	w, err := NewWatcher(m.WatchDirs()...)
	if err != nil {
		return ErrManifest.Wrap(err).With(slog.String("dir", m.dir))
	}
	defer w.Close()

	if _, err := m.Run(ctx, opts...); err != nil {
		o.logger.ErrorContext(ctx, "build failed", slog.Any("error", err))
	}

	timer := time.NewTimer(debounce)
	timer.Stop()

	pending := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return nil

		case file, ok := <-w.Events:
			if !ok {
				return nil
			}

			pending[file] = true

			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if ok {
				o.logger.WarnContext(ctx, "watch error", slog.Any("error", err))
			}

		case <-timer.C:
			files := slices.Sorted(maps.Keys(pending))
			cache.Evict(files...)
			m.rebuild(ctx, files, opts...)
			clear(pending)
		}
	}
}

// rebuild reruns each job that owns one of files, once.
func (m *Manifest) rebuild(ctx context.Context, files []string, opts ...Option) {
	o := makeOptions(opts...)

	for _, j := range m.Jobs {
		owned := slices.ContainsFunc(files, func(f string) bool {
			return m.Owns(j, f, o.platform)
		})

		if !owned {
			continue
		}

		o.logger.InfoContext(ctx, "rebuild",
			slog.String("job", j.Name),
			slog.Any("changed", files))

		if _, err := m.RunJob(ctx, j, opts...); err != nil {
			o.logger.ErrorContext(ctx, "build failed",
				slog.String("job", j.Name),
				slog.Any("error", err))
		}
	}
}
