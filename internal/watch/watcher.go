// Package watch rebuilds the site when pages or documented scripts change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a rebuild starts.
const DefaultDebounce = 300 * time.Millisecond

// RebuildFunc runs a build and returns the files it read, so their
// directories can be watched for the next round.
type RebuildFunc func(ctx context.Context) (sources []string, err error)

// Option customises a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a rebuild.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// Watcher triggers debounced rebuilds on file system changes.
type Watcher struct {
	rebuild  RebuildFunc
	debounce time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	watched map[string]struct{}
}

// New creates a watcher for the given paths. Files are watched through their
// parent directory, directories are watched recursively.
func New(rebuild RebuildFunc, paths []string, options ...Option) (*Watcher, error) {
	if rebuild == nil {
		return nil, errors.New("watch: rebuild func is required")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create watcher: %w", err)
	}
	w := &Watcher{
		rebuild:  rebuild,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		fsw:      fsw,
		watched:  map[string]struct{}{},
	}
	for _, opt := range options {
		if opt != nil {
			opt(w)
		}
	}
	if err := w.watch(paths); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Watched returns the watched directories in sorted order.
func (w *Watcher) Watched() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.watched))
	for dir := range w.watched {
		out = append(out, dir)
	}
	sort.Strings(out)
	return out
}

// AddSources starts watching the directories of the given files.
func (w *Watcher) AddSources(sources []string) error {
	return w.watch(sources)
}

func (w *Watcher) watch(paths []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("watch: resolve %s: %w", path, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				w.logger.Warn("Watch path does not exist", "path", abs)
				continue
			}
			return fmt.Errorf("watch: stat %s: %w", abs, err)
		}
		if !info.IsDir() {
			if err := w.addDir(filepath.Dir(abs)); err != nil {
				return err
			}
			continue
		}
		err = filepath.WalkDir(abs, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if p != abs && len(d.Name()) > 1 && d.Name()[0] == '.' {
				return filepath.SkipDir
			}
			return w.addDir(p)
		})
		if err != nil {
			return fmt.Errorf("watch: walk %s: %w", abs, err)
		}
	}
	return nil
}

// addDir must be called with mu held.
func (w *Watcher) addDir(dir string) error {
	if _, ok := w.watched[dir]; ok {
		return nil
	}
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("watch: add %s: %w", dir, err)
	}
	w.watched[dir] = struct{}{}
	w.logger.Debug("Watching directory", "dir", dir)
	return nil
}

// Run blocks until ctx is done, rebuilding after each burst of changes.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			w.logger.Debug("Change detected", "file", event.Name, "op", event.Op.String())
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.watch([]string{event.Name}); err != nil {
						w.logger.Warn("Could not watch new directory", "dir", event.Name, "error", err)
					}
				}
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			w.runRebuild(ctx)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", "error", err)
		}
	}
}

func (w *Watcher) runRebuild(ctx context.Context) {
	w.logger.Info("Rebuilding")
	sources, err := w.rebuild(ctx)
	if err != nil {
		w.logger.Error("Rebuild failed", "error", err)
	}
	if len(sources) > 0 {
		if err := w.AddSources(sources); err != nil {
			w.logger.Warn("Could not watch sources", "error", err)
		}
	}
}

// relevant drops events that never change content, such as chmod, and
// editor swap files.
func relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(event.Name)
	switch {
	case base == "" || base[0] == '.':
		return false
	case filepath.Ext(base) == ".swp" || base[len(base)-1] == '~':
		return false
	}
	return true
}
