// Package watch re-runs generation when input documents change.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
)

// DefaultDelay is how long the watcher waits for a burst of events to settle.
const DefaultDelay = 100 * time.Millisecond

// Watcher calls a function with the changed paths whenever one of its
// files is written, created or renamed into place.
//
// The parent directories are watched rather than the files: editors and the
// filesystem sink replace files by rename, which drops a per-file watch.
type Watcher struct {
	fs        *fsnotify.Watcher
	debouncer *Debouncer
	logger    *slog.Logger

	mu    sync.Mutex
	files map[string]bool
	dirs  map[string]bool
}

// New watches files (made absolute) and calls onChange after each burst of
// changes settles for delay.
func New(files []string, delay time.Duration, logger *slog.Logger, onChange func([]string)) (*Watcher, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create file watcher")
	}

	w := &Watcher{
		fs:        fsw,
		debouncer: NewDebouncer(delay, onChange),
		logger:    logger,
		dirs:      make(map[string]bool),
	}
	if err := w.SetFiles(files); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// SetFiles replaces the watched set. Directories no longer holding a
// watched file are dropped. It is safe to call from the onChange callback.
func (w *Watcher) SetFiles(files []string) error {
	set := make(map[string]bool, len(files))
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return errors.Wrapf(err, "resolve %s", f)
		}
		set[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for dir := range dirs {
		if w.dirs[dir] {
			continue
		}
		if err := w.fs.Add(dir); err != nil {
			return errors.Wrapf(err, "watch directory %s", dir)
		}
		w.logger.Debug("watching directory", slog.String("dir", dir))
	}
	for dir := range w.dirs {
		if !dirs[dir] {
			_ = w.fs.Remove(dir)
			w.logger.Debug("stopped watching directory", slog.String("dir", dir))
		}
	}
	w.files, w.dirs = set, dirs
	return nil
}

func (w *Watcher) watching(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.files[path]
}

// Run delivers events until ctx is done, then releases the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.debouncer.Stop()
	defer w.fs.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			path, err := filepath.Abs(event.Name)
			if err != nil || !w.watching(path) {
				continue
			}
			w.logger.Debug("file changed", slog.String("path", path), slog.String("op", event.Op.String()))
			w.debouncer.Add(path)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", slog.Any("error", err))
		}
	}
}

// Debouncer collects paths and hands them to a callback, sorted and
// deduplicated, once no new path has arrived for the configured delay.
type Debouncer struct {
	delay    time.Duration
	callback func([]string)

	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]struct{}
	stopped bool
}

// NewDebouncer returns a Debouncer calling callback after delay of quiet.
func NewDebouncer(delay time.Duration, callback func([]string)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{
		delay:    delay,
		callback: callback,
		pending:  make(map[string]struct{}),
	}
}

// Add records path and restarts the quiet period.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending[path] = struct{}{}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.flush)
}

func (d *Debouncer) flush() {
	d.mu.Lock()
	if d.stopped || len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(d.pending))
	for p := range d.pending {
		paths = append(paths, p)
	}
	d.pending = make(map[string]struct{})
	d.mu.Unlock()

	slices.Sort(paths)
	if d.callback != nil {
		d.callback(paths)
	}
}

// Stop cancels any pending callback. Later calls to Add are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
