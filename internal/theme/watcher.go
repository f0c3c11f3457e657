package theme

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher recompiles a user theme when any stylesheet in its directory is
// written, so edits to imported partials are picked up too.
type Watcher struct {
	logger   *slog.Logger
	theme    *Theme
	onChange func(css string)

	mu   sync.Mutex
	fsw  *fsnotify.Watcher
	done chan struct{}
}

// NewWatcher creates a watcher for theme that passes each changed stylesheet
// to onChange.
func NewWatcher(theme *Theme, onChange func(css string), logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{logger: logger, theme: theme, onChange: onChange}
}

// Start watches until ctx ends or Stop is called. Bundled themes have no
// file, so Start does nothing for them.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fsw != nil || w.theme == nil || w.theme.Bundled() {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(filepath.Dir(w.theme.Path)); err != nil {
		_ = fsw.Close()
		return err
	}
	w.fsw = fsw
	w.done = make(chan struct{})
	go w.loop(ctx, fsw, w.done)

	w.logger.Debug("watching theme", "path", w.theme.Path)
	return nil
}

// Stop ends watching and waits for the watch goroutine.
func (w *Watcher) Stop() {
	w.mu.Lock()
	fsw, done := w.fsw, w.done
	w.fsw, w.done = nil, nil
	w.mu.Unlock()

	if fsw == nil {
		return
	}
	_ = fsw.Close()
	<-done
}

// Running reports whether the watch goroutine is active.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fsw != nil
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("theme watcher error", "error", err)
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Ext(event.Name) != ".css" {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.recompile()
			}
		}
	}
}

func (w *Watcher) recompile() {
	changed, err := w.theme.Reload()
	if err != nil {
		w.logger.Debug("theme reload failed", "path", w.theme.Path, "error", err)
		return
	}
	if changed && w.onChange != nil {
		w.logger.Info("theme changed", "path", w.theme.Path)
		w.onChange(w.theme.CSS)
	}
}
