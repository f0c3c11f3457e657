package audio

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// cacheInvalidator is the part of the player the watcher needs.
type cacheInvalidator interface {
	InvalidateCache(path string)
}

// Watcher drops cached sounds whose files change on disk.
type Watcher struct {
	mu     sync.RWMutex
	logger *slog.Logger
	player cacheInvalidator

	watcher *fsnotify.Watcher
	// sound paths keyed by their directory
	watchedPaths map[string]map[string]bool

	doneCh  chan struct{}
	running bool
}

// NewWatcher creates a new audio file watcher.
func NewWatcher(player cacheInvalidator, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		logger:       logger,
		player:       player,
		watchedPaths: make(map[string]map[string]bool),
	}
}

// Watch adds a sound file. Its directory is watched so replaced files are
// noticed too. Paths added before Start are watched once it runs.
func (w *Watcher) Watch(path string) error {
	if path == "" {
		return nil
	}

	path = filepath.Clean(path)

	w.mu.Lock()
	defer w.mu.Unlock()

	dir := filepath.Dir(path)
	files, exists := w.watchedPaths[dir]
	if !exists {
		files = make(map[string]bool)
		w.watchedPaths[dir] = files
		if w.watcher != nil {
			if err := w.watcher.Add(dir); err != nil {
				return err
			}
		}
	}
	files[path] = true
	return nil
}

// UnwatchAll forgets every watched path.
func (w *Watcher) UnwatchAll() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for dir := range w.watchedPaths {
		if w.watcher != nil {
			_ = w.watcher.Remove(dir)
		}
	}
	w.watchedPaths = make(map[string]map[string]bool)
}

// Start begins watching audio files for changes.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for dir := range w.watchedPaths {
		if err := watcher.Add(dir); err != nil {
			w.logger.Debug("failed to watch sound directory", "dir", dir, "error", err)
		}
	}

	w.watcher = watcher
	w.doneCh = make(chan struct{})
	w.running = true
	go w.watchLoop(ctx, watcher, w.doneCh)

	w.logger.Debug("audio watcher started", "dirs", len(w.watchedPaths))
	return nil
}

// Stop stops watching audio files.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	watcher, done := w.watcher, w.doneCh
	w.watcher = nil
	w.mu.Unlock()

	_ = watcher.Close()
	<-done
	w.logger.Debug("audio watcher stopped")
}

func (w *Watcher) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, done chan struct{}) {
	defer close(done)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.invalidate(event.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("audio watcher error", "error", err)
		case <-ctx.Done():
			return
		}
	}
}

func (w *Watcher) invalidate(path string) {
	w.mu.RLock()
	watched := w.watchedPaths[filepath.Dir(path)][path]
	w.mu.RUnlock()

	if !watched {
		return
	}
	w.logger.Debug("audio file changed, invalidating cache", "path", path)
	w.player.InvalidateCache(path)
}

// IsRunning returns whether the watcher is currently running.
func (w *Watcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}
