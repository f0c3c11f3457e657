package theme

import (
	"context"
	"log/slog"
	"sync"

	"github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/entrystack/internal/config"
)

// Loader feeds the selected theme to a GTK CSS provider shared by every
// surface. Use and Apply must run on the GTK thread.
type Loader struct {
	logger    *slog.Logger
	provider  *gtk.CSSProvider
	themesDir string

	mu       sync.Mutex
	theme    *Theme
	watcher  *Watcher
	onReload func(name string)
}

// NewLoader creates a loader that looks up user themes in the config
// directory.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger:    logger,
		provider:  gtk.NewCSSProvider(),
		themesDir: config.ThemesDir(),
	}
}

// SetReloadCallback sets the function called on the GTK thread after a
// changed theme file was reapplied.
func (l *Loader) SetReloadCallback(fn func(name string)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onReload = fn
}

// Use loads the named theme into the provider. An unknown name selects the
// default theme; the error only reports a user theme that could not be read.
func (l *Loader) Use(name string) error {
	theme, found, err := Resolve(l.themesDir, name)
	if !found {
		l.logger.Warn("theme not found, using default", "theme", name)
	}
	l.provider.LoadFromString(theme.CSS)

	l.mu.Lock()
	l.theme = theme
	l.mu.Unlock()

	l.logger.Info("loaded theme", "name", theme.Name, "path", theme.Path)
	return err
}

// Apply attaches the provider to display, or to the default display when nil.
func (l *Loader) Apply(display *gdk.Display) {
	if display == nil {
		display = gdk.DisplayGetDefault()
	}
	if display == nil {
		l.logger.Warn("no display available, theme not applied")
		return
	}
	gtk.StyleContextAddProviderForDisplay(display, l.provider, gtk.STYLE_PROVIDER_PRIORITY_APPLICATION)
}

// Watch reapplies the current theme whenever its file changes. Any previous
// watch is stopped first.
func (l *Loader) Watch(ctx context.Context) {
	l.StopWatching()

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.theme == nil || l.theme.Bundled() {
		return
	}

	name := l.theme.Name
	l.watcher = NewWatcher(l.theme, func(css string) {
		glib.IdleAdd(func() {
			l.provider.LoadFromString(css)
			l.mu.Lock()
			onReload := l.onReload
			l.mu.Unlock()
			if onReload != nil {
				onReload(name)
			}
		})
	}, l.logger)
	if err := l.watcher.Start(ctx); err != nil {
		l.logger.Warn("failed to watch theme", "name", name, "error", err)
	}
}

// StopWatching stops the theme file watch, if any.
func (l *Loader) StopWatching() {
	l.mu.Lock()
	w := l.watcher
	l.watcher = nil
	l.mu.Unlock()

	if w != nil {
		w.Stop()
	}
}

// Current returns the name of the loaded theme.
func (l *Loader) Current() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.theme == nil {
		return ""
	}
	return l.theme.Name
}
