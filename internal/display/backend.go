package display

import (
	"log/slog"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/entrystack/internal/config"
	"github.com/jmylchreest/entrystack/internal/layout"
	"github.com/jmylchreest/entrystack/internal/model"
	"github.com/jmylchreest/entrystack/internal/presenter"
)

// Backend creates the GTK surfaces the scheduler presents entries on. It
// also stands in for the daemon's main surface: making it foreground hands
// keyboard focus back to the compositor.
type Backend struct {
	app     *gtk.Application
	cfg     *config.DaemonConfig
	layouts *layout.Loader
	logger  *slog.Logger

	surfaces map[model.WindowLevel]*levelSurface
}

var (
	_ presenter.SurfaceFactory = (*Backend)(nil)
	_ presenter.Foreground     = (*Backend)(nil)
)

// NewBackend creates a backend drawing on app's windows.
func NewBackend(app *gtk.Application, cfg *config.DaemonConfig, layouts *layout.Loader, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultDaemonConfig()
	}
	if layouts == nil {
		layouts = layout.NewLoader("")
	}
	return &Backend{
		app:      app,
		cfg:      cfg,
		layouts:  layouts,
		logger:   logger,
		surfaces: make(map[model.WindowLevel]*levelSurface),
	}
}

// NewSurface implements presenter.SurfaceFactory.
func (b *Backend) NewSurface(level model.WindowLevel, delegate presenter.Delegate) presenter.Surface {
	cfg := b.cfg.Surfaces.ForLevel(level)
	s := newLevelSurface(b.app, level, cfg, b.cfg.Layout.StatusBarHeight,
		b.layoutFor(cfg.Template), b.colorScheme(), delegate,
		b.logger.With("level", level.String()))
	s.onTeardown = func() {
		if b.surfaces[level] == s {
			delete(b.surfaces, level)
		}
	}
	b.surfaces[level] = s
	return s
}

// MakeForeground implements presenter.Foreground.
func (b *Backend) MakeForeground() {
	for _, s := range b.surfaces {
		s.releasePrimary()
	}
}

// UpdateConfig applies a reloaded configuration to live surfaces. Entries
// already shown keep their widgets; new entries use the new layout.
func (b *Backend) UpdateConfig(cfg *config.DaemonConfig) {
	b.cfg = cfg
	scheme := b.colorScheme()
	for level, s := range b.surfaces {
		surfaceCfg := cfg.Surfaces.ForLevel(level)
		s.applyConfig(surfaceCfg, cfg.Layout.StatusBarHeight, b.layoutFor(surfaceCfg.Template), scheme)
	}
	b.logger.Debug("display config updated", "surfaces", len(b.surfaces))
}

// layoutFor loads a template, falling back to the built-in layout.
func (b *Backend) layoutFor(name string) *layout.LayoutConfig {
	tmpl, err := b.layouts.Load(name)
	if err != nil {
		b.logger.Warn("layout template not found, using default", "template", name, "error", err)
		return layout.DefaultLayout()
	}
	return tmpl
}

func (b *Backend) colorScheme() string {
	return colorSchemeClass(config.ColorScheme(b.cfg.Theme.ColorScheme), func() bool {
		return adw.StyleManagerGetDefault().Dark()
	})
}
