package display

import (
	"log/slog"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/entrystack/internal/config"
	"github.com/jmylchreest/entrystack/internal/layout"
	"github.com/jmylchreest/entrystack/internal/model"
	"github.com/jmylchreest/entrystack/internal/presenter"
)

// levelSurface is the layer-shell window of one window level.
type levelSurface struct {
	level  model.WindowLevel
	window *gtk.Window
	host   *entryHost
	logger *slog.Logger

	cfg             config.SurfaceConfig
	statusBarHeight int

	responsive bool
	primary    bool

	onTeardown func()
}

var _ presenter.Surface = (*levelSurface)(nil)

func newLevelSurface(app *gtk.Application, level model.WindowLevel, cfg config.SurfaceConfig, statusBarHeight int, tmpl *layout.LayoutConfig, colorScheme string, delegate presenter.Delegate, logger *slog.Logger) *levelSurface {
	s := &levelSurface{
		level:           level,
		logger:          logger,
		cfg:             cfg,
		statusBarHeight: statusBarHeight,
	}

	s.window = gtk.NewWindow()
	s.window.SetApplication(app)
	s.window.SetDecorated(false)
	s.window.SetResizable(false)
	s.window.AddCSSClass("surface")
	s.window.AddCSSClass("level-" + level.String())

	layershell.InitForWindow(s.window)
	layershell.SetExclusiveZone(s.window, 0)
	layershell.SetNamespace(s.window, "entrystack-"+level.String())

	s.host = newEntryHost(level, s.window, cfg, tmpl, colorScheme, delegate, logger)
	s.window.SetChild(s.host.stack)

	keyCtrl := gtk.NewEventControllerKey()
	keyCtrl.ConnectKeyPressed(func(keyval, keycode uint, state gdk.ModifierType) bool {
		if keyval != gdk.KEY_Escape || !s.responsive {
			return false
		}
		s.host.AnimateOutTopEntry(nil)
		return true
	})
	s.window.AddController(keyCtrl)

	s.applyGeometry()
	s.applyInput()
	return s
}

// Host implements presenter.Surface.
func (s *levelSurface) Host() presenter.Host {
	return s.host
}

// Activate implements presenter.Surface.
func (s *levelSurface) Activate(claimPrimary bool) {
	s.primary = claimPrimary
	s.applyInput()
	s.window.Present()
}

// SetResponsive implements presenter.Surface.
func (s *levelSurface) SetResponsive(responsive bool) {
	s.responsive = responsive
	s.applyInput()
}

// Responsive implements presenter.Surface.
func (s *levelSurface) Responsive() bool {
	return s.responsive
}

// LayoutIfNeeded implements presenter.Surface.
func (s *levelSurface) LayoutIfNeeded() {
	s.applyGeometry()
	s.window.QueueResize()
}

// SafeAreaInsets implements presenter.Surface.
func (s *levelSurface) SafeAreaInsets() presenter.Insets {
	return safeAreaInsets(s.cfg, s.level, s.statusBarHeight)
}

// Teardown implements presenter.Surface.
func (s *levelSurface) Teardown() {
	s.host.cancelAll()
	s.window.Destroy()
	if s.onTeardown != nil {
		s.onTeardown()
	}
}

// releasePrimary gives up keyboard focus without changing responsiveness.
func (s *levelSurface) releasePrimary() {
	s.primary = false
	s.applyInput()
}

// applyConfig takes a reloaded configuration and relayouts the surface.
func (s *levelSurface) applyConfig(cfg config.SurfaceConfig, statusBarHeight int, tmpl *layout.LayoutConfig, colorScheme string) {
	s.cfg = cfg
	s.statusBarHeight = statusBarHeight
	s.host.applyConfig(cfg, tmpl, colorScheme)
	s.LayoutIfNeeded()
}

// applyGeometry sets the layer, anchors, margins, monitor and size.
func (s *levelSurface) applyGeometry() {
	layershell.SetLayer(s.window, layerFor(config.Layer(s.cfg.Layer)))

	anchors := anchorsFor(config.Position(s.cfg.Position))
	margins := marginsFor(s.cfg)
	layershell.SetAnchor(s.window, layershell.LayerShellEdgeTop, anchors.Top)
	layershell.SetAnchor(s.window, layershell.LayerShellEdgeBottom, anchors.Bottom)
	layershell.SetAnchor(s.window, layershell.LayerShellEdgeLeft, anchors.Left)
	layershell.SetAnchor(s.window, layershell.LayerShellEdgeRight, anchors.Right)
	layershell.SetMargin(s.window, layershell.LayerShellEdgeTop, margins.Top)
	layershell.SetMargin(s.window, layershell.LayerShellEdgeBottom, margins.Bottom)
	layershell.SetMargin(s.window, layershell.LayerShellEdgeLeft, margins.Left)
	layershell.SetMargin(s.window, layershell.LayerShellEdgeRight, margins.Right)

	if monitor := monitorFor(s.cfg.Monitor, s.logger); monitor != nil {
		layershell.SetMonitor(s.window, monitor)
	}

	width := s.cfg.Width
	if maxWidth := s.host.layout.MaxWidth; maxWidth > 0 && maxWidth < width {
		width = maxWidth
	}
	s.window.SetDefaultSize(width, -1)
	s.window.SetSizeRequest(width, -1)
	s.window.SetOpacity(s.cfg.Opacity)
}

// applyInput maps responsiveness and the primary claim onto input targeting
// and the layer-shell keyboard mode.
func (s *levelSurface) applyInput() {
	s.host.stack.SetCanTarget(s.responsive)

	mode := layershell.LayerShellKeyboardModeNone
	switch {
	case s.responsive && s.primary:
		mode = layershell.LayerShellKeyboardModeExclusive
	case s.responsive:
		mode = layershell.LayerShellKeyboardModeOnDemand
	}
	layershell.SetKeyboardMode(s.window, mode)
}

// layerFor maps a configured layer name onto the layer-shell layer.
func layerFor(layer config.Layer) layershell.Layer {
	switch layer {
	case config.LayerBackground:
		return layershell.LayerShellLayerBackground
	case config.LayerBottom:
		return layershell.LayerShellLayerBottom
	case config.LayerOverlay:
		return layershell.LayerShellLayerOverlay
	default:
		return layershell.LayerShellLayerTop
	}
}
