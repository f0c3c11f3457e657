package presenter

import (
	"log/slog"
	"slices"

	"github.com/jmylchreest/entrystack/internal/model"
)

// DefaultStatusBarHeight approximates the top inset when no surface exists
// to ask.
const DefaultStatusBarHeight = 32

// Directory keeps one surface slot per window level and the single
// remembered fallback surface.
type Directory struct {
	factory  SurfaceFactory
	delegate Delegate
	main     Foreground
	logger   *slog.Logger

	slots    map[model.WindowLevel]Surface
	fallback Fallback

	statusBarHeight int
}

// NewDirectory creates an empty directory. main is the application's primary
// surface, restored by FallbackMain.
func NewDirectory(factory SurfaceFactory, delegate Delegate, main Foreground, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{
		factory:         factory,
		delegate:        delegate,
		main:            main,
		logger:          logger,
		slots:           make(map[model.WindowLevel]Surface),
		fallback:        MainFallback(),
		statusBarHeight: DefaultStatusBarHeight,
	}
}

// SetStatusBarHeight sets the height used by the safe-area fallback.
func (d *Directory) SetStatusBarHeight(height int) {
	d.statusBarHeight = height
}

// Prepare returns the level's host, creating its surface on first use.
func (d *Directory) Prepare(level model.WindowLevel) Host {
	if surface, exists := d.slots[level]; exists {
		return surface.Host()
	}
	surface := d.factory.NewSurface(level, d.delegate)
	d.slots[level] = surface
	d.logger.Debug("created surface", "level", level)
	return surface.Host()
}

// Activate raises the level's surface; claimPrimary also gives it focus.
func (d *Directory) Activate(level model.WindowLevel, claimPrimary bool) {
	surface, exists := d.slots[level]
	if !exists {
		return
	}
	surface.Activate(claimPrimary)
}

// Teardown removes the level's slot and restores the remembered fallback.
func (d *Directory) Teardown(level model.WindowLevel) {
	surface, exists := d.slots[level]
	if exists {
		delete(d.slots, level)
		surface.Teardown()
		d.logger.Debug("tore down surface", "level", level)
	}

	switch d.fallback.Kind {
	case FallbackCustom:
		if d.fallback.Surface != nil {
			d.fallback.Surface.MakeForeground()
		}
	default:
		if d.main != nil {
			d.main.MakeForeground()
		}
	}
}

// Release removes the level's slot without restoring any fallback. It is
// used when a freshly prepared surface never displayed anything.
func (d *Directory) Release(level model.WindowLevel) {
	surface, exists := d.slots[level]
	if !exists {
		return
	}
	delete(d.slots, level)
	surface.Teardown()
}

// Remember records fb as the fallback for the next teardown. Last write wins
// across all levels.
func (d *Directory) Remember(fb Fallback) {
	d.fallback = fb
}

// Fallback returns the remembered fallback.
func (d *Directory) Fallback() Fallback {
	return d.fallback
}

// SetResponsive toggles whether the level's surface intercepts input.
func (d *Directory) SetResponsive(level model.WindowLevel, responsive bool) {
	if surface, exists := d.slots[level]; exists {
		surface.SetResponsive(responsive)
	}
}

// IsResponsive reports whether the level's surface intercepts input.
func (d *Directory) IsResponsive(level model.WindowLevel) bool {
	if surface, exists := d.slots[level]; exists {
		return surface.Responsive()
	}
	return false
}

// Host returns the level's host if its surface exists.
func (d *Directory) Host(level model.WindowLevel) (Host, bool) {
	surface, exists := d.slots[level]
	if !exists {
		return nil, false
	}
	return surface.Host(), true
}

// Levels returns the levels that currently have a surface, in enumeration order.
func (d *Directory) Levels() []model.WindowLevel {
	levels := make([]model.WindowLevel, 0, len(d.slots))
	for level := range d.slots {
		levels = append(levels, level)
	}
	slices.Sort(levels)
	return levels
}

// IsEmpty reports whether no surface exists.
func (d *Directory) IsEmpty() bool {
	return len(d.slots) == 0
}

// LayoutIfNeeded propagates a relayout pass to every surface.
func (d *Directory) LayoutIfNeeded() {
	for _, level := range d.Levels() {
		d.slots[level].LayoutIfNeeded()
	}
}

// SafeAreaInsets returns the insets of the first active surface, or a
// status-bar-height approximation when there is none.
func (d *Directory) SafeAreaInsets() Insets {
	if levels := d.Levels(); len(levels) > 0 {
		return d.slots[levels[0]].SafeAreaInsets()
	}
	return Insets{Top: d.statusBarHeight, Bottom: 10}
}
