package display

import (
	"log/slog"
	"slices"

	"github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/entrystack/internal/config"
	"github.com/jmylchreest/entrystack/internal/layout"
	"github.com/jmylchreest/entrystack/internal/model"
	"github.com/jmylchreest/entrystack/internal/presenter"
)

// entryHost stacks the entries of one surface. views is ordered oldest
// first; exiting views stay in it until their animation finishes.
type entryHost struct {
	level    model.WindowLevel
	delegate presenter.Delegate
	window   *gtk.Window
	stack    *gtk.Box
	logger   *slog.Logger

	cfg         config.SurfaceConfig
	layout      *layout.LayoutConfig
	colorScheme string

	views []*entryView
}

var _ presenter.Host = (*entryHost)(nil)

func newEntryHost(level model.WindowLevel, window *gtk.Window, cfg config.SurfaceConfig, tmpl *layout.LayoutConfig, colorScheme string, delegate presenter.Delegate, logger *slog.Logger) *entryHost {
	h := &entryHost{
		level:       level,
		delegate:    delegate,
		window:      window,
		logger:      logger,
		cfg:         cfg,
		layout:      tmpl,
		colorScheme: colorScheme,
	}
	h.stack = gtk.NewBox(gtk.OrientationVertical, cfg.Gap)
	h.stack.AddCSSClass("entry-stack")
	return h
}

// applyConfig updates the settings used for entries configured from now on.
func (h *entryHost) applyConfig(cfg config.SurfaceConfig, tmpl *layout.LayoutConfig, colorScheme string) {
	h.cfg = cfg
	h.layout = tmpl
	h.colorScheme = colorScheme
	h.stack.SetSpacing(cfg.Gap)
}

// top returns the newest entry that is not leaving.
func (h *entryHost) top() *entryView {
	for i := len(h.views) - 1; i >= 0; i-- {
		if !h.views[i].exiting {
			return h.views[i]
		}
	}
	return nil
}

func (h *entryHost) live() []*entryView {
	var live []*entryView
	for _, v := range h.views {
		if !v.exiting {
			live = append(live, v)
		}
	}
	return live
}

// CanDisplay implements presenter.Host.
func (h *entryHost) CanDisplay(attrs model.Attributes) bool {
	top, hasTop := h.TopAttributes()
	return presenter.CanOverride(top, hasTop, attrs)
}

// SetStatusBarStyle implements presenter.Host.
func (h *entryHost) SetStatusBarStyle(attrs model.Attributes) {
	class := statusBarClass(attrs.StatusBar)
	if class == "" {
		return
	}
	for _, c := range statusBarClasses {
		h.window.RemoveCSSClass(c)
	}
	h.window.AddCSSClass(class)
}

// Configure implements presenter.Host. The new entry is placed nearest the
// anchored edge and the oldest entries beyond max_stack are replaced.
func (h *entryHost) Configure(entry *model.Entry) {
	pos := config.Position(h.cfg.Position)
	view := newEntryView(entry, h.layout, entryClasses(entry, h.colorScheme, h.cfg.Opacity), isBottom(pos))
	view.onDismiss = func() { h.dismiss(view) }

	if isBottom(pos) {
		h.stack.Append(view.revealer)
	} else {
		h.stack.Prepend(view.revealer)
	}
	h.views = append(h.views, view)
	view.revealer.SetRevealChild(true)

	if d := entry.Attributes.DisplayDuration; d > 0 {
		view.expiry = glib.TimeoutAdd(uint(d.Milliseconds()), func() {
			view.expiry = 0
			h.expire(view)
		})
	}

	for live := h.live(); len(live) > h.cfg.MaxStack; live = live[1:] {
		h.logger.Debug("replacing oldest entry", "level", h.level, "entry_id", live[0].entry.ID)
		h.animateOut(live[0], model.DismissReasonReplaced, nil)
	}
}

// AnimateOutTopEntry implements presenter.Host.
func (h *entryHost) AnimateOutTopEntry(onComplete func()) {
	top := h.top()
	if top == nil {
		if onComplete != nil {
			onComplete()
		}
		return
	}
	h.animateOut(top, model.DismissReasonDismissed, onComplete)
}

// AnimateOut implements presenter.Host.
func (h *entryHost) AnimateOut(id string, reason model.DismissReason, onComplete func()) {
	i := slices.IndexFunc(h.views, func(v *entryView) bool { return v.entry.ID == id })
	if i < 0 {
		if onComplete != nil {
			onComplete()
		}
		return
	}
	h.animateOut(h.views[i], reason, onComplete)
}

// TopAttributes implements presenter.Host.
func (h *entryHost) TopAttributes() (model.Attributes, bool) {
	top := h.top()
	if top == nil {
		return model.Attributes{}, false
	}
	return top.entry.Attributes, true
}

// Presenting implements presenter.Host. Exiting views count until their
// animation finished.
func (h *entryHost) Presenting(id string) bool {
	return slices.ContainsFunc(h.views, func(v *entryView) bool {
		return v.entry.ID == id
	})
}

// dismiss handles a click or close button on view.
func (h *entryHost) dismiss(view *entryView) {
	if view.exiting {
		return
	}
	h.animateOut(view, model.DismissReasonDismissed, nil)
}

// expire handles the display duration running out. Stale timers for views
// that already left are ignored.
func (h *entryHost) expire(view *entryView) {
	if view.exiting || !slices.Contains(h.views, view) {
		return
	}
	h.animateOut(view, model.DismissReasonExpired, nil)
}

// animateOut starts view's exit animation. A view already leaving keeps its
// animation and onComplete waits for it.
func (h *entryHost) animateOut(view *entryView, reason model.DismissReason, onComplete func()) {
	if onComplete != nil {
		view.onExit = append(view.onExit, onComplete)
	}
	if view.exiting {
		return
	}
	view.exiting = true
	view.cancelExpiry()
	view.revealer.SetRevealChild(false)

	glib.TimeoutAdd(uint(view.revealer.TransitionDuration()), func() {
		h.remove(view, reason)
	})
}

// remove drops view once its exit animation finished and reports it.
func (h *entryHost) remove(view *entryView, reason model.DismissReason) {
	callbacks := view.onExit
	view.onExit = nil
	defer func() {
		for _, fn := range callbacks {
			fn()
		}
	}()

	i := slices.Index(h.views, view)
	if i < 0 {
		return
	}
	h.views = slices.Delete(h.views, i, i+1)
	h.stack.Remove(view.revealer)

	h.delegate.EntryRemoved(h.level, view.entry.ID, reason)
	if len(h.views) == 0 {
		h.delegate.EntryFullyDismissed(h.level)
	}
}

// cancelAll stops every pending timer before the surface is destroyed.
func (h *entryHost) cancelAll() {
	for _, v := range h.views {
		v.cancelExpiry()
	}
}
