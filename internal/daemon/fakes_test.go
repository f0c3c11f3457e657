package daemon

import (
	"github.com/jmylchreest/entrystack/internal/model"
	"github.com/jmylchreest/entrystack/internal/presenter"
)

// stackHost shows one entry at a time and finishes exit animations at once.
type stackHost struct {
	level    model.WindowLevel
	delegate presenter.Delegate
	top      *model.Entry
}

func (h *stackHost) CanDisplay(attrs model.Attributes) bool {
	if h.top == nil {
		return true
	}
	return presenter.CanOverride(h.top.Attributes, true, attrs)
}

func (h *stackHost) SetStatusBarStyle(model.Attributes) {}

func (h *stackHost) Configure(entry *model.Entry) {
	if h.top != nil {
		h.delegate.EntryRemoved(h.level, h.top.ID, model.DismissReasonReplaced)
	}
	h.top = entry
}

func (h *stackHost) AnimateOutTopEntry(onComplete func()) {
	if h.top != nil {
		id := h.top.ID
		h.top = nil
		h.delegate.EntryRemoved(h.level, id, model.DismissReasonDismissed)
		h.delegate.EntryFullyDismissed(h.level)
	}
	onComplete()
}

func (h *stackHost) AnimateOut(id string, reason model.DismissReason, onComplete func()) {
	if h.top != nil && h.top.ID == id {
		h.top = nil
		h.delegate.EntryRemoved(h.level, id, reason)
		h.delegate.EntryFullyDismissed(h.level)
	}
	if onComplete != nil {
		onComplete()
	}
}

func (h *stackHost) TopAttributes() (model.Attributes, bool) {
	if h.top == nil {
		return model.Attributes{}, false
	}
	return h.top.Attributes, true
}

func (h *stackHost) Presenting(id string) bool { return h.top != nil && h.top.ID == id }

// expire simulates the display duration running out.
func (h *stackHost) expire() {
	if h.top == nil {
		return
	}
	id := h.top.ID
	h.top = nil
	h.delegate.EntryRemoved(h.level, id, model.DismissReasonExpired)
	h.delegate.EntryFullyDismissed(h.level)
}

type stackSurface struct {
	host       *stackHost
	responsive bool
}

func (s *stackSurface) Host() presenter.Host { return s.host }
func (s *stackSurface) Activate(bool) {}
func (s *stackSurface) SetResponsive(responsive bool) { s.responsive = responsive }
func (s *stackSurface) Responsive() bool { return s.responsive }
func (s *stackSurface) LayoutIfNeeded() {}
func (s *stackSurface) SafeAreaInsets() presenter.Insets { return presenter.Insets{Top: 24} }
func (s *stackSurface) Teardown() {}

type stackFactory struct {
	hosts map[model.WindowLevel]*stackHost
}

func newStackFactory() *stackFactory {
	return &stackFactory{hosts: make(map[model.WindowLevel]*stackHost)}
}

func (f *stackFactory) NewSurface(level model.WindowLevel, delegate presenter.Delegate) presenter.Surface {
	host := &stackHost{level: level, delegate: delegate}
	f.hosts[level] = host
	return &stackSurface{host: host}
}

type nopForeground struct{}

func (nopForeground) MakeForeground() {}
