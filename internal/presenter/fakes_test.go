package presenter

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/entrystack/internal/model"
)

// fakeView is one entry on a fakeHost. Exiting views stay on the host until
// their animation finished, like the GTK host.
type fakeView struct {
	entry   *model.Entry
	exiting bool
	onExit  []func()
}

// fakeHost stacks up to maxStack live entries, replacing the oldest beyond
// that. Exit animations finish synchronously unless async is set, in which
// case finishPending completes them.
type fakeHost struct {
	level    model.WindowLevel
	delegate Delegate
	maxStack int

	views       []*fakeView
	refuseAll   bool
	async       bool
	pending     []func()
	statusBar   []model.StatusBarStyle
	configured  []string
	animateOuts int
}

func (h *fakeHost) CanDisplay(attrs model.Attributes) bool {
	if h.refuseAll {
		return false
	}
	top, ok := h.TopAttributes()
	return CanOverride(top, ok, attrs)
}

func (h *fakeHost) SetStatusBarStyle(attrs model.Attributes) {
	h.statusBar = append(h.statusBar, attrs.StatusBar)
}

func (h *fakeHost) Configure(entry *model.Entry) {
	h.views = append(h.views, &fakeView{entry: entry})
	h.configured = append(h.configured, entry.ID)

	limit := max(h.maxStack, 1)
	for live := h.live(); len(live) > limit; live = live[1:] {
		h.animateOut(live[0], model.DismissReasonReplaced, nil)
	}
}

func (h *fakeHost) AnimateOutTopEntry(onComplete func()) {
	h.animateOuts++
	top := h.topView()
	if top == nil {
		onComplete()
		return
	}
	h.animateOut(top, model.DismissReasonDismissed, onComplete)
}

func (h *fakeHost) AnimateOut(id string, reason model.DismissReason, onComplete func()) {
	h.animateOuts++
	for _, v := range h.views {
		if v.entry.ID == id {
			h.animateOut(v, reason, onComplete)
			return
		}
	}
	if onComplete != nil {
		onComplete()
	}
}

func (h *fakeHost) animateOut(v *fakeView, reason model.DismissReason, onComplete func()) {
	if onComplete != nil {
		v.onExit = append(v.onExit, onComplete)
	}
	if v.exiting {
		return
	}
	v.exiting = true
	finish := func() { h.remove(v, reason) }
	if h.async {
		h.pending = append(h.pending, finish)
		return
	}
	finish()
}

func (h *fakeHost) remove(v *fakeView, reason model.DismissReason) {
	callbacks := v.onExit
	v.onExit = nil
	defer func() {
		for _, fn := range callbacks {
			fn()
		}
	}()

	i := slices.Index(h.views, v)
	if i < 0 {
		return
	}
	h.views = slices.Delete(h.views, i, i+1)
	h.delegate.EntryRemoved(h.level, v.entry.ID, reason)
	if len(h.views) == 0 {
		h.delegate.EntryFullyDismissed(h.level)
	}
}

func (h *fakeHost) finishPending() {
	pending := h.pending
	h.pending = nil
	for _, fn := range pending {
		fn()
	}
}

func (h *fakeHost) live() []*fakeView {
	var live []*fakeView
	for _, v := range h.views {
		if !v.exiting {
			live = append(live, v)
		}
	}
	return live
}

func (h *fakeHost) topView() *fakeView {
	live := h.live()
	if len(live) == 0 {
		return nil
	}
	return live[len(live)-1]
}

func (h *fakeHost) TopAttributes() (model.Attributes, bool) {
	top := h.topView()
	if top == nil {
		return model.Attributes{}, false
	}
	return top.entry.Attributes, true
}

func (h *fakeHost) Presenting(id string) bool {
	return slices.ContainsFunc(h.views, func(v *fakeView) bool { return v.entry.ID == id })
}

func (h *fakeHost) top() *model.Entry {
	if top := h.topView(); top != nil {
		return top.entry
	}
	return nil
}

// onScreen returns the names of the live entries, oldest first.
func (h *fakeHost) onScreen() []string {
	var names []string
	for _, v := range h.live() {
		names = append(names, v.entry.Name())
	}
	return names
}

// show places entries on the host without going through a scheduler.
func (h *fakeHost) show(entries ...*model.Entry) {
	h.views = nil
	for _, e := range entries {
		h.views = append(h.views, &fakeView{entry: e})
	}
}

type fakeSurface struct {
	host        *fakeHost
	activations []bool
	responsive  bool
	tornDown    bool
	layouts     int
	insets      Insets
}

func (s *fakeSurface) Host() Host                { return s.host }
func (s *fakeSurface) Activate(claimPrimary bool) { s.activations = append(s.activations, claimPrimary) }
func (s *fakeSurface) SetResponsive(r bool)      { s.responsive = r }
func (s *fakeSurface) Responsive() bool          { return s.responsive }
func (s *fakeSurface) LayoutIfNeeded()           { s.layouts++ }
func (s *fakeSurface) SafeAreaInsets() Insets    { return s.insets }
func (s *fakeSurface) Teardown()                 { s.tornDown = true }

type fakeFactory struct {
	refuseAll bool
	async     bool
	maxStack  int
	created   map[model.WindowLevel][]*fakeSurface
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{created: make(map[model.WindowLevel][]*fakeSurface)}
}

func (f *fakeFactory) NewSurface(level model.WindowLevel, delegate Delegate) Surface {
	s := &fakeSurface{
		host: &fakeHost{
			level:     level,
			delegate:  delegate,
			maxStack:  f.maxStack,
			refuseAll: f.refuseAll,
			async:     f.async,
		},
		insets: Insets{Top: 10 + int(level)},
	}
	f.created[level] = append(f.created[level], s)
	return s
}

// current returns the latest surface created for level.
func (f *fakeFactory) current(t *testing.T, level model.WindowLevel) *fakeSurface {
	t.Helper()
	surfaces := f.created[level]
	require.NotEmpty(t, surfaces, "no surface created for %s", level)
	return surfaces[len(surfaces)-1]
}

type fakeForeground struct {
	name  string
	calls int
}

func (f *fakeForeground) MakeForeground() { f.calls++ }

type recordingObserver struct {
	queued    []string
	displayed []string
	dropped   map[string]DropReason
	dismissed map[string]model.DismissReason
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{
		dropped:   make(map[string]DropReason),
		dismissed: make(map[string]model.DismissReason),
	}
}

func (o *recordingObserver) EntryQueued(e *model.Entry)    { o.queued = append(o.queued, e.Name()) }
func (o *recordingObserver) EntryDisplayed(e *model.Entry) { o.displayed = append(o.displayed, e.Name()) }
func (o *recordingObserver) EntryDropped(e *model.Entry, r DropReason) {
	o.dropped[e.Name()] = r
}
func (o *recordingObserver) EntryDismissed(_ model.WindowLevel, id string, r model.DismissReason) {
	o.dismissed[id] = r
}

func newTestEntry(t *testing.T, name string, level model.WindowLevel, precedence model.Precedence) *model.Entry {
	t.Helper()
	attrs := model.DefaultAttributes()
	attrs.Name = name
	attrs.WindowLevel = level
	attrs.Precedence = precedence
	e, err := model.NewEntry(model.Content{Summary: name}, attrs)
	require.NoError(t, err)
	return e
}
