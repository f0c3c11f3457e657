package presenter

import (
	"log/slog"

	"github.com/jmylchreest/entrystack/internal/model"
)

// DropReason explains why an entry never made it to (or back from) the queue.
type DropReason int

const (
	// DropRejected means the host refused an immediate display.
	DropRejected DropReason = iota + 1
	// DropQueueCleared means an override cleared the queue.
	DropQueueCleared
	// DropDismissed means a dismissal removed the entry from the queue.
	DropDismissed
	// DropReplaced means a newer entry took the queued entry's place.
	DropReplaced
)

// String returns the string representation of the reason.
func (r DropReason) String() string {
	switch r {
	case DropRejected:
		return "rejected"
	case DropQueueCleared:
		return "queue-cleared"
	case DropDismissed:
		return "dismissed"
	case DropReplaced:
		return "replaced"
	default:
		return "unknown"
	}
}

// Observer is told about entry lifecycle transitions.
type Observer interface {
	EntryQueued(entry *model.Entry)
	EntryDisplayed(entry *model.Entry)
	EntryDropped(entry *model.Entry, reason DropReason)
	EntryDismissed(level model.WindowLevel, id string, reason model.DismissReason)
}

// Scheduler decides whether entries show, wait or are dropped, and drives the
// per-level hosts. Create one per application; it is not safe for concurrent
// use.
type Scheduler struct {
	logger    *slog.Logger
	queue     *Queue
	registry  *Registry
	surfaces  *Directory
	observers []Observer

	statusBarHeight int
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver adds a lifecycle observer.
func WithObserver(o Observer) Option {
	return func(s *Scheduler) {
		s.observers = append(s.observers, o)
	}
}

// WithStatusBarHeight sets the height used when no surface can report its
// safe area.
func WithStatusBarHeight(height int) Option {
	return func(s *Scheduler) {
		s.statusBarHeight = height
	}
}

// New creates a scheduler that obtains surfaces from factory. main is the
// application's own primary surface.
func New(factory SurfaceFactory, main Foreground, opts ...Option) *Scheduler {
	s := &Scheduler{
		logger:          slog.Default(),
		queue:           NewQueue(),
		registry:        NewRegistry(),
		statusBarHeight: DefaultStatusBarHeight,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.surfaces = NewDirectory(factory, s, main, s.logger)
	s.surfaces.SetStatusBarHeight(s.statusBarHeight)
	return s
}

// Display wraps content in a new entry and requests its display.
func (s *Scheduler) Display(content model.Content, attrs model.Attributes, claimPrimary bool, fallback Fallback) (*model.Entry, error) {
	if err := attrs.Validate(); err != nil {
		return nil, err
	}
	entry, err := model.NewEntry(content, attrs)
	if err != nil {
		return nil, err
	}
	s.RequestDisplay(entry, claimPrimary, fallback)
	return entry, nil
}

// RequestDisplay shows, queues or drops entry according to its precedence.
func (s *Scheduler) RequestDisplay(entry *model.Entry, claimPrimary bool, fallback Fallback) {
	item := &QueueItem{Entry: entry, ClaimPrimary: claimPrimary, Fallback: fallback}
	precedence := entry.Attributes.Precedence

	switch {
	case !precedence.IsEnqueue():
		if precedence.DropEnqueuedEntries {
			s.drop(s.queue.RemoveAll(), DropQueueCleared)
		}
		s.show(item, false)
	case s.displayingAt(entry.Level()):
		s.queue.Enqueue(item)
		s.logger.Debug("queued entry",
			"entry_id", entry.ID,
			"name", entry.Name(),
			"level", entry.Level(),
			"priority", entry.Priority(),
			"queue_size", s.queue.Len(),
		)
		for _, o := range s.observers {
			o.EntryQueued(entry)
		}
	default:
		s.show(item, false)
	}
}

// Replace shows entry in place of the entry with oldID. A queued entry is
// dropped and entry is requested as usual. A displayed entry on the same
// level is animated out once entry took its place, without a capacity check.
// When oldID is neither queued nor displayed, entry is requested as usual.
func (s *Scheduler) Replace(oldID string, entry *model.Entry, claimPrimary bool, fallback Fallback) {
	if old, ok := s.queue.RemoveID(oldID); ok {
		s.drop([]*QueueItem{old}, DropReplaced)
		s.RequestDisplay(entry, claimPrimary, fallback)
		return
	}

	reg, ok := s.registry.Get(oldID)
	if !ok {
		s.RequestDisplay(entry, claimPrimary, fallback)
		return
	}
	host, ok := s.surfaces.Host(reg.Level)
	if !ok {
		s.RequestDisplay(entry, claimPrimary, fallback)
		return
	}

	if reg.Level == entry.Level() {
		s.show(&QueueItem{Entry: entry, ClaimPrimary: claimPrimary, Fallback: fallback}, true)
	} else {
		s.RequestDisplay(entry, claimPrimary, fallback)
	}
	s.logger.Debug("replacing entry", "entry_id", oldID, "replacement_id", entry.ID)
	host.AnimateOut(oldID, model.DismissReasonReplaced, nil)
}

// show hands the item to its level's host right away. force skips the
// capacity check.
func (s *Scheduler) show(item *QueueItem, force bool) bool {
	entry := item.Entry
	attrs := entry.Attributes
	level := entry.Level()

	_, existed := s.surfaces.Host(level)
	host := s.surfaces.Prepare(level)

	// Enqueued entries were queued deliberately and skip the capacity check.
	if !force && !host.CanDisplay(attrs) && !attrs.Precedence.IsEnqueue() {
		if !existed {
			s.surfaces.Release(level)
		}
		s.logger.Debug("dropped entry, host refused it",
			"entry_id", entry.ID,
			"name", entry.Name(),
			"level", level,
			"priority", entry.Priority(),
		)
		s.drop([]*QueueItem{item}, DropRejected)
		return false
	}

	host.SetStatusBarStyle(attrs)
	s.surfaces.Activate(level, item.ClaimPrimary)
	s.surfaces.SetResponsive(level, attrs.AbsorbsInput())
	host.Configure(entry)
	s.registry.Add(entry, host)
	s.surfaces.Remember(item.Fallback)

	s.logger.Debug("displayed entry",
		"entry_id", entry.ID,
		"name", entry.Name(),
		"level", level,
		"precedence", attrs.Precedence.String(),
		"claim_primary", item.ClaimPrimary,
	)
	for _, o := range s.observers {
		o.EntryDisplayed(entry)
	}
	return true
}

// EntryRemoved implements Delegate.
func (s *Scheduler) EntryRemoved(level model.WindowLevel, id string, reason model.DismissReason) {
	s.registry.Remove(id)
	for _, o := range s.observers {
		o.EntryDismissed(level, id, reason)
	}
}

// EntryFullyDismissed implements Delegate. It shows the next queued entry for
// level or hands the level back to the fallback surface.
func (s *Scheduler) EntryFullyDismissed(level model.WindowLevel) {
	if next, ok := s.queue.DequeueLevel(level); ok {
		s.show(next, false)
		return
	}
	s.surfaces.Teardown(level)
}

func (s *Scheduler) drop(items []*QueueItem, reason DropReason) {
	for _, item := range items {
		for _, o := range s.observers {
			o.EntryDropped(item.Entry, reason)
		}
	}
}

// displayingAt reports whether level has a surface. A slot lives from the
// first show until teardown, so entries still animating out count.
func (s *Scheduler) displayingAt(level model.WindowLevel) bool {
	_, ok := s.surfaces.Host(level)
	return ok
}

// IsCurrentlyDisplaying reports whether an entry called name is displayed.
// An empty name matches any displayed entry.
func (s *Scheduler) IsCurrentlyDisplaying(name string) bool {
	if name == "" {
		return !s.registry.IsEmpty()
	}
	_, found := s.registry.FindNamed(name)
	return found
}

// QueueContains reports whether an entry called name is queued.
// An empty name matches any queued entry.
func (s *Scheduler) QueueContains(name string) bool {
	if name == "" {
		return !s.queue.IsEmpty()
	}
	return s.queue.Contains(name)
}

// IsResponsive reports whether level's surface intercepts input. Levels
// without a surface report false.
func (s *Scheduler) IsResponsive(level model.WindowLevel) bool {
	return s.surfaces.IsResponsive(level)
}

// SetResponsive toggles whether level's surface intercepts input.
func (s *Scheduler) SetResponsive(level model.WindowLevel, responsive bool) {
	s.surfaces.SetResponsive(level, responsive)
}

// LayoutIfNeeded propagates a relayout pass to every active surface.
func (s *Scheduler) LayoutIfNeeded() {
	s.surfaces.LayoutIfNeeded()
}

// SetStatusBarHeight changes the height used when no surface can report its
// safe area.
func (s *Scheduler) SetStatusBarHeight(height int) {
	s.statusBarHeight = height
	s.surfaces.SetStatusBarHeight(height)
}

// SafeAreaInsets returns the current safe-area insets.
func (s *Scheduler) SafeAreaInsets() Insets {
	return s.surfaces.SafeAreaInsets()
}
