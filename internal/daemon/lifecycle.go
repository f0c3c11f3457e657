package daemon

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/jmylchreest/entrystack/internal/dbus"
	"github.com/jmylchreest/entrystack/internal/model"
	"github.com/jmylchreest/entrystack/internal/presenter"
)

// Status is where an entry is in its lifecycle.
type Status int

const (
	// StatusPending means the entry is queued.
	StatusPending Status = iota
	// StatusDisplayed means the entry is on screen.
	StatusDisplayed
	// StatusDismissed means the entry left the screen.
	StatusDismissed
	// StatusDropped means the entry was discarded without being shown, or
	// removed from the queue.
	StatusDropped
)

// String returns the string representation of Status.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusDisplayed:
		return "displayed"
	case StatusDismissed:
		return "dismissed"
	case StatusDropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// Finished reports whether the entry reached a terminal state.
func (s Status) Finished() bool {
	return s == StatusDismissed || s == StatusDropped
}

// DefaultHistoryLimit bounds how many finished records are kept.
const DefaultHistoryLimit = 100

// Record tracks one entry through the scheduler.
type Record struct {
	EntryID     string
	DBusID      uint32 // 0 when the entry did not come from Notify
	Name        string
	AppName     string
	Summary     string
	Level       model.WindowLevel
	Priority    model.Priority
	Status      Status
	Reason      string
	QueuedAt    time.Time
	DisplayedAt time.Time
	FinishedAt  time.Time

	closeRequested bool
}

// History converts the record into its journal form.
func (r Record) History() model.HistoryRecord {
	return model.HistoryRecord{
		EntryID:     r.EntryID,
		DBusID:      r.DBusID,
		Name:        r.Name,
		AppName:     r.AppName,
		Summary:     r.Summary,
		Level:       r.Level.String(),
		Priority:    int(r.Priority),
		Status:      r.Status.String(),
		Reason:      r.Reason,
		QueuedAt:    r.QueuedAt,
		DisplayedAt: r.DisplayedAt,
		FinishedAt:  r.FinishedAt,
	}
}

// LifecycleTracker records entry transitions reported by the scheduler and
// maps them back to freedesktop notification IDs. It is safe for concurrent
// use; the scheduler calls it on the UI thread while D-Bus queries read it.
type LifecycleTracker struct {
	mu sync.RWMutex

	byEntryID map[string]*Record
	byDBusID  map[uint32]string
	finished  []string

	historyLimit int

	onClosed   func(dbusID uint32, reason dbus.CloseReason)
	onChanged  func(what, entryID string)
	onFinished func(rec Record)
}

// NewLifecycleTracker creates an empty tracker.
func NewLifecycleTracker() *LifecycleTracker {
	return &LifecycleTracker{
		byEntryID:    make(map[string]*Record),
		byDBusID:     make(map[uint32]string),
		historyLimit: DefaultHistoryLimit,
	}
}

// SetClosedCallback sets the function called when an entry that came from
// Notify finishes.
func (t *LifecycleTracker) SetClosedCallback(fn func(dbusID uint32, reason dbus.CloseReason)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onClosed = fn
}

// SetChangedCallback sets the function called on every transition.
func (t *LifecycleTracker) SetChangedCallback(fn func(what, entryID string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onChanged = fn
}

// SetFinishedCallback sets the function called with the final record of
// every entry that was dismissed or dropped.
func (t *LifecycleTracker) SetFinishedCallback(fn func(rec Record)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onFinished = fn
}

// SetHistoryLimit changes how many finished records are kept.
func (t *LifecycleTracker) SetHistoryLimit(limit int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.historyLimit = limit
	t.trimLocked()
}

// Bind associates a freedesktop notification ID with an entry before the
// entry is handed to the scheduler. A later Bind for the same notification ID
// takes it over.
func (t *LifecycleTracker) Bind(entry *model.Entry, dbusID uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec := t.recordLocked(entry)
	rec.DBusID = dbusID
	t.byDBusID[dbusID] = entry.ID
}

// EntryForDBusID returns the live record bound to dbusID.
func (t *LifecycleTracker) EntryForDBusID(dbusID uint32) (Record, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	id, exists := t.byDBusID[dbusID]
	if !exists {
		return Record{}, false
	}
	rec, exists := t.byEntryID[id]
	if !exists || rec.Status.Finished() {
		return Record{}, false
	}
	return *rec, true
}

// RequestClose marks the live entry bound to dbusID as closed by its sender,
// so it reports CloseReasonClosed whatever way it leaves the screen.
func (t *LifecycleTracker) RequestClose(dbusID uint32) (Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id, exists := t.byDBusID[dbusID]
	if !exists {
		return Record{}, false
	}
	rec, exists := t.byEntryID[id]
	if !exists || rec.Status.Finished() {
		return Record{}, false
	}
	rec.closeRequested = true
	return *rec, true
}

// Get returns the record for an entry ID.
func (t *LifecycleTracker) Get(entryID string) (Record, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, exists := t.byEntryID[entryID]
	if !exists {
		return Record{}, false
	}
	return *rec, true
}

// Active returns the records that are pending or displayed.
func (t *LifecycleTracker) Active() []Record {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var active []Record
	for _, rec := range t.byEntryID {
		if !rec.Status.Finished() {
			active = append(active, *rec)
		}
	}
	slices.SortFunc(active, func(a, b Record) int {
		return cmp.Compare(a.EntryID, b.EntryID)
	})
	return active
}

// Count returns the number of tracked records.
func (t *LifecycleTracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byEntryID)
}

// EntryQueued implements presenter.Observer.
func (t *LifecycleTracker) EntryQueued(entry *model.Entry) {
	t.mu.Lock()
	rec := t.recordLocked(entry)
	rec.Status = StatusPending
	rec.QueuedAt = time.Now()
	changed := t.onChanged
	t.mu.Unlock()

	if changed != nil {
		changed("queued", entry.ID)
	}
}

// EntryDisplayed implements presenter.Observer.
func (t *LifecycleTracker) EntryDisplayed(entry *model.Entry) {
	t.mu.Lock()
	rec := t.recordLocked(entry)
	rec.Status = StatusDisplayed
	rec.DisplayedAt = time.Now()
	changed := t.onChanged
	t.mu.Unlock()

	if changed != nil {
		changed("displayed", entry.ID)
	}
}

// EntryDropped implements presenter.Observer.
func (t *LifecycleTracker) EntryDropped(entry *model.Entry, reason presenter.DropReason) {
	closeReason := dbus.CloseReasonUndefined
	if reason == presenter.DropDismissed {
		closeReason = dbus.CloseReasonClosed
	}
	t.finish(entry.ID, StatusDropped, reason.String(), closeReason, "dropped")
}

// EntryDismissed implements presenter.Observer.
func (t *LifecycleTracker) EntryDismissed(_ model.WindowLevel, id string, reason model.DismissReason) {
	t.finish(id, StatusDismissed, reason.String(), dbus.CloseReasonFor(reason), "dismissed")
}

func (t *LifecycleTracker) finish(entryID string, status Status, reason string, closeReason dbus.CloseReason, what string) {
	t.mu.Lock()
	rec, exists := t.byEntryID[entryID]
	if !exists || rec.Status.Finished() {
		t.mu.Unlock()
		return
	}
	rec.Status = status
	rec.Reason = reason
	rec.FinishedAt = time.Now()
	t.finished = append(t.finished, entryID)
	if rec.closeRequested {
		closeReason = dbus.CloseReasonClosed
	}

	// Only the latest entry bound to a notification ID speaks for it.
	var dbusID uint32
	if rec.DBusID != 0 && t.byDBusID[rec.DBusID] == entryID {
		dbusID = rec.DBusID
		delete(t.byDBusID, rec.DBusID)
	}
	final := *rec
	t.trimLocked()

	closed, changed, finished := t.onClosed, t.onChanged, t.onFinished
	t.mu.Unlock()

	if dbusID != 0 && closed != nil {
		closed(dbusID, closeReason)
	}
	if finished != nil {
		finished(final)
	}
	if changed != nil {
		changed(what, entryID)
	}
}

func (t *LifecycleTracker) recordLocked(entry *model.Entry) *Record {
	rec, exists := t.byEntryID[entry.ID]
	if !exists {
		rec = &Record{
			EntryID:  entry.ID,
			Name:     entry.Name(),
			AppName:  entry.Content.AppName,
			Summary:  entry.Content.Summary,
			Level:    entry.Level(),
			Priority: entry.Priority(),
			Status:   StatusPending,
		}
		t.byEntryID[entry.ID] = rec
	}
	return rec
}

func (t *LifecycleTracker) trimLocked() {
	for len(t.finished) > t.historyLimit {
		delete(t.byEntryID, t.finished[0])
		t.finished = t.finished[1:]
	}
}
