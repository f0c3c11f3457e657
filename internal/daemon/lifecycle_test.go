package daemon

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/entrystack/internal/dbus"
	"github.com/jmylchreest/entrystack/internal/model"
	"github.com/jmylchreest/entrystack/internal/presenter"
)

type closedCall struct {
	id     uint32
	reason dbus.CloseReason
}

func newTestEntry(t *testing.T, name string) *model.Entry {
	t.Helper()
	attrs := model.DefaultAttributes()
	attrs.Name = name
	entry, err := model.NewEntry(model.Content{Summary: name}, attrs)
	require.NoError(t, err)
	return entry
}

func newRecordingTracker() (*LifecycleTracker, *[]closedCall, *[]string) {
	tracker := NewLifecycleTracker()
	var closed []closedCall
	var changes []string
	tracker.SetClosedCallback(func(id uint32, reason dbus.CloseReason) {
		closed = append(closed, closedCall{id, reason})
	})
	tracker.SetChangedCallback(func(what, _ string) {
		changes = append(changes, what)
	})
	return tracker, &closed, &changes
}

func TestLifecycleTracker_DisplayedThenDismissed(t *testing.T) {
	tracker, closed, changes := newRecordingTracker()
	entry := newTestEntry(t, "toast")

	tracker.Bind(entry, 7)
	tracker.EntryDisplayed(entry)

	rec, ok := tracker.EntryForDBusID(7)
	require.True(t, ok)
	assert.Equal(t, entry.ID, rec.EntryID)
	assert.Equal(t, StatusDisplayed, rec.Status)

	tracker.EntryDismissed(model.LevelNormal, entry.ID, model.DismissReasonExpired)

	assert.Equal(t, []closedCall{{7, dbus.CloseReasonExpired}}, *closed)
	assert.Equal(t, []string{"displayed", "dismissed"}, *changes)

	_, ok = tracker.EntryForDBusID(7)
	assert.False(t, ok)
	rec, ok = tracker.Get(entry.ID)
	require.True(t, ok)
	assert.Equal(t, StatusDismissed, rec.Status)
	assert.Equal(t, "expired", rec.Reason)
}

func TestLifecycleTracker_DropReasons(t *testing.T) {
	tests := []struct {
		reason presenter.DropReason
		want   dbus.CloseReason
	}{
		{presenter.DropDismissed, dbus.CloseReasonClosed},
		{presenter.DropQueueCleared, dbus.CloseReasonUndefined},
		{presenter.DropRejected, dbus.CloseReasonUndefined},
	}

	for _, tt := range tests {
		t.Run(tt.reason.String(), func(t *testing.T) {
			tracker, closed, _ := newRecordingTracker()
			entry := newTestEntry(t, "queued")
			tracker.Bind(entry, 3)
			tracker.EntryQueued(entry)
			tracker.EntryDropped(entry, tt.reason)

			assert.Equal(t, []closedCall{{3, tt.want}}, *closed)
			rec, _ := tracker.Get(entry.ID)
			assert.Equal(t, StatusDropped, rec.Status)
		})
	}
}

func TestLifecycleTracker_ReboundIDOnlyClosesLatest(t *testing.T) {
	tracker, closed, _ := newRecordingTracker()
	first := newTestEntry(t, "n")
	second := newTestEntry(t, "n")

	tracker.Bind(first, 9)
	tracker.EntryDisplayed(first)
	tracker.Bind(second, 9)
	tracker.EntryDisplayed(second)

	tracker.EntryDismissed(model.LevelNormal, first.ID, model.DismissReasonReplaced)
	assert.Empty(t, *closed)

	rec, ok := tracker.EntryForDBusID(9)
	require.True(t, ok)
	assert.Equal(t, second.ID, rec.EntryID)

	tracker.EntryDismissed(model.LevelNormal, second.ID, model.DismissReasonDismissed)
	assert.Equal(t, []closedCall{{9, dbus.CloseReasonDismissed}}, *closed)
}

func TestLifecycleTracker_FinishOnce(t *testing.T) {
	tracker, closed, _ := newRecordingTracker()
	entry := newTestEntry(t, "once")
	tracker.Bind(entry, 1)
	tracker.EntryDisplayed(entry)

	tracker.EntryDismissed(model.LevelNormal, entry.ID, model.DismissReasonDismissed)
	tracker.EntryDismissed(model.LevelNormal, entry.ID, model.DismissReasonClosed)

	assert.Len(t, *closed, 1)
}

func TestLifecycleTracker_UnboundEntries(t *testing.T) {
	tracker, closed, changes := newRecordingTracker()
	entry := newTestEntry(t, "control")

	tracker.EntryQueued(entry)
	tracker.EntryDisplayed(entry)
	tracker.EntryDismissed(model.LevelNormal, entry.ID, model.DismissReasonDismissed)

	assert.Empty(t, *closed)
	assert.Equal(t, []string{"queued", "displayed", "dismissed"}, *changes)
}

func TestLifecycleTracker_Active(t *testing.T) {
	tracker := NewLifecycleTracker()
	a := newTestEntry(t, "a")
	b := newTestEntry(t, "b")
	tracker.EntryDisplayed(a)
	tracker.EntryQueued(b)

	active := tracker.Active()
	require.Len(t, active, 2)
	assert.Equal(t, a.ID, active[0].EntryID)

	tracker.EntryDismissed(model.LevelNormal, a.ID, model.DismissReasonExpired)
	active = tracker.Active()
	require.Len(t, active, 1)
	assert.Equal(t, b.ID, active[0].EntryID)
}

func TestLifecycleTracker_HistoryLimit(t *testing.T) {
	tracker := NewLifecycleTracker()
	tracker.SetHistoryLimit(3)

	for i := range 5 {
		entry := newTestEntry(t, fmt.Sprintf("e%d", i))
		tracker.EntryDisplayed(entry)
		tracker.EntryDismissed(model.LevelNormal, entry.ID, model.DismissReasonExpired)
	}
	assert.Equal(t, 3, tracker.Count())

	live := newTestEntry(t, "live")
	tracker.EntryDisplayed(live)
	tracker.SetHistoryLimit(1)
	assert.Equal(t, 2, tracker.Count())
	_, ok := tracker.Get(live.ID)
	assert.True(t, ok)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "pending", StatusPending.String())
	assert.Equal(t, "displayed", StatusDisplayed.String())
	assert.Equal(t, "dismissed", StatusDismissed.String())
	assert.Equal(t, "dropped", StatusDropped.String())
	assert.Equal(t, "unknown", Status(99).String())
	assert.True(t, StatusDropped.Finished())
	assert.False(t, StatusPending.Finished())
}

func TestLifecycleTracker_FinishedCallback(t *testing.T) {
	tracker := NewLifecycleTracker()
	var finished []Record
	tracker.SetFinishedCallback(func(rec Record) {
		finished = append(finished, rec)
	})

	entry := newTestEntry(t, "toast")
	tracker.Bind(entry, 3)
	tracker.EntryQueued(entry)
	tracker.EntryDisplayed(entry)
	tracker.EntryDismissed(model.LevelNormal, entry.ID, model.DismissReasonDismissed)
	tracker.EntryDismissed(model.LevelNormal, entry.ID, model.DismissReasonExpired)

	require.Len(t, finished, 1)
	rec := finished[0]
	assert.Equal(t, StatusDismissed, rec.Status)
	assert.Equal(t, "toast", rec.Summary)
	assert.Equal(t, model.PriorityNormal, rec.Priority)
	assert.False(t, rec.FinishedAt.IsZero())

	h := rec.History()
	assert.Equal(t, entry.ID, h.EntryID)
	assert.Equal(t, uint32(3), h.DBusID)
	assert.Equal(t, "normal", h.Level)
	assert.Equal(t, "dismissed", h.Status)
	assert.Equal(t, 500, h.Priority)
	assert.True(t, h.WasDisplayed())
}
