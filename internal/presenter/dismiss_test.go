package presenter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/entrystack/internal/model"
)

func TestParseDescriptor(t *testing.T) {
	tests := []struct {
		kind      string
		name      string
		threshold model.Priority
		want      Descriptor
		wantErr   bool
	}{
		{kind: "", want: Displayed()},
		{kind: "displayed", want: Displayed()},
		{kind: "Specific", name: "toast", want: Specific("toast")},
		{kind: "name", name: "toast", want: Specific("toast")},
		{kind: "specific", wantErr: true},
		{kind: "priority", threshold: 300, want: PriorityAtMost(300)},
		{kind: "enqueued", want: EnqueuedOnly()},
		{kind: " all ", want: All()},
		{kind: "everything", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			got, err := ParseDescriptor(tt.kind, tt.name, tt.threshold)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidDescriptor)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDescriptor_String(t *testing.T) {
	assert.Equal(t, "displayed", Displayed().String())
	assert.Equal(t, "specific(toast)", Specific("toast").String())
	assert.Equal(t, "priority(<=250)", PriorityAtMost(250).String())
	assert.Equal(t, "all", All().String())
}

func TestDismiss_NoSurfacesCompletesImmediately(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, 1, h.dismiss(All()))
	assert.Equal(t, 1, h.dismiss(Displayed()))

	// A nil callback is fine.
	h.s.Dismiss(All(), nil)
}

func TestDismiss_NoSurfacesLeavesQueueAlone(t *testing.T) {
	h := newHarness(t)
	// Queue an alert entry behind a displayed one, then drop the surface
	// without draining so the queue outlives every surface.
	h.display("shown", model.LevelAlert, model.Enqueue(5))
	h.display("waiting", model.LevelAlert, model.Enqueue(1))
	h.s.surfaces.Release(model.LevelAlert)

	assert.Equal(t, 1, h.dismiss(EnqueuedOnly()))
	assert.True(t, h.s.QueueContains("waiting"))
}

func TestDismiss_DisplayedTargetsNormalLevelOnly(t *testing.T) {
	h := newHarness(t)
	h.display("alert", model.LevelAlert, model.Override(5, false))

	assert.Equal(t, 1, h.dismiss(Displayed()))
	assert.Equal(t, "alert", h.top(model.LevelAlert))
	assert.Zero(t, h.factory.current(t, model.LevelAlert).host.animateOuts)

	h.display("normal", model.LevelNormal, model.Override(5, false))
	assert.Equal(t, 1, h.dismiss(Displayed()))
	assert.False(t, h.s.IsCurrentlyDisplaying("normal"))
	assert.True(t, h.s.IsCurrentlyDisplaying("alert"))
}

func TestDismiss_SpecificWithoutMatchIsNoop(t *testing.T) {
	h := newHarness(t)
	h.display("shown", model.LevelNormal, model.Enqueue(3))
	h.display("waiting", model.LevelNormal, model.Enqueue(1))

	assert.Equal(t, 1, h.dismiss(Specific("missing")))

	assert.True(t, h.s.IsCurrentlyDisplaying("shown"))
	assert.True(t, h.s.QueueContains("waiting"))
	assert.Zero(t, h.factory.current(t, model.LevelNormal).host.animateOuts)
}

func TestDismiss_SpecificRemovesQueuedAndDisplayed(t *testing.T) {
	h := newHarness(t)
	h.display("toast", model.LevelNormal, model.Enqueue(3))
	h.display("toast", model.LevelNormal, model.Enqueue(2))
	h.display("other", model.LevelNormal, model.Enqueue(1))

	assert.Equal(t, 1, h.dismiss(Specific("toast")))

	assert.Equal(t, DropDismissed, h.observer.dropped["toast"])
	assert.False(t, h.s.QueueContains(""))
	assert.Equal(t, "other", h.top(model.LevelNormal))
	assert.False(t, h.s.IsCurrentlyDisplaying("toast"))
}

func TestDismiss_SpecificTargetsNamedEntryOnStackedHost(t *testing.T) {
	h := newHarness(t)
	h.factory.maxStack = 3
	x := h.display("X", model.LevelNormal, model.Override(5, false))
	h.display("Y", model.LevelNormal, model.Override(5, false))
	host := h.factory.current(t, model.LevelNormal).host
	require.Equal(t, []string{"X", "Y"}, host.onScreen())

	assert.Equal(t, 1, h.dismiss(Specific("X")))

	assert.Equal(t, []string{"Y"}, host.onScreen())
	assert.False(t, h.s.IsCurrentlyDisplaying("X"))
	assert.True(t, h.s.IsCurrentlyDisplaying("Y"))
	assert.Equal(t, model.DismissReasonDismissed, h.observer.dismissed[x.ID])
}

func TestDismiss_SpecificWaitsForLeavingEntry(t *testing.T) {
	h := newHarness(t)
	h.factory.async = true
	h.factory.maxStack = 3
	h.display("X", model.LevelNormal, model.Override(5, false))
	h.display("Y", model.LevelNormal, model.Override(5, false))
	host := h.factory.current(t, model.LevelNormal).host

	first, second := 0, 0
	h.s.Dismiss(Specific("X"), func() { first++ })
	h.s.Dismiss(Specific("X"), func() { second++ })
	assert.Zero(t, first)
	assert.Zero(t, second)

	host.finishPending()
	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
	assert.Equal(t, []string{"Y"}, host.onScreen())
}

func TestDismissEntry(t *testing.T) {
	h := newHarness(t)
	shown := h.display("dup", model.LevelNormal, model.Enqueue(3))
	first := h.display("dup", model.LevelNormal, model.Enqueue(2))
	second := h.display("dup", model.LevelNormal, model.Enqueue(1))

	calls := 0
	h.s.DismissEntry(first.ID, func() { calls++ })
	assert.Equal(t, 1, calls)
	require.Len(t, h.s.queue.Items(), 1)
	assert.Equal(t, second.ID, h.s.queue.Items()[0].Entry.ID)
	assert.Equal(t, DropDismissed, h.observer.dropped["dup"])

	h.s.DismissEntry(shown.ID, func() { calls++ })
	assert.Equal(t, 2, calls)
	assert.Equal(t, model.DismissReasonDismissed, h.observer.dismissed[shown.ID])
	assert.Equal(t, second.ID, h.factory.current(t, model.LevelNormal).host.top().ID)

	h.s.DismissEntry("missing", func() { calls++ })
	assert.Equal(t, 3, calls)
}

func TestDismiss_PriorityAtMost(t *testing.T) {
	h := newHarness(t)
	h.display("low", model.LevelNormal, model.Enqueue(3))
	h.display("high", model.LevelAlert, model.Override(8, false))
	h.display("q2", model.LevelNormal, model.Enqueue(2))
	h.display("q7", model.LevelNormal, model.Enqueue(7))

	assert.Equal(t, 1, h.dismiss(PriorityAtMost(5)))

	assert.Equal(t, DropDismissed, h.observer.dropped["q2"])
	assert.False(t, h.s.QueueContains(""))
	assert.Equal(t, "q7", h.top(model.LevelNormal))
	assert.Equal(t, "high", h.top(model.LevelAlert))
}

func TestDismiss_EnqueuedLeavesDisplayed(t *testing.T) {
	h := newHarness(t)
	h.display("shown", model.LevelNormal, model.Enqueue(3))
	h.display("a", model.LevelNormal, model.Enqueue(1))
	h.display("b", model.LevelNormal, model.Enqueue(1))

	assert.Equal(t, 1, h.dismiss(EnqueuedOnly()))

	assert.False(t, h.s.QueueContains(""))
	assert.True(t, h.s.IsCurrentlyDisplaying("shown"))
	assert.Zero(t, h.factory.current(t, model.LevelNormal).host.animateOuts)
}

func TestDismiss_AllEmptiesEverything(t *testing.T) {
	h := newHarness(t)
	h.display("status", model.LevelStatusBar, model.Override(5, false))
	h.display("alert", model.LevelAlert, model.Enqueue(5))
	h.display("normal", model.LevelNormal, model.Enqueue(5))
	h.display("queued", model.LevelNormal, model.Enqueue(1))

	assert.Equal(t, 1, h.dismiss(All()))

	assert.False(t, h.s.IsCurrentlyDisplaying(""))
	assert.False(t, h.s.QueueContains(""))
	assert.True(t, h.s.surfaces.IsEmpty())
	assert.Equal(t, 3, h.main.calls)
	for _, level := range model.WindowLevels {
		assert.True(t, h.factory.current(t, level).tornDown, level.String())
	}
}

func TestDismiss_CompletionWaitsForEveryAnimation(t *testing.T) {
	h := newHarness(t)
	h.factory.async = true
	h.display("alert", model.LevelAlert, model.Override(5, false))
	h.display("normal", model.LevelNormal, model.Override(5, false))

	calls := 0
	h.s.Dismiss(All(), func() { calls++ })
	assert.Zero(t, calls)

	// Still displayed while animating out.
	assert.True(t, h.s.IsCurrentlyDisplaying("alert"))

	h.factory.current(t, model.LevelNormal).host.finishPending()
	assert.Zero(t, calls)

	h.factory.current(t, model.LevelAlert).host.finishPending()
	assert.Equal(t, 1, calls)
	assert.False(t, h.s.IsCurrentlyDisplaying(""))

	h.factory.current(t, model.LevelAlert).host.finishPending()
	assert.Equal(t, 1, calls)
}

func TestCompletion_FiresOnce(t *testing.T) {
	calls := 0
	c := &completion{fn: func() { calls++ }}
	report := c.add()
	report()
	assert.Zero(t, calls, "must not fire before armed")

	c.arm()
	assert.Equal(t, 1, calls)

	report()
	c.arm()
	assert.Equal(t, 1, calls)
}
