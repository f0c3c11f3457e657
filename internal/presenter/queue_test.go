package presenter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/entrystack/internal/model"
)

func queueNames(q *Queue) []string {
	var names []string
	for _, item := range q.Items() {
		names = append(names, item.Entry.Name())
	}
	return names
}

func TestQueue_OrdersByPriorityThenFIFO(t *testing.T) {
	q := NewQueue()
	for _, tc := range []struct {
		name     string
		priority model.Priority
	}{
		{"a", 1}, {"b", 5}, {"c", 3}, {"d", 5}, {"e", 1}, {"f", 9},
	} {
		q.Enqueue(&QueueItem{Entry: newTestEntry(t, tc.name, model.LevelNormal, model.Enqueue(tc.priority))})
	}

	assert.Equal(t, []string{"f", "b", "d", "c", "a", "e"}, queueNames(q))

	var dequeued []string
	var last model.Priority = model.PriorityMax + 1
	for !q.IsEmpty() {
		item, ok := q.Dequeue()
		require.True(t, ok)
		assert.LessOrEqual(t, item.Entry.Priority(), last)
		last = item.Entry.Priority()
		dequeued = append(dequeued, item.Entry.Name())
	}
	assert.Equal(t, []string{"f", "b", "d", "c", "a", "e"}, dequeued)

	_, ok := q.Dequeue()
	assert.False(t, ok)
}

func TestQueue_DequeueLevel(t *testing.T) {
	q := NewQueue()
	q.Enqueue(&QueueItem{Entry: newTestEntry(t, "alert", model.LevelAlert, model.Enqueue(9))})
	q.Enqueue(&QueueItem{Entry: newTestEntry(t, "normal", model.LevelNormal, model.Enqueue(1))})

	item, ok := q.DequeueLevel(model.LevelNormal)
	require.True(t, ok)
	assert.Equal(t, "normal", item.Entry.Name())

	_, ok = q.DequeueLevel(model.LevelNormal)
	assert.False(t, ok)
	assert.Equal(t, 1, q.Len())
}

func TestQueue_Removals(t *testing.T) {
	newQueue := func() *Queue {
		q := NewQueue()
		for _, tc := range []struct {
			name     string
			priority model.Priority
		}{
			{"x", 1}, {"y", 5}, {"x", 7}, {"z", 3},
		} {
			q.Enqueue(&QueueItem{Entry: newTestEntry(t, tc.name, model.LevelNormal, model.Enqueue(tc.priority))})
		}
		return q
	}

	t.Run("named", func(t *testing.T) {
		q := newQueue()
		assert.True(t, q.Contains("x"))
		removed := q.RemoveNamed("x")
		assert.Len(t, removed, 2)
		assert.False(t, q.Contains("x"))
		assert.Equal(t, []string{"y", "z"}, queueNames(q))
		assert.Empty(t, q.RemoveNamed("missing"))
	})

	t.Run("priority threshold inclusive", func(t *testing.T) {
		q := newQueue()
		removed := q.RemoveAtMost(5)
		assert.Len(t, removed, 3)
		assert.Equal(t, []string{"x"}, queueNames(q))
	})

	t.Run("all", func(t *testing.T) {
		q := newQueue()
		removed := q.RemoveAll()
		assert.Len(t, removed, 4)
		assert.True(t, q.IsEmpty())
		assert.False(t, q.Contains("y"))
	})
}

func TestQueue_ReenqueueSameEntryMoves(t *testing.T) {
	q := NewQueue()
	e := newTestEntry(t, "dup", model.LevelNormal, model.Enqueue(2))
	q.Enqueue(&QueueItem{Entry: e})
	q.Enqueue(&QueueItem{Entry: e})
	assert.Equal(t, 1, q.Len())
}

func TestQueue_RemoveID(t *testing.T) {
	q := NewQueue()
	a := newTestEntry(t, "same", model.LevelNormal, model.Enqueue(1))
	b := newTestEntry(t, "same", model.LevelNormal, model.Enqueue(1))
	q.Enqueue(&QueueItem{Entry: a})
	q.Enqueue(&QueueItem{Entry: b})

	item, ok := q.RemoveID(a.ID)
	require.True(t, ok)
	assert.Same(t, a, item.Entry)
	assert.True(t, q.Contains("same"))

	_, ok = q.RemoveID(a.ID)
	assert.False(t, ok)
	assert.Equal(t, 1, q.Len())
}
