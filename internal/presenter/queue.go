package presenter

import (
	"container/list"
	"time"

	"github.com/jmylchreest/entrystack/internal/model"
)

// QueueItem is an entry waiting for its turn plus what is needed to show it.
type QueueItem struct {
	Entry        *model.Entry
	ClaimPrimary bool
	Fallback     Fallback
	QueuedAt     time.Time
}

// Queue orders pending entries by priority, FIFO among equal priorities.
// It is unbounded.
type Queue struct {
	items *list.List               // of *QueueItem, highest priority first
	index map[string]*list.Element // by entry ID
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{
		items: list.New(),
		index: make(map[string]*list.Element),
	}
}

// Enqueue inserts item behind every item of greater or equal priority.
func (q *Queue) Enqueue(item *QueueItem) {
	if item.QueuedAt.IsZero() {
		item.QueuedAt = time.Now()
	}
	if old, exists := q.index[item.Entry.ID]; exists {
		q.items.Remove(old)
	}

	var insertBefore *list.Element
	for e := q.items.Front(); e != nil; e = e.Next() {
		existing := e.Value.(*QueueItem)
		if item.Entry.Priority() > existing.Entry.Priority() {
			insertBefore = e
			break
		}
	}

	var elem *list.Element
	if insertBefore != nil {
		elem = q.items.InsertBefore(item, insertBefore)
	} else {
		elem = q.items.PushBack(item)
	}
	q.index[item.Entry.ID] = elem
}

// Dequeue removes and returns the highest priority item.
func (q *Queue) Dequeue() (*QueueItem, bool) {
	return q.dequeueMatching(func(*QueueItem) bool { return true })
}

// DequeueLevel removes and returns the highest priority item for level.
func (q *Queue) DequeueLevel(level model.WindowLevel) (*QueueItem, bool) {
	return q.dequeueMatching(func(item *QueueItem) bool {
		return item.Entry.Level() == level
	})
}

func (q *Queue) dequeueMatching(match func(*QueueItem) bool) (*QueueItem, bool) {
	for e := q.items.Front(); e != nil; e = e.Next() {
		item := e.Value.(*QueueItem)
		if match(item) {
			q.items.Remove(e)
			delete(q.index, item.Entry.ID)
			return item, true
		}
	}
	return nil, false
}

// RemoveAll empties the queue and returns what was removed.
func (q *Queue) RemoveAll() []*QueueItem {
	removed := q.Items()
	q.items.Init()
	q.index = make(map[string]*list.Element)
	return removed
}

// RemoveNamed removes every item whose entry is called name.
func (q *Queue) RemoveNamed(name string) []*QueueItem {
	return q.removeMatching(func(item *QueueItem) bool {
		return item.Entry.Name() == name
	})
}

// RemoveID removes the item whose entry has id.
func (q *Queue) RemoveID(id string) (*QueueItem, bool) {
	elem, exists := q.index[id]
	if !exists {
		return nil, false
	}
	q.items.Remove(elem)
	delete(q.index, id)
	return elem.Value.(*QueueItem), true
}

// RemoveAtMost removes every item with priority lower than or equal to threshold.
func (q *Queue) RemoveAtMost(threshold model.Priority) []*QueueItem {
	return q.removeMatching(func(item *QueueItem) bool {
		return item.Entry.Priority() <= threshold
	})
}

func (q *Queue) removeMatching(match func(*QueueItem) bool) []*QueueItem {
	var removed []*QueueItem
	for e := q.items.Front(); e != nil; {
		next := e.Next()
		item := e.Value.(*QueueItem)
		if match(item) {
			q.items.Remove(e)
			delete(q.index, item.Entry.ID)
			removed = append(removed, item)
		}
		e = next
	}
	return removed
}

// Contains reports whether an item called name is queued.
func (q *Queue) Contains(name string) bool {
	for e := q.items.Front(); e != nil; e = e.Next() {
		if e.Value.(*QueueItem).Entry.Name() == name {
			return true
		}
	}
	return false
}

// IsEmpty reports whether nothing is queued.
func (q *Queue) IsEmpty() bool {
	return q.items.Len() == 0
}

// Len returns the number of queued items.
func (q *Queue) Len() int {
	return q.items.Len()
}

// Items returns the queued items in dequeue order.
func (q *Queue) Items() []*QueueItem {
	items := make([]*QueueItem, 0, q.items.Len())
	for e := q.items.Front(); e != nil; e = e.Next() {
		items = append(items, e.Value.(*QueueItem))
	}
	return items
}
