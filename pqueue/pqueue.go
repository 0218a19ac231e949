// Package pqueue provides an indexed binary min-heap.
//
// Every item carries its heap index in a side map, so a queued item can be
// re-prioritised in O(log n) without scanning the heap. The A* open set is
// the main consumer.
package pqueue

import "container/heap"

// entry is a single heap slot.
type entry[T comparable] struct {
	item     T
	priority float64
}

// Queue is a min-priority queue of unique items.
// The zero value is not usable; create queues with New.
type Queue[T comparable] struct {
	h entries[T]
}

// entries implements heap.Interface and keeps index in sync on every swap.
type entries[T comparable] struct {
	slots []entry[T]
	index map[T]int
}

func (e *entries[T]) Len() int           { return len(e.slots) }
func (e *entries[T]) Less(i, j int) bool { return e.slots[i].priority < e.slots[j].priority }
func (e *entries[T]) Swap(i, j int) {
	e.slots[i], e.slots[j] = e.slots[j], e.slots[i]
	e.index[e.slots[i].item] = i
	e.index[e.slots[j].item] = j
}

func (e *entries[T]) Push(x any) {
	en := x.(entry[T])
	e.index[en.item] = len(e.slots)
	e.slots = append(e.slots, en)
}

func (e *entries[T]) Pop() any {
	n := len(e.slots)
	en := e.slots[n-1]
	var zero entry[T]
	e.slots[n-1] = zero
	e.slots = e.slots[:n-1]
	delete(e.index, en.item)
	return en
}

// New creates an empty queue with room for capacity items.
func New[T comparable](capacity int) *Queue[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Queue[T]{
		h: entries[T]{
			slots: make([]entry[T], 0, capacity),
			index: make(map[T]int, capacity),
		},
	}
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	return q.h.Len()
}

// Push enqueues item with the given priority.
// If the item is already queued its priority is replaced instead.
func (q *Queue[T]) Push(item T, priority float64) {
	if q.Update(item, priority) {
		return
	}
	heap.Push(&q.h, entry[T]{item: item, priority: priority})
}

// Pop removes and returns the item with the lowest priority.
// ok is false when the queue is empty.
func (q *Queue[T]) Pop() (item T, priority float64, ok bool) {
	if q.h.Len() == 0 {
		return item, 0, false
	}
	en := heap.Pop(&q.h).(entry[T])
	return en.item, en.priority, true
}

// Peek returns the lowest-priority item without removing it.
func (q *Queue[T]) Peek() (item T, priority float64, ok bool) {
	if q.h.Len() == 0 {
		return item, 0, false
	}
	en := q.h.slots[0]
	return en.item, en.priority, true
}

// Update changes the priority of a queued item and restores heap order.
// Both decrease-key and increase-key are supported.
// Returns false if the item is not queued.
func (q *Queue[T]) Update(item T, priority float64) bool {
	i, ok := q.h.index[item]
	if !ok {
		return false
	}
	q.h.slots[i].priority = priority
	heap.Fix(&q.h, i)
	return true
}

// Contains reports whether item is queued.
func (q *Queue[T]) Contains(item T) bool {
	_, ok := q.h.index[item]
	return ok
}

// Priority returns the current priority of a queued item.
func (q *Queue[T]) Priority(item T) (float64, bool) {
	i, ok := q.h.index[item]
	if !ok {
		return 0, false
	}
	return q.h.slots[i].priority, true
}

// Remove drops item from the queue. Returns false if it was not queued.
func (q *Queue[T]) Remove(item T) bool {
	i, ok := q.h.index[item]
	if !ok {
		return false
	}
	heap.Remove(&q.h, i)
	return true
}

// Reset empties the queue but keeps its allocated storage.
func (q *Queue[T]) Reset() {
	var zero entry[T]
	for i := range q.h.slots {
		q.h.slots[i] = zero
	}
	q.h.slots = q.h.slots[:0]
	clear(q.h.index)
}
