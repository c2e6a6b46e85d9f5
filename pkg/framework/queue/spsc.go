// Package queue provides the bounded lock-free queue that carries events from
// control threads into the audio callback.
package queue

import (
	"fmt"
	"sync/atomic"
)

// SPSC is a fixed-capacity single-producer single-consumer ring.
//
// The write head is only stored by the producer and the read head only by
// the consumer. Heads are kept masked to [0, size), so one slot is always
// left empty: the ring is full when advancing the write head would make it
// equal to the read head. A push into a full ring drops the new item and
// never overwrites or blocks.
type SPSC[T any] struct {
	slots []T
	mask  uint32

	write   atomic.Uint32
	read    atomic.Uint32
	dropped atomic.Uint64
}

// New creates a ring with size slots. size must be a power of two and at
// least 2; the ring holds at most size-1 items.
func New[T any](size int) (*SPSC[T], error) {
	if size < 2 || size&(size-1) != 0 || size > 1<<30 {
		return nil, fmt.Errorf("queue size %d must be a power of two between 2 and 2^30", size)
	}
	return &SPSC[T]{
		slots: make([]T, size),
		mask:  uint32(size - 1),
	}, nil
}

// MustNew is like New but panics on an invalid size.
func MustNew[T any](size int) *SPSC[T] {
	q, err := New[T](size)
	if err != nil {
		panic(err)
	}
	return q
}

// Push appends v. It reports false, and counts a drop, when the ring is full.
// Producer side only.
func (q *SPSC[T]) Push(v T) bool {
	w := q.write.Load()
	next := (w + 1) & q.mask
	if next == q.read.Load() {
		q.dropped.Add(1)
		return false
	}
	q.slots[w] = v
	// Publishes the slot to the consumer.
	q.write.Store(next)
	return true
}

// Drain returns every pending item, oldest first, as at most two slices of
// the backing array, together with the write head observed. The items stay
// owned by the ring until Release is called with that snapshot. Consumer
// side only; nothing is allocated.
func (q *SPSC[T]) Drain() (first, second []T, snapshot uint32) {
	r := q.read.Load()
	w := q.write.Load()
	switch {
	case r == w:
		return nil, nil, w
	case r < w:
		return q.slots[r:w], nil, w
	default:
		return q.slots[r:], q.slots[:w], w
	}
}

// Release marks everything up to snapshot as consumed. Consumer side only.
func (q *SPSC[T]) Release(snapshot uint32) {
	q.read.Store(snapshot & q.mask)
}

// Pop removes and returns the oldest item. Consumer side only.
func (q *SPSC[T]) Pop() (T, bool) {
	var zero T
	r := q.read.Load()
	if r == q.write.Load() {
		return zero, false
	}
	v := q.slots[r]
	q.slots[r] = zero
	q.read.Store((r + 1) & q.mask)
	return v, true
}

// Reset discards pending items. It must not race with Push or Drain.
func (q *SPSC[T]) Reset() {
	q.write.Store(0)
	q.read.Store(0)
}

// Len returns the number of pending items. It is exact only when called from
// the producer or the consumer while the other side is idle.
func (q *SPSC[T]) Len() int {
	w := q.write.Load()
	r := q.read.Load()
	return int((w - r) & q.mask)
}

// Cap returns the maximum number of pending items.
func (q *SPSC[T]) Cap() int {
	return int(q.mask)
}

// Dropped returns the number of items rejected because the ring was full.
func (q *SPSC[T]) Dropped() uint64 {
	return q.dropped.Load()
}
