package midi

import (
	"github.com/justyntemme/augo/pkg/framework/queue"
)

// DefaultQueueSize is the ring size used when none is configured.
const DefaultQueueSize = 1024

// EventQueue carries events from a single producer thread into the render
// callback without locking or allocating.
type EventQueue struct {
	ring *queue.SPSC[Event]
}

func NewEventQueue(size int) (*EventQueue, error) {
	ring, err := queue.New[Event](size)
	if err != nil {
		return nil, err
	}
	return &EventQueue{ring: ring}, nil
}

// Add enqueues an event; it reports false if the queue was full and the
// event was dropped.
func (q *EventQueue) Add(e Event) bool {
	e.Next = nil
	return q.ring.Push(e)
}

// Take links all pending events in arrival order and returns the head of the
// chain. The chain points into the queue's storage and stays valid until
// Release is called with the returned snapshot.
func (q *EventQueue) Take() (head *Event, count int, snapshot uint32) {
	first, second, snapshot := q.ring.Drain()
	var prev *Event
	for _, seg := range [2][]Event{first, second} {
		for i := range seg {
			e := &seg[i]
			e.Next = nil
			if prev == nil {
				head = e
			} else {
				prev.Next = e
			}
			prev = e
		}
	}
	return head, len(first) + len(second), snapshot
}

// Release frees the events returned by Take.
func (q *EventQueue) Release(snapshot uint32) {
	q.ring.Release(snapshot)
}

// Clear drops every pending event. Must not run concurrently with Add or
// Take.
func (q *EventQueue) Clear() {
	q.ring.Reset()
}

func (q *EventQueue) Len() int {
	return q.ring.Len()
}

func (q *EventQueue) Cap() int {
	return q.ring.Cap()
}

// Dropped returns the number of events lost to a full queue.
func (q *EventQueue) Dropped() uint64 {
	return q.ring.Dropped()
}
