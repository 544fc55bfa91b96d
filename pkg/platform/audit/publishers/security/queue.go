package security

import (
	"slices"
	"sync"

	audit "authgate/pkg/platform/audit"
)

const defaultCapacity = 1024

// Queue is a bounded FIFO of security events. When full it evicts the oldest
// non-critical event, so a burst of failed logins cannot push a reuse
// detection out before the worker ships it. Only a queue holding nothing but
// critical events evicts a critical one.
type Queue struct {
	mu       sync.Mutex
	events   []audit.SecurityEvent
	capacity int
	dropped  int64
}

func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Queue{
		events:   make([]audit.SecurityEvent, 0, capacity),
		capacity: capacity,
	}
}

// Push appends event, evicting one older event when the queue is full.
func (q *Queue) Push(event audit.SecurityEvent) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) >= q.capacity {
		q.evict()
	}
	q.events = append(q.events, event)
}

func (q *Queue) evict() {
	victim := slices.IndexFunc(q.events, func(e audit.SecurityEvent) bool {
		return e.Severity != audit.SeverityCritical
	})
	if victim < 0 {
		victim = 0
	}
	q.events = slices.Delete(q.events, victim, victim+1)
	q.dropped++
}

// PopBatch removes up to n events, oldest first.
func (q *Queue) PopBatch(n int) []audit.SecurityEvent {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 || n <= 0 {
		return nil
	}
	n = min(n, len(q.events))
	batch := slices.Clone(q.events[:n])
	q.events = slices.Delete(q.events, 0, n)
	return batch
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Dropped counts evictions since creation.
func (q *Queue) Dropped() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
