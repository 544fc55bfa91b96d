package security

import (
	"context"

	audit "authgate/pkg/platform/audit"
)

// Publisher is the non-blocking SecurityAuditor. Emit only queues; a worker
// drains the queue through Next and Ready.
type Publisher struct {
	queue *Queue
	ready chan struct{}
}

func NewPublisher(capacity int) *Publisher {
	return &Publisher{
		queue: NewQueue(capacity),
		ready: make(chan struct{}, 1),
	}
}

// Emit buffers the event and wakes the worker.
func (p *Publisher) Emit(_ context.Context, event audit.SecurityEvent) {
	p.queue.Push(event)
	select {
	case p.ready <- struct{}{}:
	default:
	}
}

// Ready fires after Emit when the worker may have new events to drain.
func (p *Publisher) Ready() <-chan struct{} {
	return p.ready
}

// Next removes up to n queued events.
func (p *Publisher) Next(n int) []audit.SecurityEvent {
	return p.queue.PopBatch(n)
}

// Pending returns the number of queued events.
func (p *Publisher) Pending() int {
	return p.queue.Len()
}

// Dropped returns how many events were evicted by overflow.
func (p *Publisher) Dropped() int64 {
	return p.queue.Dropped()
}
