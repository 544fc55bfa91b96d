package security

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "authgate/pkg/platform/audit"
)

func event(action audit.AuditEvent) audit.SecurityEvent {
	return audit.SecurityEvent{Action: string(action), Severity: action.Severity()}
}

func actions(events []audit.SecurityEvent) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Action)
	}
	return out
}

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue(10)
	q.Push(event(audit.EventLoginSucceeded))
	q.Push(event(audit.EventLoggedOut))
	q.Push(event(audit.EventUserCreated))

	assert.Equal(t, []string{"login_succeeded", "logged_out"}, actions(q.PopBatch(2)))
	assert.Equal(t, 1, q.Len())
	assert.Equal(t, []string{"user_created"}, actions(q.PopBatch(5)))
	assert.Nil(t, q.PopBatch(1))
	assert.Nil(t, q.PopBatch(0))
}

func TestQueue_EvictsOldestNonCritical(t *testing.T) {
	q := NewQueue(3)
	q.Push(event(audit.EventRefreshReuseDetected))
	q.Push(event(audit.EventLoginFailed))
	q.Push(event(audit.EventCSRFInvalid))
	q.Push(event(audit.EventLoginFailed))

	assert.Equal(t, int64(1), q.Dropped())
	assert.Equal(t,
		[]string{"refresh_reuse_detected", "csrf_invalid", "login_failed"},
		actions(q.PopBatch(10)),
	)
}

func TestQueue_AllCriticalEvictsOldest(t *testing.T) {
	q := NewQueue(2)
	first := event(audit.EventRefreshReuseDetected)
	first.Subject = "first"
	q.Push(first)
	q.Push(event(audit.EventAssertionReplayed))
	q.Push(event(audit.EventRefreshReuseDetected))

	batch := q.PopBatch(10)
	require.Len(t, batch, 2)
	assert.Equal(t, []string{"assertion_replayed", "refresh_reuse_detected"}, actions(batch))
	assert.Empty(t, batch[1].Subject)
	assert.Equal(t, int64(1), q.Dropped())
}

func TestQueue_DefaultCapacity(t *testing.T) {
	q := NewQueue(0)
	for range defaultCapacity + 1 {
		q.Push(event(audit.EventLoginFailed))
	}
	assert.Equal(t, defaultCapacity, q.Len())
	assert.Equal(t, int64(1), q.Dropped())
}

func TestPublisher_ConcurrentEmit(t *testing.T) {
	p := NewPublisher(1000)
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				p.Emit(context.Background(), event(audit.EventRefreshReuseDetected))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 500, p.Pending())
	assert.Zero(t, p.Dropped())
	select {
	case <-p.Ready():
	default:
		t.Fatal("expected ready signal after emit")
	}
	assert.Len(t, p.Next(200), 200)
	assert.Equal(t, 300, p.Pending())
}
