package worker

import (
	"context"
	"log/slog"
	"time"

	audit "authgate/pkg/platform/audit"
)

// Source is the buffered side of a security publisher.
type Source interface {
	Ready() <-chan struct{}
	Next(n int) []audit.SecurityEvent
}

type namedSink struct {
	name    string
	sink    audit.Sink
	breaker *CircuitBreaker
}

// Worker drains a Source in batches and fans each batch out to its sinks.
// A failing sink never blocks the others.
type Worker struct {
	source        Source
	sinks         []namedSink
	logger        *slog.Logger
	batchSize     int
	flushInterval time.Duration
	flushTimeout  time.Duration
	now           func() time.Time
}

// Option configures a Worker.
type Option func(*Worker)

func WithBatchSize(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

func WithFlushInterval(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.flushInterval = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(w *Worker) {
		if now != nil {
			w.now = now
		}
	}
}

// WithSink registers a sink under a name used in logs.
func WithSink(name string, sink audit.Sink) Option {
	return func(w *Worker) {
		if sink != nil {
			w.sinks = append(w.sinks, namedSink{name: name, sink: sink})
		}
	}
}

func NewWorker(source Source, logger *slog.Logger, opts ...Option) *Worker {
	w := &Worker{
		source:        source,
		logger:        logger,
		batchSize:     100,
		flushInterval: time.Second,
		flushTimeout:  5 * time.Second,
		now:           time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	for i := range w.sinks {
		w.sinks[i].breaker = NewCircuitBreaker(5, 30*time.Second, w.now)
	}
	return w
}

// Run processes events until ctx is cancelled, then drains what is left
// with a bounded timeout and returns nil.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.flushTimeout)
			w.Flush(drainCtx)
			cancel()
			return nil
		case <-w.source.Ready():
			w.Flush(ctx)
		case <-ticker.C:
			w.Flush(ctx)
		}
	}
}

// Flush drains the source completely.
func (w *Worker) Flush(ctx context.Context) {
	for {
		batch := w.source.Next(w.batchSize)
		if len(batch) == 0 {
			return
		}
		w.deliver(ctx, batch)
	}
}

func (w *Worker) deliver(ctx context.Context, batch []audit.SecurityEvent) {
	for _, s := range w.sinks {
		if !s.breaker.Allow() {
			w.logger.WarnContext(ctx, "audit sink circuit open, dropping batch",
				"sink", s.name,
				"events", len(batch),
			)
			continue
		}
		if err := s.sink.Write(ctx, batch); err != nil {
			s.breaker.RecordFailure()
			w.logger.ErrorContext(ctx, "failed to write audit batch",
				"sink", s.name,
				"events", len(batch),
				"error", err,
			)
			continue
		}
		s.breaker.RecordSuccess()
	}
}
