// Package dispatch serializes work onto a single goroutine. The audio engine
// requires all of its methods to run on one owning control sequence; routing
// callers through a Queue makes that contract structural instead of asserted.
package dispatch

import (
	"log/slog"
	"sync"
)

// DefaultBuffer is the task channel capacity used when Config.Buffer is not
// set.
const DefaultBuffer = 64

// Config configures a Queue.
type Config struct {
	// Buffer is the capacity of the task channel. Submit blocks once the
	// buffer is full, applying backpressure to event producers.
	Buffer int
}

// Queue runs submitted tasks one at a time, in submission order, on a single
// goroutine.
type Queue struct {
	tasks     chan func()
	done      chan struct{}
	closeOnce sync.Once
	logger    *slog.Logger
}

// New creates a Queue and starts its consumer goroutine.
func New(config Config, logger *slog.Logger) *Queue {
	if config.Buffer <= 0 {
		config.Buffer = DefaultBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}

	q := &Queue{
		tasks:  make(chan func(), config.Buffer),
		done:   make(chan struct{}),
		logger: logger,
	}
	go q.run()
	return q
}

func (q *Queue) run() {
	for task := range q.tasks {
		task()
	}
	q.logger.Debug("dispatch queue drained")
	close(q.done)
}

// Submit enqueues task for execution on the queue's goroutine. Tasks run to
// completion before the next one starts. Submit must not be called after
// Close.
func (q *Queue) Submit(task func()) {
	q.tasks <- task
}

// Call runs task on the queue's goroutine and waits for it to complete. Use
// it for request/response access such as reading the current state.
func (q *Queue) Call(task func()) {
	done := make(chan struct{})
	q.Submit(func() {
		defer close(done)
		task()
	})
	<-done
}

// Close stops the queue after draining already-submitted tasks and waits for
// the consumer goroutine to exit. Close is idempotent.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		close(q.tasks)
	})
	<-q.done
}
