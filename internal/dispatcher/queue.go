package dispatcher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/oshokin/alert-monitor/internal/domain/alert"
	"github.com/oshokin/alert-monitor/internal/logger"
)

// DefaultQueueSize is the number of readings buffered ahead of the consumer.
const DefaultQueueSize = 1

var (
	// ErrQueueClosed is returned by Publish once the consumer has stopped.
	ErrQueueClosed = errors.New("dispatcher queue closed")
	// ErrAlreadyRunning is returned when a second consumer is started.
	ErrAlreadyRunning = errors.New("dispatcher queue already has a consumer")
)

// Executor runs fn on the context that owns UI state.
type Executor interface {
	Do(fn func())
}

// ExecutorFunc adapts a plain function, such as fyne.Do, to Executor.
type ExecutorFunc func(fn func())

// Do calls f(fn).
func (f ExecutorFunc) Do(fn func()) {
	f(fn)
}

// Inline runs fn on the calling goroutine. Used when the queue consumer
// itself is the UI context.
//
//nolint:gochecknoglobals // Stateless executor.
var Inline Executor = ExecutorFunc(func(fn func()) { fn() })

// ApplyFunc writes a reading into UI state.
type ApplyFunc func(alert.Reading)

// Queue is a single-consumer channel of readings.
type Queue struct {
	// updates buffers readings between the publisher and the consumer.
	updates chan alert.Reading
	// closed is closed when the consumer returns.
	closed chan struct{}
	// closeOnce guards closed.
	closeOnce sync.Once
	// running is set while a consumer is draining.
	running atomic.Bool

	// executor runs apply on the UI context.
	executor Executor
	// apply writes a drained reading.
	apply ApplyFunc
}

// Option configures a Queue.
type Option func(*Queue)

// WithExecutor sets the executor used to reach the UI context.
func WithExecutor(executor Executor) Option {
	return func(q *Queue) {
		if executor != nil {
			q.executor = executor
		}
	}
}

// NewQueue creates a queue with the given buffer size that applies
// readings through apply. A non-positive size falls back to DefaultQueueSize.
func NewQueue(size int, apply ApplyFunc, opts ...Option) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}

	q := &Queue{
		updates:  make(chan alert.Reading, size),
		closed:   make(chan struct{}),
		executor: Inline,
		apply:    apply,
	}

	for _, opt := range opts {
		opt(q)
	}

	return q
}

// Name identifies the queue consumer as a hosted service.
func (q *Queue) Name() string {
	return "ui-dispatcher"
}

// Publish enqueues a reading. It blocks until the reading is buffered,
// ctx ends, or the consumer has stopped.
func (q *Queue) Publish(ctx context.Context, reading alert.Reading) error {
	select {
	case <-q.closed:
		return ErrQueueClosed
	default:
	}

	select {
	case q.updates <- reading:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closed:
		return ErrQueueClosed
	}
}

// Run drains the queue until ctx ends. Pending readings are dropped on
// stop and the queue does not accept new ones afterwards.
func (q *Queue) Run(ctx context.Context) error {
	if !q.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	defer q.closeOnce.Do(func() { close(q.closed) })

	ctx = logger.WithName(ctx, q.Name())
	logger.Debug(ctx, "Dispatcher queue started")

	for {
		select {
		case <-ctx.Done():
			logger.DebugKV(ctx, "Dispatcher queue stopped", "dropped", len(q.updates))
			return nil
		case reading := <-q.updates:
			if ctx.Err() != nil {
				return nil
			}

			q.executor.Do(func() {
				q.apply(reading)
			})
		}
	}
}
