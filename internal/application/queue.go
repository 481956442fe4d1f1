package application

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// operation is a single unit of store work executed by the queue worker.
type operation struct {
	name string
	run  func(ctx context.Context) error
	task *Task
}

// opQueue runs store operations one at a time, in enqueue order, on a single
// worker goroutine. Enqueue never blocks, so callers may hold their own locks
// while queuing.
type opQueue struct {
	logger  *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending []operation
	closing bool

	wake chan struct{}
	done chan struct{}
}

func newOpQueue(logger *slog.Logger, timeout time.Duration) *opQueue {
	q := &opQueue{
		logger:  logger,
		timeout: timeout,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go q.loop()
	return q
}

func (q *opQueue) enqueue(name string, run func(ctx context.Context) error) *Task {
	q.mu.Lock()
	if q.closing {
		q.mu.Unlock()
		return completedTask(ErrManagerClosed)
	}
	t := newTask()
	q.pending = append(q.pending, operation{name: name, run: run, task: t})
	q.mu.Unlock()

	q.signal()
	return t
}

func (q *opQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *opQueue) loop() {
	defer close(q.done)

	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			closing := q.closing
			q.mu.Unlock()
			if closing {
				return
			}
			<-q.wake
			continue
		}
		op := q.pending[0]
		q.pending[0] = operation{}
		q.pending = q.pending[1:]
		q.mu.Unlock()

		q.execute(op)
	}
}

// execute runs op on a background context; the caller's request may already
// be gone by the time a fire-and-forget write reaches the store.
func (q *opQueue) execute(op operation) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	start := time.Now()
	err := op.run(ctx)
	if err != nil {
		q.logger.Error("persistence operation failed", "op", op.name, "error", err)
	} else {
		q.logger.Debug("persistence operation complete", "op", op.name, "duration", time.Since(start))
	}
	op.task.complete(err)
}

// close stops accepting work, drains what is already queued, and waits for
// the worker to exit.
func (q *opQueue) close() {
	q.mu.Lock()
	q.closing = true
	q.mu.Unlock()

	q.signal()
	<-q.done
}
