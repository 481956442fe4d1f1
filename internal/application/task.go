package application

import "context"

// Task is a handle to a queued persistence operation. Callers may wait on it
// or drop it; the operation runs either way.
type Task struct {
	done chan struct{}
	err  error
}

func newTask() *Task {
	return &Task{done: make(chan struct{})}
}

// completedTask returns a Task that has already finished with err.
func completedTask(err error) *Task {
	t := newTask()
	t.complete(err)
	return t
}

func (t *Task) complete(err error) {
	t.err = err
	close(t.done)
}

// Done returns a channel closed when the operation has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the operation finishes or ctx is done, and returns the
// operation's error or ctx.Err().
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
