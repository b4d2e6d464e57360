package worker

import (
	"context"
	"runtime"
	"sync"

	"github.com/jzx17/stealpool/pkg/types"
)

// Handle is the one-shot result slot of a submitted task.
// It is fulfilled exactly once with a value, "no value" or an error.
type Handle[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
	err   error

	task *Task
	pool *StealingPool
}

func newHandle[T any](pool *StealingPool) *Handle[T] {
	return &Handle[T]{
		done: make(chan struct{}),
		pool: pool,
	}
}

// resolvedHandle returns a handle that is already fulfilled with err
func resolvedHandle[T any](err error) *Handle[T] {
	h := newHandle[T](nil)
	var zero T
	h.resolve(zero, err)
	return h
}

// resolve stores the outcome; only the first call has an effect
func (h *Handle[T]) resolve(value T, err error) bool {
	resolved := false
	h.once.Do(func() {
		h.value = value
		h.err = err
		close(h.done)
		resolved = true
	})
	return resolved
}

// Done is closed once the outcome is known
func (h *Handle[T]) Done() <-chan struct{} {
	return h.done
}

// Ready reports whether the outcome is known
func (h *Handle[T]) Ready() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Get blocks until the task outcome is known and returns it.
//
// The error is nil when a value was produced. types.IsNoValue(err) holds when the
// task produced no value: it returned types.ErrNoValue, it was abandoned at
// shutdown (types.ErrAbandoned) or it was submitted to a closed pool
// (types.ErrPoolClosed). A failing or panicking task yields a *types.TaskError.
// If ctx ends first, ctx.Err() is returned and the task is left untouched.
//
// When ctx belongs to a task running on the same pool, the calling worker keeps
// running other pending tasks while it waits, so a task may wait on work it
// submitted even when it occupies the only worker.
func (h *Handle[T]) Get(ctx context.Context) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if h.Ready() {
		return h.value, h.err
	}

	if h.pool != nil {
		if w, ok := workerFromContext(ctx); ok && w.pool == h.pool {
			return h.help(ctx, w)
		}
	}

	var stop <-chan struct{}
	if h.pool != nil {
		stop = h.pool.stopCh
	}

	select {
	case <-h.done:
		return h.value, h.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case <-stop:
		return h.waitAfterStop(ctx)
	}
}

// Value blocks until the outcome is known and reports whether a value was produced
func (h *Handle[T]) Value() (T, bool) {
	v, err := h.Get(context.Background())
	return v, err == nil
}

// Wait blocks until the outcome is known and returns its error
func (h *Handle[T]) Wait(ctx context.Context) error {
	_, err := h.Get(ctx)
	return err
}

// help runs pending tasks on the calling worker until the handle is fulfilled
func (h *Handle[T]) help(ctx context.Context, w *Worker) (T, error) {
	for {
		if h.Ready() {
			return h.value, h.err
		}
		if err := ctx.Err(); err != nil {
			var zero T
			return zero, err
		}
		if h.pool.stopped() {
			return h.waitAfterStop(ctx)
		}
		if w.runPendingTask() == types.SourceNone {
			runtime.Gosched()
		}
	}
}

// waitAfterStop abandons the task if it is still queued; a task that already
// started is waited for.
func (h *Handle[T]) waitAfterStop(ctx context.Context) (T, error) {
	if h.task != nil {
		h.task.Abandon()
	}

	select {
	case <-h.done:
		return h.value, h.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
