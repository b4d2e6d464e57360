package worker

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/jzx17/stealpool/pkg/types"
)

// taskIDCounter is the global task ID counter
var taskIDCounter int64

// Task is a type-erased, single-use wrapper around a callable.
// Its callable is consumed by the first Run or Abandon; every later call is a no-op.
type Task struct {
	id        string
	fn        atomic.Pointer[func(ctx context.Context) error]
	onAbandon func()
}

// NewTask creates a new task
func NewTask(fn func(ctx context.Context) error) *Task {
	return newTask(fn, nil)
}

func newTask(fn func(ctx context.Context) error, onAbandon func()) *Task {
	id := atomic.AddInt64(&taskIDCounter, 1)
	t := &Task{
		id:        fmt.Sprintf("task-%d", id),
		onAbandon: onAbandon,
	}
	if fn != nil {
		t.fn.Store(&fn)
	}
	return t
}

// ID returns the task ID
func (t *Task) ID() string {
	return t.id
}

// Consumed reports whether the task has already been run or abandoned
func (t *Task) Consumed() bool {
	return t.fn.Load() == nil
}

// Run executes the callable, converting a panic into a *types.TaskError.
// It returns types.ErrTaskConsumed if the task was already run or abandoned.
func (t *Task) Run(ctx context.Context) (err error) {
	fn := t.fn.Swap(nil)
	if fn == nil {
		return types.ErrTaskConsumed
	}

	defer func() {
		if r := recover(); r != nil {
			err = panicError(t.id, workerIDFromContext(ctx), r)
		}
	}()

	return (*fn)(ctx)
}

// Abandon consumes the task without running it and fires its abandon hook.
// It reports false if the task was already consumed.
func (t *Task) Abandon() bool {
	if t.fn.Swap(nil) == nil {
		return false
	}
	if t.onAbandon != nil {
		t.onAbandon()
	}
	return true
}

// panicError wraps a recovered panic value with the stack of the panicking goroutine
func panicError(taskID string, workerID int, r interface{}) *types.TaskError {
	var buf [4096]byte
	n := runtime.Stack(buf[:], false)

	var cause error
	switch v := r.(type) {
	case error:
		cause = v
	case string:
		cause = fmt.Errorf("panic: %s", v)
	default:
		cause = fmt.Errorf("panic: %v", v)
	}

	taskErr := types.NewTaskError("execute", taskID, workerID, cause)
	taskErr.Panicked = true
	return taskErr.WithContext("stack_trace", string(buf[:n]))
}
