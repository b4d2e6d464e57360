package worker

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/jzx17/stealpool/pkg/types"
)

// Submit schedules fn on the pool and returns its result handle without blocking.
//
// When ctx belongs to a task running on one of the pool's workers, the new task is
// pushed onto that worker's own queue; otherwise it goes to the global queue.
// A task reports "no value" by returning types.ErrNoValue, for example after it
// observed cancellation.
func Submit[T any](ctx context.Context, pool *StealingPool, fn func(ctx context.Context) (T, error)) *Handle[T] {
	if fn == nil {
		return resolvedHandle[T](types.ErrNilTask)
	}
	if !pool.enter() {
		return resolvedHandle[T](types.ErrPoolClosed)
	}
	defer pool.exit()

	h := newHandle[T](pool)
	h.task = newTask(func(ctx context.Context) (err error) {
		var value T
		defer func() {
			if r := recover(); r != nil {
				err = panicError(h.task.ID(), workerIDFromContext(ctx), r)
			} else if err != nil && !types.IsNoValue(err) {
				err = types.NewTaskError("execute", h.task.ID(), workerIDFromContext(ctx), err)
			}
			h.resolve(value, err)
		}()

		value, err = fn(ctx)
		return err
	}, func() {
		atomic.AddInt64(&pool.totalAbandoned, 1)
		var zero T
		h.resolve(zero, types.ErrAbandoned)
	})

	atomic.AddInt64(&pool.totalSubmitted, 1)
	if w, ok := workerFromContext(ctx); ok && w.pool == pool {
		w.local.Push(h.task)
		if ce := w.logger.Check(zap.DebugLevel, "task added to local queue"); ce != nil {
			ce.Write(zap.String("task_id", h.task.ID()))
		}
		return h
	}

	pool.global.Push(h.task)
	if ce := pool.logger.Check(zap.DebugLevel, "task added to global queue"); ce != nil {
		ce.Write(zap.String("task_id", h.task.ID()))
	}
	return h
}

// Go schedules a callable that produces no value
func (p *StealingPool) Go(ctx context.Context, fn func(ctx context.Context) error) types.Waiter {
	if fn == nil {
		return resolvedHandle[struct{}](types.ErrNilTask)
	}
	return Submit(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
}
