/*
Package worker provides a fixed-size worker pool with per-worker work-stealing.

# Overview

StealingPool runs arbitrary callables on a fixed set of worker threads and hands
their results back through one-shot handles. It supports:
- A fixed number of workers, each locked to its own OS thread
- A shared global FIFO queue for work submitted from outside the pool
- One work-stealing queue per worker for work submitted by running tasks
- Typed result handles with blocking and context-aware retrieval
- Cooperative cancellation
- Panic isolation and failure statistics
- Prometheus metrics and zap lifecycle logging

# Dispatch

Every worker repeats the same round until the pool is closed:

 1. pop the newest task from its own queue
 2. otherwise pop the oldest task from the global queue
 3. otherwise steal the oldest task of another worker, probing the workers
    after its own index in turn
 4. otherwise yield, and after IdleSpins empty rounds park for IdleSleep

Tasks submitted with a context that belongs to a running task stay on that task's
worker; everything else enters the global queue.

# Result Handles

Submit returns a *Handle[T]. Get blocks until the task has finished:

	pool, err := worker.NewStealingPool(&worker.Config{Workers: 4})
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	h := worker.Submit(ctx, pool, func(ctx context.Context) (int, error) {
		return 42, nil
	})

	v, err := h.Get(ctx) // 42, nil

A task that decides not to produce a value returns types.ErrNoValue. Handles of
tasks that never started before Close resolve to types.ErrAbandoned, which also
satisfies types.IsNoValue.

# Recursive Submission

A task may submit more work with its own context and wait for it. While it waits
inside Get, its worker keeps running pending tasks, so the pool makes progress
even when every worker is waiting:

	parent := worker.Submit(ctx, pool, func(ctx context.Context) (int, error) {
		child := worker.Submit(ctx, pool, func(ctx context.Context) (int, error) {
			return 1, nil
		})
		v, err := child.Get(ctx)
		return v + 1, err
	})

Waiting with a context that does not come from the task (for example
context.Background()) blocks the worker without helping; on a single-worker pool
that deadlocks until Close.

# Cancellation

Cancel raises a pool-wide advisory flag. Nothing is interrupted; task bodies poll
Canceled or select on CancelSignal and return types.ErrNoValue to finish early:

	h := worker.Submit(ctx, pool, func(ctx context.Context) (int, error) {
		for i := 0; i < steps; i++ {
			if pool.Canceled() {
				return 0, types.ErrNoValue
			}
			step(i)
		}
		return steps, nil
	})

# Shutdown

Close rejects new submissions, lets running tasks finish, joins every worker and
abandons whatever is still queued. Close must not be called from a task.
*/
package worker
