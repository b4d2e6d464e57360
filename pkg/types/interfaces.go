// Package types defines core interfaces and types shared by the pool packages
package types

import (
	"context"
	"time"
)

// Scheduler defines the untyped surface of a worker pool.
// Typed submission is provided by worker.Submit.
type Scheduler interface {
	// Go submits a callable that produces no value
	Go(ctx context.Context, fn func(ctx context.Context) error) Waiter

	// Cancel raises the cooperative cancellation flag
	Cancel()

	// Canceled reports whether Cancel has been called
	Canceled() bool

	// Close stops the workers and releases every pending handle
	Close() error

	// Size returns the number of workers
	Size() int

	// Stats returns pool statistics
	Stats() PoolStats
}

// Waiter is the untyped view of a result handle
type Waiter interface {
	// Wait blocks until the task outcome is known and returns its error
	Wait(ctx context.Context) error

	// Done is closed once the outcome is known
	Done() <-chan struct{}
}

// TaskSource identifies where a worker found the task it ran
type TaskSource int

const (
	// SourceNone means no task was found
	SourceNone TaskSource = iota
	// SourceLocal is the worker's own queue
	SourceLocal
	// SourceGlobal is the pool-wide queue
	SourceGlobal
	// SourceStolen is another worker's queue
	SourceStolen
)

// String returns the string representation of TaskSource
func (s TaskSource) String() string {
	switch s {
	case SourceNone:
		return "none"
	case SourceLocal:
		return "local"
	case SourceGlobal:
		return "global"
	case SourceStolen:
		return "stolen"
	default:
		return "unknown"
	}
}

// PoolStats defines statistics for a stealing worker pool
type PoolStats struct {
	// PoolID is the unique identifier of the pool instance
	PoolID string

	// PoolSize is the number of workers
	PoolSize int

	// ActiveWorkers is the number of workers currently running a task
	ActiveWorkers int

	// GlobalQueueLength is the number of tasks in the global queue
	GlobalQueueLength int

	// LocalQueueLength is the number of tasks across all worker queues
	LocalQueueLength int

	// Task counters
	TotalSubmitted int64
	TotalCompleted int64
	TotalFailed    int64
	TotalAbandoned int64

	// Dispatch counters by source
	RunFromLocal  int64
	RunFromGlobal int64
	RunStolen     int64

	// Canceled reports the cooperative cancellation flag
	Canceled bool

	// Closed reports whether the pool has shut down
	Closed bool

	// AverageExecutionTime is the mean task execution time
	AverageExecutionTime time.Duration
}

// QueuedTasks returns the number of tasks waiting in any queue
func (ps PoolStats) QueuedTasks() int {
	return ps.GlobalQueueLength + ps.LocalQueueLength
}

// StealRatio returns the share of executed tasks that were stolen
func (ps PoolStats) StealRatio() float64 {
	total := ps.RunFromLocal + ps.RunFromGlobal + ps.RunStolen
	if total == 0 {
		return 0
	}
	return float64(ps.RunStolen) / float64(total)
}

// ErrorHandler defines an error handling function invoked for every failed task
type ErrorHandler func(error) error
