// Package types defines error types
package types

import (
	"errors"
	"fmt"
)

// Predefined errors
var (
	// ErrNoValue indicates a task finished without producing a value
	ErrNoValue = errors.New("no value produced")

	// ErrPoolClosed indicates the pool no longer accepts tasks
	ErrPoolClosed = fmt.Errorf("worker pool is closed: %w", ErrNoValue)

	// ErrAbandoned indicates a task was still queued when the pool shut down
	ErrAbandoned = fmt.Errorf("task abandoned at shutdown: %w", ErrNoValue)

	// ErrNilTask indicates a nil callable was submitted
	ErrNilTask = errors.New("task cannot be nil")

	// ErrTaskConsumed indicates a task was run or abandoned more than once
	ErrTaskConsumed = errors.New("task already consumed")

	// ErrInvalidConfig indicates an invalid pool configuration
	ErrInvalidConfig = errors.New("invalid pool configuration")

	// ErrAffinityUnsupported indicates CPU pinning is not available on this platform
	ErrAffinityUnsupported = errors.New("cpu affinity is not supported on this platform")
)

// TaskError represents a failure raised by a task body, either a returned error
// or a recovered panic
type TaskError struct {
	// Operation is the name of the operation where the error occurred
	Operation string

	// TaskID identifies the failed task
	TaskID string

	// WorkerID is the index of the worker that ran the task, -1 if unknown
	WorkerID int

	// Panicked reports whether the failure was a recovered panic
	Panicked bool

	// Cause is the underlying error
	Cause error

	// Context contains error context information
	Context map[string]interface{}
}

// Error implements the error interface
func (e *TaskError) Error() string {
	if e.Panicked {
		return fmt.Sprintf("task %s panicked in %s: %v", e.TaskID, e.Operation, e.Cause)
	}
	return fmt.Sprintf("task %s failed in %s: %v", e.TaskID, e.Operation, e.Cause)
}

// Unwrap returns the underlying error
func (e *TaskError) Unwrap() error {
	return e.Cause
}

// NewTaskError creates a new task error
func NewTaskError(operation, taskID string, workerID int, cause error) *TaskError {
	return &TaskError{
		Operation: operation,
		TaskID:    taskID,
		WorkerID:  workerID,
		Cause:     cause,
		Context:   make(map[string]interface{}),
	}
}

// WithContext adds error context
func (e *TaskError) WithContext(key string, value interface{}) *TaskError {
	e.Context[key] = value
	return e
}

// IsNoValue checks if err means that a task produced no value
func IsNoValue(err error) bool {
	return errors.Is(err, ErrNoValue)
}

// AsTaskError extracts a TaskError from err
func AsTaskError(err error) (*TaskError, bool) {
	var taskErr *TaskError
	if errors.As(err, &taskErr) {
		return taskErr, true
	}
	return nil, false
}
