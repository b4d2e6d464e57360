package types

import (
	"errors"
	"fmt"
	"testing"
)

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNoValue", ErrNoValue},
		{"ErrPoolClosed", ErrPoolClosed},
		{"ErrAbandoned", ErrAbandoned},
		{"ErrNilTask", ErrNilTask},
		{"ErrTaskConsumed", ErrTaskConsumed},
		{"ErrInvalidConfig", ErrInvalidConfig},
		{"ErrAffinityUnsupported", ErrAffinityUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Errorf("expected error, got nil")
			}
			if tt.err.Error() == "" {
				t.Errorf("expected non-empty error message")
			}
		})
	}
}

func TestNoValueErrors(t *testing.T) {
	tests := []struct {
		err      error
		expected bool
	}{
		{ErrNoValue, true},
		{ErrPoolClosed, true},
		{ErrAbandoned, true},
		{fmt.Errorf("wrapped: %w", ErrAbandoned), true},
		{ErrNilTask, false},
		{errors.New("other"), false},
		{nil, false},
	}

	for _, tt := range tests {
		if got := IsNoValue(tt.err); got != tt.expected {
			t.Errorf("IsNoValue(%v) = %v, expected %v", tt.err, got, tt.expected)
		}
	}
}

func TestTaskError(t *testing.T) {
	t.Run("Returned Error", func(t *testing.T) {
		cause := errors.New("boom")
		taskErr := NewTaskError("execute", "task-7", 2, cause)

		if taskErr.TaskID != "task-7" {
			t.Errorf("expected task id 'task-7', got %q", taskErr.TaskID)
		}
		if taskErr.WorkerID != 2 {
			t.Errorf("expected worker id 2, got %d", taskErr.WorkerID)
		}

		expectedMsg := "task task-7 failed in execute: boom"
		if taskErr.Error() != expectedMsg {
			t.Errorf("expected message %q, got %q", expectedMsg, taskErr.Error())
		}
		if !errors.Is(taskErr, cause) {
			t.Errorf("expected errors.Is to match the cause")
		}
	})

	t.Run("Panic", func(t *testing.T) {
		taskErr := NewTaskError("execute", "task-8", 0, errors.New("bad index"))
		taskErr.Panicked = true

		expectedMsg := "task task-8 panicked in execute: bad index"
		if taskErr.Error() != expectedMsg {
			t.Errorf("expected message %q, got %q", expectedMsg, taskErr.Error())
		}
	})

	t.Run("Context", func(t *testing.T) {
		taskErr := NewTaskError("execute", "task-9", 1, errors.New("x")).
			WithContext("stack_trace", "trace").
			WithContext("attempt", 3)

		if taskErr.Context["stack_trace"] != "trace" {
			t.Errorf("expected stack_trace context")
		}
		if taskErr.Context["attempt"] != 3 {
			t.Errorf("expected attempt context")
		}
	})

	t.Run("AsTaskError", func(t *testing.T) {
		taskErr := NewTaskError("execute", "task-10", 0, errors.New("x"))
		wrapped := fmt.Errorf("outer: %w", taskErr)

		got, ok := AsTaskError(wrapped)
		if !ok || got != taskErr {
			t.Errorf("expected to extract the task error")
		}

		if _, ok := AsTaskError(errors.New("plain")); ok {
			t.Errorf("expected plain error not to be a task error")
		}
	})
}
