package worker

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jzx17/stealpool/pkg/types"
)

func TestNewTask(t *testing.T) {
	task := NewTask(func(ctx context.Context) error { return nil })

	assert.NotNil(t, task)
	assert.True(t, strings.HasPrefix(task.ID(), "task-"))
	assert.False(t, task.Consumed())

	other := NewTask(func(ctx context.Context) error { return nil })
	assert.NotEqual(t, task.ID(), other.ID())
}

func TestNewTask_NilCallable(t *testing.T) {
	task := NewTask(nil)

	assert.True(t, task.Consumed())
	assert.ErrorIs(t, task.Run(context.Background()), types.ErrTaskConsumed)
	assert.False(t, task.Abandon())
}

func TestTask_Run(t *testing.T) {
	tests := []struct {
		name        string
		fn          func(ctx context.Context) error
		expectError error
	}{
		{
			name:        "successful callable",
			fn:          func(ctx context.Context) error { return nil },
			expectError: nil,
		},
		{
			name:        "failing callable",
			fn:          func(ctx context.Context) error { return errors.New("boom") },
			expectError: errors.New("boom"),
		},
		{
			name:        "no value",
			fn:          func(ctx context.Context) error { return types.ErrNoValue },
			expectError: types.ErrNoValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := NewTask(tt.fn)
			err := task.Run(context.Background())

			if tt.expectError == nil {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.expectError.Error())
			}
			assert.True(t, task.Consumed())
		})
	}
}

func TestTask_RunOnlyOnce(t *testing.T) {
	var calls int32
	task := NewTask(func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	require.NoError(t, task.Run(context.Background()))
	assert.ErrorIs(t, task.Run(context.Background()), types.ErrTaskConsumed)
	assert.False(t, task.Abandon())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestTask_ConcurrentConsumers(t *testing.T) {
	var calls, abandons int32
	task := newTask(func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}, func() {
		atomic.AddInt32(&abandons, 1)
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = task.Run(context.Background())
		}()
		go func() {
			defer wg.Done()
			task.Abandon()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls)+atomic.LoadInt32(&abandons))
}

func TestTask_Abandon(t *testing.T) {
	var ran, abandoned bool
	task := newTask(func(ctx context.Context) error {
		ran = true
		return nil
	}, func() {
		abandoned = true
	})

	assert.True(t, task.Abandon())
	assert.False(t, task.Abandon())
	assert.ErrorIs(t, task.Run(context.Background()), types.ErrTaskConsumed)
	assert.True(t, abandoned)
	assert.False(t, ran)
}

func TestTask_PanicRecovery(t *testing.T) {
	tests := []struct {
		name      string
		value     interface{}
		expectMsg string
	}{
		{name: "string panic", value: "something broke", expectMsg: "panic: something broke"},
		{name: "error panic", value: errors.New("bad state"), expectMsg: "bad state"},
		{name: "other panic", value: 42, expectMsg: "panic: 42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := NewTask(func(ctx context.Context) error {
				panic(tt.value)
			})

			err := task.Run(context.Background())
			require.Error(t, err)

			taskErr, ok := types.AsTaskError(err)
			require.True(t, ok)
			assert.True(t, taskErr.Panicked)
			assert.Equal(t, task.ID(), taskErr.TaskID)
			assert.Equal(t, -1, taskErr.WorkerID)
			assert.EqualError(t, taskErr.Cause, tt.expectMsg)
			assert.Contains(t, taskErr.Context, "stack_trace")
		})
	}
}
