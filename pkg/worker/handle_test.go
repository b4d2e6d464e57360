package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jzx17/stealpool/pkg/types"
)

func TestHandle_ResolveOnce(t *testing.T) {
	h := newHandle[int](nil)
	assert.False(t, h.Ready())

	assert.True(t, h.resolve(42, nil))
	assert.False(t, h.resolve(7, errors.New("late")))
	assert.True(t, h.Ready())

	v, err := h.Get(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 42, v)

	// repeated reads return the same outcome
	v, err = h.Get(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 42, v)

	select {
	case <-h.Done():
	default:
		t.Fatal("done channel should be closed")
	}
}

func TestHandle_Value(t *testing.T) {
	tests := []struct {
		name        string
		value       string
		err         error
		expectValue string
		expectOK    bool
	}{
		{name: "value", value: "hello", expectValue: "hello", expectOK: true},
		{name: "no value", err: types.ErrNoValue, expectOK: false},
		{name: "abandoned", err: types.ErrAbandoned, expectOK: false},
		{name: "failure", err: errors.New("failed"), expectOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHandle[string](nil)
			h.resolve(tt.value, tt.err)

			v, ok := h.Value()
			assert.Equal(t, tt.expectOK, ok)
			assert.Equal(t, tt.expectValue, v)
		})
	}
}

func TestHandle_ResolvedHandle(t *testing.T) {
	h := resolvedHandle[int](types.ErrPoolClosed)

	assert.True(t, h.Ready())
	err := h.Wait(context.Background())
	assert.ErrorIs(t, err, types.ErrPoolClosed)
	assert.True(t, types.IsNoValue(err))
}

func TestHandle_GetContextTimeout(t *testing.T) {
	h := newHandle[int](nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := h.Get(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, h.Ready())
}

func TestHandle_GetWaitsForResolve(t *testing.T) {
	h := newHandle[int](nil)

	go func() {
		time.Sleep(10 * time.Millisecond)
		h.resolve(7, nil)
	}()

	v, err := h.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestHandle_GetRunsPendingTasksOnWorker(t *testing.T) {
	pool, err := newPool(&Config{Workers: 1})
	require.NoError(t, err)
	w := pool.workers[0]

	// submitted from the worker context, so it lands in the worker's own queue
	child := Submit(w.ctx, pool, func(ctx context.Context) (int, error) {
		return 5, nil
	})
	assert.Equal(t, 1, w.local.Len())

	v, err := child.Get(w.ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, v)
	assert.Equal(t, int64(1), w.Stats().RunFromLocal)
}

func TestHandle_GetWithForeignWorkerContextDoesNotHelp(t *testing.T) {
	owner, err := newPool(&Config{Workers: 1})
	require.NoError(t, err)
	foreign, err := newPool(&Config{Workers: 1})
	require.NoError(t, err)

	h := Submit(context.Background(), owner, func(ctx context.Context) (int, error) {
		return 1, nil
	})

	ctx, cancel := context.WithTimeout(foreign.workers[0].ctx, 20*time.Millisecond)
	defer cancel()

	_, err = h.Get(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, owner.global.Len())
}
