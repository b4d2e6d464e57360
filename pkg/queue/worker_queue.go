package queue

import (
	"sync"

	"github.com/gammazero/deque"
)

// WorkerQueue is a mutex-protected deque owned by one worker.
// The owner pushes and pops at the front; thieves steal from the back.
type WorkerQueue[T any] struct {
	mu    sync.Mutex
	items deque.Deque[T]
}

// NewWorkerQueue creates an empty worker queue
func NewWorkerQueue[T any]() *WorkerQueue[T] {
	return &WorkerQueue[T]{}
}

// Push inserts value at the front. Only the owning worker calls it.
func (wq *WorkerQueue[T]) Push(value T) {
	wq.mu.Lock()
	defer wq.mu.Unlock()
	wq.items.PushFront(value)
}

// TryPop removes the newest element. Only the owning worker calls it.
func (wq *WorkerQueue[T]) TryPop() (T, bool) {
	wq.mu.Lock()
	defer wq.mu.Unlock()

	if wq.items.Len() == 0 {
		var zero T
		return zero, false
	}
	return wq.items.PopFront(), true
}

// TrySteal removes the oldest element. Any worker may call it.
func (wq *WorkerQueue[T]) TrySteal() (T, bool) {
	wq.mu.Lock()
	defer wq.mu.Unlock()

	if wq.items.Len() == 0 {
		var zero T
		return zero, false
	}
	return wq.items.PopBack(), true
}

// Empty reports whether the queue is empty
func (wq *WorkerQueue[T]) Empty() bool {
	wq.mu.Lock()
	defer wq.mu.Unlock()
	return wq.items.Len() == 0
}

// Len returns the number of queued elements
func (wq *WorkerQueue[T]) Len() int {
	wq.mu.Lock()
	defer wq.mu.Unlock()
	return wq.items.Len()
}

// Drain removes every element, oldest first
func (wq *WorkerQueue[T]) Drain() []T {
	wq.mu.Lock()
	defer wq.mu.Unlock()

	drained := make([]T, 0, wq.items.Len())
	for wq.items.Len() > 0 {
		drained = append(drained, wq.items.PopBack())
	}
	return drained
}
