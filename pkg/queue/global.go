package queue

import (
	"sync"
	"sync/atomic"
)

// node is a link of GlobalQueue. The node at the tail is always an empty sentinel.
type node[T any] struct {
	value T
	next  *node[T]
}

// GlobalQueue is an unbounded, thread-safe FIFO with separate head and tail locks
type GlobalQueue[T any] struct {
	headMu sync.Mutex
	head   *node[T]

	tailMu sync.Mutex
	tail   *node[T]

	// cond is bound to headMu
	cond    *sync.Cond
	waiters int32 // atomic, consumers blocked in WaitAndPop
	closed  atomic.Bool

	length int64 // atomic

	// recycled nodes
	nodes sync.Pool
}

// NewGlobalQueue creates an empty queue holding only the sentinel node
func NewGlobalQueue[T any]() *GlobalQueue[T] {
	q := &GlobalQueue[T]{}
	q.nodes.New = func() interface{} {
		return &node[T]{}
	}
	sentinel := q.nodes.Get().(*node[T])
	q.head = sentinel
	q.tail = sentinel
	q.cond = sync.NewCond(&q.headMu)
	return q
}

// Push appends value to the tail and wakes one blocked consumer, if any
func (q *GlobalQueue[T]) Push(value T) {
	fresh := q.nodes.Get().(*node[T])

	q.tailMu.Lock()
	q.tail.value = value
	q.tail.next = fresh
	q.tail = fresh
	atomic.AddInt64(&q.length, 1)
	q.tailMu.Unlock()

	// Consumers register before they inspect the tail, so a waiter that saw the
	// queue empty is either already parked or about to see the new tail.
	if atomic.LoadInt32(&q.waiters) > 0 {
		q.headMu.Lock()
		q.cond.Signal()
		q.headMu.Unlock()
	}
}

// TryPop removes the oldest element without blocking
func (q *GlobalQueue[T]) TryPop() (T, bool) {
	q.headMu.Lock()
	defer q.headMu.Unlock()

	if q.head == q.getTail() {
		var zero T
		return zero, false
	}
	return q.popHead(), true
}

// WaitAndPop blocks until an element is available and removes it.
// It returns false only when the queue has been closed and is empty.
func (q *GlobalQueue[T]) WaitAndPop() (T, bool) {
	q.headMu.Lock()
	defer q.headMu.Unlock()

	atomic.AddInt32(&q.waiters, 1)
	defer atomic.AddInt32(&q.waiters, -1)

	for q.head == q.getTail() {
		if q.closed.Load() {
			var zero T
			return zero, false
		}
		q.cond.Wait()
	}
	return q.popHead(), true
}

// Empty reports whether the queue held no element at the time of the call
func (q *GlobalQueue[T]) Empty() bool {
	q.headMu.Lock()
	defer q.headMu.Unlock()
	return q.head == q.getTail()
}

// Len returns a snapshot of the number of queued elements
func (q *GlobalQueue[T]) Len() int {
	return int(atomic.LoadInt64(&q.length))
}

// Close releases every consumer blocked in WaitAndPop. Elements pushed before or
// after Close stay poppable.
func (q *GlobalQueue[T]) Close() {
	q.closed.Store(true)

	q.headMu.Lock()
	q.cond.Broadcast()
	q.headMu.Unlock()
}

// IsClosed reports whether Close has been called
func (q *GlobalQueue[T]) IsClosed() bool {
	return q.closed.Load()
}

// Drain removes and returns every queued element in FIFO order
func (q *GlobalQueue[T]) Drain() []T {
	q.headMu.Lock()
	defer q.headMu.Unlock()

	var drained []T
	for q.head != q.getTail() {
		drained = append(drained, q.popHead())
	}
	return drained
}

func (q *GlobalQueue[T]) getTail() *node[T] {
	q.tailMu.Lock()
	defer q.tailMu.Unlock()
	return q.tail
}

// popHead must be called with headMu held on a non-empty queue. The old head can
// never be the tail, so no producer still references it.
func (q *GlobalQueue[T]) popHead() T {
	old := q.head
	value := old.value
	q.head = old.next
	atomic.AddInt64(&q.length, -1)

	var zero T
	old.value = zero
	old.next = nil
	q.nodes.Put(old)

	return value
}
