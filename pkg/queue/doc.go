/*
Package queue provides the two queue disciplines used by the stealing worker pool.

# GlobalQueue

GlobalQueue is an unbounded multi-producer/multi-consumer FIFO built as a singly
linked list with a permanent sentinel node. The head and the tail are guarded by
separate mutexes, so a push and a pop can proceed at the same time:

	q := queue.NewGlobalQueue[int]()
	q.Push(1)
	q.Push(2)

	v, ok := q.TryPop() // 1, true

WaitAndPop blocks until an element arrives or the queue is closed. Close wakes every
blocked consumer; it is meant for shutdown.

# WorkerQueue

WorkerQueue is a double-ended queue owned by a single worker. The owner pushes and
pops at the front (newest first), other workers steal from the back (oldest
first):

	wq := queue.NewWorkerQueue[string]()
	wq.Push("a")
	wq.Push("b")

	v, _ := wq.TryPop()   // "b"
	v, _ = wq.TrySteal()  // "a"

All WorkerQueue operations are non-blocking and mutually exclusive on one mutex.
*/
package queue
