package worker

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/jzx17/stealpool/pkg/queue"
	"github.com/jzx17/stealpool/pkg/types"
)

// WorkerState defines the state of a Worker
type WorkerState int32

const (
	// WorkerStateIdle represents idle worker state
	WorkerStateIdle WorkerState = iota
	// WorkerStateWorking represents working worker state
	WorkerStateWorking
	// WorkerStateStopped represents stopped worker state
	WorkerStateStopped
)

// String returns the string representation of WorkerState
func (ws WorkerState) String() string {
	switch ws {
	case WorkerStateIdle:
		return "idle"
	case WorkerStateWorking:
		return "working"
	case WorkerStateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// workerKey is the context key carrying the identity of the running worker
type workerKey struct{}

// pinThread binds the calling OS thread to a CPU; replaced in tests
var pinThread = pinCurrentThread

// Worker is one pool thread together with its own work-stealing queue
type Worker struct {
	id    int
	state int32 // atomic state
	pool  *StealingPool
	local *queue.WorkerQueue[*Task]

	// ctx carries the worker identity into every task it runs
	ctx  context.Context
	done chan struct{}

	// statistics
	totalProcessed int64
	totalFailed    int64
	runLocal       int64
	runGlobal      int64
	runStolen      int64
	totalExecNanos int64
	lastTaskTime   int64 // Unix nanosecond timestamp

	logger *zap.Logger
}

func newWorker(id int, pool *StealingPool) *Worker {
	w := &Worker{
		id:     id,
		state:  int32(WorkerStateIdle),
		pool:   pool,
		local:  queue.NewWorkerQueue[*Task](),
		done:   make(chan struct{}),
		logger: pool.logger.With(zap.Int("worker", id)),
	}
	w.ctx = context.WithValue(context.Background(), workerKey{}, w)
	return w
}

// workerFromContext returns the worker whose task owns ctx
func workerFromContext(ctx context.Context) (*Worker, bool) {
	if ctx == nil {
		return nil, false
	}
	w, ok := ctx.Value(workerKey{}).(*Worker)
	return w, ok
}

// workerIDFromContext returns the index of the worker owning ctx, or -1
func workerIDFromContext(ctx context.Context) int {
	if w, ok := workerFromContext(ctx); ok {
		return w.id
	}
	return -1
}

// WorkerIndex returns the index of the worker running the task that owns ctx
func WorkerIndex(ctx context.Context) (int, bool) {
	w, ok := workerFromContext(ctx)
	if !ok {
		return -1, false
	}
	return w.id, true
}

// ID returns the Worker ID
func (w *Worker) ID() int {
	return w.id
}

// State returns the current Worker state
func (w *Worker) State() WorkerState {
	return WorkerState(atomic.LoadInt32(&w.state))
}

// run is the worker thread body. started receives the start-up result exactly once.
func (w *Worker) run(started chan<- error) {
	defer close(w.done)
	defer atomic.StoreInt32(&w.state, int32(WorkerStateStopped))

	runtime.LockOSThread()
	if w.pool.config.PinWorkers {
		// a pinned thread is not handed back to the runtime; it exits with the goroutine
		if err := pinThread(w.id); err != nil {
			started <- err
			return
		}
	} else {
		defer runtime.UnlockOSThread()
	}
	started <- nil

	w.logger.Debug("worker started")
	misses := 0
	for !w.pool.stopped() {
		if w.runPendingTask() != types.SourceNone {
			misses = 0
			continue
		}
		misses++
		w.idle(&misses)
	}
	w.logger.Debug("worker stopped")
}

// runPendingTask runs at most one task, taken from the worker's own queue, the
// global queue or another worker's queue, in that order.
func (w *Worker) runPendingTask() types.TaskSource {
	if task, ok := w.local.TryPop(); ok {
		w.execute(task, types.SourceLocal)
		return types.SourceLocal
	}
	if task, ok := w.pool.global.TryPop(); ok {
		w.execute(task, types.SourceGlobal)
		return types.SourceGlobal
	}
	if task, victim, ok := w.steal(); ok {
		if ce := w.logger.Check(zap.DebugLevel, "task stolen"); ce != nil {
			ce.Write(zap.String("task_id", task.ID()), zap.Int("victim", victim))
		}
		w.execute(task, types.SourceStolen)
		return types.SourceStolen
	}
	return types.SourceNone
}

// steal probes every other worker once, starting with the next index
func (w *Worker) steal() (*Task, int, bool) {
	workers := w.pool.workers
	n := len(workers)
	for i := 1; i < n; i++ {
		victim := (w.id + i) % n
		if task, ok := workers[victim].local.TrySteal(); ok {
			return task, victim, true
		}
	}
	return nil, -1, false
}

// idle yields the processor and parks the worker after too many empty rounds
func (w *Worker) idle(misses *int) {
	config := w.pool.config
	if config.IdleSpins < 0 || *misses < config.IdleSpins || config.IdleSleep <= 0 {
		runtime.Gosched()
		return
	}
	*misses = 0

	timer := config.Clock.NewTimer(config.IdleSleep, "worker", "idle")
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-w.pool.stopCh:
	}
}

// execute runs a task and records the outcome. Nothing raised by the task leaves here.
func (w *Worker) execute(task *Task, source types.TaskSource) {
	// tasks nest when a worker helps while waiting on a handle
	prev := atomic.SwapInt32(&w.state, int32(WorkerStateWorking))
	defer atomic.StoreInt32(&w.state, prev)

	if ce := w.logger.Check(zap.DebugLevel, "task started"); ce != nil {
		ce.Write(zap.String("task_id", task.ID()), zap.Stringer("source", source))
	}

	startTime := w.pool.clock.Now()
	atomic.StoreInt64(&w.lastTaskTime, startTime.UnixNano())

	err := task.Run(w.ctx)

	if errors.Is(err, types.ErrTaskConsumed) {
		// abandoned by a waiter after shutdown began
		return
	}

	atomic.AddInt64(&w.totalExecNanos, int64(w.pool.clock.Since(startTime)))
	switch source {
	case types.SourceLocal:
		atomic.AddInt64(&w.runLocal, 1)
	case types.SourceGlobal:
		atomic.AddInt64(&w.runGlobal, 1)
	case types.SourceStolen:
		atomic.AddInt64(&w.runStolen, 1)
	}

	if err != nil && !types.IsNoValue(err) {
		atomic.AddInt64(&w.totalFailed, 1)
		w.handleError(err, task)
		return
	}
	atomic.AddInt64(&w.totalProcessed, 1)
}

// handleError reports a task failure to the logger and the configured handler
func (w *Worker) handleError(err error, task *Task) {
	w.logger.Error("task failed", zap.String("task_id", task.ID()), zap.Error(err))

	handler := w.pool.config.ErrorHandler
	if handler == nil {
		return
	}
	if handledErr := handler(err); handledErr != nil {
		w.logger.Warn("error handler returned an error",
			zap.String("task_id", task.ID()), zap.Error(handledErr))
	}
}

// Stats gets Worker statistics
func (w *Worker) Stats() WorkerStats {
	processed := atomic.LoadInt64(&w.totalProcessed)
	failed := atomic.LoadInt64(&w.totalFailed)

	var avg time.Duration
	if total := processed + failed; total > 0 {
		avg = time.Duration(atomic.LoadInt64(&w.totalExecNanos) / total)
	}

	var last time.Time
	if nanos := atomic.LoadInt64(&w.lastTaskTime); nanos != 0 {
		last = time.Unix(0, nanos)
	}

	return WorkerStats{
		ID:                   w.id,
		State:                w.State(),
		QueueLength:          w.local.Len(),
		TotalProcessed:       processed,
		TotalFailed:          failed,
		RunFromLocal:         atomic.LoadInt64(&w.runLocal),
		RunFromGlobal:        atomic.LoadInt64(&w.runGlobal),
		RunStolen:            atomic.LoadInt64(&w.runStolen),
		AverageExecutionTime: avg,
		LastTaskTime:         last,
	}
}

// WorkerStats defines Worker statistics
type WorkerStats struct {
	ID                   int
	State                WorkerState
	QueueLength          int
	TotalProcessed       int64
	TotalFailed          int64
	RunFromLocal         int64
	RunFromGlobal        int64
	RunStolen            int64
	AverageExecutionTime time.Duration
	LastTaskTime         time.Time
}

// IsActive checks if Worker is active
func (ws WorkerStats) IsActive() bool {
	return ws.State == WorkerStateWorking
}

// IsIdle checks if Worker is idle
func (ws WorkerStats) IsIdle() bool {
	return ws.State == WorkerStateIdle
}

// GetSuccessRate gets the success rate
func (ws WorkerStats) GetSuccessRate() float64 {
	total := ws.TotalProcessed + ws.TotalFailed
	if total == 0 {
		return 0
	}
	return float64(ws.TotalProcessed) / float64(total)
}
