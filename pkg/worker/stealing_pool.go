package worker

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/jzx17/stealpool/pkg/queue"
	"github.com/jzx17/stealpool/pkg/types"
)

var _ types.Scheduler = (*StealingPool)(nil)

// StealingPool is a fixed-size pool of worker threads with per-worker
// work-stealing queues and a shared global queue
type StealingPool struct {
	id      string
	config  *Config
	clock   quartz.Clock
	logger  *zap.Logger
	global  *queue.GlobalQueue[*Task]
	workers []*Worker

	// stop-the-world
	done   atomic.Bool
	stopCh chan struct{}

	// cooperative cancellation
	canceled   atomic.Bool
	cancelCh   chan struct{}
	cancelOnce sync.Once

	// submission gate
	closed    atomic.Bool
	inflight  int64
	closeOnce sync.Once

	// statistics
	totalSubmitted int64
	totalAbandoned int64
}

// NewStealingPool creates a pool and starts its workers.
// If a worker fails to start, the already started ones are stopped and joined
// before the error is returned.
func NewStealingPool(config *Config) (*StealingPool, error) {
	pool, err := newPool(config)
	if err != nil {
		return nil, err
	}
	if err := pool.start(); err != nil {
		return nil, err
	}
	return pool, nil
}

// newPool builds the pool structures without starting any worker
func newPool(config *Config) (*StealingPool, error) {
	if config == nil {
		config = DefaultConfig()
	}

	// work on a copy so the caller's configuration stays untouched
	cfg := *config
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	pool := &StealingPool{
		id:       id,
		config:   &cfg,
		clock:    cfg.Clock,
		logger:   cfg.Logger.Named("stealpool").With(zap.String("pool_id", id)),
		global:   queue.NewGlobalQueue[*Task](),
		stopCh:   make(chan struct{}),
		cancelCh: make(chan struct{}),
	}

	pool.workers = make([]*Worker, cfg.Workers)
	for i := range pool.workers {
		pool.workers[i] = newWorker(i, pool)
	}
	return pool, nil
}

// start launches one goroutine per worker and waits for each to report in
func (p *StealingPool) start() error {
	started := make(chan error, len(p.workers))
	for _, w := range p.workers {
		go w.run(started)
	}

	var startErr error
	for range p.workers {
		startErr = multierr.Append(startErr, <-started)
	}
	if startErr != nil {
		p.shutdown()
		p.join()
		p.logger.Error("worker pool failed to start", zap.Error(startErr))
		return fmt.Errorf("start workers: %w", startErr)
	}

	p.logger.Info("worker pool started", zap.Int("workers", len(p.workers)))
	return nil
}

// ID returns the unique identifier of the pool instance
func (p *StealingPool) ID() string {
	return p.id
}

// Size returns the number of workers
func (p *StealingPool) Size() int {
	return len(p.workers)
}

// Cancel raises the cooperative cancellation flag. Running tasks are not
// interrupted; they observe the flag through Canceled or CancelSignal.
func (p *StealingPool) Cancel() {
	p.cancelOnce.Do(func() {
		p.canceled.Store(true)
		close(p.cancelCh)
		p.logger.Info("worker pool canceled")
	})
}

// Canceled reports whether Cancel has been called
func (p *StealingPool) Canceled() bool {
	return p.canceled.Load()
}

// CancelSignal returns a channel that is closed by Cancel
func (p *StealingPool) CancelSignal() <-chan struct{} {
	return p.cancelCh
}

// Close stops dispatching, joins every worker and abandons the tasks that never
// started; their handles resolve to types.ErrAbandoned. Tasks already running
// are finished first. Close must not be called from inside a task.
func (p *StealingPool) Close() error {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		// wait for submitters that passed the gate to finish their push
		for atomic.LoadInt64(&p.inflight) > 0 {
			runtime.Gosched()
		}

		p.shutdown()
		p.join()

		abandoned := p.abandonQueued()
		p.logger.Info("worker pool closed", zap.Int("abandoned", abandoned))
	})
	return nil
}

// IsClosed checks if the pool has been closed
func (p *StealingPool) IsClosed() bool {
	return p.closed.Load()
}

func (p *StealingPool) stopped() bool {
	return p.done.Load()
}

func (p *StealingPool) shutdown() {
	if p.done.CompareAndSwap(false, true) {
		close(p.stopCh)
		p.global.Close()
	}
}

// join waits for every worker goroutine to exit
func (p *StealingPool) join() {
	for _, w := range p.workers {
		<-w.done
	}
}

// abandonQueued drains every queue and releases the handles of unstarted tasks
func (p *StealingPool) abandonQueued() int {
	abandoned := 0
	tasks := p.global.Drain()
	for _, w := range p.workers {
		tasks = append(tasks, w.local.Drain()...)
	}
	for _, task := range tasks {
		if task.Abandon() {
			abandoned++
		}
	}
	return abandoned
}

// enter admits a submitter unless the pool is closed
func (p *StealingPool) enter() bool {
	atomic.AddInt64(&p.inflight, 1)
	if p.closed.Load() {
		atomic.AddInt64(&p.inflight, -1)
		return false
	}
	return true
}

func (p *StealingPool) exit() {
	atomic.AddInt64(&p.inflight, -1)
}

// Stats gets worker pool statistics
func (p *StealingPool) Stats() types.PoolStats {
	stats := types.PoolStats{
		PoolID:            p.id,
		PoolSize:          len(p.workers),
		GlobalQueueLength: p.global.Len(),
		TotalSubmitted:    atomic.LoadInt64(&p.totalSubmitted),
		TotalAbandoned:    atomic.LoadInt64(&p.totalAbandoned),
		Canceled:          p.Canceled(),
		Closed:            p.IsClosed(),
	}

	var execNanos int64
	for _, w := range p.workers {
		ws := w.Stats()
		if ws.IsActive() {
			stats.ActiveWorkers++
		}
		stats.LocalQueueLength += ws.QueueLength
		stats.TotalCompleted += ws.TotalProcessed
		stats.TotalFailed += ws.TotalFailed
		stats.RunFromLocal += ws.RunFromLocal
		stats.RunFromGlobal += ws.RunFromGlobal
		stats.RunStolen += ws.RunStolen
		execNanos += atomic.LoadInt64(&w.totalExecNanos)
	}

	if total := stats.TotalCompleted + stats.TotalFailed; total > 0 {
		stats.AverageExecutionTime = time.Duration(execNanos / total)
	}
	return stats
}

// WorkerStats gets statistics of all Workers
func (p *StealingPool) WorkerStats() []WorkerStats {
	stats := make([]WorkerStats, len(p.workers))
	for i, w := range p.workers {
		stats[i] = w.Stats()
	}
	return stats
}
