package worker

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jzx17/stealpool/pkg/types"
)

var _ prometheus.Collector = (*Collector)(nil)

// Collector exports pool statistics as Prometheus metrics. Values are read from
// Stats on every scrape.
type Collector struct {
	pool *StealingPool

	submitted  *prometheus.Desc
	completed  *prometheus.Desc
	failed     *prometheus.Desc
	abandoned  *prometheus.Desc
	dispatched *prometheus.Desc
	queued     *prometheus.Desc
	workers    *prometheus.Desc
	active     *prometheus.Desc
	canceled   *prometheus.Desc
}

// NewCollector creates a collector for pool, labelled with the pool ID
func NewCollector(pool *StealingPool) *Collector {
	ns := pool.config.MetricsNamespace
	labels := prometheus.Labels{"pool_id": pool.id}

	desc := func(name, help string, variable ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(ns, "", name), help, variable, labels)
	}

	return &Collector{
		pool:       pool,
		submitted:  desc("tasks_submitted_total", "Total number of tasks submitted to the pool"),
		completed:  desc("tasks_completed_total", "Total number of tasks completed without error"),
		failed:     desc("tasks_failed_total", "Total number of tasks that failed or panicked"),
		abandoned:  desc("tasks_abandoned_total", "Total number of tasks abandoned at shutdown"),
		dispatched: desc("tasks_dispatched_total", "Total number of tasks run, by queue source", "source"),
		queued:     desc("queue_length", "Current number of queued tasks", "queue"),
		workers:    desc("workers", "Number of worker threads"),
		active:     desc("active_workers", "Number of workers currently running a task"),
		canceled:   desc("canceled", "Whether cooperative cancellation has been requested"),
	}
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.submitted
	ch <- c.completed
	ch <- c.failed
	ch <- c.abandoned
	ch <- c.dispatched
	ch <- c.queued
	ch <- c.workers
	ch <- c.active
	ch <- c.canceled
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.pool.Stats()

	counter := func(d *prometheus.Desc, v int64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), labels...)
	}
	gauge := func(d *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v, labels...)
	}

	counter(c.submitted, stats.TotalSubmitted)
	counter(c.completed, stats.TotalCompleted)
	counter(c.failed, stats.TotalFailed)
	counter(c.abandoned, stats.TotalAbandoned)
	counter(c.dispatched, stats.RunFromLocal, types.SourceLocal.String())
	counter(c.dispatched, stats.RunFromGlobal, types.SourceGlobal.String())
	counter(c.dispatched, stats.RunStolen, types.SourceStolen.String())

	gauge(c.queued, float64(stats.GlobalQueueLength), "global")
	gauge(c.queued, float64(stats.LocalQueueLength), "local")
	gauge(c.workers, float64(stats.PoolSize))
	gauge(c.active, float64(stats.ActiveWorkers))

	canceled := 0.0
	if stats.Canceled {
		canceled = 1
	}
	gauge(c.canceled, canceled)
}
