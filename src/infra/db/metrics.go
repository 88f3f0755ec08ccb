package db

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "profileapi"

// PoolCollector exposes Pool.Stats as Prometheus metrics.
// Values are read on every scrape, so nothing has to be updated on the
// borrow/release hot path.
type PoolCollector struct {
	pool *Pool

	capacity     *prometheus.Desc
	acquired     *prometheus.Desc
	idle         *prometheus.Desc
	total        *prometheus.Desc
	constructing *prometheus.Desc
	waiting      *prometheus.Desc
	acquires     *prometheus.Desc
	canceled     *prometheus.Desc
}

// NewPoolCollector creates a collector for pool.
func NewPoolCollector(pool *Pool) *PoolCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(metricsNamespace, "db_pool", name), help, nil, nil)
	}
	return &PoolCollector{
		pool:         pool,
		capacity:     desc("capacity", "Maximum number of connections the pool may hold."),
		acquired:     desc("acquired_connections", "Connections currently checked out."),
		idle:         desc("idle_connections", "Connections currently idle in the pool."),
		total:        desc("total_connections", "Connections currently open, idle or checked out."),
		constructing: desc("constructing_connections", "Connections currently being dialed."),
		waiting:      desc("pending_borrows", "Borrow calls currently in progress."),
		acquires:     desc("acquires_total", "Successful borrows since the pool was created."),
		canceled:     desc("canceled_acquires_total", "Borrows abandoned because of a timeout or cancellation."),
	}
}

// Describe implements prometheus.Collector.
func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.capacity
	ch <- c.acquired
	ch <- c.idle
	ch <- c.total
	ch <- c.constructing
	ch <- c.waiting
	ch <- c.acquires
	ch <- c.canceled
}

// Collect implements prometheus.Collector.
func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.pool.Stats()
	ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(s.Capacity))
	ch <- prometheus.MustNewConstMetric(c.acquired, prometheus.GaugeValue, float64(s.Acquired))
	ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue, float64(s.Idle))
	ch <- prometheus.MustNewConstMetric(c.total, prometheus.GaugeValue, float64(s.Total))
	ch <- prometheus.MustNewConstMetric(c.constructing, prometheus.GaugeValue, float64(s.Constructing))
	ch <- prometheus.MustNewConstMetric(c.waiting, prometheus.GaugeValue, float64(s.Waiting))
	ch <- prometheus.MustNewConstMetric(c.acquires, prometheus.CounterValue, float64(s.AcquireCount))
	ch <- prometheus.MustNewConstMetric(c.canceled, prometheus.CounterValue, float64(s.CanceledAcquire))
}
