// Package prom exports the library's metrics hooks to Prometheus.
package prom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rgbygv/syncbox/memo"
	"github.com/rgbygv/syncbox/workpool"
)

// MemoAdapter implements memo.Metrics and exports Prometheus counters and
// a factory-latency histogram. Safe for concurrent use; all Prometheus
// metric types are goroutine-safe.
type MemoAdapter struct {
	hits     prometheus.Counter
	misses   prometheus.Counter
	poisoned prometheus.Counter
	compute  prometheus.Histogram
}

// NewMemo constructs a Prometheus adapter for a memo.Cache.
//   - reg:         registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:     Prometheus namespace and subsystem
//   - constLabels: static labels applied to all metrics (may be nil)
func NewMemo(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *MemoAdapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &MemoAdapter{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "hits_total",
			Help:        "Lookups that found an existing slot",
			ConstLabels: constLabels,
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "misses_total",
			Help:        "Lookups that created a slot and ran the factory",
			ConstLabels: constLabels,
		}),
		poisoned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "poisoned_total",
			Help:        "Slots poisoned by a factory panic",
			ConstLabels: constLabels,
		}),
		compute: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "compute_seconds",
			Help:        "Factory execution latency",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(a.hits, a.misses, a.poisoned, a.compute)
	return a
}

// Hit increments the hit counter.
func (a *MemoAdapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *MemoAdapter) Miss() { a.misses.Inc() }

// Compute observes one factory execution.
func (a *MemoAdapter) Compute(d time.Duration) { a.compute.Observe(d.Seconds()) }

// Poisoned increments the poisoned-slot counter.
func (a *MemoAdapter) Poisoned() { a.poisoned.Inc() }

// PoolAdapter implements workpool.Metrics and exports job counters and a
// queue-depth gauge.
type PoolAdapter struct {
	submitted prometheus.Counter
	completed prometheus.Counter
	recovered prometheus.Counter
	depth     prometheus.Gauge
}

// NewPool constructs a Prometheus adapter for a workpool.Pool.
// Arguments mirror NewMemo.
func NewPool(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *PoolAdapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &PoolAdapter{
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "jobs_submitted_total",
			Help:        "Jobs accepted by Execute",
			ConstLabels: constLabels,
		}),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "jobs_completed_total",
			Help:        "Jobs that returned normally",
			ConstLabels: constLabels,
		}),
		recovered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "jobs_recovered_total",
			Help:        "Jobs that panicked and were recovered",
			ConstLabels: constLabels,
		}),
		depth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "queue_depth",
			Help:        "Jobs waiting in the queue",
			ConstLabels: constLabels,
		}),
	}
	reg.MustRegister(a.submitted, a.completed, a.recovered, a.depth)
	return a
}

// Submitted increments the submitted-jobs counter.
func (a *PoolAdapter) Submitted() { a.submitted.Inc() }

// Completed increments the completed-jobs counter.
func (a *PoolAdapter) Completed() { a.completed.Inc() }

// Recovered increments the recovered-panics counter.
func (a *PoolAdapter) Recovered() { a.recovered.Inc() }

// Depth updates the queue-depth gauge.
func (a *PoolAdapter) Depth(n int) { a.depth.Set(float64(n)) }

// Compile-time checks: adapters implement the library interfaces.
var (
	_ memo.Metrics     = (*MemoAdapter)(nil)
	_ workpool.Metrics = (*PoolAdapter)(nil)
)
