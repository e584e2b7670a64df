// Package prom exports cache metrics to Prometheus.
package prom

import (
	"github.com/IvanBrykalov/blockcache/cache"
	"github.com/prometheus/client_golang/prometheus"
)

// Adapter implements cache.Metrics and exports Prometheus counters/gauges.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	lookups   *prometheus.CounterVec
	evicts    prometheus.Counter
	io        *prometheus.CounterVec
	exhausted prometheus.Counter
	busy      prometheus.Gauge
}

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &Adapter{
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "lookups_total",
				Help:        "Buffer lookups by result",
				ConstLabels: constLabels,
			},
			[]string{"result"},
		),
		evicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "evictions_total",
			Help:        "Misses that recycled a slot caching another block",
			ConstLabels: constLabels,
		}),
		io: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "device_io_total",
				Help:        "Blocks transferred to or from the device",
				ConstLabels: constLabels,
			},
			[]string{"op"},
		),
		exhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "exhausted_total",
			Help:        "Reads that found every slot referenced",
			ConstLabels: constLabels,
		}),
		busy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "busy_slots",
			Help:        "Slots with at least one reference",
			ConstLabels: constLabels,
		}),
	}
	reg.MustRegister(a.lookups, a.evicts, a.io, a.exhausted, a.busy)
	return a
}

// Hit counts a lookup that found the block cached.
func (a *Adapter) Hit() { a.lookups.WithLabelValues("hit").Inc() }

// Miss counts a lookup that had to allocate a slot.
func (a *Adapter) Miss() { a.lookups.WithLabelValues("miss").Inc() }

// Evict increments the eviction counter.
func (a *Adapter) Evict() { a.evicts.Inc() }

// DeviceRead counts a block loaded from the device.
func (a *Adapter) DeviceRead() { a.io.WithLabelValues("read").Inc() }

// DeviceWrite counts a block written to the device.
func (a *Adapter) DeviceWrite() { a.io.WithLabelValues("write").Inc() }

// Exhausted counts a Read that failed for lack of a free slot.
func (a *Adapter) Exhausted() { a.exhausted.Inc() }

// Busy updates the referenced-slots gauge.
func (a *Adapter) Busy(n int) { a.busy.Set(float64(n)) }

// Compile-time check: ensure Adapter implements cache.Metrics.
var _ cache.Metrics = (*Adapter)(nil)
