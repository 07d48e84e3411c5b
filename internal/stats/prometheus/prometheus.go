// Package prometheus provides a Prometheus-based stats collector.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/captionart/hoard/internal/stats"
)

// Collector implements stats.Collector using Prometheus metrics. The cache's
// whole metric family is built and registered at construction; names outside
// the family are dropped.
type Collector struct {
	counters   map[string]prometheus.Counter
	gauges     map[string]prometheus.Gauge
	histograms map[string]prometheus.Histogram
}

// Compile-time check that Collector implements stats.Collector.
var _ stats.Collector = (*Collector)(nil)

// New creates a Prometheus collector with every cache metric registered
// against the given registerer. If registry is nil,
// prometheus.DefaultRegisterer is used. A metric that is already registered
// (a second collector on the same registry) is reused rather than
// re-registered.
func New(registry prometheus.Registerer) *Collector {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	c := &Collector{
		counters:   make(map[string]prometheus.Counter),
		gauges:     make(map[string]prometheus.Gauge),
		histograms: make(map[string]prometheus.Histogram),
	}

	for _, desc := range stats.Family() {
		switch desc.Kind {
		case stats.KindCounter:
			c.counters[desc.Name] = registerCounter(registry, desc)
		case stats.KindGauge:
			c.gauges[desc.Name] = registerGauge(registry, desc)
		case stats.KindHistogram:
			c.histograms[desc.Name] = registerHistogram(registry, desc)
		}
	}

	return c
}

// IncCounter increments a counter metric.
func (c *Collector) IncCounter(name string, delta int64) {
	if counter, ok := c.counters[name]; ok {
		counter.Add(float64(delta))
	}
}

// SetGauge sets a gauge metric.
func (c *Collector) SetGauge(name string, value int64) {
	if gauge, ok := c.gauges[name]; ok {
		gauge.Set(float64(value))
	}
}

// ObserveHistogram records a value in a histogram.
func (c *Collector) ObserveHistogram(name string, value float64) {
	if histogram, ok := c.histograms[name]; ok {
		histogram.Observe(value)
	}
}

func registerCounter(registry prometheus.Registerer, desc stats.Descriptor) prometheus.Counter {
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: desc.Name,
		Help: desc.Help,
	})
	if err := registry.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing
			}
		}
		// Registration failed; the metric still counts, it just is not
		// exported.
	}
	return counter
}

func registerGauge(registry prometheus.Registerer, desc stats.Descriptor) prometheus.Gauge {
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: desc.Name,
		Help: desc.Help,
	})
	if err := registry.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing
			}
		}
	}
	return gauge
}

func registerHistogram(registry prometheus.Registerer, desc stats.Descriptor) prometheus.Histogram {
	buckets := desc.Buckets
	if buckets == nil {
		buckets = prometheus.DefBuckets
	}
	histogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    desc.Name,
		Help:    desc.Help,
		Buckets: buckets,
	})
	if err := registry.Register(histogram); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing
			}
		}
	}
	return histogram
}
