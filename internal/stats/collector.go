// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names used throughout the library.
const (
	// Access metrics.
	MetricHits       = "hoard_hits_total"
	MetricMisses     = "hoard_misses_total"
	MetricPromotions = "hoard_promotions_total"
	MetricGetSeconds = "hoard_get_duration_seconds"

	// Table metrics.
	MetricEvictions   = "hoard_evictions_total"
	MetricExpirations = "hoard_expirations_total"
	MetricEntries     = "hoard_entries"
	MetricMemoryBytes = "hoard_memory_bytes"
)

// Kind distinguishes the metric types in the family.
type Kind int

const (
	KindCounter Kind = iota
	KindGauge
	KindHistogram
)

// Descriptor describes one metric of the cache's metric family.
type Descriptor struct {
	Name    string
	Help    string
	Kind    Kind
	Buckets []float64 // histograms only; nil selects default buckets
}

// Family returns the descriptors for every metric the cache emits. Exporting
// backends register the whole family up front so scrapes see all series from
// the start, zero-valued until the cache touches them.
func Family() []Descriptor {
	return []Descriptor{
		{Name: MetricHits, Help: "Reads served from the in-memory table or the backing tier.", Kind: KindCounter},
		{Name: MetricMisses, Help: "Reads that found no live entry in either tier.", Kind: KindCounter},
		{Name: MetricPromotions, Help: "Entries loaded from the backing tier back into memory.", Kind: KindCounter},
		{Name: MetricEvictions, Help: "Entries dropped from memory by the capacity ceilings.", Kind: KindCounter},
		{Name: MetricExpirations, Help: "Entries removed because their TTL had lapsed.", Kind: KindCounter},
		{Name: MetricEntries, Help: "Entries currently resident in the in-memory table.", Kind: KindGauge},
		{Name: MetricMemoryBytes, Help: "Aggregate size of in-memory entry values in bytes.", Kind: KindGauge},
		{
			Name: MetricGetSeconds,
			Help: "Latency of cache reads in seconds.",
			Kind: KindHistogram,
			// Reads span in-memory map hits through backing-tier loads.
			Buckets: []float64{1e-6, 1e-5, 1e-4, 1e-3, 1e-2, 1e-1, 1},
		},
	}
}

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}
