package simulation

import "sort"

// Metrics contains computed metrics from a replay result.
type Metrics struct {
	// Core metrics.
	Ops       int
	Reads     int
	HitRate   float64
	Evictions int

	// Distribution of per-window hit rates.
	MeanWindowHitRate   float64
	MedianWindowHitRate float64
	MinWindowHitRate    float64
	MaxWindowHitRate    float64
	P10WindowHitRate    float64 // Worst-decile window.
}

// ComputeMetrics computes detailed metrics from a replay result.
func ComputeMetrics(result *Result) *Metrics {
	m := &Metrics{
		Ops:       result.Ops,
		Reads:     result.Reads,
		HitRate:   result.HitRate(),
		Evictions: result.Evictions,
	}

	if len(result.WindowHitRates) > 0 {
		sorted := make([]float64, len(result.WindowHitRates))
		copy(sorted, result.WindowHitRates)
		sort.Float64s(sorted)

		var sum float64
		for _, r := range sorted {
			sum += r
		}
		m.MeanWindowHitRate = sum / float64(len(sorted))
		m.MinWindowHitRate = sorted[0]
		m.MaxWindowHitRate = sorted[len(sorted)-1]
		m.MedianWindowHitRate = percentile(sorted, 50)
		m.P10WindowHitRate = percentile(sorted, 10)
	}

	return m
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted)-1) * p / 100)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
