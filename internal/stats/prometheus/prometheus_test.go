package prometheus

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/captionart/hoard/internal/stats"
)

func TestNew_RegistersWholeFamily(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)
	if c == nil {
		t.Fatal("New() returned nil")
	}

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	names := make(map[string]bool)
	for _, m := range metrics {
		names[m.GetName()] = true
	}
	for _, desc := range stats.Family() {
		if !names[desc.Name] {
			t.Errorf("metric %q not registered", desc.Name)
		}
	}
}

func TestCollector_IncCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.IncCounter(stats.MetricHits, 5)
	c.IncCounter(stats.MetricHits, 3)

	if got := counterValue(t, reg, stats.MetricHits); got != 8 {
		t.Errorf("counter value = %v, want 8", got)
	}
}

func TestCollector_SetGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.SetGauge(stats.MetricEntries, 42)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, m := range metrics {
		if m.GetName() == stats.MetricEntries {
			val := m.GetMetric()[0].GetGauge().GetValue()
			if val != 42 {
				t.Errorf("gauge value = %v, want 42", val)
			}
			return
		}
	}
	t.Errorf("gauge %q not found in registry", stats.MetricEntries)
}

func TestCollector_ObserveHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.ObserveHistogram(stats.MetricGetSeconds, 0.0005)
	c.ObserveHistogram(stats.MetricGetSeconds, 0.01)
	c.ObserveHistogram(stats.MetricGetSeconds, 0.5)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, m := range metrics {
		if m.GetName() == stats.MetricGetSeconds {
			count := m.GetMetric()[0].GetHistogram().GetSampleCount()
			if count != 3 {
				t.Errorf("histogram count = %v, want 3", count)
			}
			return
		}
	}
	t.Errorf("histogram %q not found in registry", stats.MetricGetSeconds)
}

func TestCollector_UnknownNameDropped(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	// Names outside the family must not panic or register anything new.
	c.IncCounter("unrelated_counter", 1)
	c.SetGauge("unrelated_gauge", 1)
	c.ObserveHistogram("unrelated_histogram", 1)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, m := range metrics {
		switch m.GetName() {
		case "unrelated_counter", "unrelated_gauge", "unrelated_histogram":
			t.Errorf("unexpected metric %q registered", m.GetName())
		}
	}
}

func TestNew_SharedRegistryReusesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := New(reg)
	second := New(reg)

	first.IncCounter(stats.MetricHits, 2)
	second.IncCounter(stats.MetricHits, 3)

	// Both collectors must feed the same underlying counter.
	if got := counterValue(t, reg, stats.MetricHits); got != 5 {
		t.Errorf("counter value = %v, want 5", got)
	}
}

func TestCollector_ConcurrentAccess(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				c.IncCounter(stats.MetricHits, 1)
				c.SetGauge(stats.MetricEntries, int64(j))
				c.ObserveHistogram(stats.MetricGetSeconds, float64(j)/1000)
			}
			done <- true
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	if got := counterValue(t, reg, stats.MetricHits); got != 1000 {
		t.Errorf("counter value = %v, want 1000", got)
	}
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, m := range metrics {
		if m.GetName() == name {
			return m.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatalf("counter %q not found in registry", name)
	return 0
}
