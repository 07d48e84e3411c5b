package workload

import (
	"strings"
	"testing"
)

func TestUniform_Deterministic(t *testing.T) {
	a := Uniform(42, 100, 1000, 0.1)
	b := Uniform(42, 100, 1000, 0.1)

	if len(a.Ops) != 1000 {
		t.Fatalf("len(Ops) = %d, want 1000", len(a.Ops))
	}
	for i := range a.Ops {
		if a.Ops[i] != b.Ops[i] {
			t.Fatalf("op %d differs between identically seeded traces: %+v vs %+v", i, a.Ops[i], b.Ops[i])
		}
	}
}

func TestUniform_DifferentSeeds(t *testing.T) {
	a := Uniform(1, 100, 1000, 0.1)
	b := Uniform(2, 100, 1000, 0.1)

	same := 0
	for i := range a.Ops {
		if a.Ops[i] == b.Ops[i] {
			same++
		}
	}
	if same == len(a.Ops) {
		t.Error("differently seeded traces are identical")
	}
}

func TestZipf_SkewsPopularity(t *testing.T) {
	trace := Zipf(7, 1000, 10000, 1.5, 0)

	counts := make(map[string]int)
	for _, op := range trace.Ops {
		counts[op.Key]++
	}

	// With skew 1.5 the single hottest key takes a large share of the
	// accesses; a uniform trace would give each key ~10.
	var max int
	for _, c := range counts {
		if c > max {
			max = c
		}
	}
	if max < 1000 {
		t.Errorf("hottest key count = %d, want >= 1000 under skew", max)
	}
}

func TestKey_Namespaced(t *testing.T) {
	for i, want := range []string{"caption:", "image:", "mask:", "variations:"} {
		if got := Key(i); !strings.HasPrefix(got, want) {
			t.Errorf("Key(%d) = %q, want prefix %q", i, got, want)
		}
	}
}

func TestTrace_Reads(t *testing.T) {
	trace := Trace{Ops: []Op{
		{Key: "a"},
		{Key: "b", Write: true},
		{Key: "c"},
	}}
	if got := trace.Reads(); got != 2 {
		t.Errorf("Reads() = %d, want 2", got)
	}
}

func TestUniform_WriteRatio(t *testing.T) {
	trace := Uniform(11, 50, 10000, 0.25)

	writes := len(trace.Ops) - trace.Reads()
	// Allow generous slack around the expected 2500.
	if writes < 2000 || writes > 3000 {
		t.Errorf("writes = %d, want roughly 2500", writes)
	}
}
