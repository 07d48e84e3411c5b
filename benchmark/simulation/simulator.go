// Package simulation replays access traces against eviction policies.
//
// The simulator models only the in-memory tier: a bounded set of resident
// keys managed by an eviction policy. Replaying the same trace across
// policies at the same capacity shows how much hit rate each policy's
// victim choice costs or buys, without the noise of real clocks or I/O.
package simulation

import (
	"time"

	"github.com/captionart/hoard/benchmark/workload"
	"github.com/captionart/hoard/internal/evict"
)

// Simulator replays traces against a set of eviction policies at a fixed
// capacity.
type Simulator struct {
	capacity int
	window   int
	policies []evict.Policy
}

// NewSimulator creates a Simulator. Capacity is the entry ceiling of the
// simulated table. Window is the number of ops per hit-rate sample; the
// per-window series feeds the statistical comparison between policies.
func NewSimulator(capacity, window int, policies ...evict.Policy) *Simulator {
	if window <= 0 {
		window = 1000
	}
	return &Simulator{
		capacity: capacity,
		window:   window,
		policies: policies,
	}
}

// Result aggregates one policy's replay of one trace.
type Result struct {
	PolicyName string
	TraceName  string

	Ops       int
	Reads     int
	Hits      int
	Misses    int
	Evictions int

	// WindowHitRates is the hit rate per window of ops, in trace order.
	// The final window may cover fewer ops than the rest.
	WindowHitRates []float64
}

// HitRate returns the overall fraction of reads served from the simulated
// table, 0 when the trace had no reads.
func (r *Result) HitRate() float64 {
	if r.Reads == 0 {
		return 0
	}
	return float64(r.Hits) / float64(r.Reads)
}

// Replay runs the trace through every policy and returns the per-policy
// results keyed by policy name. Policies are reset first, so a Simulator
// can replay several traces in sequence.
func (s *Simulator) Replay(trace workload.Trace) map[string]*Result {
	results := make(map[string]*Result, len(s.policies))
	for _, policy := range s.policies {
		results[policy.Name()] = s.replayOne(trace, policy)
	}
	return results
}

// replayOne replays the trace against a single policy. A read miss fills
// the table, the way a cache miss makes the caller recompute and write the
// artifact back; a write inserts or refreshes. Both paths evict through
// the policy once the table is over capacity.
func (s *Simulator) replayOne(trace workload.Trace, policy evict.Policy) *Result {
	policy.Reset()
	resident := make(map[string]struct{}, s.capacity)
	result := &Result{
		PolicyName: policy.Name(),
		TraceName:  trace.Name,
		Ops:        len(trace.Ops),
	}

	// Synthetic creation clock: strictly increasing so creation-order
	// policies see unambiguous timestamps.
	base := time.Unix(0, 0)

	windowReads, windowHits := 0, 0
	for i, op := range trace.Ops {
		at := base.Add(time.Duration(i) * time.Millisecond)

		if op.Write {
			s.insert(op.Key, at, resident, policy, result)
		} else {
			result.Reads++
			windowReads++
			if _, ok := resident[op.Key]; ok {
				result.Hits++
				windowHits++
				policy.Touch(op.Key)
			} else {
				result.Misses++
				s.insert(op.Key, at, resident, policy, result)
			}
		}

		if (i+1)%s.window == 0 {
			result.WindowHitRates = append(result.WindowHitRates, windowRate(windowHits, windowReads))
			windowReads, windowHits = 0, 0
		}
	}
	if windowReads > 0 {
		result.WindowHitRates = append(result.WindowHitRates, windowRate(windowHits, windowReads))
	}

	return result
}

func (s *Simulator) insert(key string, at time.Time, resident map[string]struct{}, policy evict.Policy, result *Result) {
	resident[key] = struct{}{}
	policy.Record(key, at)
	for s.capacity > 0 && len(resident) > s.capacity {
		victim, ok := policy.Victim()
		if !ok {
			return
		}
		policy.Forget(victim)
		delete(resident, victim)
		result.Evictions++
	}
}

func windowRate(hits, reads int) float64 {
	if reads == 0 {
		return 0
	}
	return float64(hits) / float64(reads)
}
