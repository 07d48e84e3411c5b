// Package workload generates deterministic synthetic access traces for
// benchmarking eviction policies.
//
// A trace models the read and write traffic the platform sends at the
// artifact cache: a key space of captions, images, masks and variation
// bundles, read far more often than written, with key popularity either
// uniform or skewed. Traces are seeded, so the same parameters always
// produce the same operation sequence and benchmark runs stay comparable.
package workload

import (
	"fmt"
	"math/rand"
)

// Op is a single cache access.
type Op struct {
	// Key is the namespaced cache key being accessed.
	Key string

	// Write marks the op as a write (Set); otherwise it is a read (Get).
	Write bool
}

// Trace is a reproducible sequence of cache accesses.
type Trace struct {
	// Name describes the generator and its parameters.
	Name string

	// Keys is the size of the key space the trace draws from.
	Keys int

	// Ops is the access sequence.
	Ops []Op
}

// The artifact kinds cycled through the key space, so a trace touches the
// same namespaces production keys use.
var kinds = [...]string{"caption", "image", "mask", "variations"}

// Key returns the namespaced key for index i.
func Key(i int) string {
	return fmt.Sprintf("%s:%05d", kinds[i%len(kinds)], i)
}

// Uniform returns a trace of n operations drawn uniformly over keyCount
// keys. Each op is a write with probability writeRatio.
func Uniform(seed int64, keyCount, n int, writeRatio float64) Trace {
	r := rand.New(rand.NewSource(seed))
	ops := make([]Op, n)
	for i := range ops {
		ops[i] = Op{
			Key:   Key(r.Intn(keyCount)),
			Write: r.Float64() < writeRatio,
		}
	}
	return Trace{
		Name: fmt.Sprintf("uniform(keys=%d, ops=%d)", keyCount, n),
		Keys: keyCount,
		Ops:  ops,
	}
}

// Zipf returns a trace of n operations over keyCount keys whose popularity
// follows a Zipf distribution with the given skew (> 1; larger means a
// smaller hot set). This is the shape artifact traffic actually has: a few
// campaigns generate most of the lookups while the long tail is touched
// rarely.
func Zipf(seed int64, keyCount, n int, skew, writeRatio float64) Trace {
	r := rand.New(rand.NewSource(seed))
	z := rand.NewZipf(r, skew, 1, uint64(keyCount-1))
	ops := make([]Op, n)
	for i := range ops {
		ops[i] = Op{
			Key:   Key(int(z.Uint64())),
			Write: r.Float64() < writeRatio,
		}
	}
	return Trace{
		Name: fmt.Sprintf("zipf(keys=%d, ops=%d, skew=%.2f)", keyCount, n, skew),
		Keys: keyCount,
		Ops:  ops,
	}
}

// Reads returns the number of read ops in the trace.
func (t Trace) Reads() int {
	reads := 0
	for _, op := range t.Ops {
		if !op.Write {
			reads++
		}
	}
	return reads
}
