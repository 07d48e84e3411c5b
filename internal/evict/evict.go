// Package evict defines the eviction policy interface for the in-memory
// entry table.
//
// A policy tracks which keys are resident and answers "who goes next" when
// the table is over one of its ceilings. Policies are not safe for
// concurrent use on their own; the cache serializes all calls under its
// table lock.
package evict

import "time"

// Policy chooses eviction victims for the in-memory tier.
type Policy interface {
	// Name identifies the policy in logs and benchmark output.
	Name() string

	// Record registers a key as resident. createdAt is the entry's
	// creation time, which survives a round-trip through the backing
	// tier, so a promoted entry re-enters the policy with its original
	// age rather than the promotion time.
	Record(key string, createdAt time.Time)

	// Touch notes a read of a resident key. Age-based policies ignore
	// it; recency-based ones reorder on it.
	Touch(key string)

	// Forget drops a key from the policy after deletion, expiration or
	// eviction.
	Forget(key string)

	// Victim returns the next key to evict, without removing it.
	// Returns false when no keys are resident.
	Victim() (string, bool)

	// Len returns the number of keys the policy tracks.
	Len() int

	// Reset drops all tracked keys.
	Reset()
}
