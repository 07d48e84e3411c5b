// Package creation implements oldest-created-first eviction.
package creation

import (
	"time"

	"github.com/captionart/hoard/internal/evict"
)

// Compile-time check that Policy implements evict.Policy.
var _ evict.Policy = (*Policy)(nil)

type record struct {
	at  time.Time
	seq uint64
}

// Policy evicts the entry with the oldest creation time. Entries created at
// the same instant fall back to arrival order, so the victim is still
// deterministic on coarse clocks.
type Policy struct {
	records map[string]record
	nextSeq uint64
}

// New creates an oldest-created-first policy.
func New() *Policy {
	return &Policy{records: make(map[string]record)}
}

// Name returns "creation-order".
func (p *Policy) Name() string {
	return "creation-order"
}

// Record registers a key with its creation time. Re-recording a key
// replaces its previous registration.
func (p *Policy) Record(key string, createdAt time.Time) {
	p.records[key] = record{at: createdAt, seq: p.nextSeq}
	p.nextSeq++
}

// Touch is a no-op; reads do not change creation order.
func (p *Policy) Touch(string) {}

// Forget drops a key.
func (p *Policy) Forget(key string) {
	delete(p.records, key)
}

// Victim returns the key with the earliest creation time, breaking ties by
// arrival order. The scan is linear over resident keys; tables sized for
// in-process caching keep this cheap next to the blob I/O around it.
func (p *Policy) Victim() (string, bool) {
	var (
		victim string
		oldest record
		found  bool
	)
	for key, rec := range p.records {
		if !found || rec.at.Before(oldest.at) || (rec.at.Equal(oldest.at) && rec.seq < oldest.seq) {
			victim = key
			oldest = rec
			found = true
		}
	}
	return victim, found
}

// Len returns the number of tracked keys.
func (p *Policy) Len() int {
	return len(p.records)
}

// Reset drops all tracked keys. The arrival counter keeps running so
// ordering stays stable across resets.
func (p *Policy) Reset() {
	p.records = make(map[string]record)
}
