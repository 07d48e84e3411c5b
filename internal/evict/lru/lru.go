// Package lru implements least-recently-used eviction.
package lru

import (
	"time"

	hlru "github.com/hashicorp/golang-lru/v2"

	"github.com/captionart/hoard/internal/evict"
)

// Compile-time check that Policy implements evict.Policy.
var _ evict.Policy = (*Policy)(nil)

// Policy evicts the least recently read entry. It keeps a recency index
// only; entry data stays in the cache's own table.
type Policy struct {
	index *hlru.Cache[string, struct{}]
}

// New creates an LRU policy. The capacity must be at least the cache's
// entry ceiling: the index silently drops its own oldest key past capacity,
// which would desynchronize it from the table.
func New(capacity int) (*Policy, error) {
	index, err := hlru.New[string, struct{}](capacity)
	if err != nil {
		return nil, err
	}
	return &Policy{index: index}, nil
}

// Name returns "lru".
func (p *Policy) Name() string {
	return "lru"
}

// Record registers a key as most recently used. Creation time is ignored;
// recency is all that orders this policy.
func (p *Policy) Record(key string, _ time.Time) {
	p.index.Add(key, struct{}{})
}

// Touch moves a key to most recently used.
func (p *Policy) Touch(key string) {
	p.index.Get(key)
}

// Forget drops a key.
func (p *Policy) Forget(key string) {
	p.index.Remove(key)
}

// Victim returns the least recently used key.
func (p *Policy) Victim() (string, bool) {
	key, _, ok := p.index.GetOldest()
	return key, ok
}

// Len returns the number of tracked keys.
func (p *Policy) Len() int {
	return p.index.Len()
}

// Reset drops all tracked keys.
func (p *Policy) Reset() {
	p.index.Purge()
}
