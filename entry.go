package hoard

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Entry is one cached artifact with its bookkeeping. Entries serialize to
// the backing tier as a single JSON document; Size is recomputed on read
// when a blob omits it.
type Entry struct {
	// Data is the cached value in its serialized form.
	Data json.RawMessage `json:"data"`

	// Timestamp is the creation time. It orders eviction and anchors the
	// TTL, and it survives a round-trip through the backing tier.
	Timestamp time.Time `json:"timestamp"`

	// TTL is the duration after Timestamp at which the entry goes stale.
	// Zero or negative means the entry never expires.
	TTL time.Duration `json:"ttl"`

	// Hits counts reads served for this entry from the in-memory table.
	Hits int64 `json:"hits"`

	// Size is the serialized byte length of Data, used for the aggregate
	// size ceiling.
	Size int64 `json:"size,omitempty"`
}

// Expired reports whether the entry's TTL has lapsed.
func (e *Entry) Expired() bool {
	return e.TTL > 0 && time.Since(e.Timestamp) > e.TTL
}

// Age returns the time elapsed since the entry was created.
func (e *Entry) Age() time.Duration {
	return time.Since(e.Timestamp)
}

// decodeEntry parses a serialized entry read from the backing tier.
func decodeEntry(raw []byte) (*Entry, error) {
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("decoding entry: %w", err)
	}
	if len(e.Data) == 0 {
		return nil, errors.New("decoding entry: no data field")
	}
	if e.Size == 0 {
		e.Size = int64(len(e.Data))
	}
	return &e, nil
}
