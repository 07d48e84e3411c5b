package micro

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/captionart/hoard"
)

type captionPayload struct {
	Text  string   `json:"text"`
	Tags  []string `json:"tags"`
	Score float64  `json:"score"`
}

var benchPayload = captionPayload{
	Text:  "A golden retriever mid-leap catching a frisbee on a sunlit beach",
	Tags:  []string{"dog", "beach", "action", "summer"},
	Score: 0.93,
}

// BenchmarkGet_MemoryHit measures read latency when the entry is resident
// in the in-memory table.
func BenchmarkGet_MemoryHit(b *testing.B) {
	cache, err := hoard.New()
	if err != nil {
		b.Fatalf("creating cache: %v", err)
	}
	defer cache.Close()

	ctx := context.Background()
	cache.Set(ctx, "caption:bench", benchPayload, time.Hour)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, ok := cache.Get(ctx, "caption:bench"); !ok {
			b.Fatal("expected hit")
		}
	}
}

// BenchmarkGet_Miss measures read latency when both tiers miss.
func BenchmarkGet_Miss(b *testing.B) {
	cache, err := hoard.New(hoard.WithDir(b.TempDir()))
	if err != nil {
		b.Fatalf("creating cache: %v", err)
	}
	defer cache.Close()

	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, ok := cache.Get(ctx, "caption:absent"); ok {
			b.Fatal("unexpected hit")
		}
	}
}

// BenchmarkGet_BackingTierPromotion measures the cold-read path: a table
// miss followed by a backing-tier read and promotion. Every iteration reads
// a key seen for the first time, so none is served from memory.
func BenchmarkGet_BackingTierPromotion(b *testing.B) {
	dir := b.TempDir()
	ctx := context.Background()

	// Populate the backing tier through a write-through cache kept at a
	// single resident entry so seeding stays flat in memory.
	seed, err := hoard.New(
		hoard.WithDir(dir),
		hoard.WithWriteThrough(),
		hoard.WithMaxEntries(1),
	)
	if err != nil {
		b.Fatalf("creating seed cache: %v", err)
	}

	keys := make([]string, b.N)
	for i := range keys {
		keys[i] = fmt.Sprintf("caption:bench:%08d", i)
		seed.Set(ctx, keys[i], benchPayload, time.Hour)
	}
	if err := seed.Close(); err != nil {
		b.Fatalf("closing seed cache: %v", err)
	}

	cache, err := hoard.New(hoard.WithDir(dir), hoard.WithMaxEntries(0), hoard.WithMaxBytes(0))
	if err != nil {
		b.Fatalf("creating cache: %v", err)
	}
	defer cache.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, ok := cache.Get(ctx, keys[i]); !ok {
			b.Fatal("expected backing tier hit")
		}
	}
}

// BenchmarkSet measures steady-state write latency overwriting one key.
func BenchmarkSet(b *testing.B) {
	cache, err := hoard.New()
	if err != nil {
		b.Fatalf("creating cache: %v", err)
	}
	defer cache.Close()

	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cache.Set(ctx, "caption:bench", benchPayload, time.Hour)
	}
}

// BenchmarkSet_Evicting measures write latency when each write lands in a
// full table and forces an eviction.
func BenchmarkSet_Evicting(b *testing.B) {
	cache, err := hoard.New(hoard.WithMaxEntries(256))
	if err != nil {
		b.Fatalf("creating cache: %v", err)
	}
	defer cache.Close()

	ctx := context.Background()
	keys := make([]string, 4096)
	for i := range keys {
		keys[i] = fmt.Sprintf("caption:bench:%04d", i)
	}
	// Fill the table so the first measured write already evicts.
	for _, key := range keys {
		cache.Set(ctx, key, benchPayload, time.Hour)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cache.Set(ctx, keys[i%len(keys)], benchPayload, time.Hour)
	}
}

// BenchmarkGetImage measures binary reads through the base64 view with a
// 64 KiB payload.
func BenchmarkGetImage(b *testing.B) {
	cache, err := hoard.New()
	if err != nil {
		b.Fatalf("creating cache: %v", err)
	}
	defer cache.Close()

	ctx := context.Background()
	img := make([]byte, 64<<10)
	for i := range img {
		img[i] = byte(i)
	}
	cache.SetImage(ctx, "asset-001", img, time.Hour)

	b.SetBytes(int64(len(img)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, ok := cache.GetImage(ctx, "asset-001"); !ok {
			b.Fatal("expected hit")
		}
	}
}

// BenchmarkZstdDecode measures zstd decompression speed on a synthetic
// batch of caption records, the shape seed files arrive in.
func BenchmarkZstdDecode(b *testing.B) {
	var raw []byte
	for i := 0; i < 10000; i++ {
		line := fmt.Sprintf(`{"key":"caption:%05d","value":{"text":"caption number %d","score":0.5}}`+"\n", i, i)
		raw = append(raw, line...)
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		b.Fatalf("creating encoder: %v", err)
	}
	compressed := encoder.EncodeAll(raw, nil)
	encoder.Close()

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		b.Fatalf("creating decoder: %v", err)
	}
	defer decoder.Close()

	b.SetBytes(int64(len(compressed)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, err := decoder.DecodeAll(compressed, nil)
		if err != nil {
			b.Fatalf("decode error: %v", err)
		}
	}
}

// TestMicroBenchmarksCompile ensures the benchmarks compile.
func TestMicroBenchmarksCompile(t *testing.T) {
	// This test just ensures the benchmark code compiles.
	_ = fmt.Sprintf("benchmarks compile")
}
