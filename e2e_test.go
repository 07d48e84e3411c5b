//go:build e2e

package hoard_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/captionart/hoard"
)

func TestE2E_SeedAndServe(t *testing.T) {
	// Create temp directory for test
	tmpDir, err := os.MkdirTemp("", "hoard-e2e-*")
	if err != nil {
		t.Fatalf("Error creating temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	seedFile := filepath.Join(tmpDir, "artifacts.jsonl")
	cacheDir := filepath.Join(tmpDir, "cache")

	// Step 1: Generate seed records
	t.Log("📦 Generating 10,000 artifact records...")
	start := time.Now()
	ids, err := writeSeedFile(seedFile, 10000)
	if err != nil {
		t.Fatalf("Error writing seed file: %v", err)
	}
	t.Logf("   Generated %d records in %v", len(ids), time.Since(start))

	// Step 2: Seed the cache directory
	t.Log("🔨 Seeding cache directory...")
	start = time.Now()
	cmd := exec.Command("go", "run", "./cmd/hoard", "seed",
		"--dir", cacheDir,
		seedFile,
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("Error seeding: %v", err)
	}
	t.Logf("   Seeded in %v", time.Since(start))

	// Step 3: Serve reads from a fresh cache over the seeded directory
	t.Log("🔍 Testing reads...")

	cache, err := hoard.New(
		hoard.WithDir(cacheDir),
		hoard.WithMaxEntries(100), // Small table so most reads promote from disk.
	)
	if err != nil {
		t.Fatalf("Error creating cache: %v", err)
	}
	defer cache.Close()

	ctx := context.Background()
	found := 0
	var totalTime time.Duration

	testCount := min(1000, len(ids))
	for i := 0; i < testCount; i++ {
		start := time.Now()
		caption, ok := cache.GetCaption(ctx, ids[i])
		totalTime += time.Since(start)

		if ok {
			found++
			if i < 5 {
				t.Logf("   ✓ %s: %q", ids[i], caption)
			}
		}
	}

	stats := cache.Stats()
	t.Logf("📊 Results:")
	t.Logf("   Tested:    %d artifacts", testCount)
	t.Logf("   Found:     %d (%.1f%%)", found, float64(found)/float64(testCount)*100)
	t.Logf("   Avg time:  %v", totalTime/time.Duration(testCount))
	t.Logf("   Hit rate:  %.1f%%", stats.HitRate()*100)

	if found != testCount {
		t.Errorf("Expected every seeded artifact on the backing tier, found %d/%d", found, testCount)
	}
}

func writeSeedFile(path string, count int) ([]string, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	type record struct {
		Key   string          `json:"key"`
		Value json.RawMessage `json:"value"`
		TTL   string          `json:"ttl,omitempty"`
	}

	ids := make([]string, 0, count)
	enc := json.NewEncoder(f)
	for i := 0; i < count; i++ {
		id := fmt.Sprintf("asset-%05d", i)
		caption, err := json.Marshal(fmt.Sprintf("Generated caption for %s", id))
		if err != nil {
			return nil, err
		}
		if err := enc.Encode(record{Key: "caption:" + id, Value: caption}); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
