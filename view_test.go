package hoard

import (
	"bytes"
	"context"
	"testing"
	"time"
)

type renderJob struct {
	AssetID  string `json:"asset_id"`
	Style    string `json:"style"`
	Attempts int    `json:"attempts"`
}

func TestView_RoundTrip(t *testing.T) {
	cache, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer cache.Close()
	ctx := context.Background()

	jobs := NewView[renderJob](cache, "render-job")
	want := renderJob{AssetID: "asset-1", Style: "watercolor", Attempts: 2}
	jobs.Set(ctx, "job-007", want, time.Minute)

	got, ok := jobs.Get(ctx, "job-007")
	if !ok {
		t.Fatal("Get() ok = false, want true")
	}
	if got != want {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
	if !jobs.Has(ctx, "job-007") {
		t.Error("Has() = false, want true")
	}
}

func TestView_Key(t *testing.T) {
	cache, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer cache.Close()

	v := NewView[string](cache, "caption")
	if got, want := v.Key("asset-1"), "caption:asset-1"; got != want {
		t.Errorf("Key() = %q, want %q", got, want)
	}
}

func TestView_Delete(t *testing.T) {
	cache, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer cache.Close()
	ctx := context.Background()

	v := NewView[string](cache, "caption")
	v.Set(ctx, "asset-1", "text", time.Minute)
	v.Delete(ctx, "asset-1")

	if _, ok := v.Get(ctx, "asset-1"); ok {
		t.Error("Get() ok = true after Delete, want false")
	}
}

func TestView_PrefixIsolation(t *testing.T) {
	cache, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer cache.Close()
	ctx := context.Background()

	captions := NewView[string](cache, "caption")
	alts := NewView[string](cache, "alt-text")
	captions.Set(ctx, "asset-1", "caption text", time.Minute)
	alts.Set(ctx, "asset-1", "alt text", time.Minute)

	if got, _ := captions.Get(ctx, "asset-1"); got != "caption text" {
		t.Errorf("captions.Get() = %q, want %q", got, "caption text")
	}
	if got, _ := alts.Get(ctx, "asset-1"); got != "alt text" {
		t.Errorf("alts.Get() = %q, want %q", got, "alt text")
	}
}

func TestView_UndecodableValueIsMiss(t *testing.T) {
	cache, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer cache.Close()
	ctx := context.Background()

	// A string is cached under the key a typed view expects a struct at.
	cache.Set(ctx, "render-job:job-007", "not a job", time.Minute)

	jobs := NewView[renderJob](cache, "render-job")
	if _, ok := jobs.Get(ctx, "job-007"); ok {
		t.Error("Get() ok = true for undecodable value, want false")
	}
}

func TestBinaryView_RoundTripExact(t *testing.T) {
	cache, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer cache.Close()
	ctx := context.Background()

	// Every byte value must survive the text encoding.
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}

	thumbs := NewBinaryView(cache, "thumbnail")
	thumbs.Set(ctx, "asset-1", data, time.Minute)

	got, ok := thumbs.Get(ctx, "asset-1")
	if !ok {
		t.Fatal("Get() ok = false, want true")
	}
	if !bytes.Equal(got, data) {
		t.Error("Get() returned different bytes than Set stored")
	}
}

func TestBinaryView_CorruptEncodingIsMiss(t *testing.T) {
	cache, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer cache.Close()
	ctx := context.Background()

	// Valid JSON string, invalid base64 content.
	cache.Set(ctx, "thumbnail:asset-1", "!!not-base64!!", time.Minute)

	thumbs := NewBinaryView(cache, "thumbnail")
	if _, ok := thumbs.Get(ctx, "asset-1"); ok {
		t.Error("Get() ok = true for corrupt base64, want false")
	}
}
