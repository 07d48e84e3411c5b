package filestore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/captionart/hoard/internal/codec/gzipcodec"
	"github.com/captionart/hoard/internal/codec/noopcodec"
	"github.com/captionart/hoard/internal/store"
)

func TestStore_WriteRead(t *testing.T) {
	s := New(t.TempDir(), noopcodec.New(), nil)
	defer s.Close()

	ctx := context.Background()
	data := []byte(`{"data":{"text":"hello"},"timestamp":"2026-01-02T15:04:05Z"}`)

	if err := s.Write(ctx, "caption:asset-1", data); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := s.Read(ctx, "caption:asset-1")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("Read() = %q, want %q", got, data)
	}

	if !s.Exists(ctx, "caption:asset-1") {
		t.Error("Exists() = false after Write, want true")
	}
}

func TestStore_ReadNotFound(t *testing.T) {
	s := New(t.TempDir(), noopcodec.New(), nil)
	defer s.Close()

	_, err := s.Read(context.Background(), "caption:absent")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Read() error = %v, want ErrNotFound", err)
	}
}

func TestStore_Overwrite(t *testing.T) {
	s := New(t.TempDir(), noopcodec.New(), nil)
	defer s.Close()

	ctx := context.Background()
	if err := s.Write(ctx, "k", []byte("first")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := s.Write(ctx, "k", []byte("second")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := s.Read(ctx, "k")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(got) != "second" {
		t.Errorf("Read() = %q, want %q", got, "second")
	}
}

func TestStore_Delete(t *testing.T) {
	s := New(t.TempDir(), noopcodec.New(), nil)
	defer s.Close()

	ctx := context.Background()
	if err := s.Write(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Read(ctx, "k"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Read() after Delete error = %v, want ErrNotFound", err)
	}

	// Deleting a missing key is a no-op.
	if err := s.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete() of missing key error = %v, want nil", err)
	}
}

func TestStore_Clear(t *testing.T) {
	s := New(t.TempDir(), noopcodec.New(), nil)
	defer s.Close()

	ctx := context.Background()
	keys := []string{"caption:1", "image:1", "mask:1"}
	for _, key := range keys {
		if err := s.Write(ctx, key, []byte("v")); err != nil {
			t.Fatalf("Write(%q) error = %v", key, err)
		}
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	for _, key := range keys {
		if s.Exists(ctx, key) {
			t.Errorf("Exists(%q) = true after Clear, want false", key)
		}
	}
}

func TestStore_BlobNaming(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, gzipcodec.New(), nil)
	defer s.Close()

	ctx := context.Background()
	if err := s.Write(ctx, "caption:asset-1", []byte("v")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	// Hashed name, store extension, then the codec extension.
	want := store.HashKey("caption:asset-1") + store.Ext + ".gz"
	if _, err := os.Stat(filepath.Join(dir, want)); err != nil {
		t.Errorf("blob file %q not found: %v", want, err)
	}
}

func TestNew_Degraded(t *testing.T) {
	// A regular file where the directory should go makes MkdirAll fail.
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := New(filepath.Join(blocker, "cache"), noopcodec.New(), nil)
	defer s.Close()

	if !s.Disabled() {
		t.Fatal("Disabled() = false for uncreatable directory, want true")
	}

	// The degraded store keeps the cache usable: writes drop, reads miss.
	ctx := context.Background()
	if err := s.Write(ctx, "k", []byte("v")); err != nil {
		t.Errorf("Write() on degraded store error = %v, want nil", err)
	}
	if _, err := s.Read(ctx, "k"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Read() on degraded store error = %v, want ErrNotFound", err)
	}
	if s.Exists(ctx, "k") {
		t.Error("Exists() on degraded store = true, want false")
	}
}
