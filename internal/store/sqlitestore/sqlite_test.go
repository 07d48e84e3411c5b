package sqlitestore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/captionart/hoard/internal/store"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hoard.db")
	s, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s, path
}

func TestStore_WriteRead(t *testing.T) {
	s, _ := newTestStore(t)
	defer s.Close()

	ctx := context.Background()
	data := []byte(`{"data":"hello"}`)

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
	s, _ := newTestStore(t)
	defer s.Close()

	_, err := s.Read(context.Background(), "caption:absent")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Read() error = %v, want ErrNotFound", err)
	}
}

func TestStore_Overwrite(t *testing.T) {
	s, _ := newTestStore(t)
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
	s, _ := newTestStore(t)
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

	if err := s.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete() of missing key error = %v, want nil", err)
	}
}

func TestStore_Clear(t *testing.T) {
	s, _ := newTestStore(t)
	defer s.Close()

	ctx := context.Background()
	for _, key := range []string{"a", "b", "c"} {
		if err := s.Write(ctx, key, []byte("v")); err != nil {
			t.Fatalf("Write(%q) error = %v", key, err)
		}
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	for _, key := range []string{"a", "b", "c"} {
		if s.Exists(ctx, key) {
			t.Errorf("Exists(%q) = true after Clear, want false", key)
		}
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	s, path := newTestStore(t)

	ctx := context.Background()
	if err := s.Write(ctx, "caption:asset-1", []byte("durable")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := New(path)
	if err != nil {
		t.Fatalf("New() on existing db error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Read(ctx, "caption:asset-1")
	if err != nil {
		t.Fatalf("Read() after reopen error = %v", err)
	}
	if string(got) != "durable" {
		t.Errorf("Read() = %q, want %q", got, "durable")
	}
}
