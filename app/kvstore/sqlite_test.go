package kvstore

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Expected store to open, got: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	if _, found, err := store.Get(ctx, "absent"); err != nil || found {
		t.Errorf("Expected clean miss, got found=%t err=%v", found, err)
	}

	if err := store.Set(ctx, "k", "v1"); err != nil {
		t.Fatalf("Expected set to succeed, got: %v", err)
	}

	value, found, err := store.Get(ctx, "k")
	if err != nil || !found {
		t.Fatalf("Expected hit, got found=%t err=%v", found, err)
	}
	if value != "v1" {
		t.Errorf("Expected 'v1', got %v", value)
	}

	// Overwrites are last-writer-wins
	if err := store.Set(ctx, "k", "v2"); err != nil {
		t.Fatalf("Expected overwrite to succeed, got: %v", err)
	}
	value, _, _ = store.Get(ctx, "k")
	if value != "v2" {
		t.Errorf("Expected 'v2' after overwrite, got %v", value)
	}
}

func TestNoopStore(t *testing.T) {
	store := NewNoopStore()
	ctx := context.Background()

	if err := store.Set(ctx, "k", "v"); err != nil {
		t.Errorf("Expected no-op set to succeed, got: %v", err)
	}
	if _, found, err := store.Get(ctx, "k"); err != nil || found {
		t.Errorf("Expected no-op get to miss, got found=%t err=%v", found, err)
	}
	if store.Enabled() {
		t.Error("Expected noop store to report disabled")
	}
}
