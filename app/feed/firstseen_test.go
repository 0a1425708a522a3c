package feed

import (
	"context"
	"testing"
)

func TestFirstSeenRoundTrip(t *testing.T) {
	store := newFakeStore()
	tracker := NewFirstSeenTracker(store)
	ctx := context.Background()

	if !tracker.Set(ctx, "user/likes", "track-1", 100) {
		t.Fatal("Expected set to succeed")
	}

	for i := 0; i < 2; i++ {
		ts, ok := tracker.Get(ctx, "user/likes", "track-1")
		if !ok || ts != 100 {
			t.Errorf("Expected 100, got %d (ok=%t)", ts, ok)
		}
	}
}

func TestFirstSeenKeyShape(t *testing.T) {
	store := newFakeStore()
	tracker := NewFirstSeenTracker(store)

	tracker.Set(context.Background(), "user/likes", "track-1", 100)

	if _, ok := store.data["first-seen:user/likes:track-1"]; !ok {
		t.Errorf("Expected key 'first-seen:user/likes:track-1', stored keys: %v", store.data)
	}
}

func TestFirstSeenHistoricalEncodings(t *testing.T) {
	// The read path must tolerate every encoding past writers produced.
	encodings := map[string]string{
		"raw number":    "100",
		"quoted number": `"100"`,
		"json object":   `{"value": 100}`,
		"result object": `{"result": "100"}`,
	}

	for name, encoded := range encodings {
		t.Run(name, func(t *testing.T) {
			store := newFakeStore()
			store.data["first-seen:f:t"] = encoded

			tracker := NewFirstSeenTracker(store)
			ts, ok := tracker.Get(context.Background(), "f", "t")
			if !ok || ts != 100 {
				t.Errorf("Expected 100, got %d (ok=%t)", ts, ok)
			}
		})
	}
}

func TestFirstSeenResolveWriteOnce(t *testing.T) {
	store := newFakeStore()
	tracker := NewFirstSeenTracker(store)
	ctx := context.Background()

	first := tracker.Resolve(ctx, "user/likes", "track-1", 100)
	if first != 100 {
		t.Fatalf("Expected first resolve to persist 100, got %d", first)
	}

	// A later resolve with a different wall clock must observe the original
	// value, not overwrite it.
	second := tracker.Resolve(ctx, "user/likes", "track-1", 200)
	if second != 100 {
		t.Errorf("Expected second resolve to return 100, got %d", second)
	}

	if ts, ok := tracker.Get(ctx, "user/likes", "track-1"); !ok || ts != 100 {
		t.Errorf("Expected stored value 100, got %d (ok=%t)", ts, ok)
	}
}

func TestFirstSeenDegradesOnStoreErrors(t *testing.T) {
	store := newFakeStore()
	store.failGets = true
	store.failSets = true
	tracker := NewFirstSeenTracker(store)
	ctx := context.Background()

	// Read errors degrade to "first sighting"
	if _, ok := tracker.Get(ctx, "f", "t"); ok {
		t.Error("Expected read error to report not-found")
	}

	// Write errors are swallowed; Resolve still returns a usable date
	if ts := tracker.Resolve(ctx, "f", "t", 123); ts != 123 {
		t.Errorf("Expected resolve to fall back to now, got %d", ts)
	}

	if tracker.Set(ctx, "f", "t", 123) {
		t.Error("Expected set to report failure")
	}
}

func TestFirstSeenUndecodableValue(t *testing.T) {
	store := newFakeStore()
	store.data["first-seen:f:t"] = "not-a-timestamp"

	tracker := NewFirstSeenTracker(store)
	if _, ok := tracker.Get(context.Background(), "f", "t"); ok {
		t.Error("Expected undecodable value to report not-found")
	}
}
