package feed

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/alaq/sc-podcast/app/kvstore"
)

// FirstSeenTracker records when a track was first observed inside a specific
// feed. The stored value is write-once from the caller's perspective: the
// read-before-write gate in Resolve enforces immutability, not the store.
type FirstSeenTracker struct {
	store kvstore.Store
}

func NewFirstSeenTracker(store kvstore.Store) *FirstSeenTracker {
	return &FirstSeenTracker{store: store}
}

func (t *FirstSeenTracker) Get(ctx context.Context, feedPath, trackID string) (int64, bool) {
	value, found, err := t.store.Get(ctx, t.key(feedPath, trackID))
	if err != nil {
		slog.Warn("First-seen read failed, treating as first sighting", "feed", feedPath, "track", trackID, "error", err)
		return 0, false
	}
	if !found {
		return 0, false
	}

	ts, ok := CoerceLoose(decodeStoreValue(value))
	if !ok {
		slog.Warn("First-seen value undecodable, treating as first sighting", "feed", feedPath, "track", trackID)
		return 0, false
	}
	return ts, true
}

func (t *FirstSeenTracker) Set(ctx context.Context, feedPath, trackID string, ts int64) bool {
	err := t.store.Set(ctx, t.key(feedPath, trackID), strconv.FormatInt(ts, 10))
	if err != nil {
		slog.Warn("First-seen write failed", "feed", feedPath, "track", trackID, "error", err)
		return false
	}
	return true
}

// Resolve returns the stable publication timestamp for a (feed, track) pair.
// On first sighting the given wall-clock time is persisted and returned;
// concurrent writers racing on the same key converge to the same second-scale
// value, so last-writer-wins is acceptable.
func (t *FirstSeenTracker) Resolve(ctx context.Context, feedPath, trackID string, now int64) int64 {
	if ts, ok := t.Get(ctx, feedPath, trackID); ok {
		return ts
	}
	t.Set(ctx, feedPath, trackID, now)
	return now
}

func (t *FirstSeenTracker) key(feedPath, trackID string) string {
	return fmt.Sprintf("first-seen:%s:%s", feedPath, trackID)
}
