package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/alaq/sc-podcast/app/kvstore"
)

// TrackFetcher performs one full (non-flat) extraction for a single track.
// This is the expensive call the refresh budget bounds.
type TrackFetcher interface {
	FetchTrack(ctx context.Context, url string) (map[string]any, error)
}

// Hydrator enriches flat entries with cached or freshly fetched metadata and
// resolves stable publication dates. One Hydrator serves the whole process;
// the refresh budget is fixed at construction and applies per Run call.
type Hydrator struct {
	metadata  *MetadataCache
	firstSeen *FirstSeenTracker
	fetcher   TrackFetcher
	budget    int
	enabled   bool
	now       func() time.Time
}

func NewHydrator(store kvstore.Store, fetcher TrackFetcher, budget int) *Hydrator {
	return &Hydrator{
		metadata:  NewMetadataCache(store),
		firstSeen: NewFirstSeenTracker(store),
		fetcher:   fetcher,
		budget:    budget,
		enabled:   store.Enabled(),
		now:       time.Now,
	}
}

// Run hydrates entries in input order. Entries without any identifier skip
// caching entirely. Failures on the caching path degrade to flat data; a
// request never fails because the cache or a single track fetch did.
func (h *Hydrator) Run(ctx context.Context, feedPath string, synthetic bool, entries []FlatEntry) []NormalizedEntry {
	budget := h.budget
	normalized := make([]NormalizedEntry, 0, len(entries))

	// Without a configured store there is nothing to hydrate against:
	// refetching on every request would burn the budget for no durable gain,
	// so the whole subsystem degrades to the flat-data path.
	if !h.enabled {
		for _, entry := range entries {
			normalized = append(normalized, Normalize(entry))
		}
		return normalized
	}

	for _, entry := range entries {
		trackID := entry.TrackID()
		if trackID == "" {
			normalized = append(normalized, Normalize(entry))
			continue
		}

		record := h.metadata.Get(ctx, trackID)
		signal, hasSignal := entrySignal(entry)

		refresh := record == nil
		if record != nil && record.LastModified != nil && hasSignal && signal > *record.LastModified {
			refresh = true
		}

		if refresh && budget > 0 {
			budget--
			raw, err := h.fetcher.FetchTrack(ctx, entry.FetchURL())
			if err != nil {
				slog.Warn("Metadata fetch failed, keeping cached value", "feed", feedPath, "track", trackID, "error", err)
			} else {
				watermark := pickWatermark(signal, hasSignal, raw)
				h.metadata.Set(ctx, trackID, raw, watermark)
				record = &TrackMetadataRecord{
					Version:      metadataSchemaVersion,
					FetchedAt:    h.now().Unix(),
					LastModified: watermark,
					Payload:      SanitizeMetadata(raw),
				}
			}
		}

		merged := entry
		if record != nil {
			merged = mergeMetadata(entry, record.Payload)
		}

		if synthetic {
			published := h.firstSeen.Resolve(ctx, feedPath, trackID, h.now().Unix())
			normalized = append(normalized, NormalizeAt(merged, published))
		} else {
			normalized = append(normalized, Normalize(merged))
		}
	}

	return normalized
}

// entrySignal is the entry's own "content last modified" watermark: an
// explicit last-modified field when present, else the entry timestamp.
func entrySignal(entry FlatEntry) (int64, bool) {
	if ts, ok := CoerceEpochSeconds(entry.LastModified); ok {
		return ts, true
	}
	return CoerceEpochSeconds(entry.Timestamp)
}

// pickWatermark chooses the staleness watermark a fresh record is stored
// under: the entry's own signal, then the fetched metadata's last-modified,
// then its timestamp.
func pickWatermark(signal int64, hasSignal bool, raw map[string]any) *int64 {
	if hasSignal {
		return &signal
	}
	if ts, ok := CoerceEpochSeconds(raw["last_modified"]); ok {
		return &ts
	}
	if ts, ok := CoerceEpochSeconds(raw["timestamp"]); ok {
		return &ts
	}
	return nil
}

// mergeMetadata overlays cached metadata onto a flat entry. Metadata wins
// only when its value is non-empty; the flat entry otherwise keeps its field.
func mergeMetadata(flat FlatEntry, payload map[string]any) FlatEntry {
	merged := flat

	if s := asString(payload["id"]); s != "" && merged.ID == "" {
		merged.ID = s
	}
	if s := asString(payload["title"]); s != "" {
		merged.Title = s
	}
	if s := asString(payload["uploader"]); s != "" {
		merged.Uploader = s
	}
	if s := asString(payload["description"]); s != "" {
		merged.Description = s
	}
	if s := asString(payload["webpage_url"]); s != "" {
		merged.WebpageURL = s
	}
	if v, ok := payload["duration"]; ok && v != nil {
		merged.Duration = v
	}
	if v, ok := payload["timestamp"]; ok && v != nil {
		merged.Timestamp = v
	}
	if v, ok := payload["release_timestamp"]; ok && v != nil {
		merged.ReleaseTimestamp = v
	}
	if v, ok := payload["upload_date"]; ok && v != nil {
		merged.UploadDate = v
	}
	if v, ok := payload["last_modified"]; ok && v != nil {
		merged.LastModified = v
	}
	if url := firstThumbnailURL(payload["thumbnails"]); url != "" {
		merged.Thumbnail = url
	}

	return merged
}
