package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/alaq/sc-podcast/app/kvstore"
)

// metadataSchemaVersion tags the key namespace and the stored record. Bumping
// it lets a new format coexist with, or cleanly supersede, old entries
// without manual migration.
const metadataSchemaVersion = 1

// metadataAllowList is the complete set of fields a cached payload may carry.
// Everything else the extractor returns is stripped before storage.
var metadataAllowList = []string{
	"id",
	"title",
	"uploader",
	"uploader_id",
	"duration",
	"timestamp",
	"upload_date",
	"release_timestamp",
	"webpage_url",
	"description",
	"last_modified",
	"thumbnails",
}

// TrackMetadataRecord is the cached per-track snapshot: a sanitized payload
// plus the staleness watermark it was fetched under.
type TrackMetadataRecord struct {
	Version      int            `json:"version"`
	FetchedAt    int64          `json:"fetched_at"`
	LastModified *int64         `json:"last_modified"`
	Payload      map[string]any `json:"payload"`
}

type MetadataCache struct {
	store kvstore.Store
	now   func() time.Time
}

func NewMetadataCache(store kvstore.Store) *MetadataCache {
	return &MetadataCache{
		store: store,
		now:   time.Now,
	}
}

// Get returns the cached record for a track, or nil. A miss is a normal,
// expected condition; transport errors, undecodable payloads, and schema
// version mismatches all degrade to a miss.
func (c *MetadataCache) Get(ctx context.Context, trackID string) *TrackMetadataRecord {
	value, found, err := c.store.Get(ctx, c.key(trackID))
	if err != nil {
		slog.Warn("Metadata read failed, treating as miss", "track", trackID, "error", err)
		return nil
	}
	if !found {
		return nil
	}

	decoded, ok := decodeStoreValue(value).(map[string]any)
	if !ok {
		slog.Warn("Metadata value has unexpected shape, treating as miss", "track", trackID)
		return nil
	}

	data, err := json.Marshal(decoded)
	if err != nil {
		return nil
	}

	var record TrackMetadataRecord
	if err := json.Unmarshal(data, &record); err != nil {
		slog.Warn("Metadata record undecodable, treating as miss", "track", trackID, "error", err)
		return nil
	}

	if record.Version != metadataSchemaVersion || len(record.Payload) == 0 {
		return nil
	}

	return &record
}

// Set sanitizes and stores a freshly fetched metadata blob under the given
// staleness watermark. Returns false when nothing was stored.
func (c *MetadataCache) Set(ctx context.Context, trackID string, raw map[string]any, watermark *int64) bool {
	payload := SanitizeMetadata(raw)
	if len(payload) == 0 {
		return false
	}

	record := TrackMetadataRecord{
		Version:      metadataSchemaVersion,
		FetchedAt:    c.now().Unix(),
		LastModified: watermark,
		Payload:      payload,
	}

	data, err := json.Marshal(record)
	if err != nil {
		slog.Warn("Metadata record marshal failed", "track", trackID, "error", err)
		return false
	}

	if err := c.store.Set(ctx, c.key(trackID), string(data)); err != nil {
		slog.Warn("Metadata write failed", "track", trackID, "error", err)
		return false
	}

	return true
}

func (c *MetadataCache) key(trackID string) string {
	return fmt.Sprintf("track-metadata:v%d:%s", metadataSchemaVersion, trackID)
}

// SanitizeMetadata restricts a raw extractor blob to the allow-list. The
// duration is coerced to an integer and dropped on failure rather than stored
// as garbage; thumbnails are reduced to {id, url} pairs with non-empty urls.
func SanitizeMetadata(raw map[string]any) map[string]any {
	payload := make(map[string]any)

	for _, field := range metadataAllowList {
		value, ok := raw[field]
		if !ok || value == nil {
			continue
		}

		switch field {
		case "duration":
			if duration, ok := coerceDuration(value); ok {
				payload[field] = duration
			}
		case "thumbnails":
			if thumbs := sanitizeThumbnails(value); len(thumbs) > 0 {
				payload[field] = thumbs
			}
		default:
			payload[field] = value
		}
	}

	return payload
}

func sanitizeThumbnails(v any) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}

	thumbs := make([]map[string]any, 0, len(list))
	for _, item := range list {
		thumb, ok := item.(map[string]any)
		if !ok {
			continue
		}
		url := asString(thumb["url"])
		if url == "" {
			continue
		}
		reduced := map[string]any{"url": url}
		if id := asString(thumb["id"]); id != "" {
			reduced["id"] = id
		}
		thumbs = append(thumbs, reduced)
	}

	return thumbs
}
