package feed

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FlatEntry is a minimally-detailed feed item as returned by a shallow
// extractor listing. Timestamp-like fields keep their raw decoded shape
// (number, string, or missing) until coerced.
type FlatEntry struct {
	ID               string
	Title            string
	Uploader         string
	URL              string
	WebpageURL       string
	Duration         any
	Description      string
	Timestamp        any
	ReleaseTimestamp any
	UploadDate       any
	LastModified     any
	Thumbnail        string
}

// NormalizedEntry is the renderable output of hydration: every field is
// defaulted so the generator never sees a missing value.
type NormalizedEntry struct {
	ID          string
	Title       string
	Uploader    string
	Duration    int64
	Description string
	URL         string
	PublishedAt int64
	Thumbnail   string
}

// Channel carries feed-level metadata for rendering.
type Channel struct {
	Title       string
	Link        string
	Author      string
	Description string
	Language    string
	Thumbnail   string
}

// TrackID returns the caching identifier for the entry: the upstream id,
// falling back to a stable URL-like field. Empty means the entry cannot be
// cached and is served from flat data only.
func (e FlatEntry) TrackID() string {
	if e.ID != "" {
		return e.ID
	}
	if e.URL != "" {
		return e.URL
	}
	return e.WebpageURL
}

// FetchURL returns the URL handed to the extractor for a full metadata fetch.
func (e FlatEntry) FetchURL() string {
	if e.WebpageURL != "" {
		return e.WebpageURL
	}
	return e.URL
}

// FlatEntryFromRaw converts a raw extractor entry into an explicit structure.
func FlatEntryFromRaw(raw map[string]any) FlatEntry {
	entry := FlatEntry{
		ID:               asString(raw["id"]),
		Title:            asString(raw["title"]),
		Uploader:         asString(raw["uploader"]),
		URL:              asString(raw["url"]),
		WebpageURL:       asString(raw["webpage_url"]),
		Duration:         raw["duration"],
		Description:      asString(raw["description"]),
		Timestamp:        raw["timestamp"],
		ReleaseTimestamp: raw["release_timestamp"],
		UploadDate:       raw["upload_date"],
		LastModified:     raw["last_modified"],
	}

	if entry.Title == "" {
		entry.Title = asString(raw["name"])
	}

	entry.Thumbnail = asString(raw["thumbnail"])
	if entry.Thumbnail == "" {
		entry.Thumbnail = firstThumbnailURL(raw["thumbnails"])
	}

	return entry
}

// asString renders scalar values as strings and returns "" for anything it
// cannot sensibly stringify.
func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	case json.Number:
		return t.String()
	case bool:
		return fmt.Sprintf("%t", t)
	default:
		return ""
	}
}

func firstThumbnailURL(v any) string {
	list, ok := v.([]any)
	if !ok {
		return ""
	}
	for _, item := range list {
		thumb, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if url := asString(thumb["url"]); url != "" {
			return url
		}
	}
	return ""
}

// decodeStoreValue unwraps one layer of JSON string encoding. The store may
// hand back a structured value or its JSON text depending on transport and
// historical writers.
func decodeStoreValue(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		var decoded any
		if err := json.Unmarshal([]byte(trimmed), &decoded); err == nil {
			return decoded
		}
	}
	return v
}
