package feed

import (
	"strconv"
	"strings"
)

const (
	defaultTitle    = "Unknown Title"
	defaultUploader = "Unknown Artist"
	platformBaseURL = "https://soundcloud.com"
)

// Normalize applies the final defaulting and coercion rules so downstream
// rendering never sees a missing or malformed field. It is pure: the
// publication date is the entry's own coerced timestamp, epoch 0 if absent.
func Normalize(entry FlatEntry) NormalizedEntry {
	normalized := NormalizedEntry{
		ID:          entry.ID,
		Title:       entry.Title,
		Uploader:    entry.Uploader,
		Description: entry.Description,
		URL:         canonicalURL(entry),
		Thumbnail:   entry.Thumbnail,
	}

	if normalized.Title == "" {
		normalized.Title = defaultTitle
	}
	if normalized.Uploader == "" {
		normalized.Uploader = defaultUploader
	}

	if duration, ok := coerceDuration(entry.Duration); ok {
		normalized.Duration = duration
	}

	normalized.PublishedAt = publishedAt(entry)

	return normalized
}

// NormalizeAt is Normalize with an externally resolved publication date,
// used for feeds whose native timestamps are unreliable.
func NormalizeAt(entry FlatEntry, published int64) NormalizedEntry {
	normalized := Normalize(entry)
	normalized.PublishedAt = published
	return normalized
}

func publishedAt(entry FlatEntry) int64 {
	for _, v := range []any{entry.Timestamp, entry.ReleaseTimestamp, entry.UploadDate} {
		if ts, ok := CoerceEpochSeconds(v); ok {
			return ts
		}
	}
	return 0
}

// canonicalURL resolves the track page URL, constructing one from the
// platform-relative identifier when no absolute URL is present.
func canonicalURL(entry FlatEntry) string {
	for _, candidate := range []string{entry.WebpageURL, entry.URL} {
		if strings.HasPrefix(candidate, "http://") || strings.HasPrefix(candidate, "https://") {
			return candidate
		}
	}

	fragment := entry.URL
	if fragment == "" {
		fragment = entry.ID
	}
	return platformBaseURL + "/" + strings.TrimLeft(fragment, "/")
}

// coerceDuration truncates numeric durations to whole seconds. Unparseable
// values are reported rather than defaulted so callers can drop the field.
func coerceDuration(v any) (int64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case int:
		return int64(t), true
	case int64:
		return t, true
	case float64:
		return int64(t), true
	case string:
		trimmed := strings.TrimSpace(t)
		if trimmed == "" {
			return 0, false
		}
		n, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}
