package kvstore

import (
	"context"
	"net/url"

	"golang.org/x/text/unicode/norm"
)

// Store is the capability handed to the caching subsystem. Implementations
// are best-effort: callers treat every error as a cache miss or a dropped
// write, never as a request failure.
type Store interface {
	// Get returns the decoded value for key. A missing key is reported as
	// found=false with a nil error.
	Get(ctx context.Context, key string) (value any, found bool, err error)
	// Set stores a string value under key, overwriting any previous value.
	Set(ctx context.Context, key string, value string) error
	Ping(ctx context.Context) error
	// Enabled reports whether the store is backed by anything at all. When
	// false, the caching subsystem degrades to flat-data behavior without
	// attempting any store or refresh traffic.
	Enabled() bool
	Name() string
	Close() error
}

// EncodeKey makes a key safe for use as a single path segment against the
// remote store. Identifiers may contain slashes, spaces, or unicode; the
// unicode is NFC-normalized first so equivalent spellings map to one key.
func EncodeKey(key string) string {
	return url.PathEscape(norm.NFC.String(key))
}
