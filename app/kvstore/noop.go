package kvstore

import "context"

var _ Store = (*NoopStore)(nil)

// NoopStore is used when no store is configured: every read is a miss and
// every write is silently dropped. The caching subsystem degrades to
// flat-data behavior without errors.
type NoopStore struct{}

func NewNoopStore() *NoopStore {
	return &NoopStore{}
}

func (s *NoopStore) Get(ctx context.Context, key string) (any, bool, error) {
	return nil, false, nil
}

func (s *NoopStore) Set(ctx context.Context, key string, value string) error {
	return nil
}

func (s *NoopStore) Ping(ctx context.Context) error {
	return nil
}

func (s *NoopStore) Enabled() bool {
	return false
}

func (s *NoopStore) Name() string {
	return "noop"
}

func (s *NoopStore) Close() error {
	return nil
}
