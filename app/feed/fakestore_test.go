package feed

import (
	"context"
	"fmt"
)

// fakeStore is an in-memory kvstore.Store with call counting and injectable
// failures, shared by the caching subsystem tests.
type fakeStore struct {
	data     map[string]string
	getCalls int
	setCalls int
	failGets bool
	failSets bool
	disabled bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (s *fakeStore) Get(ctx context.Context, key string) (any, bool, error) {
	s.getCalls++
	if s.failGets {
		return nil, false, fmt.Errorf("store unavailable")
	}
	value, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return value, true, nil
}

func (s *fakeStore) Set(ctx context.Context, key string, value string) error {
	s.setCalls++
	if s.failSets {
		return fmt.Errorf("store unavailable")
	}
	s.data[key] = value
	return nil
}

func (s *fakeStore) Ping(ctx context.Context) error {
	return nil
}

func (s *fakeStore) Enabled() bool {
	return !s.disabled
}

func (s *fakeStore) Name() string {
	return "fake"
}

func (s *fakeStore) Close() error {
	return nil
}
