// Package cache stores catalog responses. Values are JSON encoded so the
// in-process and redis stores behave the same.
package cache

import (
	"context"
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type Store interface {
	// Get decodes the cached value for key into dest. It reports false on a miss.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// MemoryStore keeps entries in process with go-cache.
type MemoryStore struct {
	cache  *gocache.Cache
	prefix string
}

func NewMemoryStore(defaultTTL, cleanupInterval time.Duration, prefix string) *MemoryStore {
	return &MemoryStore{
		cache:  gocache.New(defaultTTL, cleanupInterval),
		prefix: prefix,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	v, found := s.cache.Get(s.prefix + key)
	if !found {
		return false, nil
	}
	b, ok := v.([]byte)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	s.cache.Set(s.prefix+key, b, ttl)
	return nil
}

// NopStore never holds anything; it is used when caching is disabled.
type NopStore struct{}

func (NopStore) Get(context.Context, string, interface{}) (bool, error) { return false, nil }
func (NopStore) Set(context.Context, string, interface{}, time.Duration) error { return nil }
