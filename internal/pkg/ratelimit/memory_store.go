package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps window counters in-process. Suitable for single-instance
// deployments and tests; multi-instance deployments use RedisStore.
type MemoryStore struct {
	mu    sync.Mutex
	cache *cache.Cache
}

func NewMemoryStore() *MemoryStore {
	// Expired windows are purged lazily; a minute-grained janitor keeps the
	// cache from accumulating dead keys.
	return &MemoryStore{
		cache: cache.New(cache.NoExpiration, time.Minute),
	}
}

func (s *MemoryStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, found := s.cache.Get(key); !found {
		s.cache.Set(key, int64(1), window)
		return 1, nil
	}
	return s.cache.IncrementInt64(key, 1)
}
