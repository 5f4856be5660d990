package storage

import (
	"context"

	"farmstore.GO/core/cache"
)

const cacheTag = "storage"

// CacheStorage keeps blobs in an in-process core/cache.Cache. Contents do not
// survive a restart.
type CacheStorage struct {
	c *cache.Cache
}

func NewCacheStorage(c *cache.Cache) *CacheStorage {
	if c == nil {
		c = cache.NewCache()
	}
	return &CacheStorage{c: c}
}

func (s *CacheStorage) Load(ctx context.Context, key string) ([]byte, error) {
	v, ok := s.c.GetN(cacheTag, key)
	if !ok {
		return nil, ErrNotFound
	}
	data := v.([]byte)
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *CacheStorage) Save(ctx context.Context, key string, data []byte) error {
	buf := make([]byte, len(data))
	copy(buf, data)
	s.c.SetN([]interface{}{cacheTag, key}, buf, 0, []string{cacheTag})
	return nil
}

func (s *CacheStorage) Delete(ctx context.Context, key string) error {
	s.c.DeleteN(cacheTag, key)
	return nil
}
