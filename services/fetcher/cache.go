package fetcher

import (
	"regwatch/models/entities"

	"github.com/patrickmn/go-cache"
)

// MemoryStore is a process-wide Store. Entries never expire on their own:
// the fetcher decides at read time whether an entry is fresh, and a newer
// result supersedes it.
type MemoryStore struct {
	cache *cache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: cache.New(cache.NoExpiration, 0)}
}

func (s *MemoryStore) Get(key string) (entities.CacheEntry, bool) {
	x, found := s.cache.Get(key)
	if !found {
		return entities.CacheEntry{}, false
	}
	entry, ok := x.(entities.CacheEntry)
	return entry, ok
}

func (s *MemoryStore) Put(key string, entry entities.CacheEntry) {
	s.cache.Set(key, entry, cache.NoExpiration)
}

func (s *MemoryStore) Len() int {
	return s.cache.ItemCount()
}

// NopStore never remembers anything.
type NopStore struct{}

func (NopStore) Get(string) (entities.CacheEntry, bool) { return entities.CacheEntry{}, false }

func (NopStore) Put(string, entities.CacheEntry) {}
