package completion

import (
	"context"
	"maps"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/eydough/awc-code-updater/internal/challenge"
)

// MemoryStore is an in-process LRU cache with a fixed TTL per record.
type MemoryStore struct {
	entries *expirable.LRU[string, challenge.CompletionMap]
}

// NewMemoryStore creates a store holding at most size users for ttl each.
func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: expirable.NewLRU[string, challenge.CompletionMap](size, nil, ttl),
	}
}

// Get returns a copy of the cached map for username.
func (s *MemoryStore) Get(ctx context.Context, username string) (challenge.CompletionMap, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	media, ok := s.entries.Get(cacheKey(username))
	if !ok {
		return nil, false, nil
	}
	return maps.Clone(media), true, nil
}

// Set caches a copy of media for username.
func (s *MemoryStore) Set(ctx context.Context, username string, media challenge.CompletionMap) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.entries.Add(cacheKey(username), maps.Clone(media))
	return nil
}

// Delete drops username from the cache.
func (s *MemoryStore) Delete(ctx context.Context, username string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.entries.Remove(cacheKey(username))
	return nil
}

// Len returns the number of cached users.
func (s *MemoryStore) Len() int {
	return s.entries.Len()
}
