package memory

import (
	"sync"
	"time"

	"docintel-be/pkg/rag"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// IndexCache keeps each user's built index for a short TTL. Entries are only
// ever looked up by the owning user's id.
//
// Every Invalidate bumps the user's generation. A build that started before
// the bump cannot be stored afterwards, so an eviction that lands while a
// build is running is not undone by it.
type IndexCache struct {
	cache *cache.Cache

	mu          sync.Mutex
	generations map[uuid.UUID]uint64
}

func NewIndexCache(ttl time.Duration) *IndexCache {
	// purge expired items at twice the TTL, at least once a minute
	cleanup := 2 * ttl
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &IndexCache{
		cache:       cache.New(ttl, cleanup),
		generations: make(map[uuid.UUID]uint64),
	}
}

func (c *IndexCache) Get(userId uuid.UUID) (*rag.Index, bool) {
	if x, found := c.cache.Get(userId.String()); found {
		idx, ok := x.(*rag.Index)
		return idx, ok
	}
	return nil, false
}

// Generation is read before building so the result can be stored with
// SetIfUnchanged.
func (c *IndexCache) Generation(userId uuid.UUID) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[userId]
}

// SetIfUnchanged stores idx only if the user has not been invalidated since
// gen was read. It reports whether the index was stored.
func (c *IndexCache) SetIfUnchanged(userId uuid.UUID, gen uint64, idx *rag.Index) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[userId] != gen {
		return false
	}
	c.cache.Set(userId.String(), idx, cache.DefaultExpiration)
	return true
}

// Invalidate drops the user's index so the next query rebuilds it.
func (c *IndexCache) Invalidate(userId uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[userId]++
	c.cache.Delete(userId.String())
}

func (c *IndexCache) Len() int {
	return c.cache.ItemCount()
}
