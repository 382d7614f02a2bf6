package confgroup

import (
	"context"
	"sync"
)

// MemoryCache is an in-process Cache. It stores and returns deep copies,
// so values held by a Group never alias the cached entry. Thread-safe.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]map[string]any
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: map[string]map[string]any{}}
}

func (c *MemoryCache) Get(_ context.Context, key string) (Optional[map[string]any], error) {
	c.mu.RLock()
	values, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return Optional[map[string]any]{}, nil
	}
	return Some(cloneValues(values)), nil
}

func (c *MemoryCache) Put(_ context.Context, key string, values map[string]any) error {
	stored := cloneValues(values)

	c.mu.Lock()
	c.entries[key] = stored
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
