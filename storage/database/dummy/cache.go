package dummydb

import (
	"context"
	"sync"
	"time"

	"github.com/shraddhaWorks/new-timelly-sub001/core"
)

// Cache is an in-memory core.Cache for tests. TTLs are ignored.
type Cache struct {
	mu      sync.RWMutex
	entries map[string][]byte

	// FailDelete, when set, makes Delete fail with it for every key.
	FailDelete error
}

var _ core.Cache = (*Cache)(nil)

func NewCache() *Cache {
	return &Cache{entries: make(map[string][]byte)}
}

func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if val, ok := c.entries[key]; ok {
		return val, nil
	}
	return nil, core.ErrCacheMiss
}

func (c *Cache) Set(_ context.Context, key string, val []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = val
	return nil
}

func (c *Cache) Delete(_ context.Context, key string) error {
	if c.FailDelete != nil {
		return c.FailDelete
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// Has reports whether key is cached; test helper.
func (c *Cache) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[key]
	return ok
}
