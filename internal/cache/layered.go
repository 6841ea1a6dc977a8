package cache

import "time"

// LayeredCache implements a multi-layer cache (memory + file)
type LayeredCache struct {
	memory Cache
	disk   Cache
}

// NewLayeredCache creates a layered cache over the JSON file at path
func NewLayeredCache(memoryTTL time.Duration, path string, diskTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		memory: NewMemoryCache(memoryTTL, 10*time.Minute),
		disk:   NewFileCache(path, diskTTL),
	}
}

// Get checks memory first, then the file
func (c *LayeredCache) Get(key string) ([]string, bool) {
	if blocks, found := c.memory.Get(key); found {
		return blocks, true
	}

	if blocks, found := c.disk.Get(key); found {
		// Promote to memory cache
		_ = c.memory.Set(key, blocks, 0)
		return blocks, true
	}

	return nil, false
}

// Set stores blocks in both layers. The memory layer keeps its own TTL.
func (c *LayeredCache) Set(key string, blocks []string, ttl time.Duration) error {
	if err := c.memory.Set(key, blocks, 0); err != nil {
		return err
	}
	return c.disk.Set(key, blocks, ttl)
}

// Delete removes a value from both caches
func (c *LayeredCache) Delete(key string) error {
	_ = c.memory.Delete(key)
	return c.disk.Delete(key)
}

// Clear removes all values from both caches
func (c *LayeredCache) Clear() error {
	_ = c.memory.Clear()
	return c.disk.Clear()
}
