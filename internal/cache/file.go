package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileCache persists split results in a single JSON file so that repeated
// runs over the same notes skip the model. The whole file is rewritten on
// every Set.
type FileCache struct {
	mu      sync.Mutex
	path    string
	ttl     time.Duration
	entries map[string]fileEntry
	loaded  bool
}

type fileEntry struct {
	Blocks    []string  `json:"blocks"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewFileCache creates a cache backed by path; the file is read lazily
func NewFileCache(path string, ttl time.Duration) *FileCache {
	return &FileCache{
		path: path,
		ttl:  ttl,
	}
}

// Get retrieves blocks from the file cache
func (c *FileCache) Get(key string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.load(); err != nil {
		return nil, false
	}
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !entry.ExpiresAt.IsZero() && time.Now().After(entry.ExpiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return clone(entry.Blocks), true
}

// Set stores blocks and flushes the file
func (c *FileCache) Set(key string, blocks []string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.load(); err != nil {
		return err
	}
	if ttl == 0 {
		ttl = c.ttl
	}
	entry := fileEntry{Blocks: clone(blocks)}
	if ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl)
	}
	c.entries[key] = entry
	return c.flush()
}

// Delete removes one entry
func (c *FileCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.load(); err != nil {
		return err
	}
	if _, ok := c.entries[key]; !ok {
		return nil
	}
	delete(c.entries, key)
	return c.flush()
}

// Clear drops every entry and removes the backing file
func (c *FileCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]fileEntry)
	c.loaded = true
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove cache file: %w", err)
	}
	return nil
}

// load reads the file once. A missing file is an empty cache; a corrupt one
// is reported and replaced on the next flush.
func (c *FileCache) load() error {
	if c.loaded {
		return nil
	}
	c.entries = make(map[string]fileEntry)
	c.loaded = true

	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read cache file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		c.entries = make(map[string]fileEntry)
		return fmt.Errorf("parse cache file %s: %w", c.path, err)
	}
	return nil
}

// flush writes through a temp file and renames it into place
func (c *FileCache) flush() error {
	now := time.Now()
	for k, e := range c.entries {
		if !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt) {
			delete(c.entries, k)
		}
	}

	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".pipeline_cache-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("replace cache file: %w", err)
	}
	return nil
}
