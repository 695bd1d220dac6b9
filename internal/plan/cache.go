package plan

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// cacheFileName is the summary cache file inside the plan directory.
const cacheFileName = ".cache"

// cacheVersion is bumped whenever the Summary layout changes so stale
// caches are rebuilt instead of misdecoded.
const cacheVersion = 1

// Cache stores parsed plan summaries keyed by filename with file mtimes.
// A cache entry is valid only while the file's mtime is unchanged.
type Cache struct {
	Version int
	Entries map[string]CacheEntry // filename (without path) -> entry

	dirty bool
}

// CacheEntry holds the cached summary for a single plan file.
type CacheEntry struct {
	Mtime   time.Time
	Summary Summary
}

// Cache errors.
var (
	errCacheNotFound = errors.New("cache file not found")
	errCacheCorrupt  = errors.New("cache file corrupted")
)

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{Version: cacheVersion, Entries: make(map[string]CacheEntry)}
}

// Lookup returns the cached summary for filename if its mtime matches,
// or nil on a miss.
func (c *Cache) Lookup(filename string, mtime time.Time) *Summary {
	entry, ok := c.Entries[filename]
	if !ok || !entry.Mtime.Equal(mtime) {
		return nil
	}

	summary := entry.Summary

	return &summary
}

// Update stores a freshly parsed summary.
func (c *Cache) Update(filename string, mtime time.Time, summary Summary) {
	c.Entries[filename] = CacheEntry{Mtime: mtime, Summary: summary}
	c.dirty = true
}

// Prune drops entries whose files no longer exist.
func (c *Cache) Prune(existing []string) {
	keep := make(map[string]bool, len(existing))
	for _, name := range existing {
		keep[name] = true
	}

	for name := range c.Entries {
		if !keep[name] {
			delete(c.Entries, name)

			c.dirty = true
		}
	}
}

// Dirty reports whether the cache changed since it was loaded.
func (c *Cache) Dirty() bool {
	return c.dirty
}

// LoadCache loads the summary cache from the plan directory.
// Returns errCacheNotFound if the file doesn't exist and errCacheCorrupt if
// it can't be decoded or has a different version.
func LoadCache(planDir string) (*Cache, error) {
	cachePath := filepath.Join(planDir, cacheFileName)

	file, err := os.Open(cachePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errCacheNotFound
		}

		return nil, fmt.Errorf("opening cache: %w", err)
	}

	defer func() { _ = file.Close() }()

	var cache Cache

	decodeErr := gob.NewDecoder(file).Decode(&cache)
	if decodeErr != nil || cache.Version != cacheVersion {
		return nil, errCacheCorrupt
	}

	if cache.Entries == nil {
		cache.Entries = make(map[string]CacheEntry)
	}

	return &cache, nil
}

// SaveCache saves the summary cache to the plan directory.
func SaveCache(planDir string, cache *Cache) error {
	cachePath := filepath.Join(planDir, cacheFileName)

	file, err := os.OpenFile(cachePath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, filePerms)
	if err != nil {
		return fmt.Errorf("creating cache file: %w", err)
	}

	defer func() { _ = file.Close() }()

	encodeErr := gob.NewEncoder(file).Encode(cache)
	if encodeErr != nil {
		return fmt.Errorf("encoding cache: %w", encodeErr)
	}

	return nil
}

// DeleteCache removes the cache file from the plan directory.
func DeleteCache(planDir string) error {
	err := os.Remove(filepath.Join(planDir, cacheFileName))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing cache: %w", err)
	}

	return nil
}
