// Package enrichcache persists title resolutions between runs so repeat
// listings cost no external calls. The cache is a JSON file keyed by
// normalized title, read in full at run start and written in full at run
// end under a file lock.
package enrichcache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"

	"marquee/internal/listing"
	"marquee/internal/logging"
)

// Entry is one cached resolution outcome. Either Film is set or Absent is
// true (the title was searched and confidently not found). The declared
// year/runtime at resolution time travel with the entry so re-validation can
// detect drifting listings.
type Entry struct {
	Film            *listing.Film `json:"film,omitempty"`
	Absent          bool          `json:"absent,omitempty"`
	DeclaredYear    int           `json:"declared_year,omitempty"`
	DeclaredRuntime int           `json:"declared_runtime,omitempty"`
	ResolvedAt      time.Time     `json:"resolved_at"`
}

// Cache holds the in-memory entry map for one run.
type Cache struct {
	path    string
	entries map[string]Entry
	dirty   bool
	logger  *slog.Logger
}

// Open loads the cache file. A missing file starts empty; a corrupt file is
// logged and treated as empty rather than failing the run.
func Open(path string, logger *slog.Logger) (*Cache, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	cache := &Cache{
		path:    path,
		entries: make(map[string]Entry),
		logger:  logging.NewComponentLogger(logger, "enrichcache"),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cache, nil
		}
		return nil, fmt.Errorf("read cache file: %w", err)
	}
	if err := json.Unmarshal(data, &cache.entries); err != nil {
		cache.logger.Warn("cache file corrupt, starting empty",
			logging.String("path", path),
			logging.Error(err))
		cache.entries = make(map[string]Entry)
		cache.dirty = true
	}
	return cache, nil
}

// Lookup returns the entry for a normalized title key.
func (c *Cache) Lookup(key string) (Entry, bool) {
	entry, ok := c.entries[key]
	return entry, ok
}

// Store records a resolved film for a key.
func (c *Cache) Store(key string, film *listing.Film, declaredYear, declaredRuntime int) {
	c.entries[key] = Entry{
		Film:            film,
		DeclaredYear:    declaredYear,
		DeclaredRuntime: declaredRuntime,
		ResolvedAt:      time.Now().UTC(),
	}
	c.dirty = true
}

// MarkAbsent records that a key was searched and confidently not found, so
// the next run can skip it.
func (c *Cache) MarkAbsent(key string, declaredYear, declaredRuntime int) {
	c.entries[key] = Entry{
		Absent:          true,
		DeclaredYear:    declaredYear,
		DeclaredRuntime: declaredRuntime,
		ResolvedAt:      time.Now().UTC(),
	}
	c.dirty = true
}

// Evict removes a key, typically after failed re-validation.
func (c *Cache) Evict(key string) {
	if _, ok := c.entries[key]; !ok {
		return
	}
	delete(c.entries, key)
	c.dirty = true
}

// Dirty reports whether the cache has unwritten changes.
func (c *Cache) Dirty() bool {
	return c.dirty
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Keys returns all entry keys, sorted.
func (c *Cache) Keys() []string {
	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// PruneAbsent removes every absent marker so the next run retries those
// titles, returning how many were dropped.
func (c *Cache) PruneAbsent() int {
	pruned := 0
	for key, entry := range c.entries {
		if entry.Absent {
			delete(c.entries, key)
			pruned++
		}
	}
	if pruned > 0 {
		c.dirty = true
	}
	return pruned
}

// Flush writes the cache atomically under a file lock, clearing the dirty
// flag. A clean cache writes nothing.
func (c *Cache) Flush() error {
	if !c.dirty {
		return nil
	}

	if dir := filepath.Dir(c.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cache directory: %w", err)
		}
	}

	lock := flock.New(c.path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire cache lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("cache file %s locked by another process", c.path)
	}
	defer func() { _ = lock.Unlock() }()

	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	c.dirty = false
	return nil
}
