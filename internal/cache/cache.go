// Package cache implements the memoization cache (spec §5, component
// O): a per-process, HEAD-keyed store of previously computed
// engine.Resolve results, guarded by a single sync.RWMutex. Cache keys
// are derived from the whole request value with
// mitchellh/hashstructure/v2 rather than a hand-written per-field
// formatter, so adding a new Request field never silently breaks
// cache-key uniqueness.
package cache

import (
	"sync"

	"github.com/mitchellh/hashstructure/v2"
)

// Cache is safe for concurrent use. A nil *Cache is valid and behaves
// as an always-miss cache, so callers can pass one in unconditionally
// (spec §5 "accept a null cache").
type Cache struct {
	mu      sync.RWMutex
	head    string
	entries map[uint64]any
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{entries: map[uint64]any{}}
}

// Key derives a stable cache key from an arbitrary request value. The
// HEAD commit is not part of the key; Get and Put compare it separately.
func Key(request any) (uint64, error) {
	return hashstructure.Hash(request, hashstructure.FormatV2, nil)
}

// Get returns the cached value for (head, request) and whether it was
// present. A cache miss occurs both when the key is unseen and when
// head differs from the cache's current HEAD (spec §5 "HEAD-change
// invalidation").
func (c *Cache) Get(head string, request any) (any, bool) {
	if c == nil {
		return nil, false
	}

	key, err := Key(request)
	if err != nil {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.head != head {
		return nil, false
	}
	v, ok := c.entries[key]
	return v, ok
}

// Put stores value under (head, request). Storing for a new head
// invalidates every entry recorded under a previous HEAD.
func (c *Cache) Put(head string, request any, value any) {
	if c == nil {
		return
	}

	key, err := Key(request)
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.head != head {
		c.head = head
		c.entries = map[uint64]any{}
	}
	c.entries[key] = value
}

// Invalidate clears every cached entry regardless of HEAD.
func (c *Cache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.head = ""
	c.entries = map[uint64]any{}
}
