// Package streaming contains the tile streaming orchestrator: the request
// lifecycle, the worker pool, the LRU tile cache, and the per-frame budgeted
// merge of completed work.
package streaming

import (
	"sort"

	"github.com/Faultbox/terrastream/internal/engine/terrain"
)

// CacheEntry tracks one cached tile and its recency bookkeeping.
type CacheEntry struct {
	Tile        *terrain.TileData
	LastAccess  float64 // orchestrator clock seconds
	AccessCount int
}

// TileCache is a keyed LRU store of finished tiles. It is owned exclusively
// by the orchestrator's update thread; the single-writer rule makes locks
// unnecessary here.
type TileCache struct {
	entries map[terrain.TileKey]*CacheEntry
	maxSize int
}

// NewTileCache returns a cache that evicts once it holds maxSize tiles.
func NewTileCache(maxSize int) *TileCache {
	if maxSize < 1 {
		maxSize = 1
	}
	return &TileCache{
		entries: make(map[terrain.TileKey]*CacheEntry),
		maxSize: maxSize,
	}
}

// Get returns the cached tile for key and bumps its recency, or nil.
func (c *TileCache) Get(key terrain.TileKey, now float64) *terrain.TileData {
	e, ok := c.entries[key]
	if !ok {
		return nil
	}
	e.LastAccess = now
	e.AccessCount++
	return e.Tile
}

// Contains reports whether key is cached without touching recency.
func (c *TileCache) Contains(key terrain.TileKey) bool {
	_, ok := c.entries[key]
	return ok
}

// Add inserts a tile, evicting the least recently used batch first if the
// cache is full.
func (c *TileCache) Add(tile *terrain.TileData, now float64) {
	key := tile.Key()
	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.maxSize {
		c.evictLRU()
	}
	c.entries[key] = &CacheEntry{Tile: tile, LastAccess: now, AccessCount: 1}
}

// evictLRU removes the oldest tenth of the cache, at least one entry, sorted
// by last access time. Evicting in batches amortizes the sort.
func (c *TileCache) evictLRU() {
	batch := c.maxSize / 10
	if batch < 1 {
		batch = 1
	}

	type aged struct {
		key  terrain.TileKey
		last float64
	}
	order := make([]aged, 0, len(c.entries))
	for k, e := range c.entries {
		order = append(order, aged{k, e.LastAccess})
	}
	sort.Slice(order, func(a, b int) bool { return order[a].last < order[b].last })

	if batch > len(order) {
		batch = len(order)
	}
	for _, victim := range order[:batch] {
		delete(c.entries, victim.key)
	}
}

// Len returns the number of cached tiles.
func (c *TileCache) Len() int {
	return len(c.entries)
}

// Clear drops every entry.
func (c *TileCache) Clear() {
	c.entries = make(map[terrain.TileKey]*CacheEntry)
}
