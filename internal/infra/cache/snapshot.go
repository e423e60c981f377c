// Package cache tracks what the snapshot backup routine last persisted
// (not the source of truth). Most rows do not change between flushes;
// the backup loop consults this cache to skip redundant writes.
package cache

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sync"
)

// SnapshotCache remembers a fingerprint of the last persisted payload per key.
type SnapshotCache struct {
	mu   sync.Mutex
	seen map[string]uint64
}

// NewSnapshotCache creates an empty cache.
func NewSnapshotCache() *SnapshotCache {
	return &SnapshotCache{
		seen: make(map[string]uint64),
	}
}

// Changed reports whether the payload differs from what was last persisted
// under the key, and records the new fingerprint when it does.
func (c *SnapshotCache) Changed(key string, payload interface{}) bool {
	data, err := json.Marshal(payload)
	if err != nil {
		// Unmarshalable payloads always count as changed; the repository
		// is the one that decides what to do with them.
		return true
	}
	h := fnv.New64a()
	h.Write(data)
	sum := h.Sum64()

	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.seen[key]; ok && prev == sum {
		return false
	}
	c.seen[key] = sum
	return true
}

// Invalidate drops keys so the next flush writes them unconditionally.
func (c *SnapshotCache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.seen, k)
	}
}

// ShopKey is the cache key for the ledger row of a shop.
func ShopKey(shopID string) string {
	return fmt.Sprintf("shop:%s:state", shopID)
}

// JobKey is the cache key for one job row.
func JobKey(shopID, jobID string) string {
	return fmt.Sprintf("shop:%s:job:%s", shopID, jobID)
}

// ScreensKey is the cache key for the whole screen rack of a shop.
func ScreensKey(shopID string) string {
	return fmt.Sprintf("shop:%s:screens", shopID)
}
