package session

import (
	"fmt"

	"github.com/phrazzld/drill-api/internal/domain"
)

// Cache is the in-memory staging buffer for performance changes made during
// a session. Updates are only persisted when the session ends; this makes
// undo a pure in-memory mutation and lets the user abort a session without
// touching stored card state.
//
// The cache is owned by the Engine and accessed only under its lock.
type Cache struct {
	changes map[domain.Fingerprint]domain.Performance
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{changes: make(map[domain.Fingerprint]domain.Performance)}
}

// Insert seeds a card's performance. Each due card is seeded exactly once,
// at session start; a second insert for the same fingerprint returns
// ErrDuplicateEntry.
func (c *Cache) Insert(fp domain.Fingerprint, perf domain.Performance) error {
	if _, ok := c.changes[fp]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateEntry, fp)
	}
	c.changes[fp] = perf
	return nil
}

// Get returns a card's staged performance. Returns ErrCacheMiss if the
// fingerprint was never seeded.
func (c *Cache) Get(fp domain.Fingerprint) (domain.Performance, error) {
	perf, ok := c.changes[fp]
	if !ok {
		return domain.Performance{}, fmt.Errorf("%w: %s", ErrCacheMiss, fp)
	}
	return perf, nil
}

// Update replaces a card's staged performance with a reviewed state.
// Returns ErrCacheMiss if the fingerprint was never seeded.
func (c *Cache) Update(fp domain.Fingerprint, rp domain.ReviewedPerformance) error {
	if _, ok := c.changes[fp]; !ok {
		return fmt.Errorf("%w: %s", ErrCacheMiss, fp)
	}
	c.changes[fp] = domain.ReviewedOf(rp)
	return nil
}

// Len returns the number of staged entries.
func (c *Cache) Len() int {
	return len(c.changes)
}

// Drain consumes the cache, returning the full fingerprint-to-performance
// mapping for the one-shot flush at session end. The cache is empty
// afterwards.
func (c *Cache) Drain() map[domain.Fingerprint]domain.Performance {
	changes := c.changes
	c.changes = make(map[domain.Fingerprint]domain.Performance)
	return changes
}
