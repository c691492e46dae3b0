package application

import (
	"sync"
	"time"
)

// closedDaysCache stores recently derived closed-weekday sets per building to
// avoid re-reading the operating hours for every calendar render. Entries are
// dropped on expiry and on every operating-hours write, so the cache can never
// drift from the store. Availability and quota state is deliberately never
// cached.
type closedDaysCache struct {
	mu      sync.RWMutex
	now     func() time.Time
	ttl     time.Duration
	entries map[string]closedDaysEntry
}

type closedDaysEntry struct {
	weekdays  []time.Weekday
	expiresAt time.Time
}

func newClosedDaysCache(ttl time.Duration, now func() time.Time) *closedDaysCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if now == nil {
		now = time.Now
	}
	return &closedDaysCache{
		now:     now,
		ttl:     ttl,
		entries: make(map[string]closedDaysEntry),
	}
}

func (c *closedDaysCache) Get(buildingID string) ([]time.Weekday, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[buildingID]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, buildingID)
		c.mu.Unlock()
		return nil, false
	}
	return append([]time.Weekday(nil), entry.weekdays...), true
}

func (c *closedDaysCache) Store(buildingID string, weekdays []time.Weekday) {
	if c == nil {
		return
	}
	cloned := append([]time.Weekday(nil), weekdays...)

	c.mu.Lock()
	c.entries[buildingID] = closedDaysEntry{weekdays: cloned, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *closedDaysCache) Invalidate(buildingID string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.entries, buildingID)
	c.mu.Unlock()
}
