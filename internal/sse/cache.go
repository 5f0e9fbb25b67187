package sse

import (
	"sort"
	"strings"
	"sync"
	"time"
)

type cacheEntry struct {
	ev      Event
	addedAt time.Time
}

// EventCache keeps recently dispatched events so a reconnecting client can
// replay what it missed. It is a separate store from the live-connection
// Registry on purpose: cached events outlive the connections they were
// pushed on. Bounded by entry count (FIFO eviction) and by age.
type EventCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	order   []string
	max     int
	ttl     time.Duration
	now     func() time.Time
}

func NewEventCache(max int, ttl time.Duration) *EventCache {
	return &EventCache{
		entries: make(map[string]cacheEntry),
		max:     max,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Add records a dispatched event, evicting the oldest entry once the cache
// is full.
func (c *EventCache) Add(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[ev.ID]; !ok {
		c.order = append(c.order, ev.ID)
	}
	c.entries[ev.ID] = cacheEntry{ev: ev, addedAt: c.now()}
	for len(c.order) > c.max {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

// After returns the member's cached events whose id compares greater than
// lastEventID, ascending by id, skipping entries past their TTL. Event ids
// are "<memberID>_<unixNano>", so lexicographic order on one member's ids
// is dispatch order.
func (c *EventCache) After(memberID uint, lastEventID string) []Event {
	prefix := MemberPrefix(memberID)
	cutoff := c.now().Add(-c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()
	var missed []Event
	for id, entry := range c.entries {
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		if entry.addedAt.Before(cutoff) {
			continue
		}
		if strings.Compare(lastEventID, id) < 0 {
			missed = append(missed, entry.ev)
		}
	}
	sort.Slice(missed, func(i, j int) bool { return missed[i].ID < missed[j].ID })
	return missed
}

func (c *EventCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
