package sse

import (
	"fmt"
	"testing"
	"time"
)

func TestEventCacheAfterFiltersAndSorts(t *testing.T) {
	c := NewEventCache(16, time.Hour)
	c.Add(Event{ID: "42_1000", Name: "notification", Data: "a"})
	c.Add(Event{ID: "42_3000", Name: "notification", Data: "c"})
	c.Add(Event{ID: "42_2000", Name: "notification", Data: "b"})
	c.Add(Event{ID: "7_2500", Name: "notification", Data: "other member"})

	got := c.After(42, "42_1000")
	if len(got) != 2 {
		t.Fatalf("After returned %d events, want 2", len(got))
	}
	if got[0].ID != "42_2000" || got[1].ID != "42_3000" {
		t.Fatalf("After order = [%s %s], want ascending [42_2000 42_3000]", got[0].ID, got[1].ID)
	}
}

func TestEventCacheAfterExactCheckpointExcluded(t *testing.T) {
	c := NewEventCache(16, time.Hour)
	c.Add(Event{ID: "42_1000", Data: "a"})
	got := c.After(42, "42_1000")
	if len(got) != 0 {
		t.Fatalf("checkpoint event itself must not be replayed, got %d events", len(got))
	}
}

func TestEventCacheEvictsOldest(t *testing.T) {
	c := NewEventCache(3, time.Hour)
	for i := 0; i < 5; i++ {
		c.Add(Event{ID: fmt.Sprintf("1_%d", 1000+i), Data: "x"})
	}
	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3 after eviction", c.Len())
	}
	got := c.After(1, "")
	if len(got) != 3 {
		t.Fatalf("After returned %d events, want 3", len(got))
	}
	if got[0].ID != "1_1002" {
		t.Fatalf("oldest surviving event = %s, want 1_1002", got[0].ID)
	}
}

func TestEventCacheTTLExpiry(t *testing.T) {
	c := NewEventCache(16, time.Minute)
	base := time.Now()
	c.now = func() time.Time { return base }
	c.Add(Event{ID: "1_1000", Data: "old"})

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	c.Add(Event{ID: "1_2000", Data: "fresh"})

	got := c.After(1, "")
	if len(got) != 1 || got[0].ID != "1_2000" {
		t.Fatalf("expired entry should be skipped, got %v", got)
	}
}

func TestEventCacheDoesNotCrossMembers(t *testing.T) {
	c := NewEventCache(16, time.Hour)
	c.Add(Event{ID: "42_1000", Data: "a"})
	if got := c.After(4, ""); len(got) != 0 {
		t.Fatalf("member 4 replay returned %d events, want 0", len(got))
	}
}
