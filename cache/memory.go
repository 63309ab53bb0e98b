package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// MemoryTier is the bounded in-process cache tier.
//
// The eviction policy is least-recently-used (hashicorp/golang-lru).
// Eviction removes an entry from memory only; it never deletes from the
// persistent tier. Reads apply lazy expiration: an expired entry is
// removed and reported as a miss.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: Get never errors; it returns (nil, false) on miss.
type MemoryTier struct {
	entries  *lru.Cache[string, *Entry]
	capacity int
}

// NewMemoryTier creates a memory tier bounded to capacity entries.
func NewMemoryTier(capacity int) (*MemoryTier, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	entries, err := lru.New[string, *Entry](capacity)
	if err != nil {
		return nil, err
	}
	return &MemoryTier{entries: entries, capacity: capacity}, nil
}

// Get retrieves the entry for the slot. Returns (nil, false) on miss or
// expiry.
func (t *MemoryTier) Get(namespace, version, key string) (*Entry, bool) {
	slot := Slot(namespace, version, key)
	entry, ok := t.entries.Get(slot)
	if !ok {
		return nil, false
	}
	if entry.Expired(time.Now()) {
		t.entries.Remove(slot)
		return nil, false
	}
	return entry, true
}

// Put stores an entry, overwriting any prior entry in the same slot.
// Returns true if an unrelated entry was evicted to make room.
func (t *MemoryTier) Put(entry *Entry) (evicted bool) {
	return t.entries.Add(entry.Slot(), entry)
}

// Delete removes the entry for the slot. Idempotent.
func (t *MemoryTier) Delete(namespace, version, key string) {
	t.entries.Remove(Slot(namespace, version, key))
}

// Len returns the current number of entries.
func (t *MemoryTier) Len() int {
	return t.entries.Len()
}

// Cap returns the configured capacity.
func (t *MemoryTier) Cap() int {
	return t.capacity
}

// Entries returns a snapshot of the live entries, optionally filtered by
// namespace (empty string matches all). Expired entries are skipped.
// Peek is used so enumeration does not disturb recency order.
func (t *MemoryTier) Entries(namespace string) []*Entry {
	now := time.Now()
	keys := t.entries.Keys()
	out := make([]*Entry, 0, len(keys))
	for _, slot := range keys {
		entry, ok := t.entries.Peek(slot)
		if !ok || entry.Expired(now) {
			continue
		}
		if namespace != "" && entry.Namespace != namespace {
			continue
		}
		out = append(out, entry)
	}
	return out
}
