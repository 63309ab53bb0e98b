package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func testEntry(t *testing.T, ns, ver, key string, v any, ttl time.Duration) *Entry {
	t.Helper()
	env, err := EncodeValue(v)
	if err != nil {
		t.Fatalf("EncodeValue failed: %v", err)
	}
	return NewEntry(ns, ver, key, env, ttl)
}

func TestMemoryTier_GetPutDelete(t *testing.T) {
	tier, err := NewMemoryTier(8)
	if err != nil {
		t.Fatalf("NewMemoryTier failed: %v", err)
	}

	// Get on empty tier
	if _, ok := tier.Get("ns", "v1", "missing"); ok {
		t.Error("Get on empty tier should return ok=false")
	}

	entry := testEntry(t, "ns", "v1", "k1", "value", time.Minute)
	tier.Put(entry)

	got, ok := tier.Get("ns", "v1", "k1")
	if !ok {
		t.Fatal("Get after Put should return ok=true")
	}
	if got.Slot() != entry.Slot() {
		t.Errorf("Get returned slot %q, want %q", got.Slot(), entry.Slot())
	}

	// Overwrite the same slot
	tier.Put(testEntry(t, "ns", "v1", "k1", "other", time.Minute))
	got, _ = tier.Get("ns", "v1", "k1")
	v, _ := got.Value.Value()
	if v != "other" {
		t.Errorf("overwritten value = %v, want %q", v, "other")
	}
	if tier.Len() != 1 {
		t.Errorf("Len = %d after overwrite, want 1", tier.Len())
	}

	// Delete is idempotent
	tier.Delete("ns", "v1", "k1")
	tier.Delete("ns", "v1", "k1")
	if _, ok := tier.Get("ns", "v1", "k1"); ok {
		t.Error("Get after Delete should return ok=false")
	}
}

func TestMemoryTier_InvalidCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		if _, err := NewMemoryTier(capacity); err != ErrInvalidCapacity {
			t.Errorf("NewMemoryTier(%d) error = %v, want ErrInvalidCapacity", capacity, err)
		}
	}
}

func TestMemoryTier_LazyExpiry(t *testing.T) {
	tier, _ := NewMemoryTier(8)

	tier.Put(testEntry(t, "ns", "v1", "short", "v", 50*time.Millisecond))

	if _, ok := tier.Get("ns", "v1", "short"); !ok {
		t.Error("Get immediately after Put should hit")
	}

	time.Sleep(100 * time.Millisecond)

	if _, ok := tier.Get("ns", "v1", "short"); ok {
		t.Error("Get after expiry should miss")
	}
	// Expired entry was purged, not just hidden
	if tier.Len() != 0 {
		t.Errorf("Len = %d after lazy expiry, want 0", tier.Len())
	}
}

func TestMemoryTier_EvictionLRU(t *testing.T) {
	tier, _ := NewMemoryTier(2)

	tier.Put(testEntry(t, "ns", "v1", "a", 1, 0))
	tier.Put(testEntry(t, "ns", "v1", "b", 2, 0))

	// Touch "a" so "b" becomes least recently used
	if _, ok := tier.Get("ns", "v1", "a"); !ok {
		t.Fatal("expected hit for a")
	}

	evicted := tier.Put(testEntry(t, "ns", "v1", "c", 3, 0))
	if !evicted {
		t.Error("Put beyond capacity should report eviction")
	}

	if _, ok := tier.Get("ns", "v1", "b"); ok {
		t.Error("least-recently-used entry b should have been evicted")
	}
	if _, ok := tier.Get("ns", "v1", "a"); !ok {
		t.Error("recently used entry a should survive")
	}
	if _, ok := tier.Get("ns", "v1", "c"); !ok {
		t.Error("newly inserted entry c should be present")
	}
}

func TestMemoryTier_Entries(t *testing.T) {
	tier, _ := NewMemoryTier(8)

	tier.Put(testEntry(t, "fda", "v1", "a", 1, time.Minute))
	tier.Put(testEntry(t, "fda", "v1", "b", 2, 0))
	tier.Put(testEntry(t, "chembl", "v1", "c", 3, 0))
	tier.Put(testEntry(t, "fda", "v1", "gone", 4, 10*time.Millisecond))

	time.Sleep(30 * time.Millisecond)

	all := tier.Entries("")
	if len(all) != 3 {
		t.Errorf("Entries(\"\") returned %d entries, want 3", len(all))
	}

	fda := tier.Entries("fda")
	if len(fda) != 2 {
		t.Fatalf("Entries(\"fda\") returned %d entries, want 2", len(fda))
	}
	for _, e := range fda {
		if e.Namespace != "fda" {
			t.Errorf("entry namespace = %q, want fda", e.Namespace)
		}
	}

	// Every enumerated entry carries its expiry metadata: present for TTL
	// entries, nil for TTL-less ones.
	for _, e := range all {
		if e.Key == "a" && e.ExpiresAt == nil {
			t.Error("TTL entry should have ExpiresAt set")
		}
		if e.Key == "b" && e.ExpiresAt != nil {
			t.Error("TTL-less entry should have nil ExpiresAt")
		}
	}
}

func TestMemoryTier_ConcurrentAccess(t *testing.T) {
	tier, _ := NewMemoryTier(64)

	const numGoroutines = 50
	const opsPerGoroutine = 200

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < opsPerGoroutine; j++ {
				key := fmt.Sprintf("k%d", j%10)
				switch j % 3 {
				case 0:
					env, _ := EncodeValue(j)
					tier.Put(NewEntry("ns", "v1", key, env, time.Minute))
				case 1:
					tier.Get("ns", "v1", key)
				case 2:
					tier.Delete("ns", "v1", key)
				}
			}
		}(i)
	}

	wg.Wait()
}
