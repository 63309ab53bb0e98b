package singleflight

import "sync"

// KeyedMutex is a table of per-key mutexes with reference counting.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Cleanup: when a key's refcount returns to zero, its lock and
//   refcount entries are removed.
// - Release: the returned release function is idempotent and must be
//   called on every exit path, including panics (defer it).
type KeyedMutex struct {
	mu        sync.Mutex
	locks     map[string]*sync.Mutex
	refcounts map[string]int
}

// NewKeyedMutex creates an empty keyed mutex table.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{
		locks:     make(map[string]*sync.Mutex),
		refcounts: make(map[string]int),
	}
}

// Acquire blocks until the caller holds the lock for key, then returns
// the release function. While held, any other Acquire for the same key
// blocks until release.
func (k *KeyedMutex) Acquire(key string) (release func()) {
	k.mu.Lock()
	lock, ok := k.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[key] = lock
	}
	k.refcounts[key]++
	k.mu.Unlock()

	lock.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			lock.Unlock()

			k.mu.Lock()
			k.refcounts[key]--
			if k.refcounts[key] <= 0 {
				delete(k.locks, key)
				delete(k.refcounts, key)
			}
			k.mu.Unlock()
		})
	}
}

// Len returns the current sizes of the lock and refcount tables.
// After every in-flight acquisition has been released, both are zero.
func (k *KeyedMutex) Len() (locks, refcounts int) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks), len(k.refcounts)
}
