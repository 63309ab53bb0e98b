// Package singleflight provides per-key mutual exclusion so concurrent
// identical requests collapse into one computation.
//
// Unlike a result-sharing coalescer, KeyedMutex exposes a scoped lock:
// callers acquire the key, perform their own miss-check and computation,
// and release. Bookkeeping for a key is purged the moment its last
// holder or waiter releases, so the lock table cannot grow without
// bound.
package singleflight
