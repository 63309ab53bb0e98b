// Package cache provides the storage-independent building blocks for
// caching tool execution results: the entry model with TTL metadata, a
// bounded LRU memory tier, deterministic cache-key derivation, and
// caching policies.
package cache
