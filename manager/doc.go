// Package manager wires the cache tiers into a single result cache.
//
// A Manager fronts a bounded in-memory tier and an optional persistent
// tier with read-through, write-through, and per-key single-flight
// coalescing. Writes to the persistent tier can run synchronously or
// through an ordered background queue that is drained on Close.
//
// Middleware adapts a Manager to tool execution: it derives keys from
// the tool identity and arguments, skips caching for tools with unsafe
// tags, and degrades to direct execution when the cache is unavailable.
package manager
