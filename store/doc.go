// Package store implements the persistent cache tier: an embedded
// SQLite table keyed by (namespace, version, cache_key) that survives
// process restarts. Values are stored as tagged envelopes so the store
// needs no knowledge of payload shape.
package store
