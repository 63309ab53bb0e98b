// Package health provides liveness checks for the cache tiers.
//
// Checkers report the state of a single component: the persistent
// store, the memory tier, or anything else implementing Checker. An
// Aggregator combines checkers into one composite result with an
// overall status.
package health
