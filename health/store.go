package health

import (
	"context"
	"reflect"
)

// Pinger is the reachability surface of the persistent tier.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreChecker reports whether the persistent tier is reachable.
type StoreChecker struct {
	name  string
	store Pinger
}

// NewStoreChecker creates a checker over the persistent tier. A nil
// store means persistence is disabled; a typed nil pointer wrapped in
// the interface counts as nil too.
func NewStoreChecker(store Pinger) *StoreChecker {
	if isNilPinger(store) {
		store = nil
	}
	return &StoreChecker{name: "store", store: store}
}

func isNilPinger(p Pinger) bool {
	if p == nil {
		return true
	}
	v := reflect.ValueOf(p)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// Name returns the name of this checker.
func (c *StoreChecker) Name() string {
	return c.name
}

// Check pings the persistent tier. An unreachable store is unhealthy
// rather than fatal; the cache keeps serving from memory.
func (c *StoreChecker) Check(ctx context.Context) Result {
	if c.store == nil {
		return Healthy("persistence disabled")
	}
	if err := c.store.Ping(ctx); err != nil {
		return Unhealthy("persistent tier unreachable", err)
	}
	return Healthy("persistent tier reachable")
}

var _ Checker = (*StoreChecker)(nil)
