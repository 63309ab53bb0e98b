package manager

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonwraymond/toolcache/cache"
	"github.com/jonwraymond/toolcache/observe"
	"github.com/jonwraymond/toolcache/singleflight"
	"github.com/jonwraymond/toolcache/store"
)

// ErrClosed is returned by operations on a closed manager.
var ErrClosed = errors.New("manager: cache is closed")

// Producer computes a value on cache miss.
type Producer func(ctx context.Context) (any, error)

// persistRequest is a unit of work for the persistence worker. A nil
// entry is a flush marker; the worker closes ack once every write
// enqueued before it has been attempted.
type persistRequest struct {
	entry *cache.Entry
	ack   chan struct{}
}

// Manager is the multi-tier result cache.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Degradation: persistent-tier failures never fail reads or writes;
//   the manager logs, counts the error, and serves from memory.
// - Close: drains the async queue, flushes the store, and releases it.
//   Operations after Close return ErrClosed or miss.
type Manager struct {
	cfg     Config
	memory  *cache.MemoryTier
	store   *store.SQLiteStore
	flight  *singleflight.KeyedMutex
	logger  observe.Logger
	metrics *observe.CacheMetrics

	mu     sync.RWMutex // guards closed against queue sends
	closed bool

	queue     chan persistRequest
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// New creates a manager from the configuration. A nil logger discards
// log output; nil metrics disable instrumentation.
func New(cfg Config, logger observe.Logger, metrics *observe.CacheMetrics) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = observe.NopLogger()
	}

	m := &Manager{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
	}
	if !cfg.Enabled {
		return m, nil
	}

	memory, err := cache.NewMemoryTier(cfg.MemorySize)
	if err != nil {
		return nil, err
	}
	m.memory = memory

	if cfg.SingleFlight {
		m.flight = singleflight.NewKeyedMutex()
	}

	if cfg.Persist {
		st, err := store.Open(cfg.PersistentPath)
		if err != nil {
			return nil, err
		}
		m.store = st

		if cfg.AsyncPersist {
			m.queue = make(chan persistRequest, cfg.QueueSize)
			m.wg.Add(1)
			go m.persistWorker()
		}
	}

	return m, nil
}

// Get looks up the slot, memory tier first, then the persistent tier.
// A persistent hit is backfilled into memory. Returns (nil, false) on
// miss, expiry, or when the cache is disabled or closed.
func (m *Manager) Get(ctx context.Context, namespace, version, key string) (any, bool) {
	if !m.cfg.Enabled || m.isClosed() {
		return nil, false
	}
	if err := cache.ValidateKey(key); err != nil {
		return nil, false
	}

	meta := observe.CacheMeta{Namespace: namespace, Version: version}

	if entry, ok := m.memory.Get(namespace, version, key); ok {
		value, err := entry.Value.Value()
		if err != nil {
			m.logger.Error(ctx, "failed to decode cached entry",
				observe.Field{Key: "namespace", Value: namespace},
				observe.Field{Key: "key", Value: key},
				observe.Field{Key: "error", Value: err.Error()},
			)
			m.memory.Delete(namespace, version, key)
			return nil, false
		}
		m.metrics.RecordHit(ctx, meta, observe.TierMemory)
		return value, true
	}

	if m.store == nil {
		m.metrics.RecordMiss(ctx, meta)
		return nil, false
	}

	entry, ok, err := m.store.Get(ctx, namespace, version, key)
	if err != nil {
		m.logger.Warn(ctx, "persistent tier read failed, serving miss",
			observe.Field{Key: "namespace", Value: namespace},
			observe.Field{Key: "key", Value: key},
			observe.Field{Key: "error", Value: err.Error()},
		)
		m.metrics.RecordMiss(ctx, meta)
		return nil, false
	}
	if !ok {
		m.metrics.RecordMiss(ctx, meta)
		return nil, false
	}

	value, err := entry.Value.Value()
	if err != nil {
		m.logger.Error(ctx, "failed to decode persisted entry",
			observe.Field{Key: "namespace", Value: namespace},
			observe.Field{Key: "key", Value: key},
			observe.Field{Key: "error", Value: err.Error()},
		)
		m.metrics.RecordMiss(ctx, meta)
		return nil, false
	}

	if m.memory.Put(entry) {
		m.metrics.RecordEviction(ctx, meta)
	}
	m.metrics.RecordHit(ctx, meta, observe.TierPersistent)
	return value, true
}

// Set stores the value under the slot. Values that cannot be
// serialized are kept in the memory tier only. Persistent-tier
// failures degrade: the memory write stands and the error is logged
// and counted, not returned.
func (m *Manager) Set(ctx context.Context, namespace, version, key string, value any, ttl time.Duration) error {
	if !m.cfg.Enabled {
		return nil
	}
	if err := cache.ValidateKey(key); err != nil {
		return err
	}

	if ttl <= 0 {
		ttl = m.cfg.DefaultTTL
	}

	meta := observe.CacheMeta{Namespace: namespace, Version: version}

	envelope, err := cache.EncodeValue(value)
	if errors.Is(err, cache.ErrNotSerializable) {
		m.logger.Debug(ctx, "value not serializable, caching in memory only",
			observe.Field{Key: "namespace", Value: namespace},
			observe.Field{Key: "key", Value: key},
		)
		envelope = cache.RawEnvelope(value)
	} else if err != nil {
		return err
	}

	entry := cache.NewEntry(namespace, version, key, envelope, ttl)

	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return ErrClosed
	}

	if m.memory.Put(entry) {
		m.metrics.RecordEviction(ctx, meta)
	}

	if m.store == nil || !envelope.Persistable() {
		m.mu.RUnlock()
		return nil
	}

	if m.queue != nil {
		// Held read lock guarantees the queue is not closed under us
		m.metrics.AddQueueDepth(ctx, 1)
		m.queue <- persistRequest{entry: entry}
		m.mu.RUnlock()
		return nil
	}
	m.mu.RUnlock()

	if err := m.store.Put(ctx, entry); err != nil {
		m.logger.Warn(ctx, "persistent tier write failed, entry kept in memory",
			observe.Field{Key: "namespace", Value: namespace},
			observe.Field{Key: "key", Value: key},
			observe.Field{Key: "error", Value: err.Error()},
		)
		m.metrics.RecordPersistError(ctx, meta)
	}
	return nil
}

// Delete removes the slot from every tier. Idempotent.
func (m *Manager) Delete(ctx context.Context, namespace, version, key string) error {
	if !m.cfg.Enabled {
		return nil
	}
	if m.isClosed() {
		return ErrClosed
	}

	m.memory.Delete(namespace, version, key)
	if m.store != nil {
		return m.store.Delete(ctx, namespace, version, key)
	}
	return nil
}

// GetOrCompute returns the cached value for the slot, or runs produce
// and caches its result. With single-flight enabled, concurrent calls
// for the same slot run produce once; the rest wait and read the
// cached result. Producer errors are returned and never cached.
func (m *Manager) GetOrCompute(ctx context.Context, namespace, version, key string, ttl time.Duration, produce Producer) (any, error) {
	if !m.cfg.Enabled || m.isClosed() {
		return produce(ctx)
	}

	if value, ok := m.Get(ctx, namespace, version, key); ok {
		return value, nil
	}

	if m.flight != nil {
		release := m.flight.Acquire(cache.Slot(namespace, version, key))
		defer release()

		// Another flight may have populated the slot while we waited
		if value, ok := m.Get(ctx, namespace, version, key); ok {
			return value, nil
		}
	}

	value, err := produce(ctx)
	if err != nil {
		return nil, err
	}

	if err := m.Set(ctx, namespace, version, key, value, ttl); err != nil && !errors.Is(err, ErrClosed) {
		m.logger.Warn(ctx, "failed to cache computed value",
			observe.Field{Key: "namespace", Value: namespace},
			observe.Field{Key: "key", Value: key},
			observe.Field{Key: "error", Value: err.Error()},
		)
	}
	return value, nil
}

// Dump enumerates live entries across both tiers, optionally filtered
// by namespace (empty string matches all). Entries present in memory
// but not yet persisted are included; slots present in both tiers are
// reported once, favoring the memory copy. Every entry carries its
// expiration metadata.
func (m *Manager) Dump(ctx context.Context, namespace string) ([]*cache.Entry, error) {
	if !m.cfg.Enabled {
		return nil, nil
	}
	if m.isClosed() {
		return nil, ErrClosed
	}

	memEntries := m.memory.Entries(namespace)

	if m.store == nil {
		return memEntries, nil
	}

	stored, err := m.store.Dump(ctx, namespace)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(memEntries))
	out := make([]*cache.Entry, 0, len(stored)+len(memEntries))
	for _, entry := range memEntries {
		seen[entry.Slot()] = true
		out = append(out, entry)
	}
	now := time.Now()
	for _, entry := range stored {
		if seen[entry.Slot()] || entry.Expired(now) {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

// Flush blocks until every write accepted before the call is durably
// persisted. With async persistence this drains the queue up to a
// marker before flushing the store.
func (m *Manager) Flush(ctx context.Context) error {
	if !m.cfg.Enabled || m.store == nil {
		return nil
	}

	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return ErrClosed
	}
	if m.queue != nil {
		ack := make(chan struct{})
		m.queue <- persistRequest{ack: ack}
		m.mu.RUnlock()

		select {
		case <-ack:
		case <-ctx.Done():
			return ctx.Err()
		}
	} else {
		m.mu.RUnlock()
	}

	return m.store.Flush(ctx)
}

// Close drains pending async writes, flushes the persistent tier, and
// releases it. Idempotent; later calls return the first result.
func (m *Manager) Close() error {
	if !m.cfg.Enabled {
		return nil
	}

	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.closed = true
		if m.queue != nil {
			close(m.queue)
		}
		m.mu.Unlock()

		m.wg.Wait()

		if m.store == nil {
			return
		}

		ctx := context.Background()
		var errs []error
		if err := m.store.Flush(ctx); err != nil {
			errs = append(errs, err)
		}
		if err := m.store.Close(); err != nil {
			errs = append(errs, err)
		}
		m.closeErr = errors.Join(errs...)
	})

	return m.closeErr
}

// Len returns the number of entries in the memory tier.
func (m *Manager) Len() int {
	if m.memory == nil {
		return 0
	}
	return m.memory.Len()
}

// Cap returns the memory tier capacity.
func (m *Manager) Cap() int {
	if m.memory == nil {
		return 0
	}
	return m.memory.Cap()
}

// Store exposes the persistent tier for health checks. Nil when
// persistence is disabled.
func (m *Manager) Store() *store.SQLiteStore {
	return m.store
}

func (m *Manager) isClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}
