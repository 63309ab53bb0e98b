package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Cache tier names used as metric attributes.
const (
	TierMemory     = "memory"
	TierPersistent = "persistent"
)

// CacheMetrics records cache activity.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: recording must not panic; a nil *CacheMetrics is a no-op.
type CacheMetrics struct {
	hits          metric.Int64Counter
	misses        metric.Int64Counter
	evictions     metric.Int64Counter
	persistErrors metric.Int64Counter
	queueDepth    metric.Int64UpDownCounter
}

// NewCacheMetrics creates cache metrics instruments on the given meter.
func NewCacheMetrics(meter metric.Meter) (*CacheMetrics, error) {
	hits, err := meter.Int64Counter(
		"cache.hits",
		metric.WithDescription("Cache lookups served from a tier"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	misses, err := meter.Int64Counter(
		"cache.misses",
		metric.WithDescription("Cache lookups not served from any tier"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	evictions, err := meter.Int64Counter(
		"cache.evictions",
		metric.WithDescription("Entries evicted from the memory tier"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}

	persistErrors, err := meter.Int64Counter(
		"cache.persist.errors",
		metric.WithDescription("Writes dropped after persistence failures"),
		metric.WithUnit("{write}"),
	)
	if err != nil {
		return nil, err
	}

	queueDepth, err := meter.Int64UpDownCounter(
		"cache.persist.queue",
		metric.WithDescription("Pending writes in the async persistence queue"),
		metric.WithUnit("{write}"),
	)
	if err != nil {
		return nil, err
	}

	return &CacheMetrics{
		hits:          hits,
		misses:        misses,
		evictions:     evictions,
		persistErrors: persistErrors,
		queueDepth:    queueDepth,
	}, nil
}

// RecordHit records a lookup served from the named tier.
func (m *CacheMetrics) RecordHit(ctx context.Context, meta CacheMeta, tier string) {
	if m == nil {
		return
	}
	m.hits.Add(ctx, 1, metric.WithAttributes(
		attribute.String("cache.namespace", meta.Namespace),
		attribute.String("cache.tier", tier),
	))
}

// RecordMiss records a lookup that missed every tier.
func (m *CacheMetrics) RecordMiss(ctx context.Context, meta CacheMeta) {
	if m == nil {
		return
	}
	m.misses.Add(ctx, 1, metric.WithAttributes(
		attribute.String("cache.namespace", meta.Namespace),
	))
}

// RecordEviction records a capacity eviction from the memory tier.
func (m *CacheMetrics) RecordEviction(ctx context.Context, meta CacheMeta) {
	if m == nil {
		return
	}
	m.evictions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("cache.namespace", meta.Namespace),
	))
}

// RecordPersistError records a write dropped after persistence failed.
func (m *CacheMetrics) RecordPersistError(ctx context.Context, meta CacheMeta) {
	if m == nil {
		return
	}
	m.persistErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("cache.namespace", meta.Namespace),
	))
}

// AddQueueDepth adjusts the async persistence queue depth gauge.
func (m *CacheMetrics) AddQueueDepth(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.queueDepth.Add(ctx, delta)
}
