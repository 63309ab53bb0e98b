package manager

import (
	"context"

	"github.com/jonwraymond/toolcache/cache"
	"github.com/jonwraymond/toolcache/observe"
)

// persistWorker drains the async queue in order. It exits when the
// queue is closed, after attempting every write enqueued before Close.
func (m *Manager) persistWorker() {
	defer m.wg.Done()

	ctx := context.Background()
	for req := range m.queue {
		if req.entry == nil {
			// Flush marker: everything enqueued before it has been
			// attempted by the time we see it
			close(req.ack)
			continue
		}
		m.metrics.AddQueueDepth(ctx, -1)
		m.persistEntry(ctx, req.entry)
	}
}

// persistEntry writes the entry to the store, retrying once before
// dropping the write. The memory copy stands either way.
func (m *Manager) persistEntry(ctx context.Context, entry *cache.Entry) {
	err := m.store.Put(ctx, entry)
	if err == nil {
		return
	}
	if err = m.store.Put(ctx, entry); err == nil {
		return
	}

	m.logger.Warn(ctx, "dropping write after persistence retry failed",
		observe.Field{Key: "namespace", Value: entry.Namespace},
		observe.Field{Key: "key", Value: entry.Key},
		observe.Field{Key: "error", Value: err.Error()},
	)
	m.metrics.RecordPersistError(ctx, observe.CacheMeta{
		Namespace: entry.Namespace,
		Version:   entry.Version,
	})
}
