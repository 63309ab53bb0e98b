package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jonwraymond/toolcache/cache"
)

// ErrStorageIO indicates the persistent tier is unreachable or corrupt.
// Callers degrade to memory-only operation rather than propagating it
// to tool execution.
var ErrStorageIO = errors.New("store: persistent tier unavailable")

// resultRow is the table layout of the persistent tier. Timestamps are
// unix nanoseconds; a NULL expires_at means the entry never expires.
type resultRow struct {
	Namespace string `gorm:"column:namespace;type:text;primaryKey"`
	Version   string `gorm:"column:version;type:text;primaryKey"`
	CacheKey  string `gorm:"column:cache_key;type:text;primaryKey"`
	Format    string `gorm:"column:format;type:text;not null"`
	Value     []byte `gorm:"column:value;type:blob;not null"`
	CreatedAt int64  `gorm:"column:created_at;not null"`
	ExpiresAt *int64 `gorm:"column:expires_at"`
}

func (resultRow) TableName() string { return "result_entries" }

// SQLiteStore is the durable key-value store backing the cache.
//
// Contract:
// - Concurrency: safe for concurrent use (serialized by the driver).
// - Durability: every Put commits its own transaction; entries written
//   before Close are readable by a fresh process on the same path.
type SQLiteStore struct {
	db *gorm.DB
}

// Open opens (creating if needed) the store at the given path and
// migrates the schema.
func Open(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrStorageIO)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		return nil, ioErr("open database", err)
	}

	if err := db.AutoMigrate(&resultRow{}); err != nil {
		return nil, ioErr("migrate result_entries", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Get performs a point lookup. Returns (nil, false, nil) on miss.
// Expired rows are deleted lazily and reported as misses.
func (s *SQLiteStore) Get(ctx context.Context, namespace, version, key string) (*cache.Entry, bool, error) {
	var row resultRow
	err := s.db.WithContext(ctx).
		Where("namespace = ? AND version = ? AND cache_key = ?", namespace, version, key).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, ioErr("query entry", err)
	}

	if row.ExpiresAt != nil && time.Now().UnixNano() > *row.ExpiresAt {
		// Lazy expiry: best effort, a failed delete still reads as a miss
		_ = s.db.WithContext(ctx).
			Where("namespace = ? AND version = ? AND cache_key = ?", namespace, version, key).
			Delete(&resultRow{}).Error
		return nil, false, nil
	}

	return rowToEntry(row), true, nil
}

// Put upserts the entry. Writing the same (namespace, version, key)
// overwrites the prior row.
func (s *SQLiteStore) Put(ctx context.Context, entry *cache.Entry) error {
	if !entry.Value.Persistable() {
		return fmt.Errorf("store: cannot persist %q envelope", entry.Value.Format)
	}

	row := entryToRow(entry)
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "namespace"}, {Name: "version"}, {Name: "cache_key"}},
		DoUpdates: clause.Assignments(map[string]any{
			"format":     row.Format,
			"value":      row.Value,
			"created_at": row.CreatedAt,
			"expires_at": row.ExpiresAt,
		}),
	}).Create(&row).Error
	if err != nil {
		return ioErr("upsert entry", err)
	}
	return nil
}

// Delete removes the entry for the slot. Idempotent.
func (s *SQLiteStore) Delete(ctx context.Context, namespace, version, key string) error {
	err := s.db.WithContext(ctx).
		Where("namespace = ? AND version = ? AND cache_key = ?", namespace, version, key).
		Delete(&resultRow{}).Error
	if err != nil {
		return ioErr("delete entry", err)
	}
	return nil
}

// Dump enumerates stored entries, optionally filtered by namespace
// (empty string matches all). Every returned entry carries its
// ExpiresAt metadata, nil for TTL-less entries.
func (s *SQLiteStore) Dump(ctx context.Context, namespace string) ([]*cache.Entry, error) {
	query := s.db.WithContext(ctx).Model(&resultRow{}).
		Order("namespace, version, cache_key")
	if namespace != "" {
		query = query.Where("namespace = ?", namespace)
	}

	var rows []resultRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, ioErr("enumerate entries", err)
	}

	entries := make([]*cache.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToEntry(row))
	}
	return entries, nil
}

// Flush guarantees previously written entries are durably committed.
// Every Put commits its own transaction, so this is a liveness barrier
// rather than a buffer drain.
func (s *SQLiteStore) Flush(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return ioErr("flush", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return ioErr("flush", err)
	}
	return nil
}

// Ping reports whether the store is reachable. Safe on a nil
// receiver, which reads as unreachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("%w: store not open", ErrStorageIO)
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return ioErr("ping", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return ioErr("ping", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return ioErr("close", err)
	}
	if err := sqlDB.Close(); err != nil {
		return ioErr("close", err)
	}
	return nil
}

func entryToRow(entry *cache.Entry) resultRow {
	row := resultRow{
		Namespace: entry.Namespace,
		Version:   entry.Version,
		CacheKey:  entry.Key,
		Format:    entry.Value.Format,
		Value:     entry.Value.Data,
		CreatedAt: entry.CreatedAt.UnixNano(),
	}
	if entry.ExpiresAt != nil {
		expires := entry.ExpiresAt.UnixNano()
		row.ExpiresAt = &expires
	}
	return row
}

func rowToEntry(row resultRow) *cache.Entry {
	entry := &cache.Entry{
		Namespace: row.Namespace,
		Version:   row.Version,
		Key:       row.CacheKey,
		Value:     cache.Envelope{Format: row.Format, Data: row.Value},
		CreatedAt: time.Unix(0, row.CreatedAt),
	}
	if row.ExpiresAt != nil {
		expires := time.Unix(0, *row.ExpiresAt)
		entry.ExpiresAt = &expires
	}
	return entry
}

func ioErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorageIO, op, err)
}
