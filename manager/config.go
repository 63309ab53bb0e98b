package manager

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Configuration errors.
var (
	ErrInvalidMemorySize = errors.New("manager: memory size must be positive")
	ErrInvalidQueueSize  = errors.New("manager: queue size must be positive")
	ErrMissingPath       = errors.New("manager: persistence enabled without a path")
)

// Config controls manager behavior.
type Config struct {
	// Enabled toggles the whole cache. When false the manager is a
	// passthrough: every Get misses and every Set is a no-op.
	Enabled bool

	// MemorySize bounds the in-memory tier, in entries.
	MemorySize int

	// Persist enables the persistent tier at PersistentPath.
	Persist bool

	// PersistentPath is the SQLite database path.
	PersistentPath string

	// AsyncPersist routes persistent writes through a background
	// worker instead of blocking Set.
	AsyncPersist bool

	// QueueSize bounds the async persistence queue. A full queue
	// blocks Set until the worker catches up.
	QueueSize int

	// SingleFlight coalesces concurrent GetOrCompute calls for the
	// same slot so the producer runs once.
	SingleFlight bool

	// DefaultTTL applies to entries stored without an explicit TTL.
	// Zero means entries never expire.
	DefaultTTL time.Duration
}

// DefaultConfig returns the default manager configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:      true,
		MemorySize:   1024,
		Persist:      true,
		AsyncPersist: true,
		QueueSize:    256,
		SingleFlight: true,
	}
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.MemorySize <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidMemorySize, c.MemorySize)
	}
	if c.Persist && c.PersistentPath == "" {
		return ErrMissingPath
	}
	if c.AsyncPersist && c.QueueSize <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidQueueSize, c.QueueSize)
	}
	return nil
}

// ConfigFromEnv builds a configuration from TOOLCACHE_* environment
// variables, starting from DefaultConfig. Unset or malformed values
// keep their defaults.
//
// Recognized variables:
//
//	TOOLCACHE_ENABLED       bool
//	TOOLCACHE_MEMORY_SIZE   int
//	TOOLCACHE_PERSIST       bool
//	TOOLCACHE_PATH          string
//	TOOLCACHE_ASYNC_PERSIST bool
//	TOOLCACHE_QUEUE_SIZE    int
//	TOOLCACHE_SINGLEFLIGHT  bool
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v, ok := envBool("TOOLCACHE_ENABLED"); ok {
		cfg.Enabled = v
	}
	if v, ok := envInt("TOOLCACHE_MEMORY_SIZE"); ok {
		cfg.MemorySize = v
	}
	if v, ok := envBool("TOOLCACHE_PERSIST"); ok {
		cfg.Persist = v
	}
	if v := os.Getenv("TOOLCACHE_PATH"); v != "" {
		cfg.PersistentPath = v
	}
	if v, ok := envBool("TOOLCACHE_ASYNC_PERSIST"); ok {
		cfg.AsyncPersist = v
	}
	if v, ok := envInt("TOOLCACHE_QUEUE_SIZE"); ok {
		cfg.QueueSize = v
	}
	if v, ok := envBool("TOOLCACHE_SINGLEFLIGHT"); ok {
		cfg.SingleFlight = v
	}

	return cfg
}

func envBool(name string) (bool, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

func envInt(name string) (int, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
