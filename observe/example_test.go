package observe_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/toolcache/observe"
)

func ExampleNewObserver() {
	cfg := observe.Config{
		ServiceName: "toolcache",
		Version:     "1.0.0",
		Tracing:     observe.TracingConfig{Enabled: true, Exporter: "none"},
		Metrics:     observe.MetricsConfig{Enabled: false},
		Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
	}

	ctx := context.Background()
	obs, err := observe.NewObserver(ctx, cfg)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	defer func() {
		_ = obs.Shutdown(ctx)
	}()

	fmt.Println("Observer created successfully")
	// Output:
	// Observer created successfully
}

func ExampleNewObserver_validation() {
	// Missing service name triggers validation error
	cfg := observe.Config{
		ServiceName: "",
	}

	ctx := context.Background()
	_, err := observe.NewObserver(ctx, cfg)
	if errors.Is(err, observe.ErrMissingServiceName) {
		fmt.Println("Caught: missing service name")
	}
	// Output:
	// Caught: missing service name
}

func ExampleNewLoggerWithWriter() {
	var buf bytes.Buffer
	logger := observe.NewLoggerWithWriter("info", &buf)

	ctx := context.Background()
	logger.Info(ctx, "cache opened", observe.Field{Key: "path", Value: "/var/lib/toolcache/results.db"})

	// Output contains JSON with timestamp, level, msg, and path field
	fmt.Println("Logged message contains 'cache opened':", bytes.Contains(buf.Bytes(), []byte("cache opened")))
	// Output:
	// Logged message contains 'cache opened': true
}

func ExampleLogger_WithCache() {
	var buf bytes.Buffer
	logger := observe.NewLoggerWithWriter("info", &buf)

	meta := observe.CacheMeta{Namespace: "uniprot", Version: "v2"}
	scoped := logger.WithCache(meta)

	ctx := context.Background()
	scoped.Info(ctx, "entry persisted")

	output := buf.String()
	fmt.Println("Contains cache.namespace:", bytes.Contains([]byte(output), []byte("cache.namespace")))
	fmt.Println("Contains cache.version:", bytes.Contains([]byte(output), []byte("cache.version")))
	// Output:
	// Contains cache.namespace: true
	// Contains cache.version: true
}

func ExampleParseLogLevel() {
	levels := []string{"debug", "info", "warn", "error", "unknown"}
	for _, s := range levels {
		level := observe.ParseLogLevel(s)
		fmt.Printf("%s -> %s\n", s, level)
	}
	// Output:
	// debug -> debug
	// info -> info
	// warn -> warn
	// error -> error
	// unknown -> info
}

func ExampleCacheMeta_CacheID() {
	meta := observe.CacheMeta{Namespace: "uniprot", Version: "v2"}
	fmt.Println(meta.CacheID())

	meta2 := observe.CacheMeta{Namespace: "fda"}
	fmt.Println(meta2.CacheID())
	// Output:
	// uniprot@v2
	// fda
}
