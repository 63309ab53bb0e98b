package store_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonwraymond/toolcache/cache"
	"github.com/jonwraymond/toolcache/store"
)

func Example() {
	dir, _ := os.MkdirTemp("", "toolcache")
	defer os.RemoveAll(dir)

	st, _ := store.Open(filepath.Join(dir, "results.db"))
	defer st.Close()

	envelope, _ := cache.EncodeValue("protein-record")
	entry := cache.NewEntry("uniprot", "v1", "cache:uniprot_query:abc123", envelope, 0)

	ctx := context.Background()
	_ = st.Put(ctx, entry)

	got, ok, _ := st.Get(ctx, "uniprot", "v1", "cache:uniprot_query:abc123")
	value, _ := got.Value.Value()
	fmt.Println(ok, value)
	// Output: true protein-record
}

func ExampleSQLiteStore_Dump() {
	dir, _ := os.MkdirTemp("", "toolcache")
	defer os.RemoveAll(dir)

	st, _ := store.Open(filepath.Join(dir, "results.db"))
	defer st.Close()

	ctx := context.Background()
	for _, key := range []string{"b", "a"} {
		envelope, _ := cache.EncodeValue("result-" + key)
		_ = st.Put(ctx, cache.NewEntry("fda", "v1", key, envelope, 0))
	}

	entries, _ := st.Dump(ctx, "fda")
	for _, entry := range entries {
		fmt.Println(entry.Key)
	}
	// Output:
	// a
	// b
}
