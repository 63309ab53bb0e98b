package cache

import (
	"fmt"
	"testing"
	"time"
)

func BenchmarkDefaultKeyer_Key(b *testing.B) {
	keyer := NewDefaultKeyer()
	id := ToolIdentity{Name: "UniProt_search", Version: "1"}
	args := map[string]any{
		"query":  "BRCA1",
		"limit":  25,
		"fields": []any{"id", "name", "sequence"},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := keyer.Key(id, args); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMemoryTier_Get(b *testing.B) {
	tier, err := NewMemoryTier(1024)
	if err != nil {
		b.Fatal(err)
	}
	env, _ := EncodeValue(map[string]any{"hits": 3})
	for i := 0; i < 1024; i++ {
		tier.Put(NewEntry("bench", "v1", fmt.Sprintf("k%d", i), env, time.Hour))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tier.Get("bench", "v1", fmt.Sprintf("k%d", i%1024))
	}
}

func BenchmarkMemoryTier_Put(b *testing.B) {
	tier, err := NewMemoryTier(1024)
	if err != nil {
		b.Fatal(err)
	}
	env, _ := EncodeValue("payload")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tier.Put(NewEntry("bench", "v1", fmt.Sprintf("k%d", i%4096), env, time.Hour))
	}
}
