package cache

import (
	"strings"
	"testing"
)

func TestDefaultKeyer_Deterministic(t *testing.T) {
	keyer := NewDefaultKeyer()
	id := ToolIdentity{Name: "UniProt_search", Version: "1"}
	args := map[string]any{"query": "BRCA1", "limit": 10}

	key1, err := keyer.Key(id, args)
	if err != nil {
		t.Fatalf("Key failed: %v", err)
	}
	key2, err := keyer.Key(id, args)
	if err != nil {
		t.Fatalf("Key failed: %v", err)
	}
	if key1 != key2 {
		t.Errorf("same inputs produced different keys: %q vs %q", key1, key2)
	}
	if !strings.HasPrefix(key1, "cache:UniProt_search:") {
		t.Errorf("key format = %q, want cache:UniProt_search:<hash>", key1)
	}
}

func TestDefaultKeyer_MapOrdering(t *testing.T) {
	keyer := NewDefaultKeyer()
	id := ToolIdentity{Name: "tool", Version: "1"}

	// Same mapping, different insertion order
	args1 := map[string]any{"b": 2, "a": 1, "c": 3}
	args2 := map[string]any{"c": 3, "a": 1, "b": 2}

	key1, _ := keyer.Key(id, args1)
	key2, _ := keyer.Key(id, args2)
	if key1 != key2 {
		t.Errorf("semantically identical args produced different keys: %q vs %q", key1, key2)
	}
}

func TestDefaultKeyer_InstanceIndependence(t *testing.T) {
	// Two separately constructed keyers and identity values stand in for
	// recreated tool instances: the key depends only on stable values.
	args := map[string]any{"value": 42}

	key1, _ := NewDefaultKeyer().Key(ToolIdentity{Name: "TestTool", Version: "1"}, args)
	key2, _ := NewDefaultKeyer().Key(ToolIdentity{Name: "TestTool", Version: "1"}, args)

	if key1 != key2 {
		t.Errorf("recreated identity produced different keys: %q vs %q", key1, key2)
	}
}

func TestDefaultKeyer_Distinguishes(t *testing.T) {
	keyer := NewDefaultKeyer()

	base, _ := keyer.Key(ToolIdentity{Name: "tool", Version: "1"}, map[string]any{"q": "x"})

	tests := []struct {
		name string
		id   ToolIdentity
		args map[string]any
	}{
		{"different args", ToolIdentity{Name: "tool", Version: "1"}, map[string]any{"q": "y"}},
		{"different version", ToolIdentity{Name: "tool", Version: "2"}, map[string]any{"q": "x"}},
		{"different tool", ToolIdentity{Name: "tool2", Version: "1"}, map[string]any{"q": "x"}},
		{"nil args", ToolIdentity{Name: "tool", Version: "1"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := keyer.Key(tt.id, tt.args)
			if err != nil {
				t.Fatalf("Key failed: %v", err)
			}
			if key == base {
				t.Errorf("%s should produce a different key", tt.name)
			}
		})
	}
}

func TestDefaultKeyer_NestedArgs(t *testing.T) {
	keyer := NewDefaultKeyer()
	id := ToolIdentity{Name: "tool", Version: "1"}

	args1 := map[string]any{
		"filters": map[string]any{"species": "human", "reviewed": true},
		"fields":  []any{"id", "name"},
	}
	args2 := map[string]any{
		"fields":  []any{"id", "name"},
		"filters": map[string]any{"reviewed": true, "species": "human"},
	}

	key1, _ := keyer.Key(id, args1)
	key2, _ := keyer.Key(id, args2)
	if key1 != key2 {
		t.Error("nested maps should canonicalize to the same key")
	}

	// Slice order is semantic
	args3 := map[string]any{
		"fields":  []any{"name", "id"},
		"filters": map[string]any{"reviewed": true, "species": "human"},
	}
	key3, _ := keyer.Key(id, args3)
	if key1 == key3 {
		t.Error("different slice order should produce a different key")
	}
}

func TestDefaultKeyer_EmptyName(t *testing.T) {
	keyer := NewDefaultKeyer()
	if _, err := keyer.Key(ToolIdentity{}, nil); err == nil {
		t.Error("Key with empty tool name should fail")
	}
}

func TestDefaultKeyer_KeyIsValid(t *testing.T) {
	keyer := NewDefaultKeyer()
	key, err := keyer.Key(ToolIdentity{Name: "OpenTargets_search", Version: "2"}, map[string]any{"id": "ENSG00000141510"})
	if err != nil {
		t.Fatalf("Key failed: %v", err)
	}
	if err := ValidateKey(key); err != nil {
		t.Errorf("generated key %q failed validation: %v", key, err)
	}
}
