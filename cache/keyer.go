package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// ToolIdentity identifies a tool as a pure value. Cache keys derive from
// this identity and the call arguments only, never from a runtime
// instance, so recreating or re-registering a tool cannot change its
// keys.
type ToolIdentity struct {
	// Name is the stable tool name or type (required).
	Name string

	// Version is the tool's declared cache version. Bumping it makes
	// all prior entries for the tool logically distinct.
	Version string
}

// Keyer generates deterministic cache keys from tool call parameters.
//
// Contract:
// - Determinism: same (identity, arguments) must produce the same key,
//   regardless of map iteration order or how often the tool instance
//   was recreated.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	// Key generates a cache key from a tool identity and its arguments.
	Key(tool ToolIdentity, args map[string]any) (string, error)
}

// DefaultKeyer generates SHA-256 based cache keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a new default keyer.
func NewDefaultKeyer() *DefaultKeyer {
	return &DefaultKeyer{}
}

// Key generates a deterministic cache key.
// Format: cache:<name>:<hash>
// where hash is the first 16 hex characters of
// SHA-256(canonical JSON of {name, version, args}).
func (k *DefaultKeyer) Key(tool ToolIdentity, args map[string]any) (string, error) {
	if tool.Name == "" {
		return "", fmt.Errorf("%w: tool name is empty", ErrInvalidKey)
	}

	payload := map[string]any{
		"name":    tool.Name,
		"version": tool.Version,
	}
	if args != nil {
		payload["args"] = args
	}

	// Canonicalize to ensure deterministic serialization
	canonical, err := canonicalize(payload)
	if err != nil {
		return "", fmt.Errorf("cache: failed to canonicalize arguments: %w", err)
	}

	hash := sha256.Sum256(canonical)
	hashStr := hex.EncodeToString(hash[:8]) // First 8 bytes = 16 hex chars

	return fmt.Sprintf("cache:%s:%s", tool.Name, hashStr), nil
}

// canonicalize produces a deterministic JSON representation of the input.
// Maps are sorted by key to ensure consistent ordering.
func canonicalize(v any) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}

	switch val := v.(type) {
	case map[string]any:
		return canonicalizeMap(val)
	case []any:
		return canonicalizeSlice(val)
	default:
		// For other types, use standard JSON encoding
		return json.Marshal(v)
	}
}

func canonicalizeMap(m map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := []byte("{")
	for i, k := range keys {
		if i > 0 {
			result = append(result, ',')
		}

		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		result = append(result, keyBytes...)
		result = append(result, ':')

		valBytes, err := canonicalize(m[k])
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	result = append(result, '}')

	return result, nil
}

func canonicalizeSlice(s []any) ([]byte, error) {
	result := []byte("[")
	for i, v := range s {
		if i > 0 {
			result = append(result, ',')
		}

		valBytes, err := canonicalize(v)
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	result = append(result, ']')

	return result, nil
}

// Ensure DefaultKeyer implements Keyer
var _ Keyer = (*DefaultKeyer)(nil)
