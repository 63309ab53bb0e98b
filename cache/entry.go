package cache

import (
	"encoding/json"
	"fmt"
	"time"
)

// Envelope formats. FormatJSON payloads carry canonical JSON bytes and
// can be persisted; FormatRaw payloads hold a live value that could not
// be serialized and exist in the memory tier only.
const (
	FormatJSON = "json"
	FormatRaw  = "raw"
)

// Envelope is a tagged serializable payload. The persistent tier stores
// the format tag and the raw bytes without any knowledge of the payload
// shape.
type Envelope struct {
	Format string
	Data   []byte
	Raw    any
}

// EncodeValue serializes a value into a JSON envelope.
// Returns ErrNotSerializable (wrapped) if the value cannot be encoded.
func EncodeValue(v any) (Envelope, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrNotSerializable, err)
	}
	return Envelope{Format: FormatJSON, Data: data}, nil
}

// RawEnvelope wraps a value that cannot be serialized. The envelope is
// usable in the memory tier but is skipped by persistence.
func RawEnvelope(v any) Envelope {
	return Envelope{Format: FormatRaw, Raw: v}
}

// Persistable reports whether the envelope can be written to the
// persistent tier.
func (e Envelope) Persistable() bool {
	return e.Format == FormatJSON
}

// Value returns the payload. JSON envelopes are unmarshalled into the
// generic any representation; raw envelopes return the live value.
func (e Envelope) Value() (any, error) {
	if e.Format == FormatRaw {
		return e.Raw, nil
	}
	var v any
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return nil, fmt.Errorf("cache: failed to decode envelope: %w", err)
	}
	return v, nil
}

// DecodeInto unmarshals a JSON envelope into the given destination.
func (e Envelope) DecodeInto(dst any) error {
	if e.Format != FormatJSON {
		return fmt.Errorf("cache: cannot decode %q envelope into typed value", e.Format)
	}
	return json.Unmarshal(e.Data, dst)
}

// Entry is the unit stored in both cache tiers.
//
// Contract:
// - Identity: (Namespace, Version, Key) uniquely identifies the slot.
// - Expiry: a nil ExpiresAt means the entry never expires.
// - Ownership: entries are treated as immutable after construction.
type Entry struct {
	Namespace string
	Version   string
	Key       string
	Value     Envelope
	CreatedAt time.Time
	ExpiresAt *time.Time
}

// NewEntry creates an entry, computing ExpiresAt from ttl.
// A non-positive ttl produces an entry without expiration.
func NewEntry(namespace, version, key string, value Envelope, ttl time.Duration) *Entry {
	now := time.Now()
	e := &Entry{
		Namespace: namespace,
		Version:   version,
		Key:       key,
		Value:     value,
		CreatedAt: now,
	}
	if ttl > 0 {
		expires := now.Add(ttl)
		e.ExpiresAt = &expires
	}
	return e
}

// Slot returns the composite slot identity for this entry.
func (e *Entry) Slot() string {
	return Slot(e.Namespace, e.Version, e.Key)
}

// Expired reports whether the entry is past its expiration at the given
// instant. Entries without ExpiresAt never expire.
func (e *Entry) Expired(now time.Time) bool {
	return e.ExpiresAt != nil && now.After(*e.ExpiresAt)
}
