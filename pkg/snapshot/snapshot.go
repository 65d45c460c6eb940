// Package snapshot persists the committed Source values of a detached
// reactive.Scheduler root so it can be rehydrated later — the
// spec's Root is otherwise pure in-process state with no durability
// story. A Snapshot is a named bag of JSON-encoded values the caller
// fills in (one entry per Source it cares about) and round-trips
// through a Store.
package snapshot

import (
	"encoding/json"
	"fmt"
	"time"
)

// Snapshot is a point-in-time capture of a root's state, keyed by
// caller-chosen names (typically the same names used when the root's
// Sources were created).
type Snapshot struct {
	RootID  string                     `json:"root_id"`
	TakenAt time.Time                  `json:"taken_at"`
	Values  map[string]json.RawMessage `json:"values"`
}

// New creates an empty Snapshot for rootID, timestamped now.
func New(rootID string) *Snapshot {
	return &Snapshot{
		RootID:  rootID,
		TakenAt: time.Now(),
		Values:  make(map[string]json.RawMessage),
	}
}

// Put encodes value and stores it under key, overwriting any prior
// value for that key.
func (s *Snapshot) Put(key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("snapshot: encode %q: %w", key, err)
	}
	s.Values[key] = b
	return nil
}

// Get decodes the value stored under key into T. The second return is
// false if key is absent (not an error — a Source that didn't exist
// when the snapshot was taken).
func Get[T any](s *Snapshot, key string) (T, bool, error) {
	var zero T
	raw, ok := s.Values[key]
	if !ok {
		return zero, false, nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return zero, false, fmt.Errorf("snapshot: decode %q: %w", key, err)
	}
	return v, true, nil
}

// Marshal serializes the whole snapshot for storage.
func (s *Snapshot) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// Unmarshal parses a snapshot previously produced by Marshal.
func Unmarshal(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("snapshot: decode: %w", err)
	}
	if s.Values == nil {
		s.Values = make(map[string]json.RawMessage)
	}
	return &s, nil
}
