package snapshot

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Store.Load when key has no snapshot.
var ErrNotFound = errors.New("snapshot: not found")

// Store persists and retrieves opaque snapshot bytes by key. Save and
// Load are the two operations a detached root's resume path needs.
type Store interface {
	Save(ctx context.Context, key string, data []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// SaveRoot marshals snap and saves it under key.
func SaveRoot(ctx context.Context, store Store, key string, snap *Snapshot) error {
	data, err := snap.Marshal()
	if err != nil {
		return err
	}
	return store.Save(ctx, key, data)
}

// LoadRoot loads and parses the snapshot stored under key.
func LoadRoot(ctx context.Context, store Store, key string) (*Snapshot, error) {
	data, err := store.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}
