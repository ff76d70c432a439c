// Package kv defines the keyed storage port used by the document store and
// sessions, with in-memory, file, redis, and postgres backends. Values are
// opaque JSON payloads; collection semantics live above this layer.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound indicates the key has no stored value.
var ErrNotFound = errors.New("kv: key not found")

// Store is the storage port. Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the stored value, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
