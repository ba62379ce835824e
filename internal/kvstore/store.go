// Package kvstore wraps a remote key-value store behind a minimal
// get/set/delete/multi-get contract. The pack service is its only consumer;
// anything satisfying Store can back it.
package kvstore

import (
	"context"
	"errors"
)

// ErrKeyNotFound indicates a simple miss, distinct from transport failure.
var ErrKeyNotFound = errors.New("key not found")

// Store is the minimal key-value contract the pack service depends on.
type Store interface {
	// Get returns the value for key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes value under key, creating or replacing it.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// MGet returns one entry per requested key, in order. Missing keys
	// yield nil entries rather than an error.
	MGet(ctx context.Context, keys []string) ([][]byte, error)
}
