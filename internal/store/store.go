// Package store defines the versioned key-value contract every aggregate
// is persisted through: get, create-if-absent, and compare-and-swap on a
// monotonically increasing version. Optimistic concurrency lives entirely
// behind this interface; callers own the read-compute-commit retry loop.
package store

import (
	"context"
	"errors"
)

// Sentinel errors returned by Store implementations.
var (
	ErrNotFound        = errors.New("store: key not found")
	ErrAlreadyExists   = errors.New("store: key already exists")
	ErrVersionConflict = errors.New("store: version conflict")
)

// Record is a stored value with the version it was read at.
type Record struct {
	Key     string
	Value   []byte
	Version int64
}

// Store is the persistence contract. Versions start at 1 on Create and
// increase by 1 per successful CompareAndSwap.
type Store interface {
	// Get returns the record at (bucket, key) or ErrNotFound.
	Get(ctx context.Context, bucket, key string) (Record, error)

	// Create writes the first version of (bucket, key) or fails with
	// ErrAlreadyExists. Create is the idempotency primitive: exactly one
	// of several concurrent creators wins.
	Create(ctx context.Context, bucket, key string, value []byte) error

	// CompareAndSwap replaces the value only if the stored version still
	// equals expectedVersion; otherwise ErrVersionConflict (or ErrNotFound
	// if the key vanished).
	CompareAndSwap(ctx context.Context, bucket, key string, value []byte, expectedVersion int64) error

	// List returns all records in bucket whose key starts with prefix,
	// ordered by key.
	List(ctx context.Context, bucket, prefix string) ([]Record, error)
}
