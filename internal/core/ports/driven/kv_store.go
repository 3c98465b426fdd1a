package driven

import (
	"context"
	"time"
)

// KVStore is a short-lived key/value store with per-key expiry.
// Keys are plain strings; values are opaque payloads. Set, Get and Delete are
// assumed atomic per key, which is the only coordination the broker relies on.
type KVStore interface {
	// Set stores value under key, replacing any previous value.
	// The key disappears after ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get returns the value stored under key.
	// Returns nil, nil if the key does not exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Taker is implemented by stores that can read and remove a key in one step.
// The broker uses it for destructive reads when available.
type Taker interface {
	// Take atomically retrieves and deletes the value under key.
	// Returns nil, nil if the key does not exist or has expired.
	Take(ctx context.Context, key string) ([]byte, error)
}

// Pinger is implemented by stores that can report backend health.
type Pinger interface {
	Ping(ctx context.Context) error
}
