// Package store provides the key-value backing store shared by session
// management and rate limiting, with a Redis implementation and an in-process
// fallback selected once at startup.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable wraps any backend failure so callers can apply their
// fail-open or fail-closed policy without inspecting driver errors.
var ErrUnavailable = errors.New("store unavailable")

// Store is the minimal contract both implementations satisfy. Get returns
// ok=false for absent or expired keys. Incr creates the key at 1 when absent;
// Expire sets a TTL on an existing key.
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Close() error
}
