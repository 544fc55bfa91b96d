// Package cache is the key-value side channel shared by all gateway instances.
//
// Stores return sentinel.ErrNotFound for absent or expired keys and errors
// wrapping sentinel.ErrUnavailable when the backing store cannot be reached.
// Callers must keep those two apart: absence is a fact about the session,
// unavailability is not.
package cache

import (
	"context"
	"time"
)

// Store is the minimal contract the token components depend on.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	// Set overwrites key. A non-positive ttl leaves no key behind.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
