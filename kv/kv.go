// Package kv is the single access path to the backing key-value store.
//
// The store offers flat get/set/delete plus set-collection operations and
// nothing else: no transactions, no joins, no schema. Every method is a
// potentially blocking network call; callers impose their own deadlines via
// ctx. A transport or backend failure always surfaces as ErrUnavailable and
// is never folded into "absent".
package kv

import (
	"context"
	"errors"
	"time"
)

var ErrUnavailable = errors.New("kv: store unavailable")

// Unavailable tags err as a backend failure so that callers can test with
// errors.Is(err, ErrUnavailable).
func Unavailable(err error) error {
	if err == nil {
		return nil
	}
	return errors.Join(ErrUnavailable, err)
}

type Store interface {
	// Get returns the value for key, or ok=false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set writes key=value. ttl<=0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error

	SAdd(ctx context.Context, set, member string) error
	SRem(ctx context.Context, set, member string) error
	SMembers(ctx context.Context, set string) ([]string, error)

	// Keys lists keys matching a glob pattern. Read-only introspection
	// surface: the result is not a consistent snapshot and core mutation
	// logic must never depend on it.
	Keys(ctx context.Context, pattern string) ([]string, error)

	Close() error
}
