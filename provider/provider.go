// Package provider defines the byte storage used by store.
//
// Implementations MUST be byte-for-byte transparent: Get returns exactly the
// bytes previously passed to Set for a key. No metadata, no re-encoding, no
// mutation. Internal transforms such as compression must be fully reversed.
//
// The keyspace "rec:<ns>:" belongs to store. Values written there by anything
// else fail entry validation and are deleted on read.
package provider

import (
	"context"
	"time"
)

// Provider is a minimal byte store with TTLs. It must be safe for
// concurrent use.
type Provider interface {
	// Get returns (value, true, nil) on hit and (nil, false, nil) on miss.
	// IO or remote failures return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value for ttl. ttl <= 0 means no expiry where the backend
	// supports it. ok=false means the backend dropped the write under pressure.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) (ok bool, err error)

	// Del removes a key. Missing keys are not an error.
	Del(ctx context.Context, key string) error

	Close(ctx context.Context) error
}
