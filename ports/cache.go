package ports

import (
	"context"
	"time"
)

// CacheStore is a key→payload store with per-entry expiry. Expired entries
// must read as absent.
type CacheStore interface {
	// Get returns the payload and true on a live hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores payload under key for ttl. Concurrent writers of the same
	// key may race; the last write wins.
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error

	// Flush drops every entry.
	Flush(ctx context.Context) error
}
