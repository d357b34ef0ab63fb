package cache

import (
	"context"
	"time"
)

// Store is a small TTL key-value surface. The engine uses it for alert
// dedup markers; entries expire on their own and are never enumerated.
type Store interface {
	Get(ctx context.Context, key string) (b []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}
