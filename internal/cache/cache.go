package cache

import "context"

// Store defines the interface for the time-bounded response cache. Values
// are opaque serialized payloads; an entry older than the store's TTL is
// treated as absent (checked on read, no background sweep).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Put(ctx context.Context, key string, value []byte)
	Clear(ctx context.Context)
	Close() error
}
