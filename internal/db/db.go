package db

import (
	"context"
	"time"
)

// Store is the usage store facade combining all sub-interfaces.
type Store interface {
	Pinger
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations.
type KVStore interface {
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration, nx bool) error
	IncrByWithTTL(ctx context.Context, key string, val int64, ttl time.Duration) error
}
