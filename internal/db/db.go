package db

import (
	"context"
	"time"
)

// Store is the cache store facade used by the composition root.
type Store interface {
	Pinger
	KVStore
	CounterStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CounterStore provides integer counters.
type CounterStore interface {
	IncrBy(ctx context.Context, key string, val int64) error
	GetCounter(ctx context.Context, key string) (int64, error)
}
