// Package db defines the key-value storage contract used by the solution cache.
package db

import (
	"context"
	"time"
)

// Store is the storage facade: a pingable key-value store with a lifecycle.
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
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Driver names accepted by the cache configuration.
const (
	DriverRedis  = "redis"
	DriverValkey = "valkey"
)
