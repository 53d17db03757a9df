package cache

import (
	"context"
	"time"
)

// LayeredCache implements two-level cache (L1: Memory, L2: Redis).
type LayeredCache struct {
	mem    *MemoryCache
	remote Service
	l1TTL  time.Duration
}

// NewLayeredCache fronts remote with an in-process LRU.
func NewLayeredCache(remote Service, memorySize int, l1TTL time.Duration) *LayeredCache {
	return &LayeredCache{
		mem:    NewMemoryCache(WithMemoryMaxSize(memorySize)),
		remote: remote,
		l1TTL:  l1TTL,
	}
}

func (lc *LayeredCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	// write-through: remote first so L1 never holds what L2 rejected
	if err := lc.remote.Set(ctx, key, value, expiration); err != nil {
		return err
	}
	_ = lc.mem.Set(ctx, key, value, lc.l1(expiration))
	return nil
}

func (lc *LayeredCache) Get(ctx context.Context, key string, dest interface{}) error {
	if err := lc.mem.Get(ctx, key, dest); err == nil {
		return nil
	}

	var raw []byte
	if err := lc.remote.Get(ctx, key, &raw); err != nil {
		return err
	}
	_ = lc.mem.Set(ctx, key, raw, lc.l1TTL)
	return decode(raw, dest)
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.mem.Delete(ctx, keys...)
	return lc.remote.Delete(ctx, keys...)
}

func (lc *LayeredCache) Exists(ctx context.Context, keys ...string) (bool, error) {
	if ok, _ := lc.mem.Exists(ctx, keys...); ok {
		return true, nil
	}
	return lc.remote.Exists(ctx, keys...)
}

func (lc *LayeredCache) l1(expiration time.Duration) time.Duration {
	if lc.l1TTL > 0 && (expiration <= 0 || lc.l1TTL < expiration) {
		return lc.l1TTL
	}
	return expiration
}

// Close stops the L1 sweeper. The remote is owned by the caller.
func (lc *LayeredCache) Close() error {
	return lc.mem.Close()
}
