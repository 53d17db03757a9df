package cache

import (
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	data     []byte
	expireAt time.Time
	access   time.Time
}

// MemoryCache implements Service in process with LRU eviction.
type MemoryCache struct {
	mu      sync.Mutex
	items   map[string]*memoryItem
	maxSize int
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

// NewMemoryCache creates an in-memory cache.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := &MemoryConfig{
		MaxSize:         1000,
		CleanupInterval: 5 * time.Minute,
		Now:             time.Now,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	mc := &MemoryCache{
		items:   make(map[string]*memoryItem),
		maxSize: cfg.MaxSize,
		now:     cfg.Now,
		stop:    make(chan struct{}),
	}

	go mc.cleanupExpired(cfg.CleanupInterval)
	return mc
}

func (mc *MemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := encode(value)
	if err != nil {
		return err
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	if _, ok := mc.items[key]; !ok && len(mc.items) >= mc.maxSize {
		mc.evictLRU()
	}

	now := mc.now()
	if expiration <= 0 {
		expiration = 7 * 24 * time.Hour
	}
	mc.items[key] = &memoryItem{data: data, expireAt: now.Add(expiration), access: now}
	return nil
}

func (mc *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	mc.mu.Lock()
	item, ok := mc.items[key]
	now := mc.now()
	if ok && now.After(item.expireAt) {
		delete(mc.items, key)
		ok = false
	}
	if !ok {
		mc.mu.Unlock()
		return ErrCacheMiss
	}
	item.access = now
	data := item.data
	mc.mu.Unlock()

	return decode(data, dest)
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	for _, key := range keys {
		delete(mc.items, key)
	}
	return nil
}

func (mc *MemoryCache) Exists(_ context.Context, keys ...string) (bool, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	now := mc.now()
	for _, key := range keys {
		if item, ok := mc.items[key]; ok && !now.After(item.expireAt) {
			return true, nil
		}
	}
	return false, nil
}

// Len reports live and not-yet-swept entries.
func (mc *MemoryCache) Len() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return len(mc.items)
}

func (mc *MemoryCache) evictLRU() {
	var oldestKey string
	var oldest time.Time
	for key, item := range mc.items {
		if oldestKey == "" || item.access.Before(oldest) {
			oldestKey, oldest = key, item.access
		}
	}
	if oldestKey != "" {
		delete(mc.items, oldestKey)
	}
}

func (mc *MemoryCache) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mc.mu.Lock()
			now := mc.now()
			for key, item := range mc.items {
				if now.After(item.expireAt) {
					delete(mc.items, key)
				}
			}
			mc.mu.Unlock()
		case <-mc.stop:
			return
		}
	}
}

// Close stops the cleanup loop.
func (mc *MemoryCache) Close() error {
	mc.once.Do(func() { close(mc.stop) })
	return nil
}
