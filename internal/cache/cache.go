// internal/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"failfeed/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache defines the caching interface. It is used for slow-changing
// reads such as the badge catalog; activity facts are always computed
// fresh and never stored here.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Health(ctx context.Context) error
	Close() error
}

// New creates a cache based on the configured provider.
func New(cfg *config.CacheConfig, logger *zap.Logger) (Cache, error) {
	switch cfg.Provider {
	case "redis":
		return NewRedisCache(cfg, logger)
	case "", "memory":
		return NewMemoryCache(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown cache provider: %s", cfg.Provider)
	}
}

// GetJSON reads a key and unmarshals it into dest.
func GetJSON(ctx context.Context, c Cache, key string, dest any) bool {
	data, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

// SetJSON marshals value and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return c.Set(ctx, key, data, ttl)
}

// ===============================
// MEMORY CACHE
// ===============================

type memoryCache struct {
	mu      sync.RWMutex
	items   map[string]cacheItem
	maxKeys int
	logger  *zap.Logger
	stopCh  chan struct{}
	once    sync.Once
}

type cacheItem struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryCache creates an in-process cache with periodic expiry cleanup.
func NewMemoryCache(cfg *config.CacheConfig, logger *zap.Logger) Cache {
	c := &memoryCache{
		items:   make(map[string]cacheItem),
		maxKeys: cfg.MaxKeys,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}

	interval := cfg.CleanupInterval
	if interval <= 0 {
		interval = time.Minute
	}
	go c.cleanupLoop(interval)

	return c
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(item.expiresAt) {
		return nil, false
	}
	return item.value, true
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxKeys > 0 && len(c.items) >= c.maxKeys {
		c.evictOldestLocked()
	}

	c.items[key] = cacheItem{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

func (c *memoryCache) Health(ctx context.Context) error {
	return nil
}

func (c *memoryCache) Close() error {
	c.once.Do(func() { close(c.stopCh) })
	return nil
}

func (c *memoryCache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.cleanupExpired()
		}
	}
}

func (c *memoryCache) cleanupExpired() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, key)
		}
	}
}

// evictOldestLocked drops the entry closest to expiry. Caller holds the lock.
func (c *memoryCache) evictOldestLocked() {
	var oldestKey string
	var oldestExpiry time.Time

	for key, item := range c.items {
		if oldestKey == "" || item.expiresAt.Before(oldestExpiry) {
			oldestKey = key
			oldestExpiry = item.expiresAt
		}
	}
	if oldestKey != "" {
		delete(c.items, oldestKey)
	}
}

// ===============================
// REDIS CACHE
// ===============================

type redisCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisCache creates a Redis-backed cache.
func NewRedisCache(cfg *config.CacheConfig, logger *zap.Logger) (Cache, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis cache connected")
	return &redisCache{client: client, logger: logger}, nil
}

func (r *redisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warn("Redis get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return data, true
}

func (r *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *redisCache) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisCache) Close() error {
	return r.client.Close()
}
