package cookpad

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"kondate-planner/internal/infrastructure/config"
	"kondate-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// MemoryCache is the in-process fallback used when no Redis address is
// configured. Entries expire after the configured TTL; when the cache is
// full, expired entries are swept first, then the least-used entry is
// evicted.
type MemoryCache struct {
	config *config.CacheConfig
	mu     sync.RWMutex
	store  map[string]memEntry
	stats  memStats
	done   chan struct{}
}

type memEntry struct {
	data        []byte
	expiresAt   time.Time
	lastAccess  time.Time
	accessCount int
}

type memStats struct {
	hits      int64
	misses    int64
	evictions int64
}

// NewMemoryCache creates the cache and starts its background sweep.
func NewMemoryCache(cfg *config.CacheConfig) *MemoryCache {
	c := &MemoryCache{
		config: cfg,
		store:  make(map[string]memEntry),
		done:   make(chan struct{}),
	}

	if cfg.Enabled {
		go c.startCleanup()
		common.LogInfo("memory cache initialized",
			zap.Int("max_size", cfg.MaxSize),
			zap.Duration("ttl", cfg.TTL),
			zap.Duration("cleanup_interval", cfg.CleanupInterval),
		)
	}

	return c
}

// Get fetches a cached response.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	if !c.config.Enabled {
		return nil, common.ErrCacheDisabled
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.store[key]
	if !exists {
		c.stats.misses++
		return nil, common.ErrCacheMiss
	}

	if time.Now().After(entry.expiresAt) {
		delete(c.store, key)
		c.stats.evictions++
		c.stats.misses++
		return nil, common.ErrCacheMiss
	}

	entry.lastAccess = time.Now()
	entry.accessCount++
	c.store[key] = entry
	c.stats.hits++
	return entry.data, nil
}

// Set stores a response with the configured TTL.
func (c *MemoryCache) Set(ctx context.Context, key string, data []byte) error {
	if !c.config.Enabled {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.store) >= c.config.MaxSize {
		c.sweepLocked()
		if len(c.store) >= c.config.MaxSize {
			c.evictLRULocked()
		}
		if len(c.store) >= c.config.MaxSize {
			common.LogWarn("memory cache full",
				zap.Int("size", len(c.store)),
			)
			return common.ErrCacheFull
		}
	}

	now := time.Now()
	c.store[key] = memEntry{
		data:       data,
		expiresAt:  now.Add(c.config.TTL),
		lastAccess: now,
	}
	return nil
}

// Close stops the background sweep and drops all entries.
func (c *MemoryCache) Close() error {
	close(c.done)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[string]memEntry)
	common.LogInfo("memory cache closed",
		zap.Int64("hits", c.stats.hits),
		zap.Int64("misses", c.stats.misses),
		zap.Int64("evictions", c.stats.evictions),
	)
	return nil
}

// Stats reports cache counters for the readiness endpoint.
func (c *MemoryCache) Stats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := c.stats.hits + c.stats.misses
	ratio := 0.0
	if total > 0 {
		ratio = float64(c.stats.hits) / float64(total)
	}
	return map[string]interface{}{
		"size":      len(c.store),
		"max_size":  c.config.MaxSize,
		"hits":      c.stats.hits,
		"misses":    c.stats.misses,
		"evictions": c.stats.evictions,
		"hit_ratio": ratio,
	}
}

func (c *MemoryCache) startCleanup() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			c.sweepLocked()
			c.mu.Unlock()
		case <-c.done:
			return
		}
	}
}

// sweepLocked removes expired entries. Caller holds the write lock.
func (c *MemoryCache) sweepLocked() {
	now := time.Now()
	for key, entry := range c.store {
		if now.After(entry.expiresAt) {
			delete(c.store, key)
			c.stats.evictions++
		}
	}
}

// evictLRULocked drops the least-used entry, oldest access breaking ties.
// Caller holds the write lock.
func (c *MemoryCache) evictLRULocked() {
	var victim string
	var victimAccess time.Time
	var victimCount int

	for key, entry := range c.store {
		if victim == "" ||
			entry.accessCount < victimCount ||
			(entry.accessCount == victimCount && entry.lastAccess.Before(victimAccess)) {
			victim = key
			victimAccess = entry.lastAccess
			victimCount = entry.accessCount
		}
	}

	if victim != "" {
		delete(c.store, victim)
		c.stats.evictions++
	}
}

// cacheKey hashes request parameters into a stable cache key.
func cacheKey(kind string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return kind + ":" + hex.EncodeToString(h.Sum(nil))
}
