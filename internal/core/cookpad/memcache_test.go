package cookpad

import (
	"context"
	"testing"
	"time"

	"kondate-planner/internal/infrastructure/config"
	"kondate-planner/internal/pkg/common"
)

func TestMemoryCacheGetSet(t *testing.T) {
	c := NewMemoryCache(testCacheConfig())
	t.Cleanup(func() { c.Close() })
	ctx := context.Background()

	if _, err := c.Get(ctx, "k"); err != common.ErrCacheMiss {
		t.Fatalf("expected miss, got %v", err)
	}

	if err := c.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, err := c.Get(ctx, "k")
	if err != nil || string(data) != "v" {
		t.Fatalf("Get = %q, %v", data, err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	cfg := testCacheConfig()
	cfg.TTL = -time.Second // entries are born expired
	c := NewMemoryCache(cfg)
	t.Cleanup(func() { c.Close() })
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := c.Get(ctx, "k"); err != common.ErrCacheMiss {
		t.Fatalf("expected expired entry to miss, got %v", err)
	}
}

func TestMemoryCacheEviction(t *testing.T) {
	cfg := testCacheConfig()
	cfg.MaxSize = 2
	c := NewMemoryCache(cfg)
	t.Cleanup(func() { c.Close() })
	ctx := context.Background()

	c.Set(ctx, "a", []byte("1"))
	c.Set(ctx, "b", []byte("2"))

	// Touch "a" so "b" becomes the LRU victim.
	c.Get(ctx, "a")

	if err := c.Set(ctx, "c", []byte("3")); err != nil {
		t.Fatalf("Set after eviction: %v", err)
	}
	if _, err := c.Get(ctx, "b"); err != common.ErrCacheMiss {
		t.Fatalf("expected b to be evicted, got %v", err)
	}
	if _, err := c.Get(ctx, "a"); err != nil {
		t.Fatalf("a should survive eviction: %v", err)
	}
}

func TestMemoryCacheDisabled(t *testing.T) {
	c := NewMemoryCache(&config.CacheConfig{Enabled: false})
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set on disabled cache should be a no-op: %v", err)
	}
	if _, err := c.Get(ctx, "k"); err != common.ErrCacheDisabled {
		t.Fatalf("expected ErrCacheDisabled, got %v", err)
	}
}

func TestCacheKeyStable(t *testing.T) {
	a := cacheKey("search", "トマト", "popular", "10")
	b := cacheKey("search", "トマト", "popular", "10")
	if a != b {
		t.Fatal("same parts must hash to the same key")
	}
	if a == cacheKey("search", "トマト", "popular", "5") {
		t.Fatal("different parts must not collide")
	}
	// Joining ambiguity: ("ab","c") vs ("a","bc").
	if cacheKey("search", "ab", "c") == cacheKey("search", "a", "bc") {
		t.Fatal("part boundaries must affect the key")
	}
}
