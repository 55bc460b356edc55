package utils

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CacheItem pairs cached data with its expiry.
type CacheItem struct {
	Data      interface{}
	ExpiresAt time.Time
}

// PageCache is a size-bounded LRU whose entries also expire after a TTL.
type PageCache struct {
	lruCache *lru.Cache[string, CacheItem]
	now      func() time.Time
}

func NewPageCache(size int) (*PageCache, error) {
	l, err := lru.New[string, CacheItem](size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &PageCache{lruCache: l, now: time.Now}, nil
}

func (c *PageCache) Set(key string, data interface{}, ttl time.Duration) {
	c.lruCache.Add(key, CacheItem{
		Data:      data,
		ExpiresAt: c.now().Add(ttl),
	})
}

// Get returns nil when the key is missing or expired.
func (c *PageCache) Get(key string) interface{} {
	val, ok := c.lruCache.Get(key)
	if !ok {
		return nil
	}

	if c.now().After(val.ExpiresAt) {
		c.lruCache.Remove(key)
		return nil
	}

	return val.Data
}

func (c *PageCache) Delete(key string) {
	c.lruCache.Remove(key)
}

// Purge drops every entry; used after writes that change list pages.
func (c *PageCache) Purge() {
	c.lruCache.Purge()
}

func (c *PageCache) Len() int {
	return c.lruCache.Len()
}
